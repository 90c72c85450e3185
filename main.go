package main

import "github.com/jayteealao/gigit/cmd"

func main() {
	cmd.Execute()
}
