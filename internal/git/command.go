package git

import (
	"strconv"
	"strings"
)

// Binary is the version-control executable every Command starts with.
const Binary = "git"

// Command is a full argv: Command[0] is the binary, Command[1] the verb.
type Command []string

// Git builds a git Command from its arguments.
func Git(args ...string) Command {
	return append(Command{Binary}, args...)
}

// Verb returns the token at index 1, or "" for a bare binary.
func (c Command) Verb() string {
	if len(c) < 2 {
		return ""
	}
	return c[1]
}

// Args returns everything after the verb.
func (c Command) Args() []string {
	if len(c) < 3 {
		return nil
	}
	return c[2:]
}

// String renders the command the way a user would type it, quoting
// arguments that contain whitespace.
func (c Command) String() string {
	parts := make([]string, len(c))
	for i, arg := range c {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			parts[i] = strconv.Quote(arg)
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}
