package git

import "context"

// Runner executes one Command against one working directory.
type Runner interface {
	Run(ctx context.Context, dir string, cmd Command) Result
}

// Ensure ExecRunner implements Runner
var _ Runner = (*ExecRunner)(nil)
