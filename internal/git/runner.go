// Package git runs version-control commands against working trees via the git CLI.
package git

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jayteealao/gigit/internal/errors"
)

// Result is the captured outcome of one Command in one tree.
// A failed run is a normal Result with Success unset, never an error.
type Result struct {
	Stdout   string
	Stderr   string
	Success  bool
	ExitCode int   // -1 when the process could not be started
	Err      error // set whenever Success is false
}

// Text returns stdout, or stderr when stdout is blank. Several git verbs
// (checkout, push) report on stderr even when they succeed.
func (r Result) Text() string {
	if strings.TrimSpace(r.Stdout) != "" {
		return r.Stdout
	}
	return r.Stderr
}

// Combined returns both streams joined, for phrase matching.
func (r Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

// ExecRunner executes commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by child processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes cmd with dir as its working directory and blocks until it exits.
func (r *ExecRunner) Run(ctx context.Context, dir string, cmd Command) Result {
	if len(cmd) == 0 {
		err := fmt.Errorf("empty command")
		return Result{ExitCode: -1, Err: err, Stderr: err.Error()}
	}

	c := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	c.Dir = dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		res.Success = true
		return res
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		res.Err = err
		return res
	}

	// The process never ran: missing binary, bad directory, cancelled context.
	res.ExitCode = -1
	if stderrors.Is(err, exec.ErrNotFound) {
		err = fmt.Errorf("%w: %v", errors.ErrGitNotFound, err)
	}
	res.Err = err
	if res.Stderr == "" {
		res.Stderr = err.Error()
	}
	return res
}

// ShowCurrentBranch is the query used to learn a tree's checked-out branch.
func ShowCurrentBranch() Command {
	return Git("branch", "--show-current")
}

// BranchName extracts the branch from a ShowCurrentBranch Result: the
// trimmed first line of stdout, empty on a detached HEAD or failure.
func BranchName(res Result) string {
	if !res.Success {
		return ""
	}
	return firstLine(res.Stdout)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
