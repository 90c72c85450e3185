// Package errors provides sentinel errors for gigit operations.
package errors

import "errors"

// Configuration errors
var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigInvalid indicates the configuration file could not be parsed
	// or is missing one of the repository paths.
	ErrConfigInvalid = errors.New("configuration file is invalid")
)

// Path errors
var (
	// ErrInvalidPath indicates a repository path is not an existing directory.
	ErrInvalidPath = errors.New("repository path does not exist")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("path is not a git repository")
)

// Git errors
var (
	// ErrGitNotFound indicates git CLI is not available.
	ErrGitNotFound = errors.New("git command not found")

	// ErrStashPopFailed indicates restoring stashed changes failed after a
	// checkout; the changes are still in the stash.
	ErrStashPopFailed = errors.New("stash pop failed")
)

// Lock errors
var (
	// ErrPairLocked indicates another gigit process is operating on the same trees.
	ErrPairLocked = errors.New("trees are locked by another gigit command")
)

// History errors
var (
	// ErrHistoryDisabled indicates the invocation journal was turned off.
	ErrHistoryDisabled = errors.New("history is disabled")
)
