// Package validate provides input validation for gigit.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jayteealao/gigit/internal/errors"
)

// RepoPath validates a local repository path: it must be an existing
// directory and a git working tree root (a .git directory or file) or a
// bare repository.
func RepoPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path cannot be empty", errors.ErrInvalidPath)
	}

	expandedPath, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	info, err := os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", errors.ErrInvalidPath, path)
		}
		return fmt.Errorf("failed to stat path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %s", errors.ErrInvalidPath, path)
	}

	// .git is a file in linked worktrees and submodules
	gitDir := filepath.Join(expandedPath, ".git")
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		headFile := filepath.Join(expandedPath, "HEAD")
		if _, err := os.Stat(headFile); os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", errors.ErrNotGitRepo, path)
		}
	}

	return nil
}

// AbsRepoPath expands and cleans path into the absolute form stored in the
// configuration.
func AbsRepoPath(path string) (string, error) {
	expandedPath, err := ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}
	abs, err := filepath.Abs(expandedPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return abs, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
