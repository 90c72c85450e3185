// Package lock provides file-based locking with PID-based stale detection.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/jayteealao/gigit/internal/errors"
	"github.com/jayteealao/gigit/internal/tree"
)

// Lock represents a held lock on a tree pair.
type Lock struct {
	flock    *flock.Flock
	pidFile  string
	lockPath string
	key      string
}

// Manager manages tree pair locks.
type Manager struct {
	lockDir string
}

// NewManager creates a new lock manager.
func NewManager(dataDir string) (*Manager, error) {
	lockDir := filepath.Join(dataDir, "locks")
	if err := os.MkdirAll(lockDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	return &Manager{lockDir: lockDir}, nil
}

// PairKey derives the lock key for a tree pair from both paths, so two
// configurations pointing at the same trees share one lock.
func PairKey(pair tree.Pair) string {
	sum := sha256.Sum256([]byte(pair.Backend.Path + "\x00" + pair.Frontend.Path))
	return hex.EncodeToString(sum[:6])
}

// TryAcquire takes the lock for key without waiting. When another process
// holds it the error wraps ErrPairLocked and names the holder's PID.
func (m *Manager) TryAcquire(key string) (*Lock, error) {
	lockPath, pidFile := m.paths(key)

	m.cleanStaleLock(pidFile, lockPath)

	fl := flock.New(lockPath)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock: %w", err)
	}
	if !locked {
		if pid, err := readPIDFile(pidFile); err == nil {
			return nil, fmt.Errorf("%w: held by PID %d", errors.ErrPairLocked, pid)
		}
		return nil, errors.ErrPairLocked
	}

	if err := writePIDFile(pidFile); err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("failed to write PID file: %w", err)
	}

	return &Lock{
		flock:    fl,
		pidFile:  pidFile,
		lockPath: lockPath,
		key:      key,
	}, nil
}

// IsLocked checks if key is currently locked and by which PID (0 if unknown).
func (m *Manager) IsLocked(key string) (bool, int, error) {
	lockPath, pidFile := m.paths(key)

	fl := flock.New(lockPath)

	locked, err := fl.TryLock()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check lock: %w", err)
	}

	if locked {
		fl.Unlock()
		return false, 0, nil
	}

	pid, err := readPIDFile(pidFile)
	if err != nil {
		return true, 0, nil
	}

	return true, pid, nil
}

func (m *Manager) paths(key string) (lockPath, pidFile string) {
	return filepath.Join(m.lockDir, key+".lock"), filepath.Join(m.lockDir, key+".pid")
}

// cleanStaleLock removes lock files left behind by a process that has exited.
func (m *Manager) cleanStaleLock(pidFile, lockPath string) {
	pid, err := readPIDFile(pidFile)
	if err != nil {
		return
	}

	if isProcessRunning(pid) {
		return
	}

	os.Remove(pidFile)
	os.Remove(lockPath)
}

// Release releases the lock.
func (l *Lock) Release() error {
	os.Remove(l.pidFile)

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	os.Remove(l.lockPath)

	return nil
}

// Key returns the pair key this lock was taken for.
func (l *Lock) Key() string {
	return l.key
}

// writePIDFile writes the current process PID to the given file.
func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0644)
}

// readPIDFile reads a PID from the given file.
func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// isProcessRunning checks if a process with the given PID is running.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 probes for existence without delivering anything.
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if stderrors.Is(err, os.ErrProcessDone) || stderrors.Is(err, syscall.ESRCH) {
		return false
	}

	// EPERM: the process exists but belongs to someone else
	return true
}
