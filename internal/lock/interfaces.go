package lock

// LockOperations defines the interface for lock management.
type LockOperations interface {
	TryAcquire(key string) (*Lock, error)
	IsLocked(key string) (bool, int, error)
}

// Ensure Manager implements LockOperations
var _ LockOperations = (*Manager)(nil)
