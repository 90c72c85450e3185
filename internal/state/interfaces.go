package state

import (
	"context"
	"time"

	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/tree"
)

// JournalStore defines the interface for invocation journal operations.
type JournalStore interface {
	Close() error
	DataDir() string

	// Session operations
	BeginSession(ctx context.Context, argv []string, pair tree.Pair) (*Session, error)
	SessionID() string

	// Invocation operations
	Record(ctx context.Context, t tree.Tree, cmd git.Command, res git.Result, elapsed time.Duration) error
	ListInvocations(ctx context.Context, opts ListOptions) ([]*Invocation, error)
	Clear(ctx context.Context) (int64, error)
}

// Ensure Store implements JournalStore
var _ JournalStore = (*Store)(nil)
