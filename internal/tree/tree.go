// Package tree describes the two working trees gigit mirrors commands across.
package tree

import "fmt"

// Label identifies one of the two managed trees.
type Label int

const (
	Backend Label = iota
	Frontend
)

// String returns the display name used in banners and status lines.
func (l Label) String() string {
	switch l {
	case Backend:
		return "Backend"
	case Frontend:
		return "Frontend"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// ParseLabel maps the short selectors used on the command line ("back",
// "front") and the full names to a Label.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "back", "backend", "Backend":
		return Backend, nil
	case "front", "frontend", "Frontend":
		return Frontend, nil
	}
	return 0, fmt.Errorf("unknown tree %q", s)
}

// Tree is a labelled working directory.
type Tree struct {
	Label Label
	Path  string
}

// Pair holds both trees. It is loaded once per process and never mutated.
type Pair struct {
	Backend  Tree
	Frontend Tree
}

// NewPair builds a Pair from the two repository paths.
func NewPair(backendPath, frontendPath string) Pair {
	return Pair{
		Backend:  Tree{Label: Backend, Path: backendPath},
		Frontend: Tree{Label: Frontend, Path: frontendPath},
	}
}

// Trees returns both trees in label order, Backend first.
func (p Pair) Trees() []Tree {
	return []Tree{p.Backend, p.Frontend}
}

// Get returns the tree with the given label.
func (p Pair) Get(l Label) Tree {
	if l == Frontend {
		return p.Frontend
	}
	return p.Backend
}
