package dispatch

import (
	"fmt"

	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/tree"
)

// Kind names a command family that gets choreographed handling.
type Kind int

const (
	KindNone Kind = iota
	KindCommit
	KindPush
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindPush:
		return "push"
	default:
		return "generic"
	}
}

type scope int

const (
	scopeSingle scope = iota
	scopeBoth
)

// Mode decides how many Results a dispatch produces and how they are reported.
type Mode struct {
	scope scope
	label tree.Label
	kind  Kind
}

// SingleTree runs against one tree and prints its output immediately.
func SingleTree(l tree.Label) Mode {
	return Mode{scope: scopeSingle, label: l}
}

// BothTrees runs against both trees and prints a consolidated report.
func BothTrees() Mode {
	return Mode{scope: scopeBoth}
}

// BothTreesChoreographed runs against both trees and interprets the output
// with the classifier for kind.
func BothTreesChoreographed(kind Kind) Mode {
	return Mode{scope: scopeBoth, kind: kind}
}

// ModeFor selects the both-trees mode for a command from its verb.
func ModeFor(cmd git.Command) Mode {
	switch cmd.Verb() {
	case "commit":
		return BothTreesChoreographed(KindCommit)
	case "push":
		return BothTreesChoreographed(KindPush)
	default:
		return BothTrees()
	}
}

// Single reports whether the mode targets one tree, and which.
func (m Mode) Single() (tree.Label, bool) {
	return m.label, m.scope == scopeSingle
}

// Kind returns the choreography kind, KindNone for generic dispatch.
func (m Mode) Kind() Kind {
	return m.kind
}

func (m Mode) String() string {
	if m.scope == scopeSingle {
		return fmt.Sprintf("single(%s)", m.label)
	}
	if m.kind != KindNone {
		return fmt.Sprintf("both(%s)", m.kind)
	}
	return "both"
}
