// Package classify turns captured git output into named outcomes.
//
// Classification is substring matching against English phrases git prints.
// That couples gigit to git's message format and locale, so the phrases live
// in versioned Matcher values: a wording change in a future git release is a
// new Matcher, not an edit scattered across the dispatcher. Text that no
// phrase matches classifies as a Miss and callers fall back to raw output.
package classify

import (
	"strings"

	"github.com/jayteealao/gigit/internal/git"
)

// Matcher holds the phrases one family of git releases emits.
type Matcher struct {
	Version         string
	NothingToCommit []string
	NoUpstream      []string
	UpToDate        []string
	BlockedPhrases  []string
	NoLocalChanges  []string
}

// GitV2 matches the English messages of git 2.x.
var GitV2 = Matcher{
	Version:         "git-2",
	NothingToCommit: []string{"nothing to commit"},
	NoUpstream:      []string{"has no upstream branch"},
	UpToDate:        []string{"Everything up-to-date"},
	BlockedPhrases: []string{
		"would be overwritten by checkout",
		"untracked working tree files would be overwritten",
		"Please commit your changes or stash them",
	},
	NoLocalChanges: []string{"No local changes to save"},
}

// Matchers lists every known Matcher, newest first.
var Matchers = []Matcher{GitV2}

// Default is the Matcher the package-level functions use.
var Default = GitV2

// CommitOutcome is the semantic result of a commit.
type CommitOutcome int

const (
	CommitMiss CommitOutcome = iota
	NothingToCommit
	Committed
)

func (o CommitOutcome) String() string {
	switch o {
	case NothingToCommit:
		return "nothing to commit"
	case Committed:
		return "commit successfully"
	default:
		return "unclassified"
	}
}

// PushOutcome is the semantic result of a push.
type PushOutcome int

const (
	PushMiss PushOutcome = iota
	UpToDate
	Pushed
)

func (o PushOutcome) String() string {
	switch o {
	case UpToDate:
		return "Nothing to push"
	case Pushed:
		return "Push successfully"
	default:
		return "unclassified"
	}
}

// Commit classifies a commit Result. git prints "nothing to commit" on
// stdout and exits 1, so the phrase check comes before the exit status.
// Unstaged changes ("no changes added to commit") are a Miss.
func (m Matcher) Commit(res git.Result) CommitOutcome {
	if containsAny(res.Combined(), m.NothingToCommit) {
		return NothingToCommit
	}
	if res.Success {
		return Committed
	}
	return CommitMiss
}

// PushNeedsUpstream reports whether a push failed because the current branch
// has no upstream configured.
func (m Matcher) PushNeedsUpstream(res git.Result) bool {
	return containsAny(res.Stderr, m.NoUpstream)
}

// Push classifies a push Result. git writes "Everything up-to-date" to
// stderr, so both streams are searched.
func (m Matcher) Push(res git.Result) PushOutcome {
	if containsAny(res.Combined(), m.UpToDate) {
		return UpToDate
	}
	if res.Success {
		return Pushed
	}
	return PushMiss
}

// CheckoutBlocked reports whether a checkout failed because local changes
// or untracked files would be overwritten.
func (m Matcher) CheckoutBlocked(res git.Result) bool {
	return !res.Success && containsAny(res.Combined(), m.BlockedPhrases)
}

// StashEmpty reports whether a stash found nothing to save.
func (m Matcher) StashEmpty(res git.Result) bool {
	return containsAny(res.Combined(), m.NoLocalChanges)
}

// Commit classifies with the Default matcher.
func Commit(res git.Result) CommitOutcome { return Default.Commit(res) }

// PushNeedsUpstream classifies with the Default matcher.
func PushNeedsUpstream(res git.Result) bool { return Default.PushNeedsUpstream(res) }

// Push classifies with the Default matcher.
func Push(res git.Result) PushOutcome { return Default.Push(res) }

// CheckoutBlocked classifies with the Default matcher.
func CheckoutBlocked(res git.Result) bool { return Default.CheckoutBlocked(res) }

// StashEmpty classifies with the Default matcher.
func StashEmpty(res git.Result) bool { return Default.StashEmpty(res) }

// Lookup returns the Matcher for a version tag.
func Lookup(version string) (Matcher, bool) {
	for _, m := range Matchers {
		if m.Version == version {
			return m, true
		}
	}
	return Matcher{}, false
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
