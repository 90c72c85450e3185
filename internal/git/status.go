package git

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Snapshot summarises the state of one working tree.
type Snapshot struct {
	Branch    string
	Upstream  string
	Ahead     int
	Behind    int
	Modified  []string
	Untracked []string
	Detached  bool
}

// Dirty reports whether the tree has any local change.
func (s Snapshot) Dirty() bool {
	return len(s.Modified) > 0 || len(s.Untracked) > 0
}

// Changes returns the number of modified plus untracked paths.
func (s Snapshot) Changes() int {
	return len(s.Modified) + len(s.Untracked)
}

var trackingRegex = regexp.MustCompile(`(ahead|behind) (\d+)`)

// Inspect reads the branch and change state of the tree at dir with a single
// `git status --porcelain --branch` call. The Result is returned so callers
// can report failures.
func Inspect(ctx context.Context, r Runner, dir string) (Snapshot, Result) {
	res := r.Run(ctx, dir, Git("status", "--porcelain", "--branch"))
	if !res.Success {
		return Snapshot{}, res
	}
	return ParseStatus(res.Stdout), res
}

// ParseStatus parses porcelain v1 output with a leading "## " branch line.
func ParseStatus(output string) Snapshot {
	var snap Snapshot

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "## ") {
			parseBranchLine(strings.TrimPrefix(line, "## "), &snap)
			continue
		}

		if len(line) < 4 {
			continue
		}
		path := line[3:]
		if strings.HasPrefix(line, "??") {
			snap.Untracked = append(snap.Untracked, path)
		} else {
			snap.Modified = append(snap.Modified, path)
		}
	}

	return snap
}

func parseBranchLine(line string, snap *Snapshot) {
	// ## No commits yet on main
	if rest, ok := strings.CutPrefix(line, "No commits yet on "); ok {
		snap.Branch = strings.TrimSpace(rest)
		return
	}
	// ## HEAD (no branch)
	if strings.HasPrefix(line, "HEAD (no branch)") {
		snap.Detached = true
		return
	}

	// ## main...origin/main [ahead 1, behind 2]
	tracking := ""
	if i := strings.Index(line, " ["); i >= 0 {
		tracking = line[i+2:]
		line = line[:i]
	}

	if branch, upstream, ok := strings.Cut(line, "..."); ok {
		snap.Branch = branch
		snap.Upstream = upstream
	} else {
		snap.Branch = strings.TrimSpace(line)
	}

	for _, m := range trackingRegex.FindAllStringSubmatch(tracking, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if m[1] == "ahead" {
			snap.Ahead = n
		} else {
			snap.Behind = n
		}
	}
}
