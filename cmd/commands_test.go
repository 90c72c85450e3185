package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(t *testing.T) (*app, *cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(""), &stdout, &stderr)
	return a, a.newRootCmd(), &stdout, &stderr
}

func findCommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	require.Failf(t, "command not registered", "name: %s", name)
	return nil
}

func TestRootCmd_Subcommands(t *testing.T) {
	_, root, _, _ := newTestRoot(t)

	names := []string{"init", "front", "back", "branch", "checkout", "delete-branch", "history", "dashboard"}
	for _, pc := range passthroughCommands {
		names = append(names, pc.verb)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			findCommand(t, root, name)
		})
	}
}

func TestRootCmd_NoCompletionCommand(t *testing.T) {
	_, root, _, _ := newTestRoot(t)

	for _, c := range root.Commands() {
		assert.NotEqual(t, "completion", c.Name())
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	_, root, _, _ := newTestRoot(t)

	for _, name := range []string{"config", "data-dir", "verbose", "raw", "no-color", "no-history"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, root.PersistentFlags().Lookup(name))
		})
	}
	assert.Equal(t, "v", root.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestForwardingCommands_DisableFlagParsing(t *testing.T) {
	_, root, _, _ := newTestRoot(t)

	names := []string{"front", "back", "branch", "checkout"}
	for _, pc := range passthroughCommands {
		names = append(names, pc.verb)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			assert.True(t, findCommand(t, root, name).DisableFlagParsing)
		})
	}

	assert.False(t, findCommand(t, root, "delete-branch").DisableFlagParsing)
	assert.False(t, findCommand(t, root, "history").DisableFlagParsing)
}

func TestPassthroughCommands_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for _, pc := range passthroughCommands {
		assert.False(t, seen[pc.verb], "duplicate verb %s", pc.verb)
		seen[pc.verb] = true
		assert.NotEmpty(t, pc.short)
	}
	assert.False(t, seen["branch"])
	assert.False(t, seen["checkout"])
}

func TestHistoryCmd_Flags(t *testing.T) {
	_, root, _, _ := newTestRoot(t)
	cmd := findCommand(t, root, "history")

	limit := cmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "20", limit.DefValue)

	for _, name := range []string{"json", "failed", "tree", "clear", "yes"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestDashboardCmd_Flags(t *testing.T) {
	_, root, _, _ := newTestRoot(t)
	cmd := findCommand(t, root, "dashboard")

	refresh := cmd.Flags().Lookup("refresh")
	require.NotNil(t, refresh)
	assert.Equal(t, "5s", refresh.DefValue)
}

func TestBranchName(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
		ok       bool
	}{
		{"single name", []string{"feature1"}, "feature1", true},
		{"name with slash", []string{"feature/login"}, "feature/login", true},
		{"no args", nil, "", false},
		{"short option", []string{"-a"}, "", false},
		{"long option", []string{"--list"}, "", false},
		{"two args", []string{"-d", "feature1"}, "", false},
		{"name and start point", []string{"feature1", "main"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := branchName(tt.args)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestPeelGlobalFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
		verbose  bool
		raw      bool
		cfgFile  string
	}{
		{
			name:     "no flags",
			args:     []string{"status"},
			expected: []string{"status"},
		},
		{
			name:     "pass-through args are untouched",
			args:     []string{"commit", "-m", "msg", "--amend"},
			expected: []string{"commit", "-m", "msg", "--amend"},
		},
		{
			name:     "verbose before command",
			args:     []string{"-v", "log", "-v"},
			expected: []string{"log", "-v"},
			verbose:  true,
		},
		{
			name:     "config with value",
			args:     []string{"--config", "other.json", "--raw", "push"},
			expected: []string{"push"},
			raw:      true,
			cfgFile:  "other.json",
		},
		{
			name:     "help",
			args:     []string{"--help"},
			expected: []string{"--help"},
		},
		{
			name:     "help keeps the command",
			args:     []string{"-h", "init"},
			expected: []string{"--help", "init"},
		},
		{
			name:     "version",
			args:     []string{"--version"},
			expected: []string{"--version"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, root, _, _ := newTestRoot(t)

			rest, err := peelGlobalFlags(root.PersistentFlags(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rest)
			assert.Equal(t, tt.verbose, a.verbose)
			assert.Equal(t, tt.raw, a.raw)
			assert.Equal(t, tt.cfgFile, a.cfgFile)
		})
	}
}

func TestPeelGlobalFlags_UnknownFlag(t *testing.T) {
	_, root, _, _ := newTestRoot(t)

	_, err := peelGlobalFlags(root.PersistentFlags(), []string{"--bogus", "status"})
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		ms       int64
		expected string
	}{
		{"milliseconds", 42, "42ms"},
		{"seconds", 1500, "1.5s"},
		{"minutes", 90000, "1.5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(time.Duration(tt.ms)*time.Millisecond))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "git status", truncate("git status", 20))
	assert.Equal(t, "git commit -m...", truncate("git commit -m 'a long message'", 16))
	assert.Equal(t, "a b", truncate("a\nb", 10))
}
