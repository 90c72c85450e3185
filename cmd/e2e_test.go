package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"4d63.com/testcli"
	"github.com/jayteealao/gigit/internal/config"
	"github.com/jayteealao/gigit/internal/lock"
	"github.com/jayteealao/gigit/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readme = `line 1
line 2
line 3
line 4
line 5
line 6
line 7
line 8
line 9
line 10
`

func setupGit(t *testing.T) {
	dir := testcli.MkdirTemp(t)
	os.Setenv("HOME", dir)
	testcli.Exec(t, "git config --global user.email 'tests@example.com'")
	testcli.Exec(t, "git config --global user.name 'Tests'")
	testcli.Exec(t, "git config --global init.defaultBranch main")
}

// setupPair creates backend and frontend repositories with one commit each,
// runs gigit init and leaves the working directory at their parent.
func setupPair(t *testing.T) string {
	setupGit(t)

	root := testcli.MkdirTemp(t)
	for _, name := range []string{"backend", "frontend"} {
		testcli.Chdir(t, root)
		testcli.Mkdir(t, name)
		testcli.Chdir(t, filepath.Join(root, name))
		testcli.Exec(t, "git init")
		writeFile(t, "README.md", []byte(readme))
		testcli.Exec(t, "git add .")
		testcli.Exec(t, "git commit -m 'Initial commit'")
	}
	testcli.Chdir(t, root)

	exitCode, _, stderr := testcli.Main(t, []string{"gigit", "init", "backend", "frontend"}, nil, Run)
	require.Equal(t, 0, exitCode, stderr)

	return root
}

func writeFile(t *testing.T, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, data, 0644))
}

func gigit(t *testing.T, args ...string) (int, string, string) {
	return testcli.Main(t, append([]string{"gigit"}, args...), nil, Run)
}

func TestInit(t *testing.T) {
	setupGit(t)

	root := testcli.MkdirTemp(t)
	testcli.Chdir(t, root)
	for _, name := range []string{"backend", "frontend"} {
		testcli.Mkdir(t, name)
		testcli.Chdir(t, filepath.Join(root, name))
		testcli.Exec(t, "git init")
		testcli.Chdir(t, root)
	}

	exitCode, stdout, stderr := gigit(t, "init", "backend", "frontend")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)

	backend, err := filepath.Abs("backend")
	require.NoError(t, err)
	frontend, err := filepath.Abs("frontend")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Configuration saved: backend=%s, frontend=%s\n", backend, frontend), stdout)

	cfg, err := config.Load(config.DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, backend, cfg.BackendRepoPath)
	assert.Equal(t, frontend, cfg.FrontendRepoPath)

	t.Run("re-running keeps optional keys unset", func(t *testing.T) {
		exitCode, _, stderr := gigit(t, "init", "frontend", "backend")
		require.Equal(t, 0, exitCode, stderr)

		data, err := os.ReadFile(config.DefaultFile)
		require.NoError(t, err)
		assert.NotContains(t, string(data), `"remote"`)
		assert.NotContains(t, string(data), `"classifier"`)
	})

	t.Run("re-running keeps configured optional keys", func(t *testing.T) {
		writeFile(t, config.DefaultFile, []byte(`{"backend_repo_path": "`+backend+`", "frontend_repo_path": "`+frontend+`", "remote": "upstream"}`))

		exitCode, _, stderr := gigit(t, "init", "backend", "frontend")
		require.Equal(t, 0, exitCode, stderr)

		cfg, err := config.Load(config.DefaultFile)
		require.NoError(t, err)
		assert.Equal(t, "upstream", cfg.Remote)
		assert.Empty(t, cfg.Classifier)
	})
}

func TestInit_Errors(t *testing.T) {
	setupGit(t)

	root := testcli.MkdirTemp(t)
	testcli.Chdir(t, root)
	testcli.Mkdir(t, "backend")
	testcli.Chdir(t, filepath.Join(root, "backend"))
	testcli.Exec(t, "git init")
	testcli.Chdir(t, root)
	testcli.Mkdir(t, "plain")

	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{
			name:   "no paths",
			args:   []string{"init"},
			stderr: initUsage + "\n",
		},
		{
			name:   "one path",
			args:   []string{"init", "backend"},
			stderr: initUsage + "\n",
		},
		{
			name:   "three paths",
			args:   []string{"init", "backend", "backend", "backend"},
			stderr: initUsage + "\n",
		},
		{
			name:   "missing backend",
			args:   []string{"init", "missing", "backend"},
			stderr: "Backend repository path does not exist: missing\n",
		},
		{
			name:   "frontend not a repository",
			args:   []string{"init", "backend", "plain"},
			stderr: "Frontend repository path is not a git repository: plain\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, stdout, stderr := gigit(t, tt.args...)
			assert.Equal(t, 1, exitCode)
			assert.Equal(t, "", stdout)
			assert.Equal(t, tt.stderr, stderr)

			_, err := os.Stat(config.DefaultFile)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestHelp(t *testing.T) {
	dir := testcli.MkdirTemp(t)
	testcli.Chdir(t, dir)

	t.Run("no arguments", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t)
		assert.Equal(t, 1, exitCode)
		assert.Equal(t, helpText, stdout)
	})

	t.Run("help command", func(t *testing.T) {
		exitCode, stdout, stderr := gigit(t, "help")
		assert.Equal(t, 0, exitCode)
		assert.Equal(t, "", stderr)
		assert.Equal(t, helpText, stdout)
	})

	t.Run("help flag", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "--help")
		assert.Equal(t, 0, exitCode)
		assert.Equal(t, helpText, stdout)
	})

	t.Run("unknown command", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "frobnicate")
		assert.Equal(t, 0, exitCode)
		assert.Equal(t, "Unknown command: frobnicate\n"+helpText, stdout)
	})

	t.Run("version", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "--version")
		assert.Equal(t, 0, exitCode)
		assert.Contains(t, stdout, Version)
	})
}

func TestMissingConfig(t *testing.T) {
	dir := testcli.MkdirTemp(t)
	testcli.Chdir(t, dir)

	for _, args := range [][]string{{"status"}, {"back", "log"}, {"branch", "feature1"}, {"delete-branch", "feature1"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			exitCode, stdout, stderr := gigit(t, args...)
			assert.Equal(t, 1, exitCode)
			assert.Equal(t, "", stdout)
			assert.Equal(t, "Error: Configuration file gigit_config.json not found. Please run 'gigit init' to set up the repository paths.\n", stderr)
		})
	}
}

func TestStatus(t *testing.T) {
	setupPair(t)

	exitCode, first, stderr := gigit(t, "status")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)
	assert.True(t, strings.HasPrefix(first, "Backend:\nOn branch main\n"), first)
	assert.Contains(t, first, "Frontend:\nOn branch main\n")
	assert.Less(t, strings.Index(first, "Backend:"), strings.Index(first, "Frontend:"))

	exitCode, second, _ := gigit(t, "status")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, first, second)
}

func TestSingleTree(t *testing.T) {
	root := setupPair(t)

	testcli.Chdir(t, filepath.Join(root, "frontend"))
	writeFile(t, "app.js", []byte("console.log('hi')\n"))
	testcli.Chdir(t, root)

	exitCode, stdout, _ := gigit(t, "front", "add", "app.js")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Frontend:\n\n", stdout)

	exitCode, stdout, _ = gigit(t, "back", "log", "--oneline")
	assert.Equal(t, 0, exitCode)
	assert.True(t, strings.HasPrefix(stdout, "Backend:\n"), stdout)
	assert.Contains(t, stdout, "Initial commit")
	assert.NotContains(t, stdout, "Frontend:")

	exitCode, stdout, _ = gigit(t, "back", "status", "--short")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Backend:\n\n", stdout)
}

func TestCommit(t *testing.T) {
	root := setupPair(t)

	t.Run("nothing to commit", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "commit", "-m", "x")
		assert.Equal(t, 0, exitCode)
		assert.Equal(t, "Backend: nothing to commit\nFrontend: nothing to commit\n", stdout)
	})

	t.Run("backend only", func(t *testing.T) {
		testcli.Chdir(t, filepath.Join(root, "backend"))
		writeFile(t, "main.go", []byte("package main\n"))
		testcli.Chdir(t, root)

		exitCode, _, _ := gigit(t, "add", ".")
		require.Equal(t, 0, exitCode)

		exitCode, stdout, _ := gigit(t, "commit", "-m", "Add new feature")
		assert.Equal(t, 0, exitCode)
		assert.Equal(t, "Backend: commit successfully\nFrontend: nothing to commit\n", stdout)

		testcli.Chdir(t, filepath.Join(root, "backend"))
		_, log, _ := testcli.Exec(t, "git log -1 --format=%s")
		assert.Equal(t, "Add new feature", strings.TrimSpace(log))
		testcli.Chdir(t, root)
	})
}

func TestPush(t *testing.T) {
	root := setupPair(t)

	for _, name := range []string{"backend", "frontend"} {
		remote := testcli.MkdirTemp(t)
		testcli.Chdir(t, remote)
		testcli.Exec(t, "git init --bare")
		testcli.Chdir(t, filepath.Join(root, name))
		testcli.Exec(t, "git remote add origin "+remote)
	}
	testcli.Chdir(t, root)

	exitCode, stdout, _ := gigit(t, "push")
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "Backend: setting upstream branch\n")
	assert.Contains(t, stdout, "Frontend: setting upstream branch\n")
	assert.Contains(t, stdout, "Backend:\nPush successfully\n")
	assert.Contains(t, stdout, "Frontend:\nPush successfully\n")

	exitCode, stdout, _ = gigit(t, "push")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Backend:\nNothing to push\nFrontend:\nNothing to push\n", stdout)
}

func TestBranchCheckoutDelete(t *testing.T) {
	setupPair(t)

	exitCode, stdout, stderr := gigit(t, "branch", "feature1")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)
	assert.Equal(t, "Backend:\n  feature1\n* main\nFrontend:\n  feature1\n* main\n", stdout)

	exitCode, stdout, _ = gigit(t, "checkout", "feature1")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Backend:\n* feature1\n  main\nFrontend:\n* feature1\n  main\n", stdout)

	exitCode, stdout, _ = gigit(t, "checkout", "main")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Backend:\n  feature1\n* main\nFrontend:\n  feature1\n* main\n", stdout)

	exitCode, stdout, _ = gigit(t, "delete-branch", "feature1")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Backend:\n* main\nFrontend:\n* main\n", stdout)
}

func TestBranch_Passthrough(t *testing.T) {
	setupPair(t)

	exitCode, stdout, _ := gigit(t, "branch", "--list")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Backend:\n* main\nFrontend:\n* main\n", stdout)
}

func TestDeleteBranch_WrongArgs(t *testing.T) {
	setupPair(t)

	exitCode, stdout, stderr := gigit(t, "delete-branch")
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "", stdout)
	assert.Contains(t, stderr, "accepts 1 arg(s)")
}

func TestCheckout_StashesBlockingChanges(t *testing.T) {
	root := setupPair(t)
	backend := filepath.Join(root, "backend")

	exitCode, _, _ := gigit(t, "branch", "feature1")
	require.Equal(t, 0, exitCode)

	testcli.Chdir(t, backend)
	testcli.Exec(t, "git checkout feature1")
	writeFile(t, "README.md", []byte(strings.Replace(readme, "line 1\n", "feature line 1\n", 1)))
	testcli.Exec(t, "git commit -am 'Change first line'")
	testcli.Exec(t, "git checkout main")
	writeFile(t, "README.md", []byte(strings.Replace(readme, "line 10\n", "local line 10\n", 1)))
	testcli.Chdir(t, root)

	exitCode, stdout, stderr := gigit(t, "checkout", "feature1")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Untracked files or changes present. Stashing changes.\n"+
		"Restoring stashed changes.\n"+
		"Backend:\n* feature1\n  main\n"+
		"Frontend:\n* feature1\n  main\n", stdout)
	assert.Contains(t, stderr, "would be overwritten by checkout")
	assert.Contains(t, stderr, "Error while running command: git stash pop in Frontend")
	assert.NotContains(t, stderr, "WARNING")

	content, err := os.ReadFile(filepath.Join(backend, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "feature line 1\n")
	assert.Contains(t, string(content), "local line 10\n")
}

func TestLockContention(t *testing.T) {
	setupPair(t)

	cfg, err := config.Load(config.DefaultFile)
	require.NoError(t, err)

	locks, err := lock.NewManager(config.DataDir(config.DefaultFile))
	require.NoError(t, err)
	held, err := locks.TryAcquire(lock.PairKey(cfg.Pair()))
	require.NoError(t, err)
	defer held.Release()

	exitCode, stdout, stderr := gigit(t, "status")
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "", stdout)
	assert.Contains(t, stderr, "locked")
}

func TestHistory(t *testing.T) {
	setupPair(t)

	exitCode, _, _ := gigit(t, "status")
	require.Equal(t, 0, exitCode)
	exitCode, _, _ = gigit(t, "commit", "-m", "x")
	require.Equal(t, 0, exitCode)

	t.Run("json", func(t *testing.T) {
		exitCode, stdout, stderr := gigit(t, "history", "--json")
		require.Equal(t, 0, exitCode, stderr)

		var invocations []*state.Invocation
		require.NoError(t, json.Unmarshal([]byte(stdout), &invocations))
		require.Len(t, invocations, 4)

		assert.Equal(t, "commit", invocations[0].Verb)
		assert.Equal(t, "Frontend", invocations[0].Tree)
		assert.Equal(t, "Backend", invocations[1].Tree)
		assert.Equal(t, "status", invocations[3].Verb)
		assert.True(t, invocations[3].Success)
		assert.Equal(t, invocations[2].SessionID, invocations[3].SessionID)
		assert.NotEqual(t, invocations[1].SessionID, invocations[2].SessionID)
	})

	t.Run("failed only", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "history", "--json", "--failed")
		require.Equal(t, 0, exitCode)

		var invocations []*state.Invocation
		require.NoError(t, json.Unmarshal([]byte(stdout), &invocations))
		require.Len(t, invocations, 2)
		for _, inv := range invocations {
			assert.False(t, inv.Success)
			assert.Equal(t, "commit", inv.Verb)
		}
	})

	t.Run("tree", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "history", "--json", "--tree", "back")
		require.Equal(t, 0, exitCode)

		var invocations []*state.Invocation
		require.NoError(t, json.Unmarshal([]byte(stdout), &invocations))
		require.Len(t, invocations, 2)
		for _, inv := range invocations {
			assert.Equal(t, "Backend", inv.Tree)
		}

		exitCode, _, stderr := gigit(t, "history", "--tree", "mobile")
		assert.Equal(t, 1, exitCode)
		assert.Equal(t, "Error: unknown tree \"mobile\"\n", stderr)
	})

	t.Run("limit", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "history", "--json", "-n", "1")
		require.Equal(t, 0, exitCode)

		var invocations []*state.Invocation
		require.NoError(t, json.Unmarshal([]byte(stdout), &invocations))
		assert.Len(t, invocations, 1)
	})

	t.Run("table", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "history")
		require.Equal(t, 0, exitCode)
		assert.Contains(t, stdout, "STARTED")
		assert.Contains(t, stdout, "git commit -m x")
		assert.Contains(t, stdout, "exit 1")
	})

	t.Run("clear", func(t *testing.T) {
		exitCode, stdout, _ := gigit(t, "history", "--clear", "--yes")
		require.Equal(t, 0, exitCode)
		assert.Equal(t, "Removed 4 entries from the history.\n", stdout)

		exitCode, stdout, _ = gigit(t, "history")
		require.Equal(t, 0, exitCode)
		assert.Equal(t, "No commands recorded.\n", stdout)
	})
}

func TestNoHistory(t *testing.T) {
	setupPair(t)

	exitCode, _, _ := gigit(t, "--no-history", "status")
	assert.Equal(t, 0, exitCode)

	_, err := os.Stat(filepath.Join(config.DataDir(config.DefaultFile), state.DBFile))
	assert.True(t, os.IsNotExist(err))

	exitCode, _, stderr := gigit(t, "--no-history", "history")
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "Error: history is disabled\n", stderr)
}

func TestVerbose(t *testing.T) {
	setupPair(t)

	exitCode, _, stderr := gigit(t, "-v", "status")
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stderr, "git invocation")

	exitCode, _, stderr = gigit(t, "status")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)
}
