package cmd

import (
	"context"
	"strings"

	"github.com/jayteealao/gigit/internal/dispatch"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/tree"
	"github.com/spf13/cobra"
)

// passthroughCommands run in both trees with their arguments forwarded to git
// untouched. commit and push get choreographed handling from dispatch.ModeFor.
var passthroughCommands = []struct {
	verb  string
	short string
}{
	{"status", "Show the status of both repositories"},
	{"commit", "Commit changes in both repositories"},
	{"push", "Push both repositories, setting the upstream branch when missing"},
	{"add", "Add file contents to the index in both repositories"},
	{"fetch", "Fetch from the remotes of both repositories"},
	{"pull", "Pull into both repositories"},
	{"log", "Show the commit logs of both repositories"},
	{"diff", "Show changes in both repositories"},
	{"merge", "Merge into the current branch of both repositories"},
	{"rebase", "Rebase the current branch of both repositories"},
	{"stash", "Stash changes in both repositories"},
	{"tag", "Manage tags in both repositories"},
	{"reset", "Reset HEAD in both repositories"},
	{"restore", "Restore working tree files in both repositories"},
	{"switch", "Switch branches in both repositories"},
	{"remote", "Manage remotes of both repositories"},
	{"show", "Show objects in both repositories"},
	{"rm", "Remove files in both repositories"},
	{"mv", "Move files in both repositories"},
	{"cherry-pick", "Apply commits in both repositories"},
	{"revert", "Revert commits in both repositories"},
	{"clean", "Remove untracked files in both repositories"},
}

func (a *app) newPassthroughCmd(verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:                verb + " [args...]",
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := git.Git(append([]string{verb}, args...)...)
			return a.dispatch(cmd, command, dispatch.ModeFor(command))
		},
	}
}

func (a *app) newTreeCmd(name, short string) *cobra.Command {
	label := tree.Frontend
	if name == "back" {
		label = tree.Backend
	}

	return &cobra.Command{
		Use:                name + " <git_command> [args...]",
		Short:              short,
		Example:            "  gigit " + name + " add .\n  gigit " + name + " log --oneline -5",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dispatch(cmd, git.Git(args...), dispatch.SingleTree(label))
		},
	}
}

func (a *app) newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch <branch_name>",
		Short: "Create a branch in both repositories and list all branches",
		Long: `With a single branch name, create the branch in both repositories and list
the branches. Any other arguments are passed to git branch in both repositories.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name, ok := branchName(args); ok {
				return a.withDispatcher(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
					return d.CreateBranch(ctx, name)
				})
			}
			return a.dispatch(cmd, git.Git(append([]string{"branch"}, args...)...), dispatch.BothTrees())
		},
	}
}

func (a *app) newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch_name>",
		Short: "Checkout a branch in both repositories",
		Long: `Checkout a branch in both repositories. When local changes block the checkout,
they are stashed in both repositories (untracked files included), the checkout
is retried and the stash is popped. The branches are listed at the end.

Any other arguments are passed to git checkout in both repositories.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name, ok := branchName(args); ok {
				return a.withDispatcher(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
					return d.Checkout(ctx, name)
				})
			}
			return a.dispatch(cmd, git.Git(append([]string{"checkout"}, args...)...), dispatch.BothTrees())
		},
	}
}

func (a *app) newDeleteBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-branch <branch_name>",
		Short: "Delete a branch in both repositories",
		Long: `Delete a branch in both repositories with git branch -d, then list the branches.
An unmerged branch is refused by git in that repository only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDispatcher(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
				return d.DeleteBranch(ctx, args[0])
			})
		},
	}
}

func (a *app) dispatch(cmd *cobra.Command, command git.Command, mode dispatch.Mode) error {
	return a.withDispatcher(cmd, func(ctx context.Context, d *dispatch.Dispatcher) error {
		return d.Dispatch(ctx, command, mode)
	})
}

// branchName returns the single branch name in args. Options such as -a or
// --list are not branch names.
func branchName(args []string) (string, bool) {
	if len(args) != 1 || strings.HasPrefix(args[0], "-") {
		return "", false
	}
	return args[0], true
}
