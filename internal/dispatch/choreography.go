package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/jayteealao/gigit/internal/errors"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/tree"
)

// CreateBranch creates a branch in both trees and lists the branches.
func (d *Dispatcher) CreateBranch(ctx context.Context, name string) error {
	d.both(ctx, git.Git("branch", name))
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.listBranches(ctx)
}

// Checkout switches both trees to a branch. When local changes block the
// checkout in either tree, both trees stash (untracked files included),
// retry the checkout and pop the stash. A failed pop in a tree that stashed
// changes leaves them in the stash; it is reported per tree and returned as
// ErrStashPopFailed after the branch listing. There is no rollback and no
// conflict resolution.
func (d *Dispatcher) Checkout(ctx context.Context, name string) error {
	outcomes := d.both(ctx, git.Git("checkout", name))
	if err := ctx.Err(); err != nil {
		return err
	}

	blocked := false
	for _, o := range outcomes {
		if d.matcher.CheckoutBlocked(o.result) {
			blocked = true
		}
	}

	var popFailed []string
	if blocked {
		d.report.Notice("Untracked files or changes present. Stashing changes.")
		stashed := make(map[tree.Label]bool)
		for _, o := range d.both(ctx, git.Git("stash", "--include-untracked")) {
			stashed[o.tree.Label] = o.result.Success && !d.matcher.StashEmpty(o.result)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		d.both(ctx, git.Git("checkout", name))
		if err := ctx.Err(); err != nil {
			return err
		}

		d.report.Notice("Restoring stashed changes.")
		for _, o := range d.both(ctx, git.Git("stash", "pop")) {
			// a tree that stashed nothing has nothing to lose
			if o.result.Success || !stashed[o.tree.Label] {
				continue
			}
			d.report.Warning(o.tree.Label, "restoring stashed changes failed; they are still in the stash (see 'git stash list')")
			popFailed = append(popFailed, o.tree.Label.String())
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if err := d.listBranches(ctx); err != nil {
		return err
	}

	if len(popFailed) > 0 {
		return fmt.Errorf("%w in %s", errors.ErrStashPopFailed, strings.Join(popFailed, ", "))
	}
	return nil
}

// DeleteBranch deletes a branch in both trees with a non-force delete, so an
// unmerged branch fails in that tree only, then lists the branches.
func (d *Dispatcher) DeleteBranch(ctx context.Context, name string) error {
	d.both(ctx, git.Git("branch", "-d", name))
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.listBranches(ctx)
}

func (d *Dispatcher) listBranches(ctx context.Context) error {
	return d.Dispatch(ctx, git.Git("branch"), BothTrees())
}
