// Package dispatch mirrors git commands across the backend and frontend trees.
package dispatch

import (
	"context"
	"time"

	"github.com/jayteealao/gigit/internal/classify"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/report"
	"github.com/jayteealao/gigit/internal/tree"
	"github.com/rs/zerolog"
)

// DefaultRemote is the remote the upstream correction pushes to.
const DefaultRemote = "origin"

// Recorder receives every invocation the dispatcher makes.
type Recorder interface {
	Record(ctx context.Context, t tree.Tree, cmd git.Command, res git.Result, elapsed time.Duration) error
}

// Options configures a Dispatcher.
type Options struct {
	// PrintRaw adds the raw git output under commit and push status lines.
	PrintRaw bool

	// Matcher classifies output. Defaults to classify.Default.
	Matcher *classify.Matcher

	// Remote used by the upstream correction. Defaults to DefaultRemote.
	Remote string

	// Logger receives debug and warning events. Defaults to a no-op logger.
	Logger *zerolog.Logger

	// Recorder, if set, journals each invocation.
	Recorder Recorder
}

// Dispatcher runs commands against a tree pair. Invocations are strictly
// sequential: the backend run completes before the frontend run starts.
type Dispatcher struct {
	runner   git.Runner
	pair     tree.Pair
	report   *report.Presenter
	matcher  classify.Matcher
	remote   string
	printRaw bool
	log      zerolog.Logger
	recorder Recorder
}

// outcome pairs a tree with the Result of one command in it.
type outcome struct {
	tree   tree.Tree
	result git.Result
}

// New creates a Dispatcher.
func New(runner git.Runner, pair tree.Pair, presenter *report.Presenter, opts Options) *Dispatcher {
	d := &Dispatcher{
		runner:   runner,
		pair:     pair,
		report:   presenter,
		matcher:  classify.Default,
		remote:   DefaultRemote,
		printRaw: opts.PrintRaw,
		log:      zerolog.Nop(),
		recorder: opts.Recorder,
	}
	if opts.Matcher != nil {
		d.matcher = *opts.Matcher
	}
	if opts.Remote != "" {
		d.remote = opts.Remote
	}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}
	return d
}

// Pair returns the trees this dispatcher operates on.
func (d *Dispatcher) Pair() tree.Pair {
	return d.pair
}

// Dispatch runs cmd according to mode and prints the report. Failures of
// individual git invocations are reported, never returned; the only error is
// cancellation of ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd git.Command, mode Mode) error {
	d.log.Debug().Str("command", cmd.String()).Str("mode", mode.String()).Msg("dispatch")

	if label, ok := mode.Single(); ok {
		d.run(ctx, d.pair.Get(label), cmd, true)
		return ctx.Err()
	}

	outcomes := d.both(ctx, cmd)

	switch mode.Kind() {
	case KindCommit:
		d.reportCommit(outcomes)
	case KindPush:
		d.push(ctx, cmd, outcomes)
	default:
		d.reportPair(outcomes)
	}

	return ctx.Err()
}

// both runs cmd in the backend tree, then the frontend tree, without printing.
func (d *Dispatcher) both(ctx context.Context, cmd git.Command) []outcome {
	trees := d.pair.Trees()
	outcomes := make([]outcome, 0, len(trees))
	for _, t := range trees {
		outcomes = append(outcomes, outcome{tree: t, result: d.run(ctx, t, cmd, false)})
	}
	return outcomes
}

// run is the single path to the git runner. It logs and journals the
// invocation, prints the error block on failure, and prints the tree banner
// with the output on success when show is set.
func (d *Dispatcher) run(ctx context.Context, t tree.Tree, cmd git.Command, show bool) git.Result {
	start := time.Now()
	res := d.runner.Run(ctx, t.Path, cmd)
	elapsed := time.Since(start)

	d.log.Debug().
		Str("tree", t.Label.String()).
		Str("verb", cmd.Verb()).
		Strs("args", cmd.Args()).
		Int("exit_code", res.ExitCode).
		Dur("duration", elapsed).
		Msg("git invocation")

	if d.recorder != nil {
		if err := d.recorder.Record(ctx, t, cmd, res, elapsed); err != nil {
			d.log.Warn().Err(err).Msg("failed to record invocation")
		}
	}

	if !res.Success {
		d.log.Warn().
			Str("tree", t.Label.String()).
			Str("verb", cmd.Verb()).
			Str("stdout", res.Stdout).
			Str("stderr", res.Stderr).
			Err(res.Err).
			Msg("git command failed")
		d.report.Failure(cmd, t.Label, res)
		return res
	}

	if show {
		d.report.Block(t.Label, res.Text())
	}
	return res
}

func (d *Dispatcher) reportPair(outcomes []outcome) {
	entries := make([]report.Entry, 0, len(outcomes))
	for _, o := range outcomes {
		text := o.result.Text()
		if !o.result.Success {
			// stderr was already shown in the failure block
			text = o.result.Stdout
		}
		entries = append(entries, report.Entry{Label: o.tree.Label, Text: text})
	}
	d.report.Pair(entries)
}

func (d *Dispatcher) reportCommit(outcomes []outcome) {
	for _, o := range outcomes {
		switch d.matcher.Commit(o.result) {
		case classify.NothingToCommit:
			d.report.Status(o.tree.Label, classify.NothingToCommit.String())
		case classify.Committed:
			d.report.Status(o.tree.Label, classify.Committed.String())
			if d.printRaw {
				d.report.Raw(o.result.Text())
			}
		default:
			d.report.Block(o.tree.Label, o.result.Combined())
		}
	}
}

// push completes a push choreography from the first attempt's outcomes:
// trees lacking an upstream get a corrective --set-upstream push, then the
// original command is re-run in both trees and each tree is reported.
func (d *Dispatcher) push(ctx context.Context, cmd git.Command, first []outcome) {
	corrected := make(map[tree.Label]bool)

	for _, o := range first {
		if !d.matcher.PushNeedsUpstream(o.result) {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		branch := git.BranchName(d.run(ctx, o.tree, git.ShowCurrentBranch(), false))
		if branch == "" {
			d.report.Warning(o.tree.Label, "cannot set upstream: current branch could not be determined")
			continue
		}

		d.report.Status(o.tree.Label, "setting upstream branch")
		res := d.run(ctx, o.tree, git.Git("push", "--set-upstream", d.remote, branch), true)
		corrected[o.tree.Label] = res.Success
	}

	if ctx.Err() != nil {
		return
	}

	retry := d.both(ctx, cmd)

	for i, o := range retry {
		status := d.matcher.Push(o.result)
		// A tree whose first attempt or upstream correction pushed reports
		// Pushed even though its re-run prints "Everything up-to-date".
		if d.matcher.Push(first[i].result) == classify.Pushed || corrected[o.tree.Label] {
			status = classify.Pushed
		}

		if status == classify.PushMiss {
			d.report.Block(o.tree.Label, o.result.Combined())
			continue
		}

		d.report.Block(o.tree.Label, status.String())
		if d.printRaw {
			d.report.Raw(o.result.Text())
		}
	}
}
