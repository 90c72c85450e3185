package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jayteealao/gigit/internal/prompt"
	"github.com/jayteealao/gigit/internal/state"
	"github.com/jayteealao/gigit/internal/tree"
	"github.com/jayteealao/gigit/internal/tui"
	"github.com/spf13/cobra"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
		failedOnly bool
		treeName   string
		clearAll   bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the git commands gigit ran",
		Long: `Show the git commands gigit ran in the backend and frontend repositories,
most recent first.

The history is kept in the data directory and can be turned off per command
with --no-history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := a.initStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if clearAll {
				if !yes {
					confirmed, err := prompt.ConfirmAction(
						"Clear the history?",
						"Every recorded command in "+a.getDataDir()+" is deleted.",
						a.promptOptions(),
					)
					if err != nil {
						return fmt.Errorf("failed to read confirmation: %w", err)
					}
					if !confirmed {
						fmt.Fprintln(a.stdout, "History kept.")
						return nil
					}
				}
				n, err := store.Clear(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Removed %d entries from the history.\n", n)
				return nil
			}

			opts := state.ListOptions{
				Limit:      limit,
				FailedOnly: failedOnly,
			}
			if treeName != "" {
				label, err := tree.ParseLabel(treeName)
				if err != nil {
					return err
				}
				opts.Tree = label.String()
			}

			invocations, err := store.ListInvocations(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			if jsonOutput {
				return a.outputHistoryJSON(invocations)
			}

			if len(invocations) == 0 {
				fmt.Fprintln(a.stdout, "No commands recorded.")
				return nil
			}

			return a.outputHistoryTable(invocations)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of commands to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "only show commands that failed")
	cmd.Flags().StringVar(&treeName, "tree", "", "only show commands run in this repository (back or front)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete the recorded history")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "clear without asking for confirmation")

	return cmd
}

func (a *app) outputHistoryJSON(invocations []*state.Invocation) error {
	if invocations == nil {
		invocations = []*state.Invocation{}
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(invocations)
}

func (a *app) outputHistoryTable(invocations []*state.Invocation) error {
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  STARTED\tTREE\tCOMMAND\tSTATUS\tDURATION")
	fmt.Fprintln(w, "  -------\t----\t-------\t------\t--------")

	for _, inv := range invocations {
		status := tui.StatusNameClean
		result := "ok"
		if !inv.Success {
			status = tui.StatusNameError
			result = fmt.Sprintf("exit %d", inv.ExitCode)
		}

		fmt.Fprintf(w, "  %s\t%s\t%s\t%s %s\t%s\n",
			inv.StartedAt.Local().Format("2006-01-02 15:04:05"),
			inv.Tree,
			truncate(inv.Command, 48),
			tui.GetStatusIcon(status),
			result,
			formatDuration(time.Duration(inv.DurationMS)*time.Millisecond))
	}
	return w.Flush()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d.Seconds() < 60 {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
