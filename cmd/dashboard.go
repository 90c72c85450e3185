package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jayteealao/gigit/internal/config"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/lock"
	"github.com/jayteealao/gigit/internal/tui"
	"github.com/spf13/cobra"
)

func (a *app) newDashboardCmd() *cobra.Command {
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Watch both repositories in a terminal dashboard",
		Long: `Launch an interactive terminal dashboard for the backend and frontend repositories.

The dashboard shows:
- Current branch and upstream of each repository
- Commits ahead of and behind the upstream
- Modified and untracked files
- Whether another gigit command is running on the repositories

Navigation:
  ↑/↓     Navigate repositories
  Enter   View repository details
  Esc     Go back
  r       Refresh
  q       Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath())
			if err != nil {
				return err
			}
			pair := cfg.Pair()

			locks, err := a.initLockManager()
			if err != nil {
				return err
			}

			model := tui.NewModel(cmd.Context(), git.NewExecRunner(), pair, refresh).
				WithLock(locks, lock.PairKey(pair))

			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(a.stdin),
				tea.WithOutput(a.stdout),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run TUI: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", 5*time.Second, "refresh interval")

	return cmd
}
