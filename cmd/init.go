package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/jayteealao/gigit/internal/config"
	"github.com/jayteealao/gigit/internal/errors"
	"github.com/jayteealao/gigit/internal/prompt"
	"github.com/jayteealao/gigit/internal/validate"
	"github.com/spf13/cobra"
)

const initUsage = "Usage: gigit init <backend_repo_path> <frontend_repo_path>"

func (a *app) newInitCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init <backend_repo_path> <frontend_repo_path>",
		Short: "Initialize repository paths for backend and frontend",
		Long: `Save the backend and frontend repository paths to the configuration file.

Both paths must be existing git repositories. They are stored as absolute
paths. With -i and no arguments, gigit prompts for them.`,
		Example: `  gigit init ./backend ./frontend
  gigit init -i`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var paths prompt.RepoPaths

			switch {
			case interactive && len(args) == 0:
				collected, err := a.collectPaths()
				if err != nil {
					return err
				}
				paths = collected
			case len(args) == 2:
				paths = prompt.RepoPaths{Backend: args[0], Frontend: args[1]}
			default:
				fmt.Fprintln(a.stderr, initUsage)
				return &exitError{code: 1}
			}

			return a.saveConfig(paths)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for the repository paths")

	return cmd
}

// collectPaths prompts for both paths, prefilled from an existing configuration.
func (a *app) collectPaths() (prompt.RepoPaths, error) {
	var defaults prompt.RepoPaths
	if cfg, err := config.Load(a.configPath()); err == nil {
		defaults = prompt.RepoPaths{Backend: cfg.BackendRepoPath, Frontend: cfg.FrontendRepoPath}
	}

	paths, err := prompt.CollectRepoPaths(defaults, a.promptOptions())
	if err != nil {
		return prompt.RepoPaths{}, fmt.Errorf("failed to read repository paths: %w", err)
	}
	return paths, nil
}

// promptOptions connects prompts to the run's streams. ACCESSIBLE switches
// them to line mode.
func (a *app) promptOptions() prompt.Options {
	return prompt.Options{
		In:         a.stdin,
		Out:        a.stdout,
		Accessible: os.Getenv("ACCESSIBLE") != "",
	}
}

// saveConfig validates both paths and writes them as absolute paths. Optional
// keys of an existing configuration are kept.
func (a *app) saveConfig(paths prompt.RepoPaths) error {
	for _, p := range []struct {
		label string
		path  string
	}{
		{"Backend", paths.Backend},
		{"Frontend", paths.Frontend},
	} {
		if err := validate.RepoPath(p.path); err != nil {
			switch {
			case stderrors.Is(err, errors.ErrInvalidPath):
				fmt.Fprintf(a.stderr, "%s repository path does not exist: %s\n", p.label, p.path)
			case stderrors.Is(err, errors.ErrNotGitRepo):
				fmt.Fprintf(a.stderr, "%s repository path is not a git repository: %s\n", p.label, p.path)
			default:
				fmt.Fprintf(a.stderr, "%s repository path is invalid: %v\n", p.label, err)
			}
			return &exitError{code: 1}
		}
	}

	cfg := &config.Config{}
	if existing, err := config.Load(a.configPath()); err == nil {
		cfg.Remote = existing.Remote
		cfg.Classifier = existing.Classifier
	}

	var err error
	if cfg.BackendRepoPath, err = validate.AbsRepoPath(paths.Backend); err != nil {
		return err
	}
	if cfg.FrontendRepoPath, err = validate.AbsRepoPath(paths.Frontend); err != nil {
		return err
	}

	if err := config.Save(a.configPath(), cfg); err != nil {
		return err
	}

	a.log.Debug().Str("config", a.configPath()).Msg("configuration written")
	fmt.Fprintf(a.stdout, "Configuration saved: backend=%s, frontend=%s\n", cfg.BackendRepoPath, cfg.FrontendRepoPath)
	return nil
}
