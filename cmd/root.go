// Package cmd provides CLI commands for gigit.
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jayteealao/gigit/internal/config"
	"github.com/jayteealao/gigit/internal/dispatch"
	"github.com/jayteealao/gigit/internal/errors"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/lock"
	"github.com/jayteealao/gigit/internal/report"
	"github.com/jayteealao/gigit/internal/state"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is the current version of gigit.
// Can be overridden at build time: go build -ldflags "-X github.com/jayteealao/gigit/cmd.Version=v1.0.0"
var Version = "v0.2.0"

const helpText = `
Usage: gigit [flags] <command> [args]

Commands:
  init <backend_repo_path> <frontend_repo_path>    Initialize repository paths for backend and frontend.
  init -i                                          Prompt for the repository paths.
  front <git_command>                              Run a git command in the frontend repository.
  back <git_command>                               Run a git command in the backend repository.
  branch <branch_name>                             Create a new branch and list all branches.
  checkout <branch_name>                           Checkout a branch, stashing local changes if needed.
  status                                           Show the status of both repositories.
  commit -m <message>                              Commit changes in both repositories with a message.
  push                                             Push changes in both repositories.
  delete-branch <branch_name>                      Delete a branch in both repositories.
  <git_command> [args]                             Run add, fetch, pull, log, diff, merge, rebase, stash,
                                                   tag, reset, restore, switch, remote, show, rm, mv,
                                                   cherry-pick, revert or clean in both repositories.
  history [-n N] [--json] [--failed] [--tree T]    Show the git commands gigit ran (--clear to reset).
  dashboard [--refresh 5s]                         Watch both repositories in a terminal dashboard.
  help                                             Show this help message.

Flags:
  --config <file>     Configuration file (default gigit_config.json)
  --data-dir <dir>    Lock and history directory (default .gigit next to the config file)
  -v, --verbose       Log every git invocation
  --raw               Print raw git output under commit and push results
  --no-color          Disable coloured banners
  --no-history        Do not record commands in the history

Examples:
  gigit init ./backend ./frontend
  gigit front add .
  gigit back status
  gigit branch feature1
  gigit checkout feature1
  gigit status
  gigit commit -m "Add new feature"
  gigit push
  gigit delete-branch feature1
  gigit help
`

// exitError ends a command with a specific exit code. Its message, if any,
// has already been printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app carries the I/O streams and settings of one gigit run.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	argv   []string

	v   *viper.Viper
	log zerolog.Logger

	cfgFile   string
	dataDir   string
	verbose   bool
	raw       bool
	noColor   bool
	noHistory bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		v:      viper.New(),
		log:    zerolog.Nop(),
	}
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gigit",
		Short: "Run git commands in a backend and a frontend repository at once",
		Long: `gigit mirrors git commands across two working trees, Backend and Frontend,
and prints one labelled report per tree.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.initConfig()
			return nil
		},
		RunE: a.runRoot,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./"+config.DefaultFile+")")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default is "+config.DefaultDataDir+" next to the config file)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&a.raw, "raw", false, "print raw git output under commit and push results")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	root.PersistentFlags().BoolVar(&a.noHistory, "no-history", false, "do not record commands in the history")

	for _, name := range []string{"config", "data-dir", "verbose", "raw", "no-color", "no-history"} {
		a.v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}

	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c.HasParent() {
			defaultHelp(c, args)
			return
		}
		fmt.Fprint(c.OutOrStdout(), helpText)
	})

	root.AddCommand(
		a.newInitCmd(),
		a.newTreeCmd("front", "Run a git command in the frontend repository"),
		a.newTreeCmd("back", "Run a git command in the backend repository"),
		a.newBranchCmd(),
		a.newCheckoutCmd(),
		a.newDeleteBranchCmd(),
		a.newHistoryCmd(),
		a.newDashboardCmd(),
	)
	for _, pc := range passthroughCommands {
		root.AddCommand(a.newPassthroughCmd(pc.verb, pc.short))
	}

	return root
}

// runRoot handles a bare invocation and tokens that are not commands.
func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stdout, helpText)
		return &exitError{code: 1}
	}
	fmt.Fprintf(a.stdout, "Unknown command: %s\n", args[0])
	fmt.Fprint(a.stdout, helpText)
	return nil
}

// Execute runs gigit with the process arguments and exits with its status.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, shutting down...\n", sig)
		cancel()
	}()

	os.Exit(RunContext(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// Run executes gigit; args[0] is the program name. It returns the exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), args, stdin, stdout, stderr)
}

// RunContext is Run with a context that cancels the running git command.
func RunContext(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp(stdin, stdout, stderr)
	root := a.newRootCmd()

	if len(args) > 0 {
		args = args[1:]
	}
	a.argv = args

	rest, err := peelGlobalFlags(root.PersistentFlags(), args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	root.SetArgs(rest)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if stderrors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// peelGlobalFlags consumes the global flags that precede the command, so the
// arguments of pass-through commands are forwarded to git untouched.
func peelGlobalFlags(persistent *pflag.FlagSet, args []string) ([]string, error) {
	fs := pflag.NewFlagSet("gigit", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.AddFlagSet(persistent)

	// handled by cobra
	help := fs.BoolP("help", "h", false, "")
	version := fs.Bool("version", false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	switch {
	case *help:
		return append([]string{"--help"}, rest...), nil
	case *version:
		return []string{"--version"}, nil
	}
	return rest, nil
}

// initConfig resolves settings from flags and GIGIT_* environment variables
// and sets up logging.
func (a *app) initConfig() {
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	level := zerolog.ErrorLevel
	if a.isVerbose() {
		level = zerolog.DebugLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{
		Out:        a.stderr,
		NoColor:    a.v.GetBool("no-color"),
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Logger()

	a.log.Debug().Str("config", a.configPath()).Str("data_dir", a.getDataDir()).Msg("settings resolved")
}

// configPath returns the configuration file, defaulting to ./gigit_config.json.
func (a *app) configPath() string {
	if p := a.v.GetString("config"); p != "" {
		return p
	}
	return config.DefaultFile
}

// getDataDir returns the data directory, defaulting to .gigit next to the
// config file.
func (a *app) getDataDir() string {
	if d := a.v.GetString("data-dir"); d != "" {
		return d
	}
	return config.DataDir(a.configPath())
}

// isVerbose returns true if verbose output is enabled.
func (a *app) isVerbose() bool {
	return a.v.GetBool("verbose")
}

func (a *app) presenter() *report.Presenter {
	return report.New(a.stdout, a.stderr, !a.v.GetBool("no-color"))
}

// initLockManager initializes and returns the lock manager.
func (a *app) initLockManager() (*lock.Manager, error) {
	manager, err := lock.NewManager(a.getDataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lock manager: %w", err)
	}
	return manager, nil
}

// initStore initializes and returns the history store.
func (a *app) initStore() (*state.Store, error) {
	if a.v.GetBool("no-history") {
		return nil, errors.ErrHistoryDisabled
	}
	store, err := state.New(a.getDataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return store, nil
}

// withDispatcher loads the configuration, takes the pair lock, opens the
// history and runs fn with a dispatcher for the configured trees.
func (a *app) withDispatcher(cmd *cobra.Command, fn func(ctx context.Context, d *dispatch.Dispatcher) error) error {
	ctx := cmd.Context()

	cfg, err := config.Load(a.configPath())
	if err != nil {
		return err
	}
	matcher, err := cfg.Matcher()
	if err != nil {
		return err
	}
	pair := cfg.Pair()

	locks, err := a.initLockManager()
	if err != nil {
		return err
	}
	l, err := locks.TryAcquire(lock.PairKey(pair))
	if err != nil {
		return err
	}
	defer l.Release()

	opts := dispatch.Options{
		PrintRaw: a.v.GetBool("raw"),
		Matcher:  matcher,
		Remote:   cfg.Remote,
		Logger:   &a.log,
	}

	if store, err := a.initStore(); err == nil {
		defer store.Close()
		if _, err := store.BeginSession(ctx, a.argv, pair); err != nil {
			a.log.Warn().Err(err).Msg("history unavailable")
		} else {
			a.log.Debug().Str("session", store.SessionID()).Msg("history session started")
			opts.Recorder = store
		}
	} else if !stderrors.Is(err, errors.ErrHistoryDisabled) {
		a.log.Warn().Err(err).Msg("history unavailable")
	}

	d := dispatch.New(git.NewExecRunner(), pair, a.presenter(), opts)
	return fn(ctx, d)
}
