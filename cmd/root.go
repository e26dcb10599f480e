package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ca-srg/goodreader/internal/config"
	"github.com/ca-srg/goodreader/internal/goodreads"
	"github.com/ca-srg/goodreader/internal/logger"
	"github.com/ca-srg/goodreader/internal/metrics"
	"github.com/ca-srg/goodreader/internal/observability"
	"github.com/ca-srg/goodreader/internal/types"
)

// Exit statuses returned by ExitCode.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitInvalidArgument = 2
	ExitNetwork         = 3
	ExitHTTP            = 4
	ExitParse           = 5
)

var (
	configPath    string
	flagTimeout   time.Duration
	flagUserAgent string
	flagBaseURL   string
	outputJSON    bool
	noInteractive bool
	verbose       bool
)

// Seams replaced by tests.
var (
	loadAppConfig = config.Load
	newClient     = func(cfg *config.Config) (*goodreads.Client, error) { return goodreads.New(cfg) }
)

// session is what the root command prepares for the subcommand that runs.
type session struct {
	cfg         *config.Config
	client      *goodreads.Client
	shutdown    observability.Shutdown
	interactive bool
}

var current *session

var rootCmd = &cobra.Command{
	Use:   "goodreader",
	Short: "Look up books, authors, genres and ISBNs on Goodreads",
	Long: `goodreader queries goodreads.com from the terminal.

Examples:
  goodreader search "the left hand of darkness"
  goodreader search dune --quick --limit 5
  goodreader author "Ursula K. Le Guin"
  goodreader isbn 978-0-441-01359-3
  goodreader genres --filter fiction
  goodreader genre "science fiction" --limit 10
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupSession,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML config file (default $XDG_CONFIG_HOME/goodreader/config.yaml)")
	flags.DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout, e.g. 10s (overrides GOODREADER_TIMEOUT)")
	flags.StringVar(&flagUserAgent, "user-agent", "", "User-Agent header sent to the site")
	flags.StringVar(&flagBaseURL, "base-url", "", "Site root, e.g. https://www.goodreads.com")
	flags.BoolVar(&outputJSON, "json", false, "Print results as JSON")
	flags.BoolVar(&noInteractive, "no-interactive", false, "Never prompt; print every result at once")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(authorCmd)
	rootCmd.AddCommand(isbnCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(genreCmd)
}

// Execute runs the CLI. The context is cancelled on SIGINT.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx)
}

func execute(ctx context.Context) error {
	ctx = logger.ContextWithID(ctx, logger.NewRequestID())
	current = nil

	executed, err := rootCmd.ExecuteContextC(ctx)
	if err != nil && executed == rootCmd && goodreads.KindOf(err) == "" {
		// unknown subcommand
		err = usageError("%v", err)
	}
	finishSession(ctx, executed, err)
	return err
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch goodreads.KindOf(err) {
	case types.ErrorKindEmptyResult:
		return ExitOK
	case types.ErrorKindInvalidArgument:
		return ExitInvalidArgument
	case types.ErrorKindNetwork:
		return ExitNetwork
	case types.ErrorKindHTTP:
		return ExitHTTP
	case types.ErrorKindParse:
		return ExitParse
	}
	return ExitFailure
}

func setupSession(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return usageError("failed to load configuration: %v", err)
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	if err := logger.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, verbose); err != nil {
		return usageError("%v", err)
	}

	ctx := cmd.Context()
	shutdown, err := observability.Init(ctx, cfg)
	if err != nil {
		logger.For(ctx).WithError(err).Warn("telemetry disabled")
	}

	client, err := newClient(cfg)
	if err != nil {
		_ = shutdown(ctx)
		return err
	}

	current = &session{
		cfg:         cfg,
		client:      client,
		shutdown:    shutdown,
		interactive: !noInteractive && !outputJSON && stdinIsTerminal() && stdoutIsTerminal(),
	}
	logger.For(ctx).WithField("command", cmd.Name()).WithField("base_url", cfg.BaseURL).Debug("session ready")
	return nil
}

// applyFlags lays explicitly set flags over the loaded config.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("timeout") {
		if flagTimeout <= 0 {
			return usageError("--timeout must be positive, got %s", flagTimeout)
		}
		cfg.Timeout = flagTimeout
	}
	if flags.Changed("user-agent") {
		if strings.TrimSpace(flagUserAgent) == "" {
			return usageError("--user-agent must not be empty")
		}
		cfg.UserAgent = flagUserAgent
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = strings.TrimRight(strings.TrimSpace(flagBaseURL), "/")
	}
	return nil
}

func finishSession(ctx context.Context, executed *cobra.Command, err error) {
	if current == nil {
		return
	}

	name := "unknown"
	if executed != nil {
		name = executed.Name()
	}
	metrics.RecordCommand(ctx, name, goodreads.Outcome(err))

	if err := metrics.WriteTextfile(current.cfg.MetricsFile); err != nil {
		logger.For(ctx).WithError(err).Warn("failed to write metrics file")
	}
	if current.shutdown != nil {
		if err := current.shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.For(ctx).WithError(err).Debug("telemetry shutdown failed")
		}
	}
}

func usageError(format string, args ...interface{}) error {
	return &goodreads.LookupError{
		Kind:    types.ErrorKindInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

// keywordArgs requires at least one positional argument; words are joined with spaces.
func keywordArgs(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || strings.TrimSpace(strings.Join(args, " ")) == "" {
			return usageError("%s requires a %s argument", cmd.Name(), name)
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError("%s takes no arguments, got %q", cmd.Name(), strings.Join(args, " "))
	}
	return nil
}
