package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/moviemanager/config"
	"github.com/s0up4200/moviemanager/filter"
	"github.com/s0up4200/moviemanager/library"
	"github.com/s0up4200/moviemanager/tmdb"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *tmdb.Client
	lib      *library.Library
	session  sessionFile
	registry *prometheus.Registry

	// Command flags
	dryRun bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moviemanager",
	Short: "Manage your TMDB watchlist and favorites from the command line",
	Long: `moviemanager is a CLI tool for The Movie Database (TMDB). It logs in to
your account, lists your watchlist and favorites, searches movies and adds or
removes them from your lists.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tmdb.Message(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "d", false, "show list changes without making them")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Override dry-run from command line if specified
	if cmd.Flags().Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}

	opts := []tmdb.Option{
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		tmdb.WithWebAuth(cfg.TMDB.WebAuthURL, cfg.TMDB.RedirectTo),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithRateLimit(cfg.TMDB.RateLimit, cfg.TMDB.RateBurst),
		tmdb.WithMarkAcceptance(tmdb.MarkAcceptance{
			Add:    cfg.Mark.AddCodes,
			Remove: cfg.Mark.RemoveCodes,
		}),
		tmdb.WithUserAgent("moviemanager/" + appVersion),
	}

	if cfg.TMDB.CircuitBreaker.Enabled {
		opts = append(opts, tmdb.WithCircuitBreaker(tmdb.BreakerSettings{
			MaxFailures: cfg.TMDB.CircuitBreaker.MaxFailures,
			OpenTimeout: cfg.TMDB.CircuitBreaker.OpenTimeout,
		}))
	}

	if cfg.Metrics.Textfile != "" {
		registry = prometheus.NewRegistry()
		metrics, err := tmdb.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, tmdb.WithMetrics(metrics))
	}

	client, err = tmdb.NewClient(cfg.TMDB.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	// Restore a previous login
	session = sessionFile{path: cfg.Session.File}
	creds, username, err := session.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring unreadable session file")
	} else if creds.HasSession() {
		client.Auth().Resume(creds)
		logger.Debug().Str("username", username).Int("account_id", creds.AccountID).Msg("Resumed session")
	}

	lib = library.New(client, logger)

	return nil
}

// shutdownApp drains pending completions and exports metrics
func shutdownApp(cmd *cobra.Command, args []string) error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("Pending completions did not finish")
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Debug().Str("file", cfg.Metrics.Textfile).Msg("Wrote metrics")
	}

	return nil
}

// skipInit replaces initializeApp for commands that need no configuration
func skipInit(cmd *cobra.Command, args []string) error {
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	fd := os.Stderr.Fd()
	isTerminal := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// requireSession fails when no login is stored
func requireSession() error {
	if !client.Credentials().HasSession() {
		return fmt.Errorf("not logged in, run 'moviemanager login' first: %w", tmdb.ErrNoSession)
	}
	return nil
}

// compileFilter resolves a named filter from config or compiles expression
// as is. An empty expression matches everything.
func compileFilter(expression string) (filter.Filter, error) {
	if expression == "" {
		return nil, nil
	}

	if named, ok := cfg.Filter[strings.ToLower(expression)]; ok {
		logger.Debug().Str("name", expression).Str("expression", named).Msg("Using named filter")
		expression = named
	}

	f, err := filter.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return f, nil
}
