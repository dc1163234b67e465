package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/moviecat/config"
	"github.com/s0up4200/moviecat/store"
	"github.com/s0up4200/moviecat/tmdb"
)

var (
	cfgFile     string
	cfg         *config.Config
	logger      zerolog.Logger
	tmdbClient  *tmdb.Client
	movieStore  *store.BoltStore
	memoryCache bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moviecat",
	Short: "Browse TMDB movie categories from the terminal",
	Long: `moviecat pages through TMDB's popular, top rated, highest grossing and
newest movies, keeping the leading results of every category in an offline
cache so something is shown even when the network is down.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&memoryCache, "no-cache", false, "keep the offline cache in memory only")

	// Add subcommands
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration, client and cache store
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	if memoryCache {
		cfg.Cache.Path = ""
	}

	tmdbClient, err = newTMDBClient(cfg.TMDB, logger)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	movieStore, err = store.Open(cfg.Cache.Path, logger, store.WithLimit(cfg.Cache.Limit))
	if err != nil {
		return fmt.Errorf("failed to open offline cache: %w", err)
	}

	logger.Debug().
		Str("cache", cfg.Cache.Path).
		Str("language", cfg.TMDB.Language).
		Msg("Initialized")

	return nil
}

func closeApp(cmd *cobra.Command, args []string) error {
	if movieStore == nil {
		return nil
	}
	err := movieStore.Close()
	movieStore = nil
	return err
}

func newTMDBClient(c config.TMDBConfig, logger zerolog.Logger) (*tmdb.Client, error) {
	opts := []tmdb.Option{
		tmdb.WithTimeout(c.Timeout),
		tmdb.WithLanguage(c.Language),
		tmdb.WithRateLimit(c.RequestsPerSecond, c.Burst),
		tmdb.WithUserAgent("moviecat/" + appVersion),
	}
	if c.AccessToken != "" {
		opts = append(opts, tmdb.WithAccessToken(c.AccessToken))
	}
	return tmdb.NewClient(c.URL, c.APIKey, logger, opts...)
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

	fd := os.Stderr.Fd()
	isTerminal := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
