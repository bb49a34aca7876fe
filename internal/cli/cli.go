package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/walker-events/internal/bot"
	"github.com/pfrederiksen/walker-events/internal/config"
	"github.com/pfrederiksen/walker-events/internal/event"
	"github.com/pfrederiksen/walker-events/internal/line"
	"github.com/pfrederiksen/walker-events/internal/logger"
	"github.com/pfrederiksen/walker-events/internal/scraper"
	"github.com/pfrederiksen/walker-events/internal/server"
	"github.com/pfrederiksen/walker-events/internal/session"
	"github.com/spf13/cobra"
)

// Process exit codes used by Execute.
const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagEnvFile       string
	flagScraperConfig string
	flagPort          int
	flagVerbose       bool

	flagLat    float64
	flagLng    float64
	flagDate   string
	flagFormat string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walker-events",
		Short: "LINE bot that finds nearby events on walkerplus.com",
		Long: `A LINE webhook bot for event search.
Users pick a date, share their location, and get a carousel of nearby events
scraped from walkerplus.com. Running without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&flagScraperConfig, "scraper-config", "", "YAML file with scraper overrides")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	cmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (overrides PORT)")

	cmd.AddCommand(newServeCmd(), newScrapeCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the LINE webhook server",
		RunE:  runServe,
	}
	cmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (overrides PORT)")
	return cmd
}

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Search the event listing once and print the results",
		RunE:  runScrape,
	}
	cmd.Flags().Float64Var(&flagLat, "lat", 0, "Latitude (required)")
	cmd.Flags().Float64Var(&flagLng, "lng", 0, "Longitude (required)")
	cmd.Flags().StringVar(&flagDate, "date", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")

	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lng")
	return cmd
}

// runServe wires configuration, session store, scraper and LINE client into the server
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Options{EnvFile: flagEnvFile, ScraperFile: flagScraperConfig})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagPort != 0 {
		cfg.Port = flagPort
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stdout))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := line.NewClient(cfg.AccessToken)
	if err != nil {
		return fmt.Errorf("initializing LINE client: %w", err)
	}

	sc := scraper.NewWithOptions(scraperOptions(cfg.Scraper))
	b := bot.New(store, sc, client)
	srv := server.New(cfg.ChannelSecret, b)

	return srv.ListenAndServe(ctx, cfg.Addr())
}

// openSessionStore picks Redis, then a session directory, then memory
func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	if cfg.RedisURL == "" {
		if cfg.SessionDir != "" {
			store, err := session.NewFileStore(cfg.SessionDir)
			if err != nil {
				return nil, nil, fmt.Errorf("initializing session store: %w", err)
			}
			logger.Info("Using file session store", logger.Fields{"path": store.Path()})
			return store, func() {}, nil
		}
		logger.Info("Using in-memory session store", nil)
		return session.NewMemoryStore(), func() {}, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := session.DialRedis(dialCtx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing session store: %w", err)
	}
	logger.Info("Using Redis session store", nil)

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing Redis session store failed", logger.Fields{"error": err.Error()})
		}
	}, nil
}

func scraperOptions(sc config.ScraperConfig) scraper.Options {
	return scraper.Options{
		BaseURL:    sc.BaseURL,
		Origin:     sc.SiteOrigin,
		UserAgent:  sc.UserAgent,
		RadiusKM:   sc.RadiusKM,
		MaxResults: sc.MaxResults,
		Timeout:    sc.Timeout,
	}
}

// runScrape performs one search and writes the records
func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	date := flagDate
	if date == "" {
		date = event.ChoiceToday.DateString(time.Now())
	}
	if !event.ValidDate(date) {
		return fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", date)
	}

	var sc config.ScraperConfig
	if flagScraperConfig != "" {
		loaded, err := config.LoadScraperFile(flagScraperConfig)
		if err != nil {
			return err
		}
		sc = *loaded
	}

	level := logger.LevelWarn
	if flagVerbose {
		level = logger.LevelDebug
	}
	opts := scraperOptions(sc)
	opts.Logger = logger.New(level, cmd.ErrOrStderr())

	if flagVerbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Searching %.4f, %.4f on %s\n", flagLat, flagLng, date)
	}

	records := scraper.NewWithOptions(opts).Scrape(cmd.Context(), flagLat, flagLng, date)

	result := &OutputResult{
		SearchedAt: time.Now().UTC(),
		Date:       date,
		Lat:        flagLat,
		Lng:        flagLng,
		Events:     records,
		EventCount: len(records),
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
