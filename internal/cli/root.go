package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketdesk/internal/ai"
	"marketdesk/internal/analysis/indicators"
	"marketdesk/internal/analysis/scoring"
	"marketdesk/internal/analysis/sentiment"
	"marketdesk/internal/config"
	"marketdesk/internal/flow"
	"marketdesk/internal/logging"
	"marketdesk/internal/market"
	"marketdesk/internal/notify"
	"marketdesk/internal/portfolio"
	"marketdesk/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     store.DataStore
	Market    *market.Generator
	Session   *market.Session
	Sentiment *sentiment.Engine
	Scorer    *scoring.SignalScorer
	Ensemble  *ai.Ensemble
	Flow      *flow.Generator
	Tracker   *portfolio.Tracker
	Notifier  notify.Notifier
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	universe := market.DefaultUniverse()
	if cfg.Simulation.UniverseFile != "" {
		loaded, err := market.LoadUniverse(cfg.Simulation.UniverseFile)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to load universe file, using built-in universe")
		} else {
			universe = loaded
		}
	}
	app.Market = market.NewGenerator(cfg.Simulation.Seed, universe)

	sessionOpen, _ := config.ParseClock(cfg.Simulation.SessionOpen)
	sessionClose, _ := config.ParseClock(cfg.Simulation.SessionClose)
	app.Session = market.NewSession(sessionOpen, sessionClose)

	app.Sentiment = sentiment.NewEngine(cfg.Simulation.Seed)
	engine := indicators.NewDefaultEngine(cfg.Analysis.Workers)
	app.Scorer = scoring.NewSignalScorerWithWeights(engine, scoring.WeightsFromMap(cfg.Analysis.Weights))
	app.Ensemble = ai.NewEnsemble(cfg.AI, logger)
	app.Flow = flow.NewGenerator(cfg.Simulation.Seed)
	app.Tracker = portfolio.NewTracker(cfg.Portfolio.InitialCash, logger)

	dbPath := filepath.Join(config.DefaultConfigDir(), "marketdesk.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
	}

	app.Notifier = notify.NewMultiNotifier(
		notify.NewTerminalNotifier(os.Stdout, cfg.UI.ColorEnabled, true),
		notify.NewLogNotifier(logger),
	)

	rootCmd := &cobra.Command{
		Use:   "marketdesk",
		Short: "Market Desk - simulated trading desk CLI",
		Long: `Market Desk is a self-contained trading desk simulator.

All market data is generated locally from a seeded pseudo-random model:
price history, live ticks, sentiment, and options flow. On top of the
simulation it runs technical analysis, a heuristic model ensemble,
price alerts, a paper portfolio, and scheduled daily reports.

The same seed always produces the same market.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/marketdesk)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addMarketCommands(rootCmd, app)
	addAnalysisCommands(rootCmd, app)
	addPortfolioCommands(rootCmd, app)
	addFlowCommands(rootCmd, app)
	addAlertCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addWatchCommands(rootCmd, app)
	addWatchlistCommands(rootCmd, app)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("Market Desk v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			NewOutput(cmd).Println(config.DefaultConfigDir())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Simulation")
	output.Printf("  Seed:             %d\n", cfg.Simulation.Seed)
	output.Printf("  Refresh Interval: %s\n", cfg.Simulation.RefreshInterval)
	output.Printf("  History Days:     %d\n", cfg.Simulation.HistoryDays)
	output.Printf("  Session:          %s to %s\n", cfg.Simulation.SessionOpen, cfg.Simulation.SessionClose)
	output.Println()

	output.Bold("AI Ensemble")
	output.Printf("  Narrative:        %v\n", cfg.AI.Narrative)
	output.Printf("  OpenAI Model:     %s\n", cfg.AI.OpenAIModel)
	output.Printf("  Min Confidence:   %.0f\n", cfg.AI.MinConfidence)
	output.Println()

	output.Bold("Portfolio")
	output.Printf("  Initial Cash:     %.2f\n", cfg.Portfolio.InitialCash)
	output.Println()

	output.Bold("Reports")
	output.Printf("  Daily At:         %s\n", cfg.Reports.DailyAt)
	output.Printf("  Top Movers:       %d\n", cfg.Reports.TopN)
}

// restorePortfolio rehydrates the tracker from the most recent snapshot.
func (app *App) restorePortfolio(cmd *cobra.Command) {
	if app.Store == nil {
		return
	}
	snaps, err := app.Store.GetSnapshots(cmd.Context(), time.Time{}, time.Now())
	if err != nil || len(snaps) == 0 {
		return
	}
	app.Tracker.Restore(&snaps[len(snaps)-1])
}

// persistPortfolio saves the tracker state so the next invocation sees it.
func (app *App) persistPortfolio(cmd *cobra.Command) {
	if app.Store == nil {
		return
	}
	snap := app.Tracker.Snapshot(time.Now())
	if err := app.Store.SaveSnapshot(cmd.Context(), snap); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to persist portfolio snapshot")
	}
}
