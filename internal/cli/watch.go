package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/internal/config"
	"marketdesk/internal/models"
	"marketdesk/internal/reports"
	"marketdesk/internal/stream"
	"marketdesk/pkg/utils"
)

func addWatchCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newWatchCmd(app))
}

func newWatchCmd(app *App) *cobra.Command {
	var interval time.Duration
	var ignoreSession bool

	cmd := &cobra.Command{
		Use:   "watch [SYMBOL...]",
		Short: "Stream live simulated ticks",
		Long: `Stream live simulated ticks for the given symbols, or the whole
universe when none are given. Active price alerts are monitored against
the tape, and the daily report fires on schedule while watching.

Press Ctrl-C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			for _, ticker := range args {
				if _, err := app.Market.Lookup(ticker); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.restorePortfolio(cmd)

			hub := stream.NewHub()
			hub.Start(ctx)
			defer hub.Stop()

			session := app.Session
			if ignoreSession {
				session = nil
			}
			if interval <= 0 {
				interval = app.Config.Simulation.RefreshInterval
			}
			refresher := stream.NewRefresher(app.Market, hub, session, interval, app.Logger)
			if len(args) > 0 {
				refresher.SetSymbols(args)
			}

			generator := app.reportGenerator()

			monitor := stream.NewAlertMonitor(app.Store, app.Notifier)
			if err := monitor.LoadAlerts(ctx); err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to load alerts")
			}
			monitor.SetOnTrigger(generator.RecordTriggeredAlert)
			hub.RegisterConsumer(monitor)

			if app.Config.Reports.DailyAt != "" {
				if at, err := config.ParseClock(app.Config.Reports.DailyAt); err == nil {
					scheduler := reports.NewDailyScheduler("daily-report", at, generator.Run, app.Logger)
					if err := scheduler.Start(ctx); err == nil {
						defer scheduler.Stop()
					}
				}
			}

			hub.RegisterConsumer(stream.NewConsumerFunc(args, func(tick models.Tick) {
				printTick(output, tick, app.Config.UI.TimeFormat)
			}))

			if pending := monitor.AlertCount(); pending > 0 {
				output.Info("Watching %d alert(s)", pending)
			}
			output.Dim("Streaming ticks, Ctrl-C to stop")

			refresher.Run(ctx)

			metrics := hub.Metrics()
			output.Println()
			output.Dim("Ticks: %d received, %d delivered, %d dropped",
				metrics.TicksReceived, metrics.TicksBroadcast, metrics.TicksDropped)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "tick interval (default from config)")
	cmd.Flags().BoolVar(&ignoreSession, "ignore-session", false, "stream even while the market is closed")
	return cmd
}

func printTick(output *Output, tick models.Tick, timeFormat string) {
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}

	change := tick.LTP - tick.Close
	changePct := 0.0
	if tick.Close != 0 {
		changePct = change / tick.Close * 100
	}

	output.Printf("%s  %-6s  %8.2f  %s  %8.2f x %-8.2f  %s\n",
		tick.Timestamp.Format(timeFormat),
		tick.Symbol,
		tick.LTP,
		output.FormatPercent(changePct),
		tick.BidPrice,
		tick.AskPrice,
		utils.FormatCompact(float64(tick.Volume)),
	)
}
