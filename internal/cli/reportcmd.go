package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/internal/config"
	"marketdesk/internal/models"
	"marketdesk/internal/reports"
	"marketdesk/pkg/utils"
)

func addReportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily market reports",
	}

	cmd.AddCommand(newReportRunCmd(app))
	cmd.AddCommand(newReportScheduleCmd(app))
	cmd.AddCommand(newReportShowCmd(app))
	cmd.AddCommand(newReportListCmd(app))

	rootCmd.AddCommand(cmd)
}

// reportGenerator wires a report generator from the app's collaborators.
func (app *App) reportGenerator() *reports.Generator {
	return reports.NewGenerator(reports.Deps{
		Market:    app.Market,
		Sentiment: app.Sentiment,
		Ensemble:  app.Ensemble,
		Flow:      app.Flow,
		Tracker:   app.Tracker,
		Store:     app.Store,
		Notifier:  app.Notifier,
	}, app.Config.Reports.TopN, app.Logger)
}

func newReportRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate a report for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			app.restorePortfolio(cmd)
			generator := app.reportGenerator()
			report, err := generator.Generate(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			if app.Store != nil {
				if err := app.Store.SaveReport(cmd.Context(), report); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to save report")
				}
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			printReport(output, report, app.Config.UI.TimeFormat)
			return nil
		},
	}
}

func newReportScheduleCmd(app *App) *cobra.Command {
	var at string
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the report scheduler in the foreground",
		Long: `Run the report scheduler until interrupted. By default it fires daily
at the configured reports.daily_at time; --every switches to a fixed
interval instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.restorePortfolio(cmd)
			generator := app.reportGenerator()

			var scheduler *reports.Scheduler
			if every > 0 {
				scheduler = reports.NewIntervalScheduler("report", every, generator.Run, app.Logger)
				output.Info("Generating a report every %s", every)
			} else {
				if at == "" {
					at = app.Config.Reports.DailyAt
				}
				clock, err := config.ParseClock(at)
				if err != nil {
					return fmt.Errorf("invalid schedule time %q: %w", at, err)
				}
				scheduler = reports.NewDailyScheduler("daily-report", clock, generator.Run, app.Logger)
				output.Info("Generating a daily report at %02d:%02d", clock.Hour, clock.Minute)
			}

			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			output.Dim("Scheduler running, Ctrl-C to stop")

			<-ctx.Done()
			scheduler.Stop()

			runs, failures := scheduler.Runs()
			output.Println()
			output.Dim("Runs: %d completed, %d failed", runs, failures)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "daily run time as HH:MM (default from config)")
	cmd.Flags().DurationVar(&every, "every", 0, "run at a fixed interval instead of daily")
	return cmd
}

func newReportShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [DATE]",
		Short: "Show a saved report (date as 2006-01-02, default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			date := time.Now()
			if len(args) == 1 {
				parsed, err := time.Parse("2006-01-02", args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q, want 2006-01-02", args[0])
				}
				date = parsed
			}

			report, err := app.Store.GetReport(cmd.Context(), date)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			printReport(output, report, app.Config.UI.TimeFormat)
			return nil
		},
	}
}

func newReportListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			list, err := app.Store.ListReports(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(list)
			}

			table := NewTable(output, "DATE", "TITLE", "MOVERS", "SIGNALS", "ALERTS")
			for _, r := range list {
				table.AddRow(
					r.Date.Format("2006-01-02"),
					r.Title,
					fmt.Sprintf("%d", len(r.Movers)),
					fmt.Sprintf("%d", len(r.Signals)),
					fmt.Sprintf("%d", len(r.Alerts)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum reports to list")
	return cmd
}

func printReport(output *Output, report *models.Report, timeFormat string) {
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}

	output.Bold("%s", report.Title)
	output.Dim("Generated %s", report.GeneratedAt.Format("2006-01-02 "+timeFormat))
	output.Println()
	output.Println(report.Overview)
	output.Println()

	if len(report.Movers) > 0 {
		output.Bold("Top movers")
		table := NewTable(output, "SYMBOL", "CLOSE", "CHANGE", "CHANGE%", "VOLUME")
		for _, m := range report.Movers {
			table.AddRow(
				m.Symbol,
				fmt.Sprintf("%.2f", m.Close),
				output.FormatPnL(m.Change),
				output.FormatPercent(m.ChangePercent),
				utils.FormatCompact(float64(m.Volume)),
			)
		}
		table.Render()
		output.Println()
	}

	if len(report.Signals) > 0 {
		output.Bold("Signals")
		table := NewTable(output, "SYMBOL", "SIGNAL", "CONFIDENCE", "SCORE")
		for _, s := range report.Signals {
			table.AddRow(
				s.Symbol,
				output.Signal(s.Signal),
				fmt.Sprintf("%.1f%%", s.Confidence),
				fmt.Sprintf("%+.1f", s.Score),
			)
		}
		table.Render()
		output.Println()
	}

	if len(report.Flow) > 0 {
		output.Bold("Options flow")
		table := NewTable(output, "SYMBOL", "PRINTS", "CALL PREM", "PUT PREM", "P/C", "SENTIMENT")
		for _, f := range report.Flow {
			table.AddRow(
				f.Symbol,
				fmt.Sprintf("%d", f.Events),
				utils.FormatCompact(f.CallPremium),
				utils.FormatCompact(f.PutPremium),
				fmt.Sprintf("%.2f", f.PutCallRatio),
				output.ColoredString(output.PnLColor(f.NetSentiment), fmt.Sprintf("%+.2f", f.NetSentiment)),
			)
		}
		table.Render()
		output.Println()
	}

	if len(report.Alerts) > 0 {
		output.Bold("Triggered alerts")
		for _, a := range report.Alerts {
			when := ""
			if a.TriggeredAt != nil {
				when = a.TriggeredAt.Format(timeFormat)
			}
			output.Printf("  %s %s %.2f %s\n", a.Symbol, a.Condition, a.Price, when)
		}
		output.Println()
	}

	if report.Portfolio != nil {
		output.Bold("Portfolio")
		output.Printf("  Equity %s, cash %s, unrealized %s, realized %s\n",
			utils.FormatCurrency(report.Portfolio.TotalEquity),
			utils.FormatCurrency(report.Portfolio.Cash),
			output.FormatPnL(report.Portfolio.UnrealizedPnL),
			output.FormatPnL(report.Portfolio.RealizedPnL),
		)
	}
}
