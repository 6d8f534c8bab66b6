package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/internal/models"
	"marketdesk/pkg/utils"
)

func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatusCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newUniverseCmd(app))
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show simulated market session status",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			now := time.Now()
			status := app.Session.Status(now)

			if output.IsJSON() {
				output.JSON(map[string]interface{}{
					"status":    status,
					"next_open": app.Session.NextOpen(now),
				})
				return
			}

			output.Printf("Market: %s\n", output.MarketStatus(status))
			if status != models.MarketOpen {
				output.Dim("Next open: %s", app.Session.NextOpen(now).Format("Mon 15:04"))
			}
		},
	}
}

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL...",
		Short: "Show current quotes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var quotes []*models.Quote
			for _, ticker := range args {
				q, err := app.Market.Quote(ticker, time.Now())
				if err != nil {
					return fmt.Errorf("quote %s: %w", ticker, err)
				}
				quotes = append(quotes, q)
			}

			if output.IsJSON() {
				return output.JSON(quotes)
			}

			table := NewTable(output, "SYMBOL", "LTP", "CHANGE", "CHANGE%", "HIGH", "LOW", "VOLUME")
			for _, q := range quotes {
				table.AddRow(
					q.Symbol,
					fmt.Sprintf("%.2f", q.LTP),
					output.FormatPnL(q.Change),
					output.FormatPercent(q.ChangePercent),
					fmt.Sprintf("%.2f", q.High),
					fmt.Sprintf("%.2f", q.Low),
					utils.FormatCompact(float64(q.Volume)),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var timeframe string
	var count int
	var cached bool

	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Show simulated candle history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			now := time.Now()

			tf := models.Timeframe(timeframe)

			var candles []models.Candle
			var err error
			if cached && app.Store != nil {
				candles, err = app.Store.GetCandles(cmd.Context(), args[0], tf, time.Time{}, now)
				if err != nil {
					return err
				}
				if len(candles) > count {
					candles = candles[len(candles)-count:]
				}
				if freshness, err := app.Store.GetCandlesFreshness(cmd.Context(), args[0], tf); err == nil && !freshness.IsZero() {
					output.Dim("Cached as of %s", freshness.Format("2006-01-02 15:04"))
				}
			}

			// Fall through to the generator when the cache has nothing.
			if len(candles) == 0 {
				candles, err = app.Market.History(args[0], tf, count, now)
				if err != nil {
					return err
				}

				if app.Store != nil {
					if err := app.Store.SaveCandles(cmd.Context(), args[0], tf, candles); err != nil {
						app.Logger.Warn().Err(err).Msg("Failed to cache candles")
					} else {
						app.Store.SetLastSync("candles:"+args[0], time.Now())
					}
				}
			}

			if output.IsJSON() {
				return output.JSON(candles)
			}

			output.Bold("%s %s history (%d bars)", args[0], timeframe, len(candles))
			table := NewTable(output, "TIME", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
			for _, c := range candles {
				table.AddRow(
					c.Timestamp.Format("2006-01-02 15:04"),
					fmt.Sprintf("%.2f", c.Open),
					fmt.Sprintf("%.2f", c.High),
					fmt.Sprintf("%.2f", c.Low),
					fmt.Sprintf("%.2f", c.Close),
					utils.FormatCompact(float64(c.Volume)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1d", "candle timeframe (1m, 5m, 1h, 1d)")
	cmd.Flags().IntVarP(&count, "count", "n", 30, "number of candles")
	cmd.Flags().BoolVar(&cached, "cached", false, "read from the local cache instead of regenerating")
	return cmd
}

func newUniverseCmd(app *App) *cobra.Command {
	var sector string

	cmd := &cobra.Command{
		Use:   "universe",
		Short: "List the simulated symbol universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbols := app.Market.Symbols()
			if sector != "" {
				var filtered []models.Symbol
				for _, s := range symbols {
					if string(s.Sector) == sector {
						filtered = append(filtered, s)
					}
				}
				symbols = filtered
			}

			if output.IsJSON() {
				return output.JSON(symbols)
			}

			table := NewTable(output, "SYMBOL", "NAME", "SECTOR", "BASE", "AVG VOLUME")
			for _, s := range symbols {
				table.AddRow(
					s.Ticker,
					s.Name,
					string(s.Sector),
					fmt.Sprintf("%.2f", s.BasePrice),
					utils.FormatCompact(float64(s.AvgVolume)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&sector, "sector", "s", "", "filter by sector (TECH, FINANCE, ...)")
	return cmd
}
