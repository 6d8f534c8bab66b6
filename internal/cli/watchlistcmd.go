package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/pkg/utils"
)

func addWatchlistCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Watchlist management",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add SYMBOL...",
		Short: "Add symbols to the watchlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			for _, ticker := range args {
				if _, err := app.Market.Lookup(ticker); err != nil {
					return err
				}
				if err := app.Store.AddToWatchlist(cmd.Context(), ticker); err != nil {
					return err
				}
			}
			output.Success("Added %d symbol(s) to watchlist", len(args))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove SYMBOL...",
		Aliases: []string{"rm"},
		Short:   "Remove symbols from the watchlist",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			for _, ticker := range args {
				if err := app.Store.RemoveFromWatchlist(cmd.Context(), ticker); err != nil {
					return err
				}
			}
			output.Success("Removed %d symbol(s) from watchlist", len(args))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the watchlist with current quotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			watchlist, err := app.Store.GetWatchlist(cmd.Context())
			if err != nil {
				return err
			}
			if len(watchlist) == 0 {
				output.Dim("Watchlist is empty")
				return nil
			}

			table := NewTable(output, "SYMBOL", "LTP", "CHANGE%", "VOLUME")
			type row struct {
				Symbol        string  `json:"symbol"`
				LTP           float64 `json:"ltp"`
				ChangePercent float64 `json:"change_percent"`
				Volume        int64   `json:"volume"`
			}
			var rows []row
			for _, ticker := range watchlist {
				quote, err := app.Market.Quote(ticker, time.Now())
				if err != nil {
					// Stale entry from an old universe; show it without a quote.
					table.AddRow(ticker, "-", "-", "-")
					continue
				}
				rows = append(rows, row{ticker, quote.LTP, quote.ChangePercent, quote.Volume})
				table.AddRow(
					ticker,
					fmt.Sprintf("%.2f", quote.LTP),
					output.FormatPercent(quote.ChangePercent),
					utils.FormatCompact(float64(quote.Volume)),
				)
			}

			if output.IsJSON() {
				return output.JSON(rows)
			}
			table.Render()
			return nil
		},
	})

	rootCmd.AddCommand(cmd)
}
