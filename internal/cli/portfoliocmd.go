package cli

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/internal/models"
	"marketdesk/pkg/utils"
)

func addPortfolioCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newPortfolioCmd(app))
}

func parseQuantity(arg string) (int64, error) {
	qty, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", arg)
	}
	return qty, nil
}

func newBuyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "buy SYMBOL QUANTITY",
		Short: "Buy at the current simulated price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}

			sym, err := app.Market.Lookup(args[0])
			if err != nil {
				return err
			}
			quote, err := app.Market.Quote(args[0], time.Now())
			if err != nil {
				return err
			}

			app.restorePortfolio(cmd)
			if err := app.Tracker.Buy(sym.Ticker, sym.Sector, qty, quote.LTP); err != nil {
				return err
			}
			app.persistPortfolio(cmd)

			if output.IsJSON() {
				pos, _ := app.Tracker.Position(sym.Ticker)
				return output.JSON(pos)
			}
			output.Success("Bought %s %s @ %.2f (cost %s, cash %s)",
				utils.FormatQuantity(qty), sym.Ticker, quote.LTP,
				utils.FormatCurrency(float64(qty)*quote.LTP),
				utils.FormatCurrency(app.Tracker.Cash()))
			return nil
		},
	}
}

func newSellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sell SYMBOL QUANTITY",
		Short: "Sell at the current simulated price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}

			quote, err := app.Market.Quote(args[0], time.Now())
			if err != nil {
				return err
			}

			app.restorePortfolio(cmd)
			if err := app.Tracker.Sell(args[0], qty, quote.LTP); err != nil {
				return err
			}
			app.persistPortfolio(cmd)

			if output.IsJSON() {
				return output.JSON(app.Tracker.Snapshot(time.Now()))
			}
			output.Success("Sold %s %s @ %.2f (proceeds %s, cash %s)",
				utils.FormatQuantity(qty), args[0], quote.LTP,
				utils.FormatCurrency(float64(qty)*quote.LTP),
				utils.FormatCurrency(app.Tracker.Cash()))
			return nil
		},
	}
}

func newPortfolioCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show the paper portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			now := time.Now()

			app.restorePortfolio(cmd)

			// Mark positions to current quotes before summarizing.
			snap := app.Tracker.Snapshot(now)
			if len(snap.Positions) > 0 {
				prices := make(map[string]float64, len(snap.Positions))
				for _, pos := range snap.Positions {
					if quote, err := app.Market.Quote(pos.Symbol, now); err == nil {
						prices[pos.Symbol] = quote.LTP
					}
				}
				app.Tracker.Mark(prices)
				snap = app.Tracker.Snapshot(now)
			}

			if output.IsJSON() {
				return output.JSON(snap)
			}

			printSnapshot(output, snap)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Show past portfolio snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			snaps, err := app.Store.GetSnapshots(cmd.Context(), time.Time{}, time.Now())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snaps)
			}

			table := NewTable(output, "TIME", "EQUITY", "CASH", "UNREALIZED", "REALIZED")
			for _, s := range snaps {
				table.AddRow(
					s.Timestamp.Format("2006-01-02 15:04"),
					utils.FormatCurrency(s.TotalEquity),
					utils.FormatCurrency(s.Cash),
					output.FormatPnL(s.UnrealizedPnL),
					output.FormatPnL(s.RealizedPnL),
				)
			}
			table.Render()
			return nil
		},
	})

	return cmd
}

func printSnapshot(output *Output, snap *models.PortfolioSnapshot) {
	output.Bold("Portfolio")
	output.Printf("Equity:       %s\n", utils.FormatCurrency(snap.TotalEquity))
	output.Printf("Cash:         %s\n", utils.FormatCurrency(snap.Cash))
	output.Printf("Market Value: %s\n", utils.FormatCurrency(snap.MarketValue))
	output.Printf("Unrealized:   %s\n", output.FormatPnL(snap.UnrealizedPnL))
	output.Printf("Realized:     %s\n", output.FormatPnL(snap.RealizedPnL))
	output.Println()

	if len(snap.Positions) == 0 {
		output.Dim("No open positions")
		return
	}

	positions := make([]models.Position, len(snap.Positions))
	copy(positions, snap.Positions)
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	table := NewTable(output, "SYMBOL", "QTY", "AVG", "LAST", "VALUE", "P&L")
	for _, pos := range positions {
		table.AddRow(
			pos.Symbol,
			utils.FormatQuantity(pos.Quantity),
			fmt.Sprintf("%.2f", pos.AveragePrice),
			fmt.Sprintf("%.2f", pos.LastPrice),
			utils.FormatCurrency(pos.LastPrice*float64(pos.Quantity)),
			output.FormatPnL(pos.UnrealizedPnL),
		)
	}
	table.Render()

	if len(snap.SectorExposure) > 0 {
		output.Println()
		output.Bold("Sector exposure")
		sectors := make([]models.Sector, 0, len(snap.SectorExposure))
		for sector := range snap.SectorExposure {
			sectors = append(sectors, sector)
		}
		sort.Slice(sectors, func(i, j int) bool { return sectors[i] < sectors[j] })
		for _, sector := range sectors {
			output.Printf("  %-12s %5.1f%%\n", string(sector), snap.SectorExposure[sector]*100)
		}
	}
}
