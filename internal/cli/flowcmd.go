package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/internal/flow"
	"marketdesk/internal/models"
	"marketdesk/pkg/utils"
)

func addFlowCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newFlowCmd(app))
}

func newFlowCmd(app *App) *cobra.Command {
	var window time.Duration
	var unusualOnly bool
	var save bool
	var stored bool

	cmd := &cobra.Command{
		Use:   "flow SYMBOL",
		Short: "Show simulated options flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			now := time.Now()

			var events []models.FlowEvent
			if stored {
				if app.Store == nil {
					return fmt.Errorf("store unavailable")
				}
				var err error
				events, err = app.Store.GetFlowEvents(cmd.Context(), args[0], now.Add(-window), now)
				if err != nil {
					return err
				}
			} else {
				quote, err := app.Market.Quote(args[0], now)
				if err != nil {
					return err
				}

				// Recent price direction biases the simulated tape.
				bias := quote.ChangePercent / 5
				if bias > 1 {
					bias = 1
				} else if bias < -1 {
					bias = -1
				}

				events, err = app.Flow.Events(args[0], quote.LTP, bias, window, now)
				if err != nil {
					return err
				}

				if save && app.Store != nil {
					if err := app.Store.SaveFlowEvents(cmd.Context(), events); err != nil {
						app.Logger.Warn().Err(err).Msg("Failed to save flow events")
					}
				}
			}
			summary := flow.Summarize(args[0], events, now.Add(-window), now)

			if unusualOnly {
				var filtered []models.FlowEvent
				for _, e := range events {
					if e.Unusual {
						filtered = append(filtered, e)
					}
				}
				events = filtered
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"summary": summary,
					"events":  events,
				})
			}

			printFlowSummary(output, summary)
			output.Println()

			table := NewTable(output, "TIME", "TYPE", "PRINT", "SIDE", "STRIKE", "EXPIRY", "CONTRACTS", "PREMIUM", "")
			for _, e := range events {
				flag := ""
				if e.Unusual {
					flag = output.Yellow("UNUSUAL")
				}
				typeCell := output.Green(string(e.Type))
				if e.Type == models.OptionPut {
					typeCell = output.Red(string(e.Type))
				}
				table.AddRow(
					e.Timestamp.Format("15:04:05"),
					typeCell,
					string(e.Print),
					string(e.Side),
					fmt.Sprintf("%.2f", e.Strike),
					e.Expiry.Format("Jan 02"),
					utils.FormatQuantity(e.Contracts),
					utils.FormatCompact(e.Premium),
					flag,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().DurationVarP(&window, "window", "w", 6*time.Hour+30*time.Minute, "lookback window")
	cmd.Flags().BoolVarP(&unusualOnly, "unusual", "u", false, "only show unusual prints")
	cmd.Flags().BoolVar(&save, "save", false, "persist flow events")
	cmd.Flags().BoolVar(&stored, "stored", false, "read saved flow events instead of generating")
	return cmd
}

func printFlowSummary(output *Output, s *models.FlowSummary) {
	output.Bold("%s flow (%d prints, %d unusual)", s.Symbol, s.Events, s.UnusualCount)
	output.Printf("Call Premium:   %s\n", utils.FormatCompact(s.CallPremium))
	output.Printf("Put Premium:    %s\n", utils.FormatCompact(s.PutPremium))
	output.Printf("Put/Call Ratio: %.2f\n", s.PutCallRatio)
	output.Printf("Net Sentiment:  %s\n",
		output.ColoredString(output.PnLColor(s.NetSentiment), fmt.Sprintf("%+.2f", s.NetSentiment)))
	if s.LargestPremium > 0 {
		output.Printf("Largest Print:  %s\n", utils.FormatCompact(s.LargestPremium))
	}
}
