package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marketdesk/internal/notify"
	"marketdesk/internal/stream"
)

func addAlertCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Price alert management",
	}

	cmd.AddCommand(newAlertAddCmd(app))
	cmd.AddCommand(newAlertListCmd(app))
	cmd.AddCommand(newAlertRemoveCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAlertAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add SYMBOL CONDITION PRICE",
		Short: "Create a price alert",
		Long: `Create a price alert for a symbol.

Conditions:
  above           price at or above the target
  below           price at or below the target
  percent_change  price moved by at least PRICE percent from the previous close
  cross_above     price crossed up through the target
  cross_below     price crossed down through the target`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if _, err := app.Market.Lookup(args[0]); err != nil {
				return err
			}

			price, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q", args[2])
			}

			monitor := stream.NewAlertMonitor(app.Store, notify.NewLogNotifier(app.Logger))
			alert, err := monitor.CreateAlert(cmd.Context(), args[0], stream.AlertCondition(args[1]), price)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(alert)
			}
			output.Success("Alert created: %s %s %.2f (id %s)", alert.Symbol, alert.Condition, alert.Price, alert.ID)
			return nil
		},
	}
}

func newAlertListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			alerts, err := app.Store.GetActiveAlerts(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(alerts)
			}
			if len(alerts) == 0 {
				output.Dim("No active alerts")
				return nil
			}

			table := NewTable(output, "ID", "SYMBOL", "CONDITION", "PRICE", "CREATED")
			for _, a := range alerts {
				table.AddRow(
					a.ID,
					a.Symbol,
					a.Condition,
					fmt.Sprintf("%.2f", a.Price),
					a.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newAlertRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Delete an alert",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			if err := app.Store.DeleteAlert(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.Success("Alert %s deleted", args[0])
			return nil
		},
	}
}
