package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/internal/ai"
	"marketdesk/internal/analysis"
	"marketdesk/internal/logging"
	"marketdesk/internal/models"
	"marketdesk/internal/store"
)

func addAnalysisCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newSentimentCmd(app))
}

// analysisResult pairs the ensemble reading with the indicator composite
// that fed the same candles.
type analysisResult struct {
	Analysis  *models.Analysis      `json:"analysis"`
	Composite *analysis.SignalScore `json:"composite,omitempty"`
}

// analyzeSymbol runs the full pipeline for one symbol: history, sentiment,
// composite score, then the model ensemble.
func (app *App) analyzeSymbol(cmd *cobra.Command, ticker string, bars int) (*analysisResult, error) {
	now := time.Now()
	logger := logging.WithSymbol(app.Logger, ticker)

	candles, err := app.Market.History(ticker, models.TimeframeDay, bars, now)
	if err != nil {
		return nil, err
	}

	snap, err := app.Sentiment.Snapshot(ticker, candles, now)
	if err != nil {
		return nil, err
	}

	result := &analysisResult{}
	if composite, err := app.Scorer.Score(cmd.Context(), candles); err == nil {
		result.Composite = composite
	} else {
		logger.Debug().Err(err).Msg("Composite score unavailable")
	}

	a, err := app.Ensemble.Analyze(cmd.Context(), ai.Input{
		Symbol:       ticker,
		Candles:      candles,
		Sentiment:    snap,
		CurrentPrice: candles[len(candles)-1].Close,
	})
	if err != nil {
		return nil, err
	}
	result.Analysis = a

	logging.LogAnalysis(logger, ticker, string(a.Signal), a.Confidence)
	return result, nil
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var bars int
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Run the model ensemble on a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			result, err := app.analyzeSymbol(cmd, args[0], bars)
			if err != nil {
				return err
			}

			if save && app.Store != nil {
				if err := app.Store.SaveAnalysis(cmd.Context(), result.Analysis); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to save analysis")
				} else {
					app.Logger.Info().Str("id", result.Analysis.ID).Msg("Analysis saved")
				}
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			printAnalysis(output, result.Analysis, result.Composite)
			return nil
		},
	}

	cmd.Flags().IntVarP(&bars, "bars", "n", 90, "daily bars to analyze")
	cmd.Flags().BoolVar(&save, "save", false, "persist the analysis")

	cmd.AddCommand(newAnalyzeListCmd(app))
	cmd.AddCommand(newAnalyzeShowCmd(app))
	return cmd
}

func printAnalysis(output *Output, a *models.Analysis, composite *analysis.SignalScore) {
	output.Bold("%s analysis", a.Symbol)
	output.Printf("Signal:      %s\n", output.Signal(a.Signal))
	output.Printf("Confidence:  %.1f%%\n", a.Confidence)
	output.Printf("Target:      %.2f\n", a.PriceTarget)
	output.Printf("Stop Loss:   %.2f\n", a.StopLoss)
	if a.Consensus != nil {
		output.Printf("Consensus:   %d/%d models agree (weighted score %.1f)\n",
			a.Consensus.AgreeingModels, a.Consensus.TotalModels, a.Consensus.WeightedScore)
	}
	output.Println()

	if composite != nil {
		output.Bold("Indicator composite")
		output.Printf("Score:          %s\n",
			output.ColoredString(output.PnLColor(composite.Score), fmt.Sprintf("%+.1f", composite.Score)))
		output.Printf("Recommendation: %s\n", string(composite.Recommendation))
		output.Printf("Volume Confirm: %v\n", composite.VolumeConfirm)

		names := make([]string, 0, len(composite.Components))
		for name := range composite.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		table := NewTable(output, "INDICATOR", "SCORE")
		for _, name := range names {
			score := composite.Components[name]
			table.AddRow(name, output.ColoredString(output.PnLColor(score), fmt.Sprintf("%+.1f", score)))
		}
		table.Render()
		output.Println()
	}

	if len(a.ComponentScores) > 0 {
		names := make([]string, 0, len(a.ComponentScores))
		for name := range a.ComponentScores {
			names = append(names, name)
		}
		sort.Strings(names)

		table := NewTable(output, "MODEL", "SCORE")
		for _, name := range names {
			score := a.ComponentScores[name]
			table.AddRow(name, output.ColoredString(output.PnLColor(score), fmt.Sprintf("%+.1f", score)))
		}
		table.Render()
		output.Println()
	}

	output.Printf("Reasoning: %s\n", a.Reasoning)
	if a.Narrative != "" {
		output.Println()
		output.Info("%s", a.Narrative)
	}
}

func newScanCmd(app *App) *cobra.Command {
	var bars int
	var signalFilter string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Analyze every symbol in the universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var results []*analysisResult
			for _, sym := range app.Market.Symbols() {
				result, err := app.analyzeSymbol(cmd, sym.Ticker, bars)
				if err != nil {
					app.Logger.Warn().Str("symbol", sym.Ticker).Err(err).Msg("Analysis failed")
					continue
				}
				if signalFilter != "" && string(result.Analysis.Signal) != signalFilter {
					continue
				}
				results = append(results, result)
			}

			sort.Slice(results, func(i, j int) bool {
				return results[i].Analysis.Confidence > results[j].Analysis.Confidence
			})

			if output.IsJSON() {
				return output.JSON(results)
			}

			table := NewTable(output, "SYMBOL", "SIGNAL", "CONFIDENCE", "SCORE", "COMPOSITE", "TARGET", "STOP")
			for _, r := range results {
				a := r.Analysis
				var score float64
				if a.Consensus != nil {
					score = a.Consensus.WeightedScore
				}
				compositeCell := "-"
				if r.Composite != nil {
					compositeCell = output.ColoredString(output.PnLColor(r.Composite.Score),
						fmt.Sprintf("%+.1f %s", r.Composite.Score, r.Composite.Recommendation))
				}
				table.AddRow(
					a.Symbol,
					output.Signal(a.Signal),
					fmt.Sprintf("%.1f%%", a.Confidence),
					fmt.Sprintf("%+.1f", score),
					compositeCell,
					fmt.Sprintf("%.2f", a.PriceTarget),
					fmt.Sprintf("%.2f", a.StopLoss),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&bars, "bars", "n", 90, "daily bars to analyze")
	cmd.Flags().StringVarP(&signalFilter, "signal", "s", "", "only show this signal (BUY, SELL, HOLD)")
	return cmd
}

func newAnalyzeListCmd(app *App) *cobra.Command {
	var symbol string
	var signal string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			analyses, err := app.Store.GetAnalyses(cmd.Context(), store.AnalysisFilter{
				Symbol: symbol,
				Signal: models.Signal(signal),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(analyses)
			}
			if len(analyses) == 0 {
				output.Dim("No saved analyses")
				return nil
			}

			table := NewTable(output, "ID", "TIME", "SYMBOL", "SIGNAL", "CONFIDENCE", "SCORE")
			for _, a := range analyses {
				var score float64
				if a.Consensus != nil {
					score = a.Consensus.WeightedScore
				}
				table.AddRow(
					a.ID,
					a.Timestamp.Format("2006-01-02 15:04"),
					a.Symbol,
					output.Signal(a.Signal),
					fmt.Sprintf("%.1f%%", a.Confidence),
					fmt.Sprintf("%+.1f", score),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "filter by symbol")
	cmd.Flags().StringVar(&signal, "signal", "", "filter by signal (BUY, SELL, HOLD)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum analyses to list")
	return cmd
}

func newAnalyzeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			a, err := app.Store.GetAnalysisByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(a)
			}
			printAnalysis(output, a, nil)
			return nil
		},
	}
}

func newSentimentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment SYMBOL...",
		Short: "Show simulated sentiment readings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			now := time.Now()

			var snaps []*models.SentimentSnapshot
			for _, ticker := range args {
				candles, err := app.Market.History(ticker, models.TimeframeDay, 30, now)
				if err != nil {
					return err
				}
				snap, err := app.Sentiment.Snapshot(ticker, candles, now)
				if err != nil {
					return err
				}
				snaps = append(snaps, snap)
			}

			if output.IsJSON() {
				return output.JSON(snaps)
			}

			table := NewTable(output, "SYMBOL", "SCORE", "NEWS", "MENTIONS", "TRENDING")
			for _, s := range snaps {
				trending := ""
				if s.Trending {
					trending = output.Yellow("YES")
				}
				table.AddRow(
					s.Symbol,
					output.ColoredString(output.PnLColor(s.Score), fmt.Sprintf("%+.2f", s.Score)),
					fmt.Sprintf("%d", s.NewsCount),
					fmt.Sprintf("%d", s.SocialMentions),
					trending,
				)
			}
			table.Render()
			return nil
		},
	}
}
