package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketdesk/internal/ai"
	"marketdesk/internal/analysis/sentiment"
	apperrors "marketdesk/internal/errors"
	"marketdesk/internal/flow"
	"marketdesk/internal/logging"
	"marketdesk/internal/market"
	"marketdesk/internal/models"
	"marketdesk/internal/notify"
	"marketdesk/internal/portfolio"
	"marketdesk/internal/store"
)

// Daily candles fed to the ensemble per symbol.
const historyBars = 90

// Deps holds the collaborators a report generator draws on. Market and
// Ensemble are required; everything else may be nil.
type Deps struct {
	Market    *market.Generator
	Sentiment *sentiment.Engine
	Ensemble  *ai.Ensemble
	Flow      *flow.Generator
	Tracker   *portfolio.Tracker
	Store     store.DataStore
	Notifier  notify.Notifier
}

// Generator assembles end-of-day market reports.
type Generator struct {
	deps   Deps
	topN   int
	logger zerolog.Logger

	mu        sync.Mutex
	triggered []models.Alert
}

// NewGenerator creates a report generator.
func NewGenerator(deps Deps, topN int, logger zerolog.Logger) *Generator {
	if topN <= 0 {
		topN = 5
	}
	return &Generator{
		deps:   deps,
		topN:   topN,
		logger: logging.WithComponent(logger, "reports"),
	}
}

// RecordTriggeredAlert accumulates a triggered alert for the next report.
// It matches the alert monitor's trigger callback signature.
func (g *Generator) RecordTriggeredAlert(alert *models.Alert, _ models.Tick) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.triggered = append(g.triggered, *alert)
}

// Run generates, persists, and announces the report for the given run
// time. It is the scheduler job for daily reports.
func (g *Generator) Run(ctx context.Context, runAt time.Time) error {
	start := time.Now()

	report, err := g.Generate(ctx, runAt)
	if err != nil {
		return err
	}

	if g.deps.Store != nil {
		if err := g.deps.Store.SaveReport(ctx, report); err != nil {
			return apperrors.Wrap(err, "persisting report")
		}
	}
	if g.deps.Notifier != nil {
		g.deps.Notifier.SendReport(ctx, report)
	}

	logging.LogReport(g.logger, report.ID, report.Date, time.Since(start))
	return nil
}

// Generate builds the report for the trading day containing asOf.
func (g *Generator) Generate(ctx context.Context, asOf time.Time) (*models.Report, error) {
	if g.deps.Market == nil || g.deps.Ensemble == nil {
		return nil, apperrors.NewScheduleError("report", "generator missing market or ensemble", nil)
	}

	symbols := g.deps.Market.Symbols()
	histories := make(map[string][]models.Candle, len(symbols))
	for _, sym := range symbols {
		candles, err := g.deps.Market.History(sym.Ticker, models.TimeframeDay, historyBars, asOf)
		if err != nil {
			g.logger.Warn().Err(err).Str("symbol", sym.Ticker).Msg("history unavailable")
			continue
		}
		histories[sym.Ticker] = candles
	}

	movers := g.collectMovers(histories)
	signals := g.collectSignals(ctx, symbols, histories, asOf)
	flowSummaries := g.collectFlow(ctx, movers, histories, asOf)

	var snapshot *models.PortfolioSnapshot
	if g.deps.Tracker != nil {
		closes := make(map[string]float64, len(histories))
		for ticker, candles := range histories {
			if len(candles) > 0 {
				closes[ticker] = candles[len(candles)-1].Close
			}
		}
		g.deps.Tracker.Mark(closes)
		snapshot = g.deps.Tracker.Snapshot(asOf)
		if g.deps.Store != nil {
			if err := g.deps.Store.SaveSnapshot(ctx, snapshot); err != nil {
				g.logger.Warn().Err(err).Msg("snapshot not persisted")
			}
		}
	}

	g.mu.Lock()
	alerts := g.triggered
	g.triggered = nil
	g.mu.Unlock()

	date := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	report := &models.Report{
		ID:          uuid.New().String(),
		Date:        date,
		GeneratedAt: time.Now(),
		Title:       fmt.Sprintf("Daily Market Report %s", date.Format("2006-01-02")),
		Overview:    buildOverview(movers, signals, alerts),
		Movers:      movers,
		Signals:     signals,
		Portfolio:   snapshot,
		Flow:        flowSummaries,
		Alerts:      alerts,
	}
	return report, nil
}

func (g *Generator) collectMovers(histories map[string][]models.Candle) []models.Mover {
	var movers []models.Mover
	for ticker, candles := range histories {
		if len(candles) < 2 {
			continue
		}
		last := candles[len(candles)-1]
		prev := candles[len(candles)-2]
		if prev.Close == 0 {
			continue
		}
		change := last.Close - prev.Close
		movers = append(movers, models.Mover{
			Symbol:        ticker,
			Close:         last.Close,
			Change:        change,
			ChangePercent: change / prev.Close * 100,
			Volume:        last.Volume,
		})
	}

	sort.Slice(movers, func(i, j int) bool {
		return abs(movers[i].ChangePercent) > abs(movers[j].ChangePercent)
	})
	if len(movers) > g.topN {
		movers = movers[:g.topN]
	}
	// Biggest gainer first within the cut.
	sort.Slice(movers, func(i, j int) bool {
		return movers[i].ChangePercent > movers[j].ChangePercent
	})
	return movers
}

func (g *Generator) collectSignals(ctx context.Context, symbols []models.Symbol, histories map[string][]models.Candle, asOf time.Time) []models.SignalSummary {
	var signals []models.SignalSummary
	for _, sym := range symbols {
		candles := histories[sym.Ticker]
		if len(candles) == 0 {
			continue
		}

		in := ai.Input{
			Symbol:       sym.Ticker,
			Candles:      candles,
			CurrentPrice: candles[len(candles)-1].Close,
		}
		if g.deps.Sentiment != nil {
			if snap, err := g.deps.Sentiment.Snapshot(sym.Ticker, candles, asOf); err == nil {
				in.Sentiment = snap
			}
		}

		analysis, err := g.deps.Ensemble.Analyze(ctx, in)
		if err != nil {
			g.logger.Debug().Err(err).Str("symbol", sym.Ticker).Msg("ensemble skipped symbol")
			continue
		}
		if g.deps.Store != nil {
			if err := g.deps.Store.SaveAnalysis(ctx, analysis); err != nil {
				g.logger.Warn().Err(err).Str("symbol", sym.Ticker).Msg("analysis not persisted")
			}
		}

		score := 0.0
		if analysis.Consensus != nil {
			score = analysis.Consensus.WeightedScore
		}
		signals = append(signals, models.SignalSummary{
			Symbol:     sym.Ticker,
			Signal:     analysis.Signal,
			Confidence: analysis.Confidence,
			Score:      score,
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Confidence > signals[j].Confidence
	})
	return signals
}

func (g *Generator) collectFlow(ctx context.Context, movers []models.Mover, histories map[string][]models.Candle, asOf time.Time) []models.FlowSummary {
	if g.deps.Flow == nil {
		return nil
	}

	var summaries []models.FlowSummary
	for _, mover := range movers {
		candles := histories[mover.Symbol]
		if len(candles) == 0 {
			continue
		}

		bias := clamp(mover.ChangePercent/5, -1, 1)
		window := 6*time.Hour + 30*time.Minute
		events, err := g.deps.Flow.Events(mover.Symbol, mover.Close, bias, window, asOf)
		if err != nil {
			g.logger.Warn().Err(err).Str("symbol", mover.Symbol).Msg("flow generation failed")
			continue
		}
		if g.deps.Store != nil {
			if err := g.deps.Store.SaveFlowEvents(ctx, events); err != nil {
				g.logger.Warn().Err(err).Str("symbol", mover.Symbol).Msg("flow events not persisted")
			}
		}
		summaries = append(summaries, *flow.Summarize(mover.Symbol, events, asOf.Add(-window), asOf))
	}
	return summaries
}

func buildOverview(movers []models.Mover, signals []models.SignalSummary, alerts []models.Alert) string {
	var buys, sells int
	for _, s := range signals {
		switch s.Signal {
		case models.SignalBuy:
			buys++
		case models.SignalSell:
			sells++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scanned %d symbols: %d buy and %d sell signals.", len(signals), buys, sells)
	if len(movers) > 0 {
		top := movers[0]
		fmt.Fprintf(&b, " Top mover %s %+.2f%% to %.2f.", top.Symbol, top.ChangePercent, top.Close)
	}
	if len(alerts) > 0 {
		fmt.Fprintf(&b, " %d alert(s) triggered during the session.", len(alerts))
	}
	return b.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
