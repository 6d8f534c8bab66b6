package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketdesk/internal/analysis/indicators"
	"marketdesk/internal/config"
	"marketdesk/internal/errors"
	"marketdesk/internal/models"
)

// Signal thresholds on the weighted ensemble score.
const (
	buyThreshold  = 15.0
	sellThreshold = -15.0
)

// DefaultModelWeights returns the default ensemble weights.
func DefaultModelWeights() map[string]float64 {
	return map[string]float64{
		"trend":      0.30,
		"momentum":   0.25,
		"meanrev":    0.20,
		"volatility": 0.10,
		"sentiment":  0.15,
	}
}

// Ensemble combines the heuristic models into a single analysis.
type Ensemble struct {
	models        []Model
	narrator      *Narrator
	minConfidence float64
	logger        zerolog.Logger
}

// NewEnsemble builds the standard five-model ensemble from config.
func NewEnsemble(cfg config.AIConfig, logger zerolog.Logger) *Ensemble {
	weights := DefaultModelWeights()
	for name, w := range cfg.ModelWeights {
		weights[name] = w
	}

	e := &Ensemble{
		models: []Model{
			NewTrendModel(weights["trend"]),
			NewMomentumModel(weights["momentum"]),
			NewMeanRevModel(weights["meanrev"]),
			NewVolatilityModel(weights["volatility"]),
			NewSentimentModel(weights["sentiment"]),
		},
		minConfidence: cfg.MinConfidence,
		logger:        logger,
	}
	if cfg.Narrative {
		e.narrator = NewNarrator(cfg.OpenAIKey, cfg.OpenAIModel)
	}
	return e
}

// NewEnsembleWithModels builds an ensemble from explicit models.
func NewEnsembleWithModels(models []Model, logger zerolog.Logger) *Ensemble {
	return &Ensemble{models: models, logger: logger}
}

// Analyze runs every model and folds the results into one analysis.
// Confidence is always in [0, 100]. Models that fail are skipped and the
// remaining weights renormalized; with no usable model the read is a
// zero-confidence HOLD rather than an error.
func (e *Ensemble) Analyze(ctx context.Context, in Input) (*models.Analysis, error) {
	if len(in.Candles) == 0 {
		return nil, errors.NewAnalysisError("ensemble", "analyze", errors.ErrInsufficientData)
	}
	if in.CurrentPrice <= 0 {
		in.CurrentPrice = in.Candles[len(in.Candles)-1].Close
	}

	var results []*Result
	var weights []float64
	componentScores := make(map[string]float64)

	for _, m := range e.models {
		result, err := m.Evaluate(ctx, in)
		if err != nil {
			e.logger.Debug().Str("model", m.Name()).Err(err).Msg("Model skipped")
			continue
		}
		if err := result.Validate(); err != nil {
			e.logger.Warn().Str("model", m.Name()).Err(err).Msg("Model result invalid")
			continue
		}
		results = append(results, result)
		weights = append(weights, m.Weight())
		componentScores[result.ModelName] = result.Score
	}

	if len(results) == 0 {
		return e.holdAnalysis(in), nil
	}

	var weightedScore, weightedConfidence, totalWeight float64
	for i, r := range results {
		weightedScore += r.Score * weights[i]
		weightedConfidence += r.Confidence * weights[i]
		totalWeight += weights[i]
	}
	if totalWeight > 0 {
		weightedScore /= totalWeight
		weightedConfidence /= totalWeight
	}

	signal := scoreToSignal(weightedScore)
	agreeing := countAgreeing(results, signal)

	// Agreement scales confidence: a split ensemble is a weak read.
	agreementRatio := float64(agreeing) / float64(len(results))
	confidence := ClampConfidence(weightedConfidence * (0.5 + 0.5*agreementRatio))

	if confidence < e.minConfidence {
		signal = models.SignalHold
	}

	target, stop := e.priceLevels(in, signal)

	a := &models.Analysis{
		ID:              uuid.New().String(),
		Symbol:          in.Symbol,
		Timestamp:       time.Now(),
		Signal:          signal,
		Confidence:      confidence,
		PriceTarget:     target,
		StopLoss:        stop,
		ComponentScores: componentScores,
		Consensus: &models.ConsensusDetails{
			TotalModels:    len(results),
			AgreeingModels: agreeing,
			WeightedScore:  weightedScore,
		},
		Reasoning: buildReasoning(results),
	}

	if e.narrator != nil {
		if narrative, err := e.narrator.Narrate(ctx, a); err == nil {
			a.Narrative = narrative
		} else {
			e.logger.Debug().Err(err).Msg("Narrative generation failed, using reasoning only")
		}
	}

	return a, nil
}

// holdAnalysis is the reading when no model contributed: a HOLD with zero
// confidence, price levels pinned to the current price.
func (e *Ensemble) holdAnalysis(in Input) *models.Analysis {
	return &models.Analysis{
		ID:              uuid.New().String(),
		Symbol:          in.Symbol,
		Timestamp:       time.Now(),
		Signal:          models.SignalHold,
		Confidence:      0,
		PriceTarget:     in.CurrentPrice,
		StopLoss:        in.CurrentPrice,
		ComponentScores: map[string]float64{},
		Consensus:       &models.ConsensusDetails{},
		Reasoning:       "no model produced a result",
	}
}

// priceLevels derives target and stop from recent volatility.
func (e *Ensemble) priceLevels(in Input, signal models.Signal) (target, stop float64) {
	price := in.CurrentPrice

	atrValues, err := indicators.NewATR(14).Calculate(in.Candles)
	var atr float64
	if err == nil {
		atr = atrValues[len(atrValues)-1]
	}
	if atr <= 0 {
		atr = price * 0.02
	}

	switch signal {
	case models.SignalBuy:
		return price + 2*atr, price - 1.5*atr
	case models.SignalSell:
		return price - 2*atr, price + 1.5*atr
	default:
		return price, price
	}
}

func scoreToSignal(score float64) models.Signal {
	switch {
	case score >= buyThreshold:
		return models.SignalBuy
	case score <= sellThreshold:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

func countAgreeing(results []*Result, signal models.Signal) int {
	count := 0
	for _, r := range results {
		if scoreToSignal(r.Score) == signal {
			count++
		}
	}
	return count
}

func buildReasoning(results []*Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s (%.0f): %s", r.ModelName, r.Score, r.Reasoning))
	}
	return strings.Join(parts, "; ")
}
