package ai

import (
	"context"
	"fmt"
	"math"

	"marketdesk/internal/analysis/indicators"
	"marketdesk/internal/errors"
)

// TrendModel reads EMA alignment and ADX direction.
type TrendModel struct {
	BaseModel
}

// NewTrendModel creates a trend-following model.
func NewTrendModel(weight float64) *TrendModel {
	return &TrendModel{BaseModel: NewBaseModel("trend", weight)}
}

func (m *TrendModel) Evaluate(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ema9, err := indicators.NewEMA(9).Calculate(in.Candles)
	if err != nil {
		return nil, errors.NewAnalysisError(m.Name(), "ema", err)
	}
	ema21, err := indicators.NewEMA(21).Calculate(in.Candles)
	if err != nil {
		return nil, errors.NewAnalysisError(m.Name(), "ema", err)
	}
	adxValues, err := indicators.NewADX(14).Calculate(in.Candles)
	if err != nil {
		return nil, errors.NewAnalysisError(m.Name(), "adx", err)
	}

	n := len(in.Candles)
	price := in.Candles[n-1].Close
	e9, e21 := ema9[n-1], ema21[n-1]
	adx := adxValues["adx"][n-1]
	plusDI := adxValues["plus_di"][n-1]
	minusDI := adxValues["minus_di"][n-1]

	var score float64
	if price > e9 {
		score += 30
	} else {
		score -= 30
	}
	if e9 > e21 {
		score += 30
	} else {
		score -= 30
	}
	if plusDI > minusDI {
		score += 40
	} else {
		score -= 40
	}

	// Confidence follows trend strength; ADX under 20 is a weak trend.
	confidence := 40 + adx
	if adx < 20 {
		score *= adx / 20
	}

	reason := fmt.Sprintf("price %.2f vs EMA9 %.2f / EMA21 %.2f, ADX %.1f", price, e9, e21, adx)
	return m.NewResult(score, confidence, reason), nil
}

// MomentumModel reads RSI and rate of change.
type MomentumModel struct {
	BaseModel
}

// NewMomentumModel creates a momentum model.
func NewMomentumModel(weight float64) *MomentumModel {
	return &MomentumModel{BaseModel: NewBaseModel("momentum", weight)}
}

func (m *MomentumModel) Evaluate(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rsiValues, err := indicators.NewRSI(14).Calculate(in.Candles)
	if err != nil {
		return nil, errors.NewAnalysisError(m.Name(), "rsi", err)
	}
	rocValues, err := indicators.NewROC(10).Calculate(in.Candles)
	if err != nil {
		return nil, errors.NewAnalysisError(m.Name(), "roc", err)
	}

	n := len(in.Candles)
	rsi := rsiValues[n-1]
	roc := rocValues[n-1]

	// RSI distance from midline plus ROC, both bullish when positive.
	score := (rsi-50)*1.2 + roc*4
	confidence := 45 + math.Abs(rsi-50)

	reason := fmt.Sprintf("RSI %.1f, ROC %.2f%%", rsi, roc)
	return m.NewResult(score, confidence, reason), nil
}

// MeanRevModel fades band extremes: stretched prices score toward reversal.
type MeanRevModel struct {
	BaseModel
}

// NewMeanRevModel creates a mean-reversion model.
func NewMeanRevModel(weight float64) *MeanRevModel {
	return &MeanRevModel{BaseModel: NewBaseModel("meanrev", weight)}
}

func (m *MeanRevModel) Evaluate(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bb, err := indicators.NewBollingerBands(20, 2.0).Calculate(in.Candles)
	if err != nil {
		return nil, errors.NewAnalysisError(m.Name(), "bollinger", err)
	}

	n := len(in.Candles)
	percentB := bb["percent_b"][n-1]

	// %B 0.5 is mid-band; below 0 or above 1 is a band break.
	score := (0.5 - percentB) * 200
	confidence := 40 + math.Abs(0.5-percentB)*80

	reason := fmt.Sprintf("%%B %.2f", percentB)
	return m.NewResult(score, confidence, reason), nil
}

// VolatilityModel leans cautious when realized volatility spikes.
type VolatilityModel struct {
	BaseModel
}

// NewVolatilityModel creates a volatility model.
func NewVolatilityModel(weight float64) *VolatilityModel {
	return &VolatilityModel{BaseModel: NewBaseModel("volatility", weight)}
}

func (m *VolatilityModel) Evaluate(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hv := indicators.NewHistoricalVolatility(20, 252)
	values, err := hv.Calculate(in.Candles)
	if err != nil {
		return nil, errors.NewAnalysisError(m.Name(), "hv", err)
	}

	n := len(in.Candles)
	current := values[n-1]

	// Compare current vol to its own recent average.
	lookback := 40
	if n < lookback+hv.Period() {
		lookback = n - hv.Period()
	}
	var avg float64
	count := 0
	for i := n - lookback; i < n; i++ {
		if values[i] > 0 {
			avg += values[i]
			count++
		}
	}
	if count > 0 {
		avg /= float64(count)
	}

	var score float64
	confidence := 50.0
	if avg > 0 {
		ratio := current / avg
		// Expanding vol is a mild bearish tell; calming vol mildly bullish.
		score = (1 - ratio) * 60
		confidence = 40 + math.Abs(1-ratio)*50
	}

	reason := fmt.Sprintf("realized vol %.1f%% vs %.1f%% average", current, avg)
	return m.NewResult(score, confidence, reason), nil
}

// SentimentModel converts the sentiment snapshot into a score.
type SentimentModel struct {
	BaseModel
}

// NewSentimentModel creates a sentiment model.
func NewSentimentModel(weight float64) *SentimentModel {
	return &SentimentModel{BaseModel: NewBaseModel("sentiment", weight)}
}

func (m *SentimentModel) Evaluate(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Sentiment == nil {
		return nil, errors.NewAnalysisError(m.Name(), "evaluate", errors.ErrDataNotFound)
	}

	snap := in.Sentiment
	score := snap.Score * 100
	confidence := 35 + math.Abs(snap.Score)*50
	if snap.Trending {
		confidence += 10
	}

	reason := fmt.Sprintf("sentiment %.2f across %d stories, %d mentions", snap.Score, snap.NewsCount, snap.SocialMentions)
	return m.NewResult(score, confidence, reason), nil
}
