// Package scoring combines technical indicators into a composite signal score.
package scoring

import (
	"context"
	"fmt"

	"marketdesk/internal/analysis"
	"marketdesk/internal/analysis/indicators"
	"marketdesk/internal/models"
)

// minCandles is the shortest series the scorer will accept. The slowest
// component (EMA 50) needs this much warmup.
const minCandles = 50

// ComponentWeights defines the weight of each indicator in the composite score.
type ComponentWeights struct {
	RSI       float64
	MACD      float64
	Bollinger float64
	ADX       float64
	EMA       float64
	Volume    float64
}

// DefaultWeights returns the default component weights.
func DefaultWeights() ComponentWeights {
	return ComponentWeights{
		RSI:       0.20,
		MACD:      0.20,
		Bollinger: 0.15,
		ADX:       0.15,
		EMA:       0.15,
		Volume:    0.15,
	}
}

// WeightsFromMap builds ComponentWeights from a config map, falling back to
// defaults for any missing component.
func WeightsFromMap(m map[string]float64) ComponentWeights {
	w := DefaultWeights()
	if m == nil {
		return w
	}
	if v, ok := m["rsi"]; ok {
		w.RSI = v
	}
	if v, ok := m["macd"]; ok {
		w.MACD = v
	}
	if v, ok := m["bollinger"]; ok {
		w.Bollinger = v
	}
	if v, ok := m["adx"]; ok {
		w.ADX = v
	}
	if v, ok := m["ema"]; ok {
		w.EMA = v
	}
	if v, ok := m["volume"]; ok {
		w.Volume = v
	}
	return w
}

// SignalScorer scores candle series using a weighted indicator composite.
type SignalScorer struct {
	engine  *indicators.Engine
	weights ComponentWeights
}

// NewSignalScorer creates a scorer with default weights.
func NewSignalScorer(engine *indicators.Engine) *SignalScorer {
	return &SignalScorer{
		engine:  engine,
		weights: DefaultWeights(),
	}
}

// NewSignalScorerWithWeights creates a scorer with custom weights.
func NewSignalScorerWithWeights(engine *indicators.Engine, weights ComponentWeights) *SignalScorer {
	return &SignalScorer{
		engine:  engine,
		weights: weights,
	}
}

// Score calculates a composite signal score for the given candles.
// The score is in [-100, +100]; components that fail on short data are
// skipped and the remaining weights renormalized.
func (s *SignalScorer) Score(ctx context.Context, candles []models.Candle) (*analysis.SignalScore, error) {
	if len(candles) < minCandles {
		return nil, fmt.Errorf("insufficient data: need at least %d candles, got %d", minCandles, len(candles))
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	components := make(map[string]float64)
	var totalScore float64
	var totalWeight float64

	add := func(name string, score float64, weight float64) {
		components[name] = score
		totalScore += score * weight
		totalWeight += weight
	}

	if score, err := s.rsiScore(candles); err == nil {
		add("RSI", score, s.weights.RSI)
	}
	if score, err := s.macdScore(candles); err == nil {
		add("MACD", score, s.weights.MACD)
	}
	if score, err := s.bollingerScore(candles); err == nil {
		add("Bollinger", score, s.weights.Bollinger)
	}
	if score, err := s.adxScore(candles); err == nil {
		add("ADX", score, s.weights.ADX)
	}
	if score, err := s.emaScore(candles); err == nil {
		add("EMA", score, s.weights.EMA)
	}

	volumeConfirm, volumeScore := s.volumeConfirmation(candles)
	add("Volume", volumeScore, s.weights.Volume)

	var finalScore float64
	if totalWeight > 0 {
		finalScore = totalScore / totalWeight
	}
	finalScore = clamp(finalScore, -100, 100)

	return &analysis.SignalScore{
		Score:          finalScore,
		Recommendation: scoreToRecommendation(finalScore),
		Components:     components,
		VolumeConfirm:  volumeConfirm,
	}, nil
}

// rsiScore maps RSI to a score: oversold is bullish, overbought is bearish.
// RSI 0-30 maps to +100..+33, 30-50 to +33..0, 50-70 to 0..-33, 70-100 to -33..-100.
func (s *SignalScorer) rsiScore(candles []models.Candle) (float64, error) {
	rsi := indicators.NewRSI(14)
	values, err := rsi.Calculate(candles)
	if err != nil {
		return 0, err
	}

	lastRSI := values[len(values)-1]
	if lastRSI == 0 {
		for i := len(values) - 1; i >= 0; i-- {
			if values[i] != 0 {
				lastRSI = values[i]
				break
			}
		}
	}

	var score float64
	switch {
	case lastRSI <= 30:
		score = 100 - (lastRSI/30)*67
	case lastRSI <= 50:
		score = 33 - ((lastRSI-30)/20)*33
	case lastRSI <= 70:
		score = -((lastRSI - 50) / 20) * 33
	default:
		score = -33 - ((lastRSI-70)/30)*67
	}
	return score, nil
}

func (s *SignalScorer) macdScore(candles []models.Candle) (float64, error) {
	macd := indicators.NewMACD(12, 26, 9)
	values, err := macd.Calculate(candles)
	if err != nil {
		return 0, err
	}

	macdLine := values["macd"]
	signalLine := values["signal"]
	histogram := values["histogram"]

	n := len(candles)
	if n < 2 {
		return 0, fmt.Errorf("insufficient data for MACD score")
	}

	currMACD := macdLine[n-1]
	currSignal := signalLine[n-1]
	currHist := histogram[n-1]
	prevHist := histogram[n-2]

	var score float64
	if currMACD > currSignal {
		score = 50
	} else {
		score = -50
	}
	if currHist > prevHist {
		score += 25
	} else {
		score -= 25
	}
	if currHist > 0 {
		score += 25
	} else {
		score -= 25
	}
	return clamp(score, -100, 100), nil
}

// bollingerScore reads %B: near the lower band is bullish mean reversion,
// near the upper band is bearish.
func (s *SignalScorer) bollingerScore(candles []models.Candle) (float64, error) {
	bb := indicators.NewBollingerBands(20, 2.0)
	values, err := bb.Calculate(candles)
	if err != nil {
		return 0, err
	}

	percentB := values["percent_b"]
	bandwidth := values["bandwidth"]
	n := len(candles)
	pb := percentB[n-1]
	bw := bandwidth[n-1]

	// %B 0.5 is mid-band. Below 0 or above 1 means a band break.
	score := (0.5 - pb) * 160
	score = clamp(score, -80, 80)

	// A tight squeeze mutes the signal; there is no direction to trade yet.
	if bw < 0.02 {
		score *= 0.5
	}

	// Band breaks push the score into the outer zones.
	if pb < 0 {
		score = clamp(score-20, -100, 100)
	} else if pb > 1 {
		score = clamp(score+20, -100, 100)
	}
	return clamp(score, -100, 100), nil
}

func (s *SignalScorer) adxScore(candles []models.Candle) (float64, error) {
	adx := indicators.NewADX(14)
	values, err := adx.Calculate(candles)
	if err != nil {
		return 0, err
	}

	adxLine := values["adx"]
	plusDI := values["plus_di"]
	minusDI := values["minus_di"]

	n := len(candles)
	currADX := adxLine[n-1]
	currPlusDI := plusDI[n-1]
	currMinusDI := minusDI[n-1]

	for i := n - 1; i >= 0 && currADX == 0; i-- {
		currADX = adxLine[i]
		currPlusDI = plusDI[i]
		currMinusDI = minusDI[i]
	}

	// ADX above 25 marks a strong trend. Normalize strength to [0, 1].
	strength := currADX / 50
	if strength > 1 {
		strength = 1
	}

	var score float64
	if currPlusDI > currMinusDI {
		score = 100 * strength
	} else {
		score = -100 * strength
	}
	if currADX < 20 {
		score *= currADX / 20
	}
	return clamp(score, -100, 100), nil
}

func (s *SignalScorer) emaScore(candles []models.Candle) (float64, error) {
	values9, err := indicators.NewEMA(9).Calculate(candles)
	if err != nil {
		return 0, err
	}
	values21, err := indicators.NewEMA(21).Calculate(candles)
	if err != nil {
		return 0, err
	}
	values50, err := indicators.NewEMA(50).Calculate(candles)
	if err != nil {
		return 0, err
	}

	n := len(candles)
	curr9 := values9[n-1]
	curr21 := values21[n-1]
	curr50 := values50[n-1]
	currPrice := candles[n-1].Close

	var score float64
	if currPrice > curr9 {
		score += 25
	} else {
		score -= 25
	}
	if currPrice > curr21 {
		score += 25
	} else {
		score -= 25
	}
	if currPrice > curr50 {
		score += 25
	} else {
		score -= 25
	}

	if curr9 > curr21 && curr21 > curr50 {
		score += 25
	} else if curr9 < curr21 && curr21 < curr50 {
		score -= 25
	}
	return clamp(score, -100, 100), nil
}

// volumeConfirmation checks whether volume confirms the latest price move.
func (s *SignalScorer) volumeConfirmation(candles []models.Candle) (bool, float64) {
	n := len(candles)
	if n < 20 {
		return false, 0
	}

	var avgVolume float64
	for i := n - 20; i < n-1; i++ {
		avgVolume += float64(candles[i].Volume)
	}
	avgVolume /= 19
	if avgVolume == 0 {
		return false, 0
	}

	currentVolume := float64(candles[n-1].Volume)
	priceChange := candles[n-1].Close - candles[n-2].Close
	volumeRatio := currentVolume / avgVolume

	var score float64
	confirmed := false

	switch {
	case volumeRatio > 1.5:
		if priceChange > 0 {
			score = 100 * (volumeRatio - 1) / 2
			confirmed = true
		} else if priceChange < 0 {
			score = -100 * (volumeRatio - 1) / 2
			confirmed = true
		}
	case volumeRatio > 1.0:
		if priceChange > 0 {
			score = 50 * (volumeRatio - 1)
			confirmed = true
		} else if priceChange < 0 {
			score = -50 * (volumeRatio - 1)
			confirmed = true
		}
	default:
		if priceChange > 0 {
			score = 25 * volumeRatio
		} else if priceChange < 0 {
			score = -25 * volumeRatio
		}
	}

	return confirmed, clamp(score, -100, 100)
}

// scoreToRecommendation converts a numeric score to a recommendation.
func scoreToRecommendation(score float64) analysis.SignalRecommendation {
	switch {
	case score >= 70:
		return analysis.StrongBuy
	case score >= 40:
		return analysis.Buy
	case score >= 15:
		return analysis.WeakBuy
	case score >= -15:
		return analysis.Neutral
	case score >= -40:
		return analysis.WeakSell
	case score >= -70:
		return analysis.Sell
	default:
		return analysis.StrongSell
	}
}

func clamp(value, minVal, maxVal float64) float64 {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
