package scoring

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"marketdesk/internal/analysis"
	"marketdesk/internal/analysis/indicators"
	"marketdesk/internal/models"
)

// candleGen generates valid candle data with realistic OHLCV values.
func candleGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Candle{}), map[string]gopter.Gen{
		"Timestamp": gen.TimeRange(time.Now().Add(-365*24*time.Hour), time.Hour),
		"Open":      gen.Float64Range(10.0, 500.0),
		"High":      gen.Float64Range(10.0, 500.0),
		"Low":       gen.Float64Range(10.0, 500.0),
		"Close":     gen.Float64Range(10.0, 500.0),
		"Volume":    gen.Int64Range(1000, 10000000),
	}).Map(func(c models.Candle) models.Candle {
		c.High = math.Max(c.High, math.Max(c.Open, c.Close))
		c.Low = math.Min(c.Low, math.Min(c.Open, c.Close))
		if c.High <= c.Low {
			c.High = c.Low + 1.0
		}
		return c
	})
}

// candleSliceGen generates a slice of valid candles with ordered timestamps.
func candleSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, candleGen()).Map(func(candles []models.Candle) []models.Candle {
		for len(candles) < minLen {
			candles = append(candles, candles[len(candles)-1])
		}
		base := time.Now().Add(-time.Duration(len(candles)) * time.Hour)
		for i := range candles {
			candles[i].Timestamp = base.Add(time.Duration(i) * time.Hour)
		}
		return candles
	})
}

func TestProperty_SignalScoreWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Signal score is within [-100, +100]", prop.ForAll(
		func(candles []models.Candle) bool {
			engine := indicators.NewEngine(4)
			scorer := NewSignalScorer(engine)

			score, err := scorer.Score(context.Background(), candles)
			if err != nil {
				// Insufficient data is acceptable
				return true
			}
			return score.Score >= -100 && score.Score <= 100
		},
		candleSliceGen(60, 150),
	))

	properties.TestingRun(t)
}

func TestProperty_SignalScoreRecommendationMapping(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Signal score maps to correct recommendation", prop.ForAll(
		func(candles []models.Candle) bool {
			engine := indicators.NewEngine(4)
			scorer := NewSignalScorer(engine)

			result, err := scorer.Score(context.Background(), candles)
			if err != nil {
				return true
			}
			return result.Recommendation == expectedRecommendation(result.Score)
		},
		candleSliceGen(60, 150),
	))

	properties.TestingRun(t)
}

func expectedRecommendation(score float64) analysis.SignalRecommendation {
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

func TestProperty_SignalScoreComponentsWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("All components are within [-100, +100]", prop.ForAll(
		func(candles []models.Candle) bool {
			engine := indicators.NewEngine(4)
			scorer := NewSignalScorer(engine)

			result, err := scorer.Score(context.Background(), candles)
			if err != nil {
				return true
			}
			if result.Components == nil {
				return false
			}
			if _, hasVolume := result.Components["Volume"]; !hasVolume {
				return false
			}
			for _, value := range result.Components {
				if value < -100 || value > 100 {
					return false
				}
			}
			return true
		},
		candleSliceGen(60, 150),
	))

	properties.TestingRun(t)
}

func TestProperty_ScoreToRecommendationMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Higher scores map to more bullish recommendations", prop.ForAll(
		func(score1, score2 float64) bool {
			rec1 := scoreToRecommendation(score1)
			rec2 := scoreToRecommendation(score2)

			if score1 > score2 {
				return recommendationRank(rec1) >= recommendationRank(rec2)
			}
			if score1 < score2 {
				return recommendationRank(rec1) <= recommendationRank(rec2)
			}
			return rec1 == rec2
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}

func recommendationRank(rec analysis.SignalRecommendation) int {
	switch rec {
	case analysis.StrongSell:
		return 1
	case analysis.Sell:
		return 2
	case analysis.WeakSell:
		return 3
	case analysis.Neutral:
		return 4
	case analysis.WeakBuy:
		return 5
	case analysis.Buy:
		return 6
	case analysis.StrongBuy:
		return 7
	default:
		return 0
	}
}

func TestProperty_CustomWeightsProduceValidScore(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Custom weights produce scores within [-100, +100]", prop.ForAll(
		func(candles []models.Candle, rsiWeight, macdWeight, bbWeight float64) bool {
			weights := ComponentWeights{
				RSI:       rsiWeight,
				MACD:      macdWeight,
				Bollinger: bbWeight,
				ADX:       0.1,
				EMA:       0.1,
				Volume:    0.1,
			}

			engine := indicators.NewEngine(4)
			scorer := NewSignalScorerWithWeights(engine, weights)

			result, err := scorer.Score(context.Background(), candles)
			if err != nil {
				return true
			}
			return result.Score >= -100 && result.Score <= 100
		},
		candleSliceGen(60, 150),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

func TestWeightsFromMap(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]float64
		want ComponentWeights
	}{
		{
			name: "nil map falls back to defaults",
			in:   nil,
			want: DefaultWeights(),
		},
		{
			name: "partial map overrides only named components",
			in:   map[string]float64{"rsi": 0.5, "volume": 0.0},
			want: ComponentWeights{RSI: 0.5, MACD: 0.20, Bollinger: 0.15, ADX: 0.15, EMA: 0.15, Volume: 0.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightsFromMap(tt.in)
			if got != tt.want {
				t.Errorf("WeightsFromMap() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
