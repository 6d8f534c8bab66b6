package indicators

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

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

func TestProperty_RSIWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("RSI values are within [0, 100]", prop.ForAll(
		func(candles []models.Candle) bool {
			rsi := NewRSI(14)
			values, err := rsi.Calculate(candles)
			if err != nil {
				return true
			}
			for i := rsi.Period(); i < len(values); i++ {
				if values[i] < 0 || values[i] > 100 {
					return false
				}
			}
			return true
		},
		candleSliceGen(30, 120),
	))

	properties.TestingRun(t)
}

func TestProperty_BollingerBandOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Upper band >= middle >= lower band", prop.ForAll(
		func(candles []models.Candle) bool {
			bb := NewBollingerBands(20, 2.0)
			values, err := bb.Calculate(candles)
			if err != nil {
				return true
			}
			upper := values["upper"]
			middle := values["middle"]
			lower := values["lower"]
			for i := bb.Period() - 1; i < len(candles); i++ {
				if upper[i] < middle[i] || middle[i] < lower[i] {
					return false
				}
			}
			return true
		},
		candleSliceGen(25, 120),
	))

	properties.TestingRun(t)
}

func TestProperty_ATRNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("ATR values are never negative", prop.ForAll(
		func(candles []models.Candle) bool {
			atr := NewATR(14)
			values, err := atr.Calculate(candles)
			if err != nil {
				return true
			}
			for _, v := range values {
				if v < 0 {
					return false
				}
			}
			return true
		},
		candleSliceGen(20, 120),
	))

	properties.TestingRun(t)
}

func TestProperty_StochasticWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("%K and %D are within [0, 100]", prop.ForAll(
		func(candles []models.Candle) bool {
			stoch := NewStochastic(14, 3, 3)
			values, err := stoch.Calculate(candles)
			if err != nil {
				return true
			}
			for _, series := range values {
				for _, v := range series {
					if v < -1e-9 || v > 100+1e-9 {
						return false
					}
				}
			}
			return true
		},
		candleSliceGen(25, 120),
	))

	properties.TestingRun(t)
}

func TestProperty_MACDHistogramConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	properties.Property("Histogram equals MACD minus signal past warmup", prop.ForAll(
		func(candles []models.Candle) bool {
			macd := NewMACD(12, 26, 9)
			values, err := macd.Calculate(candles)
			if err != nil {
				return true
			}
			macdLine := values["macd"]
			signalLine := values["signal"]
			histogram := values["histogram"]
			for i := macd.Period() - 1; i < len(candles); i++ {
				if math.Abs(histogram[i]-(macdLine[i]-signalLine[i])) > 1e-9 {
					return false
				}
			}
			return true
		},
		candleSliceGen(40, 120),
	))

	properties.TestingRun(t)
}

func TestEngineCalculateAll(t *testing.T) {
	candles := make([]models.Candle, 100)
	price := 100.0
	base := time.Now().Add(-100 * time.Hour)
	for i := range candles {
		next := price * (1 + 0.001*float64(i%7-3))
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      math.Max(price, next) * 1.001,
			Low:       math.Min(price, next) * 0.999,
			Close:     next,
			Volume:    1000000,
		}
		price = next
	}

	engine := NewDefaultEngine(4)
	single, multi, err := engine.CalculateAll(context.Background(), candles)
	if err != nil {
		t.Fatalf("CalculateAll() error = %v", err)
	}
	if len(single) == 0 {
		t.Error("expected single-series results, got none")
	}
	if len(multi) == 0 {
		t.Error("expected multi-series results, got none")
	}
	for name, values := range single {
		if len(values) != len(candles) {
			t.Errorf("%s: got %d values, want %d", name, len(values), len(candles))
		}
	}

	snap, err := engine.Latest(context.Background(), candles)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if len(snap.Single) != len(single) {
		t.Errorf("snapshot has %d single values, want %d", len(snap.Single), len(single))
	}
}

func TestEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewDefaultEngine(2)
	if _, err := engine.Calculate(ctx, "RSI_14", nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestIndicatorErrors(t *testing.T) {
	short := []models.Candle{{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}}

	if _, err := NewRSI(0).Calculate(short); err != ErrInvalidPeriod {
		t.Errorf("RSI with zero period: got %v, want ErrInvalidPeriod", err)
	}
	if _, err := NewRSI(14).Calculate(short); err != ErrInsufficientData {
		t.Errorf("RSI with short series: got %v, want ErrInsufficientData", err)
	}
	if _, err := NewSMA(20).Calculate(short); err != ErrInsufficientData {
		t.Errorf("SMA with short series: got %v, want ErrInsufficientData", err)
	}
	if _, err := NewVWAP().Calculate(nil); err != ErrInsufficientData {
		t.Errorf("VWAP with empty series: got %v, want ErrInsufficientData", err)
	}
}
