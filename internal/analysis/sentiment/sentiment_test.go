package sentiment

import (
	"testing"
	"time"

	"marketdesk/internal/errors"
	"marketdesk/internal/models"
)

func trendCandles(n int, step float64) []models.Candle {
	candles := make([]models.Candle, n)
	price := 100.0
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := range candles {
		next := price + step
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      maxF(price, next),
			Low:       minF(price, next),
			Close:     next,
			Volume:    1000000,
		}
		price = next
	}
	return candles
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func TestSnapshotScoreBounds(t *testing.T) {
	engine := NewEngine(7)
	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	for _, step := range []float64{-5.0, -0.5, 0, 0.5, 5.0} {
		snap, err := engine.Snapshot("NVAX", trendCandles(30, step), at)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if snap.Score < -1 || snap.Score > 1 {
			t.Errorf("step %.1f: score %.3f out of [-1, 1]", step, snap.Score)
		}
		if snap.NewsCount < 0 || snap.SocialMentions < 0 {
			t.Errorf("step %.1f: negative activity counts", step)
		}
	}
}

func TestSnapshotTracksMomentum(t *testing.T) {
	engine := NewEngine(7)
	at := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	up, err := engine.Snapshot("NVAX", trendCandles(30, 2.0), at)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	down, err := engine.Snapshot("NVAX", trendCandles(30, -2.0), at)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if up.Score <= down.Score {
		t.Errorf("uptrend score %.3f should exceed downtrend score %.3f", up.Score, down.Score)
	}
}

func TestSnapshotDeterministicWithinHour(t *testing.T) {
	engine := NewEngine(42)
	candles := trendCandles(30, 0.5)
	at := time.Date(2026, 3, 2, 14, 5, 0, 0, time.UTC)
	later := at.Add(30 * time.Minute) // same hour bucket

	first, err := engine.Snapshot("QBIT", candles, at)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	second, err := engine.Snapshot("QBIT", candles, later)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if first.Score != second.Score {
		t.Errorf("scores within the same hour differ: %.6f vs %.6f", first.Score, second.Score)
	}
	if first.NewsCount != second.NewsCount {
		t.Errorf("news counts within the same hour differ: %d vs %d", first.NewsCount, second.NewsCount)
	}
}

func TestSnapshotInsufficientData(t *testing.T) {
	engine := NewEngine(1)
	_, err := engine.Snapshot("NVAX", trendCandles(1, 0.1), time.Now())
	if err != errors.ErrInsufficientData {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}
