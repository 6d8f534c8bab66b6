// Package sentiment synthesizes market sentiment readings from seeded noise
// blended with recent price momentum, so sentiment loosely tracks price.
package sentiment

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"marketdesk/internal/errors"
	"marketdesk/internal/models"
)

// momentumBlend controls how much of the score comes from price action
// versus the random pulse.
const momentumBlend = 0.6

// Engine produces deterministic sentiment snapshots for a master seed.
type Engine struct {
	seed int64
}

// NewEngine creates a sentiment engine.
func NewEngine(seed int64) *Engine {
	return &Engine{seed: seed}
}

// Snapshot produces a sentiment reading for a symbol at a point in time.
// The score is in [-1, +1]. Candles supply the momentum component; the
// pulse component is seeded by symbol and hour so repeated calls within
// the same hour agree.
func (e *Engine) Snapshot(symbol string, candles []models.Candle, at time.Time) (*models.SentimentSnapshot, error) {
	if len(candles) < 2 {
		return nil, errors.ErrInsufficientData
	}

	rng := rand.New(rand.NewSource(e.subSeed(symbol, at)))

	momentum := momentumScore(candles)
	pulse := rng.NormFloat64() * 0.35

	score := momentumBlend*momentum + (1-momentumBlend)*pulse
	score = math.Max(-1, math.Min(1, score))

	// Activity rises with how one-sided the mood is.
	intensity := math.Abs(score)
	newsCount := 2 + rng.Intn(6) + int(intensity*20)
	socialMentions := 50 + rng.Intn(400) + int(intensity*4000)

	return &models.SentimentSnapshot{
		Symbol:         symbol,
		Timestamp:      at,
		Score:          score,
		NewsCount:      newsCount,
		SocialMentions: socialMentions,
		Trending:       intensity > 0.55,
	}, nil
}

// subSeed keys the pulse by symbol and hour bucket.
func (e *Engine) subSeed(symbol string, at time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	hour := at.Truncate(time.Hour).Unix()
	return e.seed ^ int64(h.Sum64()) ^ hour
}

// momentumScore maps the recent return profile into [-1, +1].
func momentumScore(candles []models.Candle) float64 {
	n := len(candles)
	lookback := 10
	if n < lookback+1 {
		lookback = n - 1
	}

	start := candles[n-lookback-1].Close
	end := candles[n-1].Close
	if start <= 0 {
		return 0
	}

	// A 5% move over the lookback saturates the momentum component.
	ret := (end - start) / start
	score := ret / 0.05
	return math.Max(-1, math.Min(1, score))
}
