// Package flow synthesizes options order flow: sweeps, blocks, and splits
// with premiums keyed to each symbol's price and volatility.
package flow

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"marketdesk/internal/errors"
	"marketdesk/internal/models"
)

// unusualPremium marks a print as unusual above this dollar premium.
const unusualPremium = 250000

// Generator produces deterministic flow events for a master seed.
type Generator struct {
	seed int64
}

// NewGenerator creates a flow generator.
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Events generates the option prints for one symbol over a window ending
// at end. Spot anchors strikes; bias in [-1, +1] tilts call/put balance.
// Output is ordered by timestamp.
func (g *Generator) Events(symbol string, spot float64, bias float64, window time.Duration, end time.Time) ([]models.FlowEvent, error) {
	if spot <= 0 {
		return nil, errors.NewSimulationError(symbol, "flow", "spot must be positive", nil)
	}
	if window <= 0 {
		return nil, errors.NewSimulationError(symbol, "flow", "window must be positive", nil)
	}
	bias = math.Max(-1, math.Min(1, bias))

	rng := rand.New(rand.NewSource(g.subSeed(symbol, end)))
	count := 5 + rng.Intn(20)
	events := make([]models.FlowEvent, 0, count)
	start := end.Add(-window)

	for i := 0; i < count; i++ {
		events = append(events, g.nextEvent(rng, symbol, spot, bias, start, window))
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

// subSeed keys the stream by symbol and day so each session's tape differs.
func (g *Generator) subSeed(symbol string, at time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	day := at.Truncate(24 * time.Hour).Unix()
	return g.seed ^ int64(h.Sum64()) ^ day
}

func (g *Generator) nextEvent(rng *rand.Rand, symbol string, spot, bias float64, start time.Time, window time.Duration) models.FlowEvent {
	// Positive bias favors calls.
	callProb := 0.5 + bias*0.25
	optType := models.OptionPut
	if rng.Float64() < callProb {
		optType = models.OptionCall
	}

	// Strikes cluster near the money, at most ~10% away.
	offset := rng.NormFloat64() * 0.04 * spot
	strike := roundStrike(spot+offset, spot)

	var print models.PrintType
	switch p := rng.Float64(); {
	case p < 0.45:
		print = models.PrintSweep
	case p < 0.80:
		print = models.PrintBlock
	default:
		print = models.PrintSplit
	}

	side := models.SideBuy
	if rng.Float64() < 0.35 {
		side = models.SideSell
	}

	// Contract counts are heavy tailed; the occasional whale print.
	contracts := int64(50 + rng.Intn(500))
	if rng.Float64() < 0.08 {
		contracts *= int64(5 + rng.Intn(10))
	}

	// Rough option price: a few percent of spot, richer near the money.
	moneyness := math.Abs(strike-spot) / spot
	perContract := spot * (0.015 + rng.Float64()*0.03) * (1 - moneyness*4)
	if perContract < 0.05 {
		perContract = 0.05
	}
	premium := perContract * 100 * float64(contracts)

	// Expiries on upcoming Fridays, weighted to the front.
	weeksOut := 1 + rng.Intn(6)
	expiry := nextFriday(start).AddDate(0, 0, (weeksOut-1)*7)

	ts := start.Add(time.Duration(rng.Int63n(int64(window))))

	return models.FlowEvent{
		ID:           uuid.New().String(),
		Symbol:       symbol,
		Timestamp:    ts,
		Type:         optType,
		Print:        print,
		Side:         side,
		Strike:       strike,
		Spot:         spot,
		Expiry:       expiry,
		Contracts:    contracts,
		Premium:      premium,
		OpenInterest: int64(1000 + rng.Intn(50000)),
		Unusual:      premium >= unusualPremium,
	}
}

// roundStrike snaps a strike to the increments listed exchanges use.
func roundStrike(value, spot float64) float64 {
	var inc float64
	switch {
	case spot < 25:
		inc = 0.5
	case spot < 100:
		inc = 1
	case spot < 200:
		inc = 2.5
	default:
		inc = 5
	}
	return math.Round(value/inc) * inc
}

func nextFriday(t time.Time) time.Time {
	d := t
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}
