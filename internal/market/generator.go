package market

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"marketdesk/internal/errors"
	"marketdesk/internal/models"
)

// garch holds the volatility-clustering state for one symbol.
// Variance follows a GARCH(1,1)-style recursion so quiet stretches
// and volatile stretches cluster the way real price series do.
type garch struct {
	omega    float64
	alpha    float64
	beta     float64
	variance float64
}

func newGARCH(volMult float64) *garch {
	// Daily base volatility around 1.5%, scaled per symbol.
	base := 0.015 * volMult
	longRun := base * base
	alpha, beta := 0.10, 0.85
	return &garch{
		omega:    longRun * (1 - alpha - beta),
		alpha:    alpha,
		beta:     beta,
		variance: longRun,
	}
}

// step advances the recursion with the previous period's return and
// yields the volatility to use for the next period.
func (g *garch) step(prevRet float64) float64 {
	g.variance = g.omega + g.alpha*prevRet*prevRet + g.beta*g.variance
	return math.Sqrt(g.variance)
}

// Generator produces synthetic OHLCV data for a symbol universe.
// All output is deterministic for a fixed master seed.
type Generator struct {
	seed    int64
	symbols map[string]models.Symbol
	order   []string

	mu     sync.Mutex
	states map[string]*symbolState
}

// symbolState holds the evolving simulation state for one symbol.
type symbolState struct {
	rng        *rand.Rand
	garch      *garch
	lastClose  float64
	lastReturn float64
	drift      float64
}

// NewGenerator creates a generator over the given universe.
func NewGenerator(seed int64, symbols []models.Symbol) *Generator {
	m := make(map[string]models.Symbol, len(symbols))
	order := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := m[s.Ticker]; !ok {
			order = append(order, s.Ticker)
		}
		m[s.Ticker] = s
	}
	return &Generator{
		seed:    seed,
		symbols: m,
		order:   order,
		states:  make(map[string]*symbolState),
	}
}

// Symbols returns the universe ordered as provided at construction.
func (g *Generator) Symbols() []models.Symbol {
	out := make([]models.Symbol, 0, len(g.order))
	for _, ticker := range g.order {
		out = append(out, g.symbols[ticker])
	}
	return out
}

// Lookup returns the symbol metadata for a ticker.
func (g *Generator) Lookup(ticker string) (models.Symbol, error) {
	s, ok := g.symbols[ticker]
	if !ok {
		return models.Symbol{}, errors.ErrSymbolNotFound
	}
	return s, nil
}

// subSeed derives a per-symbol seed from the master seed so each
// symbol's stream is independent yet reproducible.
func (g *Generator) subSeed(ticker string) int64 {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	return g.seed ^ int64(h.Sum64())
}

func (g *Generator) state(sym models.Symbol) *symbolState {
	st, ok := g.states[sym.Ticker]
	if !ok {
		st = &symbolState{
			rng:       rand.New(rand.NewSource(g.subSeed(sym.Ticker))),
			garch:     newGARCH(sym.VolMult),
			lastClose: sym.BasePrice,
			// Small persistent drift gives each symbol a personality:
			// some grind up, some bleed.
			drift: 0,
		}
		st.drift = (st.rng.Float64() - 0.45) * 0.0015
		g.states[sym.Ticker] = st
	}
	return st
}

// History generates count candles of the given timeframe ending at end.
// Candles satisfy High >= max(Open, Close), Low <= min(Open, Close),
// strictly positive prices and volumes.
func (g *Generator) History(ticker string, timeframe models.Timeframe, count int, end time.Time) ([]models.Candle, error) {
	sym, ok := g.symbols[ticker]
	if !ok {
		return nil, errors.ErrSymbolNotFound
	}
	if count <= 0 {
		return nil, errors.NewSimulationError(ticker, "history", "count must be positive", nil)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.state(sym)

	// Intraday bars move a fraction of a daily bar.
	scale := 1.0
	if d := timeframe.Duration(); d < 24*time.Hour {
		scale = math.Sqrt(float64(d) / float64(24*time.Hour))
	}

	candles := make([]models.Candle, count)
	ts := end.Add(-time.Duration(count) * timeframe.Duration())
	for i := 0; i < count; i++ {
		c := g.nextCandle(sym, st, scale)
		c.Timestamp = ts
		candles[i] = c
		ts = ts.Add(timeframe.Duration())
	}
	return candles, nil
}

// nextCandle advances the walk by one bar. Caller holds g.mu.
func (g *Generator) nextCandle(sym models.Symbol, st *symbolState, scale float64) models.Candle {
	vol := st.garch.step(st.lastReturn) * scale
	ret := st.drift*scale + vol*st.rng.NormFloat64()

	open := st.lastClose
	closePx := open * math.Exp(ret)
	if closePx < sym.TickSize {
		closePx = sym.TickSize
	}

	// Intrabar range extends beyond the open/close body.
	body := math.Abs(closePx - open)
	wiggle := open * vol * 0.6
	high := math.Max(open, closePx) + st.rng.Float64()*(body*0.5+wiggle)
	low := math.Min(open, closePx) - st.rng.Float64()*(body*0.5+wiggle)
	if low < sym.TickSize {
		low = sym.TickSize
	}

	// Volume swells with the size of the move.
	volBoost := 1.0 + math.Abs(ret)/(0.015*sym.VolMult)*0.8
	volume := int64(float64(sym.AvgVolume) * volBoost * (0.6 + st.rng.Float64()*0.8) * scale)
	if volume < 1 {
		volume = 1
	}

	st.lastClose = closePx
	st.lastReturn = ret

	return models.Candle{
		Open:   roundTo(open, sym.TickSize),
		High:   roundTo(high, sym.TickSize),
		Low:    roundTo(low, sym.TickSize),
		Close:  roundTo(closePx, sym.TickSize),
		Volume: volume,
	}
}

// Quote synthesizes a current quote from the symbol's latest state.
func (g *Generator) Quote(ticker string, now time.Time) (*models.Quote, error) {
	sym, ok := g.symbols[ticker]
	if !ok {
		return nil, errors.ErrSymbolNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	st := g.state(sym)

	prevClose := st.lastClose
	tick := g.nextTickLocked(sym, st, now)
	change := tick.LTP - prevClose

	return &models.Quote{
		Symbol:        ticker,
		LTP:           tick.LTP,
		Open:          tick.Open,
		High:          tick.High,
		Low:           tick.Low,
		Close:         prevClose,
		Volume:        tick.Volume,
		Change:        change,
		ChangePercent: change / prevClose * 100,
		Timestamp:     now,
	}, nil
}

// Tick synthesizes one live tick for a symbol.
func (g *Generator) Tick(ticker string, now time.Time) (models.Tick, error) {
	sym, ok := g.symbols[ticker]
	if !ok {
		return models.Tick{}, errors.ErrSymbolNotFound
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextTickLocked(sym, g.state(sym), now), nil
}

// nextTickLocked perturbs the last close by a sub-bar move. Caller holds g.mu.
func (g *Generator) nextTickLocked(sym models.Symbol, st *symbolState, now time.Time) models.Tick {
	vol := math.Sqrt(st.garch.variance) * 0.05 // tick-scale move
	ret := vol * st.rng.NormFloat64()
	prev := st.lastClose
	ltp := prev * math.Exp(ret)
	if ltp < sym.TickSize {
		ltp = sym.TickSize
	}
	ltp = roundTo(ltp, sym.TickSize)

	spread := math.Max(sym.TickSize, ltp*0.0004)
	st.lastClose = ltp
	st.lastReturn = ret

	return models.Tick{
		Symbol:    sym.Ticker,
		LTP:       ltp,
		Open:      roundTo(prev, sym.TickSize),
		High:      roundTo(math.Max(prev, ltp), sym.TickSize),
		Low:       roundTo(math.Min(prev, ltp), sym.TickSize),
		Close:     roundTo(prev, sym.TickSize),
		Volume:    int64(float64(sym.AvgVolume) / 390 * (0.5 + st.rng.Float64())),
		BidPrice:  roundTo(ltp-spread/2, sym.TickSize),
		AskPrice:  roundTo(ltp+spread/2, sym.TickSize),
		Timestamp: now,
	}
}

func roundTo(value, tick float64) float64 {
	if tick <= 0 {
		return value
	}
	return math.Round(value/tick) * tick
}
