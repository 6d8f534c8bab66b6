package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marketdesk/internal/logging"
	"marketdesk/internal/market"
	"marketdesk/internal/models"
)

// Refresher drives the simulated tape. On every interval it pulls a fresh
// tick for each tracked symbol from the generator and publishes it to the hub.
type Refresher struct {
	generator *market.Generator
	hub       *Hub
	session   *market.Session
	interval  time.Duration
	logger    zerolog.Logger

	mu      sync.RWMutex
	symbols []string
}

// NewRefresher creates a refresher over the given generator and hub.
// A nil session means the tape never sleeps.
func NewRefresher(generator *market.Generator, hub *Hub, session *market.Session, interval time.Duration, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	symbols := make([]string, 0, len(generator.Symbols()))
	for _, sym := range generator.Symbols() {
		symbols = append(symbols, sym.Ticker)
	}

	return &Refresher{
		generator: generator,
		hub:       hub,
		session:   session,
		interval:  interval,
		logger:    logging.WithComponent(logger, "refresher"),
		symbols:   symbols,
	}
}

// SetSymbols narrows the tape to the given tickers. Empty restores the
// full universe.
func (r *Refresher) SetSymbols(symbols []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(symbols) == 0 {
		symbols = make([]string, 0, len(r.generator.Symbols()))
		for _, sym := range r.generator.Symbols() {
			symbols = append(symbols, sym.Ticker)
		}
	}
	r.symbols = symbols
}

// Run pumps ticks until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("tape started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("tape stopped")
			return
		case now := <-ticker.C:
			if r.session != nil && !r.session.IsOpen(now) {
				continue
			}
			r.pump(now)
		}
	}
}

func (r *Refresher) pump(now time.Time) {
	r.mu.RLock()
	symbols := r.symbols
	r.mu.RUnlock()

	for _, ticker := range symbols {
		tick, err := r.generator.Tick(ticker, now)
		if err != nil {
			r.logger.Warn().Err(err).Str("symbol", ticker).Msg("tick generation failed")
			continue
		}
		r.hub.Publish(tick)
	}
}

// Snapshot returns one tick per tracked symbol without publishing, for
// one-shot displays.
func (r *Refresher) Snapshot(now time.Time) []models.Tick {
	r.mu.RLock()
	symbols := r.symbols
	r.mu.RUnlock()

	ticks := make([]models.Tick, 0, len(symbols))
	for _, ticker := range symbols {
		tick, err := r.generator.Tick(ticker, now)
		if err != nil {
			continue
		}
		ticks = append(ticks, tick)
	}
	return ticks
}
