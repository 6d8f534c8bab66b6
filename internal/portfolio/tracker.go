// Package portfolio tracks a simulated long-only portfolio: positions,
// cash, and realized and unrealized P&L.
package portfolio

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marketdesk/internal/errors"
	"marketdesk/internal/logging"
	"marketdesk/internal/models"
)

// Tracker maintains portfolio state. All methods are safe for concurrent use.
type Tracker struct {
	mu          sync.RWMutex
	cash        float64
	realizedPnL float64
	positions   map[string]*models.Position
	logger      zerolog.Logger
}

// NewTracker creates a tracker with the given starting cash.
func NewTracker(initialCash float64, logger zerolog.Logger) *Tracker {
	if initialCash < 0 {
		initialCash = 0
	}
	return &Tracker{
		cash:      initialCash,
		positions: make(map[string]*models.Position),
		logger:    logger,
	}
}

// Buy opens or adds to a position at the given price. The cost must not
// exceed available cash; adds blend into the average price.
func (t *Tracker) Buy(symbol string, sector models.Sector, quantity int64, price float64) error {
	if quantity <= 0 {
		return errors.ErrInvalidQuantity
	}
	if price <= 0 {
		return errors.NewValidationError("price", price, "must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cost := float64(quantity) * price
	if cost > t.cash {
		return errors.ErrInsufficientCash
	}

	now := time.Now()
	pos, ok := t.positions[symbol]
	if !ok {
		t.positions[symbol] = &models.Position{
			Symbol:       symbol,
			Sector:       sector,
			Side:         models.SideBuy,
			Quantity:     quantity,
			AveragePrice: price,
			LastPrice:    price,
			OpenedAt:     now,
			UpdatedAt:    now,
		}
	} else {
		totalCost := pos.AveragePrice*float64(pos.Quantity) + cost
		pos.Quantity += quantity
		pos.AveragePrice = totalCost / float64(pos.Quantity)
		pos.LastPrice = price
		pos.UnrealizedPnL = (pos.LastPrice - pos.AveragePrice) * float64(pos.Quantity)
		pos.UpdatedAt = now
	}

	t.cash -= cost
	logging.LogPosition(t.logger, symbol, string(models.SideBuy), quantity, price)
	return nil
}

// Sell reduces or closes a position, realizing P&L against the average price.
// Selling more than the held quantity is rejected.
func (t *Tracker) Sell(symbol string, quantity int64, price float64) error {
	if quantity <= 0 {
		return errors.ErrInvalidQuantity
	}
	if price <= 0 {
		return errors.NewValidationError("price", price, "must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.positions[symbol]
	if !ok {
		return errors.ErrPositionNotFound
	}
	if quantity > pos.Quantity {
		return errors.ErrInvalidQuantity
	}

	proceeds := float64(quantity) * price
	realized := (price - pos.AveragePrice) * float64(quantity)

	pos.Quantity -= quantity
	pos.LastPrice = price
	pos.UpdatedAt = time.Now()
	if pos.Quantity == 0 {
		delete(t.positions, symbol)
	} else {
		pos.UnrealizedPnL = (pos.LastPrice - pos.AveragePrice) * float64(pos.Quantity)
	}

	t.cash += proceeds
	t.realizedPnL += realized
	logging.LogPosition(t.logger, symbol, string(models.SideSell), quantity, price)
	return nil
}

// Restore replaces the tracker's state with a persisted snapshot.
func (t *Tracker) Restore(snap *models.PortfolioSnapshot) {
	if snap == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cash = snap.Cash
	t.realizedPnL = snap.RealizedPnL
	t.positions = make(map[string]*models.Position, len(snap.Positions))
	for i := range snap.Positions {
		pos := snap.Positions[i]
		t.positions[pos.Symbol] = &pos
	}
}

// Mark updates last prices from current quotes and recomputes unrealized P&L.
func (t *Tracker) Mark(prices map[string]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for symbol, pos := range t.positions {
		if price, ok := prices[symbol]; ok && price > 0 {
			pos.LastPrice = price
			pos.UnrealizedPnL = (price - pos.AveragePrice) * float64(pos.Quantity)
			pos.UpdatedAt = time.Now()
		}
	}
}

// Position returns a copy of one position.
func (t *Tracker) Position(symbol string) (models.Position, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pos, ok := t.positions[symbol]
	if !ok {
		return models.Position{}, errors.ErrPositionNotFound
	}
	return *pos, nil
}

// Cash returns available cash.
func (t *Tracker) Cash() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cash
}

// Snapshot summarizes the portfolio at a point in time.
func (t *Tracker) Snapshot(at time.Time) *models.PortfolioSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := &models.PortfolioSnapshot{
		Timestamp:      at,
		Cash:           t.cash,
		RealizedPnL:    t.realizedPnL,
		Positions:      make([]models.Position, 0, len(t.positions)),
		SectorExposure: make(map[models.Sector]float64),
	}

	for _, pos := range t.positions {
		value := pos.LastPrice * float64(pos.Quantity)
		snap.MarketValue += value
		snap.UnrealizedPnL += pos.UnrealizedPnL
		snap.SectorExposure[pos.Sector] += value
		snap.Positions = append(snap.Positions, *pos)
	}
	snap.TotalEquity = snap.Cash + snap.MarketValue

	// Exposure as a fraction of invested value.
	if snap.MarketValue > 0 {
		for sector, value := range snap.SectorExposure {
			snap.SectorExposure[sector] = value / snap.MarketValue
		}
	}
	return snap
}
