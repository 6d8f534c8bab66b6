package stream

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "marketdesk/internal/errors"
	"marketdesk/internal/models"
	"marketdesk/internal/notify"
	"marketdesk/internal/store"
)

// AlertCondition represents the type of alert condition.
type AlertCondition string

const (
	// AlertConditionAbove triggers while price is at or above the target.
	AlertConditionAbove AlertCondition = "above"
	// AlertConditionBelow triggers while price is at or below the target.
	AlertConditionBelow AlertCondition = "below"
	// AlertConditionPercentChange triggers when price moves by a percentage
	// from the previous session close. The alert price holds the percentage.
	AlertConditionPercentChange AlertCondition = "percent_change"
	// AlertConditionCrossAbove triggers when price crosses up through the target.
	AlertConditionCrossAbove AlertCondition = "cross_above"
	// AlertConditionCrossBelow triggers when price crosses down through the target.
	AlertConditionCrossBelow AlertCondition = "cross_below"
)

// ValidCondition reports whether s names a supported alert condition.
func ValidCondition(s string) bool {
	switch AlertCondition(s) {
	case AlertConditionAbove, AlertConditionBelow, AlertConditionPercentChange,
		AlertConditionCrossAbove, AlertConditionCrossBelow:
		return true
	}
	return false
}

// AlertMonitor watches the tape for alert conditions. It implements the
// Consumer interface so the hub pushes ticks into it.
type AlertMonitor struct {
	store    store.DataStore
	notifier notify.Notifier

	mu     sync.RWMutex
	alerts map[string][]*alertState // symbol -> pending alerts

	// Previous tick prices, needed by cross conditions.
	prevMu     sync.RWMutex
	prevPrices map[string]float64

	onTrigger func(*models.Alert, models.Tick)
}

type alertState struct {
	alert       *models.Alert
	lastChecked time.Time
}

// NewAlertMonitor creates an alert monitor backed by the given store and
// notifier. Either may be nil.
func NewAlertMonitor(dataStore store.DataStore, notifier notify.Notifier) *AlertMonitor {
	return &AlertMonitor{
		store:      dataStore,
		notifier:   notifier,
		alerts:     make(map[string][]*alertState),
		prevPrices: make(map[string]float64),
	}
}

// SetOnTrigger sets a callback invoked when an alert fires.
func (m *AlertMonitor) SetOnTrigger(fn func(*models.Alert, models.Tick)) {
	m.onTrigger = fn
}

// LoadAlerts replaces the in-memory alert set with the store's active alerts.
func (m *AlertMonitor) LoadAlerts(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	alerts, err := m.store.GetActiveAlerts(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = make(map[string][]*alertState)
	for i := range alerts {
		alert := &alerts[i]
		m.alerts[alert.Symbol] = append(m.alerts[alert.Symbol], &alertState{alert: alert})
	}

	return nil
}

// CreateAlert validates, persists, and starts monitoring a new alert.
func (m *AlertMonitor) CreateAlert(ctx context.Context, symbol string, condition AlertCondition, price float64) (*models.Alert, error) {
	if !ValidCondition(string(condition)) {
		return nil, apperrors.NewValidationError("condition", string(condition), "unknown alert condition")
	}
	if price <= 0 {
		return nil, apperrors.NewValidationError("price", price, "must be positive")
	}

	alert := &models.Alert{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Condition: string(condition),
		Price:     price,
		CreatedAt: time.Now(),
	}

	if m.store != nil {
		if err := m.store.SaveAlert(ctx, alert); err != nil {
			return nil, err
		}
	}

	m.AddAlert(alert)
	return alert, nil
}

// AddAlert starts monitoring an existing alert.
func (m *AlertMonitor) AddAlert(alert *models.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[alert.Symbol] = append(m.alerts[alert.Symbol], &alertState{alert: alert})
}

// RemoveAlert stops monitoring an alert by ID.
func (m *AlertMonitor) RemoveAlert(alertID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(alertID)
}

func (m *AlertMonitor) removeLocked(alertID string) {
	for symbol, states := range m.alerts {
		for i, state := range states {
			if state.alert.ID == alertID {
				m.alerts[symbol] = append(states[:i], states[i+1:]...)
				if len(m.alerts[symbol]) == 0 {
					delete(m.alerts, symbol)
				}
				return
			}
		}
	}
}

// GetAlerts returns all pending alerts.
func (m *AlertMonitor) GetAlerts() []*models.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var alerts []*models.Alert
	for _, states := range m.alerts {
		for _, state := range states {
			alerts = append(alerts, state.alert)
		}
	}
	return alerts
}

// GetAlertsForSymbol returns pending alerts for one symbol.
func (m *AlertMonitor) GetAlertsForSymbol(symbol string) []*models.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var alerts []*models.Alert
	for _, state := range m.alerts[symbol] {
		alerts = append(alerts, state.alert)
	}
	return alerts
}

// AlertCount returns the number of pending alerts.
func (m *AlertMonitor) AlertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, states := range m.alerts {
		count += len(states)
	}
	return count
}

// OnTick implements Consumer.
func (m *AlertMonitor) OnTick(tick models.Tick) {
	m.Check(tick)
}

// Symbols implements Consumer. Only symbols with pending alerts are watched.
func (m *AlertMonitor) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.alerts))
	for symbol := range m.alerts {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Check evaluates all pending alerts for the tick's symbol.
func (m *AlertMonitor) Check(tick models.Tick) {
	m.mu.RLock()
	states := make([]*alertState, len(m.alerts[tick.Symbol]))
	copy(states, m.alerts[tick.Symbol])
	m.mu.RUnlock()

	m.prevMu.RLock()
	prevPrice := m.prevPrices[tick.Symbol]
	m.prevMu.RUnlock()

	for _, state := range states {
		if state.alert.Triggered {
			continue
		}
		state.lastChecked = tick.Timestamp
		if isTriggered(state.alert, tick, prevPrice) {
			m.trigger(state.alert, tick)
		}
	}

	m.prevMu.Lock()
	m.prevPrices[tick.Symbol] = tick.LTP
	m.prevMu.Unlock()
}

func isTriggered(alert *models.Alert, tick models.Tick, prevPrice float64) bool {
	switch AlertCondition(alert.Condition) {
	case AlertConditionAbove:
		return tick.LTP >= alert.Price

	case AlertConditionBelow:
		return tick.LTP <= alert.Price

	case AlertConditionPercentChange:
		if tick.Close == 0 {
			return false
		}
		change := math.Abs((tick.LTP - tick.Close) / tick.Close * 100)
		return change >= alert.Price

	case AlertConditionCrossAbove:
		// Needs a prior price on the wrong side of the target.
		return prevPrice != 0 && prevPrice < alert.Price && tick.LTP >= alert.Price

	case AlertConditionCrossBelow:
		return prevPrice != 0 && prevPrice > alert.Price && tick.LTP <= alert.Price

	default:
		return false
	}
}

func (m *AlertMonitor) trigger(alert *models.Alert, tick models.Tick) {
	alert.Triggered = true
	now := time.Now()
	alert.TriggeredAt = &now

	ctx := context.Background()
	if m.store != nil {
		m.store.TriggerAlert(ctx, alert.ID)
	}
	if m.notifier != nil {
		m.notifier.SendAlert(ctx, alert, tick)
	}
	if m.onTrigger != nil {
		m.onTrigger(alert, tick)
	}

	m.mu.Lock()
	m.removeLocked(alert.ID)
	m.mu.Unlock()
}

// AlertStats summarizes the monitor's pending alerts.
type AlertStats struct {
	Pending     int
	BySymbol    map[string]int
	ByCondition map[string]int
}

// Stats returns alert statistics.
func (m *AlertMonitor) Stats() AlertStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := AlertStats{
		BySymbol:    make(map[string]int),
		ByCondition: make(map[string]int),
	}
	for symbol, states := range m.alerts {
		for _, state := range states {
			stats.Pending++
			stats.BySymbol[symbol]++
			stats.ByCondition[state.alert.Condition]++
		}
	}
	return stats
}
