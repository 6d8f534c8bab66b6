package stream

import (
	"context"
	"testing"
	"time"

	"marketdesk/internal/models"
)

func TestAlertConditions(t *testing.T) {
	tests := []struct {
		name      string
		condition AlertCondition
		price     float64
		prevPrice float64
		tick      models.Tick
		want      bool
	}{
		{"above met", AlertConditionAbove, 190, 0, models.Tick{LTP: 191}, true},
		{"above not met", AlertConditionAbove, 190, 0, models.Tick{LTP: 189}, false},
		{"below met", AlertConditionBelow, 180, 0, models.Tick{LTP: 179.5}, true},
		{"below not met", AlertConditionBelow, 180, 0, models.Tick{LTP: 181}, false},
		{"percent change met", AlertConditionPercentChange, 2.0, 0, models.Tick{LTP: 102.5, Close: 100}, true},
		{"percent change down met", AlertConditionPercentChange, 2.0, 0, models.Tick{LTP: 97.5, Close: 100}, true},
		{"percent change not met", AlertConditionPercentChange, 2.0, 0, models.Tick{LTP: 101, Close: 100}, false},
		{"percent change no close", AlertConditionPercentChange, 2.0, 0, models.Tick{LTP: 101, Close: 0}, false},
		{"cross above met", AlertConditionCrossAbove, 190, 189, models.Tick{LTP: 190.5}, true},
		{"cross above already above", AlertConditionCrossAbove, 190, 191, models.Tick{LTP: 192}, false},
		{"cross above no prev", AlertConditionCrossAbove, 190, 0, models.Tick{LTP: 191}, false},
		{"cross below met", AlertConditionCrossBelow, 180, 181, models.Tick{LTP: 179}, true},
		{"cross below already below", AlertConditionCrossBelow, 180, 179, models.Tick{LTP: 178}, false},
		{"unknown condition", AlertCondition("bogus"), 100, 0, models.Tick{LTP: 200}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := &models.Alert{Condition: string(tt.condition), Price: tt.price}
			if got := isTriggered(alert, tt.tick, tt.prevPrice); got != tt.want {
				t.Errorf("isTriggered() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlertMonitorTriggerRemovesAlert(t *testing.T) {
	m := NewAlertMonitor(nil, nil)

	alert, err := m.CreateAlert(context.Background(), "NVAX", AlertConditionAbove, 190)
	if err != nil {
		t.Fatalf("CreateAlert() error = %v", err)
	}
	if m.AlertCount() != 1 {
		t.Fatalf("alert count = %d, want 1", m.AlertCount())
	}

	var fired *models.Alert
	m.SetOnTrigger(func(a *models.Alert, _ models.Tick) { fired = a })

	// Below the target: nothing fires.
	m.Check(models.Tick{Symbol: "NVAX", LTP: 185, Timestamp: time.Now()})
	if fired != nil {
		t.Fatal("alert fired below target")
	}

	m.Check(models.Tick{Symbol: "NVAX", LTP: 190.2, Timestamp: time.Now()})
	if fired == nil {
		t.Fatal("alert did not fire at target")
	}
	if fired.ID != alert.ID || !fired.Triggered || fired.TriggeredAt == nil {
		t.Errorf("fired alert = %+v, want triggered %s", fired, alert.ID)
	}
	if m.AlertCount() != 0 {
		t.Errorf("alert count after trigger = %d, want 0", m.AlertCount())
	}
}

func TestAlertMonitorCrossNeedsHistory(t *testing.T) {
	m := NewAlertMonitor(nil, nil)
	if _, err := m.CreateAlert(context.Background(), "NVAX", AlertConditionCrossAbove, 190); err != nil {
		t.Fatalf("CreateAlert() error = %v", err)
	}

	fired := false
	m.SetOnTrigger(func(*models.Alert, models.Tick) { fired = true })

	// First tick is above the target, but with no prior price it must not fire.
	m.Check(models.Tick{Symbol: "NVAX", LTP: 191, Timestamp: time.Now()})
	if fired {
		t.Fatal("cross alert fired without price history")
	}

	// Dip below, then cross back above.
	m.Check(models.Tick{Symbol: "NVAX", LTP: 188, Timestamp: time.Now()})
	m.Check(models.Tick{Symbol: "NVAX", LTP: 190.5, Timestamp: time.Now()})
	if !fired {
		t.Error("cross alert did not fire on upward cross")
	}
}

func TestAlertMonitorValidation(t *testing.T) {
	m := NewAlertMonitor(nil, nil)

	if _, err := m.CreateAlert(context.Background(), "NVAX", "sideways", 190); err == nil {
		t.Error("unknown condition accepted")
	}
	if _, err := m.CreateAlert(context.Background(), "NVAX", AlertConditionAbove, -5); err == nil {
		t.Error("negative price accepted")
	}
}

func TestAlertMonitorSymbols(t *testing.T) {
	m := NewAlertMonitor(nil, nil)
	ctx := context.Background()

	a, _ := m.CreateAlert(ctx, "NVAX", AlertConditionAbove, 190)
	m.CreateAlert(ctx, "FLUX", AlertConditionBelow, 300)

	symbols := m.Symbols()
	if len(symbols) != 2 {
		t.Fatalf("symbols = %v, want 2 entries", symbols)
	}

	m.RemoveAlert(a.ID)
	symbols = m.Symbols()
	if len(symbols) != 1 || symbols[0] != "FLUX" {
		t.Errorf("symbols after remove = %v, want [FLUX]", symbols)
	}

	stats := m.Stats()
	if stats.Pending != 1 || stats.ByCondition["below"] != 1 {
		t.Errorf("stats = %+v, want single below alert", stats)
	}
}
