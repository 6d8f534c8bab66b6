package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketdesk/internal/config"
	"marketdesk/internal/models"
)

func TestSessionStatus(t *testing.T) {
	s := NewSession(config.Clock{Hour: 9, Minute: 30}, config.Clock{Hour: 16, Minute: 0})

	// 2026-03-02 is a Monday.
	tests := []struct {
		name string
		at   time.Time
		want models.MarketStatus
	}{
		{"before pre-open", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), models.MarketClosed},
		{"pre-open", time.Date(2026, 3, 2, 9, 20, 0, 0, time.UTC), models.MarketPreOpen},
		{"at open", time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), models.MarketOpen},
		{"midday", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), models.MarketOpen},
		{"at close", time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC), models.MarketClosed},
		{"evening", time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC), models.MarketClosed},
		{"saturday midday", time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC), models.MarketClosed},
		{"sunday midday", time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), models.MarketClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Status(tt.at); got != tt.want {
				t.Errorf("Status(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestSessionNextOpenSkipsWeekend(t *testing.T) {
	s := NewSession(config.Clock{Hour: 9, Minute: 30}, config.Clock{Hour: 16, Minute: 0})

	// Friday evening rolls to Monday morning.
	friday := time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC)
	next := s.NextOpen(friday)
	want := time.Date(2026, 3, 9, 9, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextOpen(%v) = %v, want %v", friday, next, want)
	}
}

func TestLoadUniverse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.csv")
	csv := "ticker,name,sector,base_price,tick_size,vol_mult,avg_volume\n" +
		"ZZZT,Test Corp,TECH,50.00,0.01,1.2,100000\n" +
		"ZZZF,Fin Corp,FINANCE,80.00,0,0,0\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	symbols, err := LoadUniverse(path)
	if err != nil {
		t.Fatalf("LoadUniverse() error = %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want 2", len(symbols))
	}
	// Zero-valued optional columns fall back to defaults.
	if symbols[1].TickSize != 0.01 || symbols[1].VolMult != 1.0 || symbols[1].AvgVolume != 1000000 {
		t.Errorf("defaults not applied: %+v", symbols[1])
	}
}

func TestLoadUniverseRejectsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.csv")
	csv := "ticker,name,sector,base_price,tick_size,vol_mult,avg_volume\n" +
		"BAD,No Price,TECH,0,0.01,1.0,100000\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadUniverse(path); err == nil {
		t.Error("row with zero base price accepted")
	}
}

func TestBySector(t *testing.T) {
	groups := BySector(DefaultUniverse())
	if len(groups[models.SectorTech]) != 5 {
		t.Errorf("tech sector has %d symbols, want 5", len(groups[models.SectorTech]))
	}
	total := 0
	for _, syms := range groups {
		total += len(syms)
	}
	if total != len(DefaultUniverse()) {
		t.Errorf("sector groups cover %d symbols, want %d", total, len(DefaultUniverse()))
	}
}
