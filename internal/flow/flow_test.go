package flow

import (
	"testing"
	"time"

	"marketdesk/internal/models"
)

func TestEventsDeterministic(t *testing.T) {
	end := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)

	first, err := NewGenerator(42).Events("NVAX", 185.0, 0.3, 6*time.Hour, end)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	second, err := NewGenerator(42).Events("NVAX", 185.0, 0.3, 6*time.Hour, end)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("event counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Strike != second[i].Strike || first[i].Premium != second[i].Premium {
			t.Errorf("event %d differs across runs with the same seed", i)
		}
	}

	other, err := NewGenerator(43).Events("NVAX", 185.0, 0.3, 6*time.Hour, end)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	same := len(other) == len(first)
	if same {
		for i := range first {
			if first[i].Premium != other[i].Premium {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical tapes")
	}
}

func TestEventsWellFormed(t *testing.T) {
	end := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	window := 6 * time.Hour

	events, err := NewGenerator(7).Events("FLUX", 310.0, -0.5, window, end)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no events generated")
	}

	start := end.Add(-window)
	var prev time.Time
	for i, ev := range events {
		if ev.ID == "" {
			t.Errorf("event %d: empty ID", i)
		}
		if ev.Strike <= 0 || ev.Premium <= 0 || ev.Contracts <= 0 {
			t.Errorf("event %d: non-positive strike/premium/contracts", i)
		}
		if ev.Timestamp.Before(start) || ev.Timestamp.After(end) {
			t.Errorf("event %d: timestamp %v outside window", i, ev.Timestamp)
		}
		if ev.Timestamp.Before(prev) {
			t.Errorf("event %d: out of order", i)
		}
		prev = ev.Timestamp
		if ev.Expiry.Weekday() != time.Friday {
			t.Errorf("event %d: expiry %v not a Friday", i, ev.Expiry)
		}
		if ev.Unusual != (ev.Premium >= unusualPremium) {
			t.Errorf("event %d: unusual flag inconsistent with premium %.0f", i, ev.Premium)
		}
	}
}

func TestEventsInvalidInput(t *testing.T) {
	g := NewGenerator(1)
	if _, err := g.Events("NVAX", 0, 0, time.Hour, time.Now()); err == nil {
		t.Error("zero spot accepted")
	}
	if _, err := g.Events("NVAX", 100, 0, 0, time.Now()); err == nil {
		t.Error("zero window accepted")
	}
}

func TestSummarize(t *testing.T) {
	from := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	to := from.Add(6 * time.Hour)

	events := []models.FlowEvent{
		{ID: "a", Type: models.OptionCall, Side: models.SideBuy, Premium: 600000, Unusual: true},
		{ID: "b", Type: models.OptionCall, Side: models.SideSell, Premium: 100000},
		{ID: "c", Type: models.OptionPut, Side: models.SideBuy, Premium: 200000},
	}

	s := Summarize("NVAX", events, from, to)

	if s.Events != 3 {
		t.Errorf("events = %d, want 3", s.Events)
	}
	if s.CallPremium != 700000 || s.PutPremium != 200000 {
		t.Errorf("premiums = %.0f / %.0f, want 700000 / 200000", s.CallPremium, s.PutPremium)
	}
	if want := 200000.0 / 700000.0; s.PutCallRatio != want {
		t.Errorf("put/call ratio = %.4f, want %.4f", s.PutCallRatio, want)
	}
	if s.UnusualCount != 1 {
		t.Errorf("unusual count = %d, want 1", s.UnusualCount)
	}
	if s.LargestEventID != "a" {
		t.Errorf("largest event = %s, want a", s.LargestEventID)
	}
	// Bought calls minus sold calls minus bought puts: (600k - 100k - 200k) / 900k.
	if want := 300000.0 / 900000.0; s.NetSentiment != want {
		t.Errorf("net sentiment = %.4f, want %.4f", s.NetSentiment, want)
	}
	if s.NetSentiment < -1 || s.NetSentiment > 1 {
		t.Errorf("net sentiment %.3f out of [-1, 1]", s.NetSentiment)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize("NVAX", nil, time.Now(), time.Now())
	if s.Events != 0 || s.PutCallRatio != 0 || s.NetSentiment != 0 {
		t.Errorf("empty summary not zeroed: %+v", s)
	}
}
