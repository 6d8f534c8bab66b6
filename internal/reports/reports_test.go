package reports

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"marketdesk/internal/ai"
	"marketdesk/internal/analysis/sentiment"
	"marketdesk/internal/config"
	apperrors "marketdesk/internal/errors"
	"marketdesk/internal/flow"
	"marketdesk/internal/market"
	"marketdesk/internal/models"
	"marketdesk/internal/portfolio"
)

func TestIntervalSchedulerRuns(t *testing.T) {
	var runs int64
	job := func(context.Context, time.Time) error {
		atomic.AddInt64(&runs, 1)
		return nil
	}

	s := NewIntervalScheduler("test", 20*time.Millisecond, job, zerolog.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := s.Start(context.Background()); !apperrors.Is(err, apperrors.ErrSchedulerRunning) {
		t.Errorf("second Start() error = %v, want ErrSchedulerRunning", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&runs) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt64(&runs) < 2 {
		t.Fatalf("job ran %d times, want at least 2", runs)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(); !apperrors.Is(err, apperrors.ErrSchedulerStopped) {
		t.Errorf("second Stop() error = %v, want ErrSchedulerStopped", err)
	}

	got := atomic.LoadInt64(&runs)
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt64(&runs) != got {
		t.Error("job ran after Stop")
	}
}

func TestSchedulerRecoversFromPanic(t *testing.T) {
	var runs int64
	job := func(context.Context, time.Time) error {
		if atomic.AddInt64(&runs, 1) == 1 {
			panic("boom")
		}
		return nil
	}

	s := NewIntervalScheduler("panicky", 20*time.Millisecond, job, zerolog.Nop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&runs) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt64(&runs) < 2 {
		t.Fatal("scheduler did not survive a panicking job")
	}

	_, failures := s.Runs()
	if failures < 1 {
		t.Errorf("failures = %d, want at least 1", failures)
	}
}

func TestDailyNextRunSkipsMissed(t *testing.T) {
	s := NewDailyScheduler("daily", config.Clock{Hour: 16, Minute: 30}, nil, zerolog.Nop())

	// Well past today's slot: the next run lands tomorrow, not in the past.
	now := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
	next := s.nextRun(now)
	want := time.Date(2026, 3, 3, 16, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("nextRun(%v) = %v, want %v", now, next, want)
	}

	before := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	next = s.nextRun(before)
	want = time.Date(2026, 3, 2, 16, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("nextRun(%v) = %v, want %v", before, next, want)
	}
}

func testDeps(t *testing.T) Deps {
	t.Helper()

	universe := market.DefaultUniverse()[:4]
	return Deps{
		Market:    market.NewGenerator(42, universe),
		Sentiment: sentiment.NewEngine(42),
		Ensemble:  ai.NewEnsemble(config.AIConfig{}, zerolog.Nop()),
		Flow:      flow.NewGenerator(42),
		Tracker:   portfolio.NewTracker(100000, zerolog.Nop()),
	}
}

func TestGenerateReport(t *testing.T) {
	deps := testDeps(t)
	g := NewGenerator(deps, 3, zerolog.Nop())

	asOf := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)
	trig := models.Alert{ID: "al1", Symbol: "NVAX", Condition: "above", Price: 190, Triggered: true}
	g.RecordTriggeredAlert(&trig, models.Tick{Symbol: "NVAX"})

	report, err := g.Generate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if report.ID == "" || report.Title == "" {
		t.Error("report missing ID or title")
	}
	if !report.Date.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("report date = %v, want midnight of asOf day", report.Date)
	}
	if len(report.Movers) == 0 || len(report.Movers) > 3 {
		t.Errorf("got %d movers, want 1..3", len(report.Movers))
	}
	if len(report.Signals) == 0 {
		t.Fatal("no signals in report")
	}
	for i := 1; i < len(report.Signals); i++ {
		if report.Signals[i].Confidence > report.Signals[i-1].Confidence {
			t.Errorf("signals not sorted by confidence at %d", i)
		}
	}
	for _, s := range report.Signals {
		if s.Confidence < 0 || s.Confidence > 100 {
			t.Errorf("signal %s confidence %.1f out of range", s.Symbol, s.Confidence)
		}
	}
	if len(report.Flow) != len(report.Movers) {
		t.Errorf("got %d flow summaries for %d movers", len(report.Flow), len(report.Movers))
	}
	if report.Portfolio == nil {
		t.Error("report missing portfolio snapshot")
	}
	if len(report.Alerts) != 1 || report.Alerts[0].ID != "al1" {
		t.Errorf("report alerts = %+v, want recorded al1", report.Alerts)
	}
	if report.Overview == "" {
		t.Error("report missing overview")
	}

	// Recorded alerts are drained by generation.
	second, err := g.Generate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	if len(second.Alerts) != 0 {
		t.Errorf("second report alerts = %+v, want none", second.Alerts)
	}
}

func TestGenerateReportDeterministicMovers(t *testing.T) {
	asOf := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)

	first, err := NewGenerator(testDeps(t), 3, zerolog.Nop()).Generate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := NewGenerator(testDeps(t), 3, zerolog.Nop()).Generate(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(first.Movers) != len(second.Movers) {
		t.Fatalf("mover counts differ: %d vs %d", len(first.Movers), len(second.Movers))
	}
	for i := range first.Movers {
		if first.Movers[i] != second.Movers[i] {
			t.Errorf("mover %d differs across identically seeded runs", i)
		}
	}
}
