package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"marketdesk/internal/ai"
	"marketdesk/internal/analysis/sentiment"
	"marketdesk/internal/config"
	"marketdesk/internal/flow"
	"marketdesk/internal/market"
	"marketdesk/internal/portfolio"
)

func scheduleTestApp() *App {
	universe := market.DefaultUniverse()[:3]
	return &App{
		Config: &config.Config{
			Reports: config.ReportsConfig{DailyAt: "16:30", TopN: 2},
		},
		Logger:    zerolog.Nop(),
		Market:    market.NewGenerator(42, universe),
		Sentiment: sentiment.NewEngine(42),
		Ensemble:  ai.NewEnsemble(config.AIConfig{}, zerolog.Nop()),
		Flow:      flow.NewGenerator(42),
		Tracker:   portfolio.NewTracker(100000, zerolog.Nop()),
	}
}

func TestReportScheduleIntervalRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	cmd := newReportScheduleCmd(scheduleTestApp())
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--every", "100ms"})

	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("schedule command error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "every 100ms") {
		t.Errorf("output missing interval notice:\n%s", out)
	}
	if !strings.Contains(out, "completed") {
		t.Errorf("output missing run summary:\n%s", out)
	}
}

func TestReportScheduleRejectsBadClock(t *testing.T) {
	cmd := newReportScheduleCmd(scheduleTestApp())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--at", "25:99"})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("expected error for invalid HH:MM value")
	}
}
