package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"marketdesk/internal/analysis"
	"marketdesk/internal/models"
	"marketdesk/internal/store"
)

func testStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func savedAnalysis(id, symbol string, signal models.Signal, confidence float64) *models.Analysis {
	return &models.Analysis{
		ID:          id,
		Symbol:      symbol,
		Timestamp:   time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC),
		Signal:      signal,
		Confidence:  confidence,
		PriceTarget: 210.50,
		StopLoss:    190.25,
		ComponentScores: map[string]float64{
			"trend": 42.0,
		},
		Consensus: &models.ConsensusDetails{TotalModels: 5, AgreeingModels: 4, WeightedScore: 38.2},
		Reasoning: "uptrend with volume confirmation",
	}
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("command error = %v", err)
	}
	return buf.String()
}

func TestAnalyzeListShowsSavedAnalyses(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.SaveAnalysis(ctx, savedAnalysis("a1", "NVAX", models.SignalBuy, 82)); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	if err := st.SaveAnalysis(ctx, savedAnalysis("a2", "FLUX", models.SignalSell, 64)); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	app := &App{Store: st}
	out := runCommand(t, newAnalyzeListCmd(app))

	if !strings.Contains(out, "NVAX") || !strings.Contains(out, "FLUX") {
		t.Errorf("list output missing saved symbols:\n%s", out)
	}
	if !strings.Contains(out, "82.0%") {
		t.Errorf("list output missing confidence:\n%s", out)
	}
}

func TestAnalyzeListFiltersBySymbol(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.SaveAnalysis(ctx, savedAnalysis("a1", "NVAX", models.SignalBuy, 82)); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	if err := st.SaveAnalysis(ctx, savedAnalysis("a2", "FLUX", models.SignalSell, 64)); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	app := &App{Store: st}
	out := runCommand(t, newAnalyzeListCmd(app), "--symbol", "NVAX")

	if !strings.Contains(out, "NVAX") {
		t.Errorf("filtered output missing NVAX:\n%s", out)
	}
	if strings.Contains(out, "FLUX") {
		t.Errorf("filtered output leaked FLUX:\n%s", out)
	}
}

func TestAnalyzeShowRendersSavedAnalysis(t *testing.T) {
	st := testStore(t)
	if err := st.SaveAnalysis(context.Background(), savedAnalysis("a1", "NVAX", models.SignalBuy, 82)); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	app := &App{Store: st}
	out := runCommand(t, newAnalyzeShowCmd(app), "a1")

	if !strings.Contains(out, "NVAX analysis") {
		t.Errorf("show output missing header:\n%s", out)
	}
	if !strings.Contains(out, "210.50") || !strings.Contains(out, "190.25") {
		t.Errorf("show output missing price levels:\n%s", out)
	}
	if !strings.Contains(out, "uptrend with volume confirmation") {
		t.Errorf("show output missing reasoning:\n%s", out)
	}
}

func TestPrintAnalysisIncludesComposite(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, false)

	composite := &analysis.SignalScore{
		Score:          41.5,
		Recommendation: analysis.Buy,
		VolumeConfirm:  true,
		Components: map[string]float64{
			"rsi":  35.0,
			"macd": 48.0,
		},
	}
	printAnalysis(output, savedAnalysis("a1", "NVAX", models.SignalBuy, 82), composite)

	out := buf.String()
	if !strings.Contains(out, "Indicator composite") {
		t.Fatalf("output missing composite section:\n%s", out)
	}
	if !strings.Contains(out, "+41.5") {
		t.Errorf("output missing composite score:\n%s", out)
	}
	if !strings.Contains(out, "Recommendation: BUY") {
		t.Errorf("output missing recommendation:\n%s", out)
	}
	if !strings.Contains(out, "rsi") || !strings.Contains(out, "macd") {
		t.Errorf("output missing indicator rows:\n%s", out)
	}
}
