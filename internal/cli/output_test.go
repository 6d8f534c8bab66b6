package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"marketdesk/internal/models"
)

func testOutput(buf *bytes.Buffer, color bool) *Output {
	return &Output{writer: buf, colorEnabled: color}
}

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, false)

	table := NewTable(output, "SYMBOL", "PRICE")
	table.AddRow("NVAX", "182.50")
	table.AddRow("FLUX", "9.75")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines", len(lines))
	}

	// Every row should start its second column at the same offset.
	headerIdx := strings.Index(lines[0], "PRICE")
	if headerIdx < 0 {
		t.Fatalf("header missing PRICE column: %q", lines[0])
	}
	if idx := strings.Index(lines[2], "182.50"); idx != headerIdx {
		t.Errorf("first row misaligned: got offset %d, want %d", idx, headerIdx)
	}
	if idx := strings.Index(lines[3], "9.75"); idx != headerIdx {
		t.Errorf("second row misaligned: got offset %d, want %d", idx, headerIdx)
	}
}

func TestTableColoredCellsDoNotSkewWidths(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, true)

	table := NewTable(output, "SYMBOL", "P&L")
	table.AddRow("NVAX", output.Green("+$100.00"))
	table.AddRow("FLUX", "-$50.00")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	stripped := make([]string, len(lines))
	for i, line := range lines {
		stripped[i] = stripANSI(line)
	}

	// After stripping color codes both data rows should have equal width.
	if len(stripped[2]) != len(stripped[3]) {
		t.Errorf("rows differ in visible width: %q vs %q", stripped[2], stripped[3])
	}
}

func TestSignalColors(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, true)

	if got := output.Signal(models.SignalBuy); !strings.Contains(got, ColorGreen) {
		t.Errorf("BUY should be green, got %q", got)
	}
	if got := output.Signal(models.SignalSell); !strings.Contains(got, ColorRed) {
		t.Errorf("SELL should be red, got %q", got)
	}
	if got := output.Signal(models.SignalHold); !strings.Contains(got, ColorYellow) {
		t.Errorf("HOLD should be yellow, got %q", got)
	}
}

func TestMarketStatusRendering(t *testing.T) {
	var buf bytes.Buffer
	output := testOutput(&buf, false)

	if got := output.MarketStatus(models.MarketOpen); got != "OPEN" {
		t.Errorf("MarketStatus(OPEN) = %q", got)
	}
	if got := output.MarketStatus(models.MarketPreOpen); got != "PRE-OPEN" {
		t.Errorf("MarketStatus(PRE_OPEN) = %q", got)
	}
	if got := output.MarketStatus(models.MarketClosed); got != "CLOSED" {
		t.Errorf("MarketStatus(CLOSED) = %q", got)
	}
}

// stripANSI must be the inverse of colorizing: wrapping any plain text in
// any color then stripping returns the original text.
func TestProperty_StripANSIRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	colors := []string{ColorRed, ColorGreen, ColorYellow, ColorCyan, ColorBold, ColorDim}

	properties.Property("stripANSI removes applied colors", prop.ForAll(
		func(text string, colorIdx int) bool {
			// ANSI escapes inside the input itself are out of scope.
			if strings.ContainsRune(text, '\033') {
				return true
			}
			color := colors[colorIdx%len(colors)]
			return stripANSI(color+text+ColorReset) == text
		},
		gen.AlphaString(),
		gen.IntRange(0, len(colors)-1),
	))

	properties.TestingRun(t)
}
