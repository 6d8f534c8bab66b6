package flow

import (
	"math"
	"time"

	"marketdesk/internal/models"
)

// Summarize aggregates option prints into a per-symbol summary.
// Sold premium counts against its side, so a sold call is bearish flow.
func Summarize(symbol string, events []models.FlowEvent, from, to time.Time) *models.FlowSummary {
	summary := &models.FlowSummary{
		Symbol: symbol,
		From:   from,
		To:     to,
		Events: len(events),
	}

	var directional float64
	for _, ev := range events {
		signed := ev.Premium
		if ev.Side == models.SideSell {
			signed = -ev.Premium
		}

		switch ev.Type {
		case models.OptionCall:
			summary.CallPremium += ev.Premium
			directional += signed
		case models.OptionPut:
			summary.PutPremium += ev.Premium
			directional -= signed
		}

		if ev.Unusual {
			summary.UnusualCount++
		}
		if ev.Premium > summary.LargestPremium {
			summary.LargestPremium = ev.Premium
			summary.LargestEventID = ev.ID
		}
	}

	if summary.CallPremium > 0 {
		summary.PutCallRatio = summary.PutPremium / summary.CallPremium
	}

	total := summary.CallPremium + summary.PutPremium
	if total > 0 {
		summary.NetSentiment = math.Max(-1, math.Min(1, directional/total))
	}
	return summary
}
