package models

import "time"

// Report represents a generated market summary report.
type Report struct {
	ID          string
	Date        time.Time // trading day the report covers
	GeneratedAt time.Time
	Title       string
	Overview    string
	Movers      []Mover
	Signals     []SignalSummary
	Portfolio   *PortfolioSnapshot
	Flow        []FlowSummary
	Alerts      []Alert // alerts triggered during the covered period
}

// Mover represents a top gainer or loser line in a report.
type Mover struct {
	Symbol        string
	Close         float64
	Change        float64
	ChangePercent float64
	Volume        int64
}

// SignalSummary condenses one symbol's analysis for a report.
type SignalSummary struct {
	Symbol     string
	Signal     Signal
	Confidence float64
	Score      float64
}
