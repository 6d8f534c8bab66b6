package models

import "time"

// OptionType represents the option contract type.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// PrintType classifies how an options order hit the tape.
type PrintType string

const (
	PrintSweep PrintType = "SWEEP"
	PrintBlock PrintType = "BLOCK"
	PrintSplit PrintType = "SPLIT"
)

// FlowEvent represents one simulated options flow print.
type FlowEvent struct {
	ID           string
	Symbol       string
	Timestamp    time.Time
	Type         OptionType
	Print        PrintType
	Side         Side // aggressor side
	Strike       float64
	Spot         float64
	Expiry       time.Time
	Contracts    int64
	Premium      float64 // total premium in currency units
	OpenInterest int64
	Unusual      bool
}

// FlowSummary aggregates flow events for one symbol.
type FlowSummary struct {
	Symbol         string
	From           time.Time
	To             time.Time
	Events         int
	CallPremium    float64
	PutPremium     float64
	PutCallRatio   float64 // put premium / call premium
	NetSentiment   float64 // -1 bearish .. +1 bullish
	UnusualCount   int
	LargestPremium float64
	LargestEventID string
}
