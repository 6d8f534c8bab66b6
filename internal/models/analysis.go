package models

import "time"

// Signal represents a trading signal direction.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Analysis represents the output of the model ensemble for one symbol.
type Analysis struct {
	ID              string
	Symbol          string
	Timestamp       time.Time
	Signal          Signal
	Confidence      float64 // 0-100
	PriceTarget     float64
	StopLoss        float64
	ComponentScores map[string]float64 // model name -> score in [-100, 100]
	Consensus       *ConsensusDetails
	Reasoning       string
	Narrative       string // optional LLM commentary
}

// ConsensusDetails records how the ensemble combined its models.
type ConsensusDetails struct {
	TotalModels    int
	AgreeingModels int
	WeightedScore  float64
}

// SentimentSnapshot represents simulated sentiment for one symbol.
type SentimentSnapshot struct {
	Symbol         string
	Timestamp      time.Time
	Score          float64 // -1 (bearish) to +1 (bullish)
	NewsCount      int
	SocialMentions int
	Trending       bool
}
