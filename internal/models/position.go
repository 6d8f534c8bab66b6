package models

import "time"

// Position represents an open simulated position.
type Position struct {
	Symbol        string
	Sector        Sector
	Side          Side
	Quantity      int64
	AveragePrice  float64
	LastPrice     float64
	UnrealizedPnL float64
	OpenedAt      time.Time
	UpdatedAt     time.Time
}

// PortfolioSnapshot represents the portfolio state at a point in time.
type PortfolioSnapshot struct {
	Timestamp      time.Time
	Cash           float64
	MarketValue    float64
	TotalEquity    float64
	UnrealizedPnL  float64
	RealizedPnL    float64
	Positions      []Position
	SectorExposure map[Sector]float64 // fraction of market value per sector
}
