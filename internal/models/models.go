// Package models provides domain models for the market desk.
package models

import (
	"time"
)

// Sector represents a market sector in the simulated universe.
type Sector string

const (
	SectorTech       Sector = "TECH"
	SectorFinance    Sector = "FINANCE"
	SectorHealthcare Sector = "HEALTHCARE"
	SectorEnergy     Sector = "ENERGY"
	SectorConsumer   Sector = "CONSUMER"
	SectorIndustrial Sector = "INDUSTRIAL"
	SectorETF        Sector = "ETF"
)

// Symbol holds metadata for a simulated instrument.
type Symbol struct {
	Ticker    string  `csv:"ticker"`
	Name      string  `csv:"name"`
	Sector    Sector  `csv:"sector"`
	BasePrice float64 `csv:"base_price"`
	TickSize  float64 `csv:"tick_size"`
	VolMult   float64 `csv:"vol_mult"`
	AvgVolume int64   `csv:"avg_volume"`
}

// Timeframe represents a candle timeframe.
type Timeframe string

const (
	TimeframeMinute Timeframe = "1m"
	TimeframeFive   Timeframe = "5m"
	TimeframeHour   Timeframe = "1h"
	TimeframeDay    Timeframe = "1d"
)

// Duration returns the wall-clock duration of one candle.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case TimeframeMinute:
		return time.Minute
	case TimeframeFive:
		return 5 * time.Minute
	case TimeframeHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// MarketStatus represents the simulated session state.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Tick represents a simulated real-time price update.
type Tick struct {
	Symbol    string
	LTP       float64
	Open      float64
	High      float64
	Low       float64
	Close     float64 // previous session close
	Volume    int64
	BidPrice  float64
	AskPrice  float64
	Timestamp time.Time
}

// Quote represents a point-in-time market quote.
type Quote struct {
	Symbol        string
	LTP           float64
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        int64
	Change        float64
	ChangePercent float64
	Timestamp     time.Time
}

// Side represents the direction of a position or print.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)
