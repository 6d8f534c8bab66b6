package models

import "time"

// Alert represents a price alert.
type Alert struct {
	ID          string
	Symbol      string
	Condition   string // above, below, percent_change, cross_above, cross_below
	Price       float64
	Triggered   bool
	CreatedAt   time.Time
	TriggeredAt *time.Time
}
