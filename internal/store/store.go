// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"marketdesk/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol string, timeframe models.Timeframe, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, from, to time.Time) ([]models.Candle, error)
	GetCandlesFreshness(ctx context.Context, symbol string, timeframe models.Timeframe) (time.Time, error)

	// Analyses
	SaveAnalysis(ctx context.Context, analysis *models.Analysis) error
	GetAnalyses(ctx context.Context, filter AnalysisFilter) ([]models.Analysis, error)
	GetAnalysisByID(ctx context.Context, id string) (*models.Analysis, error)

	// Alerts
	SaveAlert(ctx context.Context, alert *models.Alert) error
	GetActiveAlerts(ctx context.Context) ([]models.Alert, error)
	TriggerAlert(ctx context.Context, alertID string) error
	DeleteAlert(ctx context.Context, alertID string) error

	// Options flow
	SaveFlowEvents(ctx context.Context, events []models.FlowEvent) error
	GetFlowEvents(ctx context.Context, symbol string, from, to time.Time) ([]models.FlowEvent, error)

	// Portfolio
	SaveSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error
	GetSnapshots(ctx context.Context, from, to time.Time) ([]models.PortfolioSnapshot, error)

	// Reports
	SaveReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, date time.Time) (*models.Report, error)
	ListReports(ctx context.Context, limit int) ([]models.Report, error)

	// Watchlist
	AddToWatchlist(ctx context.Context, symbol string) error
	RemoveFromWatchlist(ctx context.Context, symbol string) error
	GetWatchlist(ctx context.Context) ([]string, error)

	// Sync
	GetLastSync(dataType string) time.Time
	SetLastSync(dataType string, t time.Time) error

	// Lifecycle
	Close() error
}

// AnalysisFilter represents filters for querying analyses.
type AnalysisFilter struct {
	Symbol    string
	Signal    models.Signal
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
