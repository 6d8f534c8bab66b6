package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "marketdesk/internal/errors"
	"marketdesk/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	syncTimes map[string]time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for simulated OHLCV history
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	-- Ensemble analyses table
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		signal TEXT NOT NULL,
		confidence REAL NOT NULL,
		price_target REAL,
		stop_loss REAL,
		component_scores TEXT,
		consensus TEXT,
		reasoning TEXT,
		narrative TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Alerts table
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		condition TEXT NOT NULL,
		price REAL NOT NULL,
		triggered INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		triggered_at DATETIME
	);

	-- Options flow events table
	CREATE TABLE IF NOT EXISTS flow_events (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		option_type TEXT NOT NULL,
		print_type TEXT NOT NULL,
		side TEXT NOT NULL,
		strike REAL NOT NULL,
		spot REAL NOT NULL,
		expiry DATETIME NOT NULL,
		contracts INTEGER NOT NULL,
		premium REAL NOT NULL,
		open_interest INTEGER,
		unusual INTEGER DEFAULT 0
	);

	-- Portfolio snapshots table
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		cash REAL NOT NULL,
		market_value REAL NOT NULL,
		total_equity REAL NOT NULL,
		unrealized_pnl REAL NOT NULL,
		realized_pnl REAL NOT NULL,
		positions TEXT,
		sector_exposure TEXT
	);

	-- Generated reports table
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		report_date DATE NOT NULL UNIQUE,
		generated_at DATETIME NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL
	);

	-- Watchlist table
	CREATE TABLE IF NOT EXISTS watchlist (
		symbol TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sync status table
	CREATE TABLE IF NOT EXISTS sync_status (
		data_type TEXT PRIMARY KEY,
		last_sync DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_candles_symbol_timeframe ON candles(symbol, timeframe);
	CREATE INDEX IF NOT EXISTS idx_candles_timestamp ON candles(timestamp);
	CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol);
	CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp);
	CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol);
	CREATE INDEX IF NOT EXISTS idx_alerts_triggered ON alerts(triggered);
	CREATE INDEX IF NOT EXISTS idx_flow_symbol ON flow_events(symbol);
	CREATE INDEX IF NOT EXISTS idx_flow_timestamp ON flow_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_snapshots_timestamp ON snapshots(timestamp);
	CREATE INDEX IF NOT EXISTS idx_reports_date ON reports(report_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Candles Methods
// ============================================================================

// SaveCandles saves candles to the database.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, timeframe models.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, string(timeframe), c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCandles retrieves candles from the database.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, string(timeframe), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

// GetCandlesFreshness returns the timestamp of the most recent candle.
func (s *SQLiteStore) GetCandlesFreshness(ctx context.Context, symbol string, timeframe models.Timeframe) (time.Time, error) {
	var timestamp sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM candles WHERE symbol = ? AND timeframe = ?
	`, symbol, string(timeframe)).Scan(&timestamp)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("failed to get candles freshness: %w", err)
	}
	if !timestamp.Valid {
		return time.Time{}, nil
	}
	return timestamp.Time, nil
}

// ============================================================================
// Analyses Methods
// ============================================================================

// SaveAnalysis saves an ensemble analysis to the database.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
	scores, _ := json.Marshal(analysis.ComponentScores)
	var consensus []byte
	if analysis.Consensus != nil {
		consensus, _ = json.Marshal(analysis.Consensus)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analyses (id, symbol, timestamp, signal, confidence, price_target, stop_loss, component_scores, consensus, reasoning, narrative)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, analysis.ID, analysis.Symbol, analysis.Timestamp, string(analysis.Signal), analysis.Confidence,
		analysis.PriceTarget, analysis.StopLoss, string(scores), string(consensus), analysis.Reasoning, analysis.Narrative)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalyses retrieves analyses matching a filter.
func (s *SQLiteStore) GetAnalyses(ctx context.Context, filter AnalysisFilter) ([]models.Analysis, error) {
	query := "SELECT id, symbol, timestamp, signal, confidence, price_target, stop_loss, component_scores, consensus, reasoning, narrative FROM analyses WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Signal != "" {
		query += " AND signal = ?"
		args = append(args, string(filter.Signal))
	}
	if !filter.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []models.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}

	return analyses, rows.Err()
}

// GetAnalysisByID retrieves a single analysis by ID.
func (s *SQLiteStore) GetAnalysisByID(ctx context.Context, id string) (*models.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, timestamp, signal, confidence, price_target, stop_loss, component_scores, consensus, reasoning, narrative
		FROM analyses WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query analysis: %w", err)
		}
		return nil, apperrors.ErrDataNotFound
	}
	return scanAnalysis(rows)
}

func scanAnalysis(rows *sql.Rows) (*models.Analysis, error) {
	var a models.Analysis
	var signal, scoresJSON, consensusJSON string

	if err := rows.Scan(&a.ID, &a.Symbol, &a.Timestamp, &signal, &a.Confidence,
		&a.PriceTarget, &a.StopLoss, &scoresJSON, &consensusJSON, &a.Reasoning, &a.Narrative); err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	a.Signal = models.Signal(signal)
	if scoresJSON != "" {
		json.Unmarshal([]byte(scoresJSON), &a.ComponentScores)
	}
	if consensusJSON != "" {
		var c models.ConsensusDetails
		if json.Unmarshal([]byte(consensusJSON), &c) == nil {
			a.Consensus = &c
		}
	}
	return &a, nil
}

// ============================================================================
// Alerts Methods
// ============================================================================

// SaveAlert saves an alert to the database.
func (s *SQLiteStore) SaveAlert(ctx context.Context, alert *models.Alert) error {
	triggered := 0
	if alert.Triggered {
		triggered = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO alerts (id, symbol, condition, price, triggered, created_at, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.Symbol, alert.Condition, alert.Price, triggered, alert.CreatedAt, alert.TriggeredAt)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// GetActiveAlerts retrieves all active (non-triggered) alerts.
func (s *SQLiteStore) GetActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, condition, price, triggered, created_at, triggered_at
		FROM alerts WHERE triggered = 0 ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var triggered int
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Condition, &a.Price, &triggered, &a.CreatedAt, &a.TriggeredAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Triggered = triggered == 1
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// TriggerAlert marks an alert as triggered.
func (s *SQLiteStore) TriggerAlert(ctx context.Context, alertID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET triggered = 1, triggered_at = ? WHERE id = ?
	`, time.Now(), alertID)
	if err != nil {
		return fmt.Errorf("failed to trigger alert: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.ErrAlertNotFound
	}

	return nil
}

// DeleteAlert removes an alert from the database.
func (s *SQLiteStore) DeleteAlert(ctx context.Context, alertID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM alerts WHERE id = ?
	`, alertID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.ErrAlertNotFound
	}

	return nil
}

// ============================================================================
// Options Flow Methods
// ============================================================================

// SaveFlowEvents saves a batch of flow events to the database.
func (s *SQLiteStore) SaveFlowEvents(ctx context.Context, events []models.FlowEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO flow_events (id, symbol, timestamp, option_type, print_type, side, strike, spot, expiry, contracts, premium, open_interest, unusual)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		unusual := 0
		if e.Unusual {
			unusual = 1
		}
		_, err := stmt.ExecContext(ctx, e.ID, e.Symbol, e.Timestamp, string(e.Type), string(e.Print), string(e.Side),
			e.Strike, e.Spot, e.Expiry, e.Contracts, e.Premium, e.OpenInterest, unusual)
		if err != nil {
			return fmt.Errorf("failed to insert flow event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetFlowEvents retrieves flow events for a symbol within a time window.
func (s *SQLiteStore) GetFlowEvents(ctx context.Context, symbol string, from, to time.Time) ([]models.FlowEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, timestamp, option_type, print_type, side, strike, spot, expiry, contracts, premium, open_interest, unusual
		FROM flow_events
		WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow events: %w", err)
	}
	defer rows.Close()

	var events []models.FlowEvent
	for rows.Next() {
		var e models.FlowEvent
		var optionType, printType, side string
		var unusual int

		if err := rows.Scan(&e.ID, &e.Symbol, &e.Timestamp, &optionType, &printType, &side,
			&e.Strike, &e.Spot, &e.Expiry, &e.Contracts, &e.Premium, &e.OpenInterest, &unusual); err != nil {
			return nil, fmt.Errorf("failed to scan flow event: %w", err)
		}

		e.Type = models.OptionType(optionType)
		e.Print = models.PrintType(printType)
		e.Side = models.Side(side)
		e.Unusual = unusual == 1
		events = append(events, e)
	}

	return events, rows.Err()
}

// ============================================================================
// Portfolio Snapshot Methods
// ============================================================================

// SaveSnapshot saves a portfolio snapshot to the database.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error {
	positions, _ := json.Marshal(snapshot.Positions)
	exposure, _ := json.Marshal(snapshot.SectorExposure)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (timestamp, cash, market_value, total_equity, unrealized_pnl, realized_pnl, positions, sector_exposure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.Timestamp, snapshot.Cash, snapshot.MarketValue, snapshot.TotalEquity,
		snapshot.UnrealizedPnL, snapshot.RealizedPnL, string(positions), string(exposure))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshots retrieves portfolio snapshots within a time window.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, from, to time.Time) ([]models.PortfolioSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, cash, market_value, total_equity, unrealized_pnl, realized_pnl, positions, sector_exposure
		FROM snapshots
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.PortfolioSnapshot
	for rows.Next() {
		var snap models.PortfolioSnapshot
		var positionsJSON, exposureJSON string

		if err := rows.Scan(&snap.Timestamp, &snap.Cash, &snap.MarketValue, &snap.TotalEquity,
			&snap.UnrealizedPnL, &snap.RealizedPnL, &positionsJSON, &exposureJSON); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		json.Unmarshal([]byte(positionsJSON), &snap.Positions)
		json.Unmarshal([]byte(exposureJSON), &snap.SectorExposure)
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// ============================================================================
// Reports Methods
// ============================================================================

// SaveReport saves a generated report. One report per trading day.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *models.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (id, report_date, generated_at, title, body)
		VALUES (?, ?, ?, ?, ?)
	`, report.ID, report.Date.Format("2006-01-02"), report.GeneratedAt, report.Title, string(body))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport retrieves the report for a trading day.
func (s *SQLiteStore) GetReport(ctx context.Context, date time.Time) (*models.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM reports WHERE report_date = ?
	`, date.Format("2006-01-02")).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// ListReports retrieves the most recent reports, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]models.Report, error) {
	query := "SELECT body FROM reports ORDER BY report_date DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var report models.Report
		if err := json.Unmarshal([]byte(body), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// ============================================================================
// Watchlist Methods
// ============================================================================

// AddToWatchlist adds a symbol to the watchlist.
func (s *SQLiteStore) AddToWatchlist(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO watchlist (symbol) VALUES (?)
	`, symbol)
	if err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return nil
}

// RemoveFromWatchlist removes a symbol from the watchlist.
func (s *SQLiteStore) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM watchlist WHERE symbol = ?
	`, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

// GetWatchlist retrieves watched symbols in insertion order.
func (s *SQLiteStore) GetWatchlist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol FROM watchlist ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// ============================================================================
// Sync Methods
// ============================================================================

// GetLastSync returns the last sync time for a data type.
func (s *SQLiteStore) GetLastSync(dataType string) time.Time {
	s.mu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var lastSync time.Time
	err := s.db.QueryRow(`
		SELECT last_sync FROM sync_status WHERE data_type = ?
	`, dataType).Scan(&lastSync)
	if err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.syncTimes[dataType] = lastSync
	s.mu.Unlock()

	return lastSync
}

// SetLastSync sets the last sync time for a data type.
func (s *SQLiteStore) SetLastSync(dataType string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sync_status (data_type, last_sync, updated_at)
		VALUES (?, ?, ?)
	`, dataType, t, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last sync: %w", err)
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()

	return nil
}
