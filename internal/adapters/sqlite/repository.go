package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.CandleRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Ensure Repository implements the CandleRepository interface.
var _ ports.CandleRepository = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/candles.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w: %w", filepath.Dir(dbPath), ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS candles (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (symbol, interval, open_time)
	);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveCandles upserts candles in one transaction.
func (r *Repository) SaveCandles(ctx context.Context, symbol string, interval domain.Interval, candles []domain.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}
	const query = `
	INSERT INTO candles (symbol, interval, open_time, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (symbol, interval, open_time) DO UPDATE SET
		open = excluded.open, high = excluded.high, low = excluded.low,
		close = excluded.close, volume = excluded.volume`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin candle transaction: %w: %w", ports.ErrInsertFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare candle insert: %w: %w", ports.ErrInsertFailed, err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, string(interval), c.OpenTime, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return 0, fmt.Errorf("failed to insert candle %s/%s@%d: %w: %w", symbol, interval, c.OpenTime, ports.ErrInsertFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit candles: %w: %w", ports.ErrInsertFailed, err)
	}
	r.logger.Debug(ctx, "Candles saved", map[string]interface{}{"symbol": symbol, "interval": string(interval), "count": len(candles)})
	return len(candles), nil
}

// QueryCandles returns cached candles with open time in [start, end].
func (r *Repository) QueryCandles(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]domain.Candle, error) {
	const query = `
	SELECT open_time, open, high, low, close, volume
	FROM candles
	WHERE symbol = ? AND interval = ? AND open_time BETWEEN ? AND ?
	ORDER BY open_time ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, string(interval), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles for %s/%s: %w: %w", symbol, interval, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	candles := make([]domain.Candle, 0)
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle row: %w: %w", ports.ErrQueryFailed, err)
		}
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candle rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return candles, nil
}

// MissingRanges walks the open times start, start+step, ..., end and returns
// the ones with no cached candle, grouped into ranges.
func (r *Repository) MissingRanges(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]ports.TimeRange, error) {
	step := interval.Step()
	if step <= 0 {
		return nil, fmt.Errorf("unknown interval %q: %w", interval, ports.ErrInvalidRequest)
	}
	if end < start {
		return nil, nil
	}
	const query = `
	WITH RECURSIVE series(open_time) AS (
		SELECT ?
		UNION ALL
		SELECT open_time + ? FROM series WHERE open_time + ? <= ?
	)
	SELECT s.open_time FROM series s
	WHERE NOT EXISTS (
		SELECT 1 FROM candles c
		WHERE c.symbol = ? AND c.interval = ? AND c.open_time = s.open_time
	)
	ORDER BY s.open_time ASC`

	rows, err := r.db.QueryContext(ctx, query, start, step, step, end, symbol, string(interval))
	if err != nil {
		return nil, fmt.Errorf("failed to query missing candles for %s/%s: %w: %w", symbol, interval, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var t int64
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan missing open time: %w: %w", ports.ErrQueryFailed, err)
		}
		missing = append(missing, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missing rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return ports.GroupMissing(missing, step), nil
}
