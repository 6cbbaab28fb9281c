// Package postgres implements the candle cache on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"

	"github.com/lib/pq"
)

// Repository implements the ports.CandleRepository interface using PostgreSQL.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Ensure Repository implements the CandleRepository interface.
var _ ports.CandleRepository = (*Repository)(nil)

// Config holds configuration for the PostgreSQL repository.
type Config struct {
	URL    string
	Logger ports.Logger
}

// NewRepository connects to URL and makes sure the schema exists.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for PostgreSQL repository")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required: %w", ports.ErrConfigurationError)
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w: %w", ports.ErrDBConnection, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database: %w: %w", ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "PostgreSQL repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "PostgreSQL repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "PostgreSQL candle cache ready")
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS candles (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time BIGINT NOT NULL,
		open DOUBLE PRECISION NOT NULL,
		high DOUBLE PRECISION NOT NULL,
		low DOUBLE PRECISION NOT NULL,
		close DOUBLE PRECISION NOT NULL,
		volume DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (symbol, interval, open_time)
	)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing PostgreSQL database connection")
		return r.db.Close()
	}
	return nil
}

// SaveCandles bulk-loads candles through a COPY into a temp table and merges
// them into the cache.
func (r *Repository) SaveCandles(ctx context.Context, symbol string, interval domain.Interval, candles []domain.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin candle transaction: %w: %w", ports.ErrInsertFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE import_candles (LIKE candles) ON COMMIT DROP`); err != nil {
		return 0, fmt.Errorf("failed to create import table: %w: %w", ports.ErrInsertFailed, err)
	}
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("import_candles",
		"symbol", "interval", "open_time", "open", "high", "low", "close", "volume"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare candle copy: %w: %w", ports.ErrInsertFailed, err)
	}
	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, string(interval), c.OpenTime, c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("failed to copy candle %d: %w: %w", c.OpenTime, ports.ErrInsertFailed, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("failed to flush candle copy: %w: %w", ports.ErrInsertFailed, err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close candle copy: %w: %w", ports.ErrInsertFailed, err)
	}

	const merge = `
	INSERT INTO candles SELECT DISTINCT ON (symbol, interval, open_time) * FROM import_candles
	ON CONFLICT (symbol, interval, open_time) DO UPDATE SET
		open = excluded.open, high = excluded.high, low = excluded.low,
		close = excluded.close, volume = excluded.volume`
	res, err := tx.ExecContext(ctx, merge)
	if err != nil {
		return 0, fmt.Errorf("failed to merge candles: %w: %w", ports.ErrInsertFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit candles: %w: %w", ports.ErrInsertFailed, err)
	}
	n, _ := res.RowsAffected()
	r.logger.Debug(ctx, "Candles saved", map[string]interface{}{"symbol": symbol, "interval": string(interval), "count": n})
	return int(n), nil
}

// QueryCandles returns cached candles with open time in [start, end].
func (r *Repository) QueryCandles(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]domain.Candle, error) {
	const query = `
	SELECT open_time, open, high, low, close, volume
	FROM candles
	WHERE symbol = $1 AND interval = $2 AND open_time BETWEEN $3 AND $4
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

// MissingRanges returns the uncached open times in [start, end] grouped into ranges.
func (r *Repository) MissingRanges(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]ports.TimeRange, error) {
	step := interval.Step()
	if step <= 0 {
		return nil, fmt.Errorf("unknown interval %q: %w", interval, ports.ErrInvalidRequest)
	}
	if end < start {
		return nil, nil
	}
	const query = `
	SELECT s.open_time
	FROM generate_series($1::bigint, $2::bigint, $3::bigint) s(open_time)
	WHERE NOT EXISTS (
		SELECT 1 FROM candles c
		WHERE c.symbol = $4 AND c.interval = $5 AND c.open_time = s.open_time
	)
	ORDER BY s.open_time ASC`

	rows, err := r.db.QueryContext(ctx, query, start, end, step, symbol, string(interval))
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
