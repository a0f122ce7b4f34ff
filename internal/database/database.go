package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rajasatyajit/CivicTriage/config"
	"github.com/rajasatyajit/CivicTriage/internal/logger"
	"github.com/rajasatyajit/CivicTriage/internal/metrics"
)

// ErrNotConfigured is returned by statements issued without a pool
var ErrNotConfigured = errors.New("database not configured")

const statementTimeout = 30 * time.Second

// DB represents a database connection
type DB struct {
	pool        *pgxpool.Pool
	cfg         config.DatabaseConfig
	stopMetrics context.CancelFunc
}

// New creates a new database connection. An empty URL yields an
// unconfigured DB so callers can fall back to in-memory storage.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	if cfg.URL == "" {
		logger.Info("DATABASE_URL not set; using in-memory store only")
		return &DB{pool: nil, cfg: cfg}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		logger.Debug("Database connection established")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	metricsCtx, stop := context.WithCancel(context.Background())
	db := &DB{pool: pool, cfg: cfg, stopMetrics: stop}
	go db.collectMetrics(metricsCtx)

	logger.Info("Database connection established",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)

	return db, nil
}

// Close closes the database connection
func (d *DB) Close(ctx context.Context) {
	if d.stopMetrics != nil {
		d.stopMetrics()
	}
	if d.pool != nil {
		d.pool.Close()
		logger.Info("Database connection closed")
	}
}

// collectMetrics periodically collects database metrics
func (d *DB) collectMetrics(ctx context.Context) {
	if d.pool == nil {
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stat := d.pool.Stat()
			metrics.SetDBConnectionsActive(float64(stat.AcquiredConns()))
		}
	}
}

// Exec executes a statement
func (d *DB) Exec(ctx context.Context, sql string, args ...any) error {
	if d.pool == nil {
		return ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		logger.Debug("Database exec",
			"sql", sql,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	_, err := d.pool.Exec(ctx, sql, args...)

	status := "success"
	if err != nil {
		status = "error"
		logger.Error("Database exec failed", "error", err, "sql", sql)
	}
	metrics.RecordDBQuery("exec", status)

	return err
}

// ExecAffected executes a statement and returns the number of affected rows
func (d *DB) ExecAffected(ctx context.Context, sql string, args ...any) (int64, error) {
	if d.pool == nil {
		return 0, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	tag, err := d.pool.Exec(ctx, sql, args...)

	status := "success"
	if err != nil {
		status = "error"
		logger.Error("Database exec failed", "error", err, "sql", sql)
	}
	metrics.RecordDBQuery("exec", status)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Query executes a query and returns rows. The rows hold a connection
// until closed, so the statement timeout is not applied here; callers
// pass a bounded context instead.
func (d *DB) Query(ctx context.Context, sql string, args ...any) (interface{}, error) {
	if d.pool == nil {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		logger.Debug("Database query",
			"sql", sql,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	rows, err := d.pool.Query(ctx, sql, args...)

	status := "success"
	if err != nil {
		status = "error"
		logger.Error("Database query failed", "error", err, "sql", sql)
	}
	metrics.RecordDBQuery("query", status)

	return rows, err
}

// QueryRow executes a query that returns a single row
func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) interface{} {
	if d.pool == nil {
		return nil
	}

	metrics.RecordDBQuery("query_row", "issued")
	return d.pool.QueryRow(ctx, sql, args...)
}

// Health checks database connectivity
func (d *DB) Health(ctx context.Context) error {
	if d.pool == nil {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return d.pool.Ping(ctx)
}

// IsConfigured returns true if database is configured
func (d *DB) IsConfigured() bool {
	return d.pool != nil
}
