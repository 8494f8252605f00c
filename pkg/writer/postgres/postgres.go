// Package postgres stores normalized transactions in a PostgreSQL database,
// keyed by the same external identifier used for Lunch Money uploads so
// repeated runs are idempotent.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArionMiles/lunchsync/pkg/api"
	"github.com/ArionMiles/lunchsync/pkg/lunchmoney"
)

//go:embed 001_create_transactions.sql
var migrationSQL string

// Config holds the connection settings for the sink.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// Sink writes transactions to PostgreSQL.
type Sink struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to the database, verifies the connection, and applies the
// schema migration.
func New(cfg Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)

	s := &Sink{pool: pool, logger: logger}
	if err := s.runMigrations(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Sink) runMigrations(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

// Store inserts transactions in one batch, skipping rows whose external_id
// already exists. Returns the number of newly inserted rows.
func (s *Sink) Store(ctx context.Context, txs []api.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, tx := range txs {
		var originalAmount *string
		if tx.OriginalAmount != nil {
			v := tx.OriginalAmount.String()
			originalAmount = &v
		}

		batch.Queue(`
			INSERT INTO transactions (
				external_id, date, description, amount, account,
				original_currency, original_amount, category, reference
			) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8, $9)
			ON CONFLICT (external_id) DO NOTHING
		`,
			lunchmoney.GenerateExternalID(tx),
			tx.Date,
			tx.Description,
			tx.Amount.String(),
			tx.Account,
			tx.OriginalCurrency,
			originalAmount,
			nullIfEmpty(tx.Category),
			nullIfEmpty(tx.Reference),
		)
	}

	results := dbTx.SendBatch(ctx, batch)
	inserted := 0
	for i := 0; i < len(txs); i++ {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("inserting transaction %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("closing batch: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Info("stored transaction batch",
		"sent", len(txs),
		"inserted", inserted,
		"duplicates", len(txs)-inserted,
	)
	return inserted, nil
}

// Close releases the connection pool.
func (s *Sink) Close() {
	s.pool.Close()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
