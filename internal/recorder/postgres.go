package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// execer is the subset of pgxpool.Pool the recorder needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresRecorder persists the journal to PostgreSQL.
type PostgresRecorder struct {
	db      execer
	pool    *pgxpool.Pool
	timeout time.Duration
	log     *zap.Logger
}

// NewPostgresRecorder connects, pings and migrates.
func NewPostgresRecorder(ctx context.Context, dsn string, log *zap.Logger) (*PostgresRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := newPostgresRecorder(pool, log)
	r.pool = pool
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("postgres recorder connected", zap.String("host", config.ConnConfig.Host))
	return r, nil
}

func newPostgresRecorder(db execer, log *zap.Logger) *PostgresRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresRecorder{db: db, timeout: 5 * time.Second, log: log}
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS transfers (
		id          UUID PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL,
		spender     TEXT,
		from_addr   TEXT NOT NULL,
		to_addr     TEXT NOT NULL,
		amount      NUMERIC(78, 0) NOT NULL,
		net         NUMERIC(78, 0),
		direction   TEXT,
		regime      TEXT,
		allocation  JSONB,
		accepted    BOOLEAN NOT NULL,
		reason      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_recorded_at ON transfers(recorded_at)`,
	`CREATE TABLE IF NOT EXISTS policy_changes (
		id          UUID PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL,
		kind        TEXT NOT NULL,
		caller      TEXT,
		value       TEXT,
		accepted    BOOLEAN NOT NULL,
		reason      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS swap_backs (
		id          UUID PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL,
		router      TEXT NOT NULL,
		total       NUMERIC(78, 0) NOT NULL,
		allocation  JSONB
	)`,
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	for _, s := range postgresSchema {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PostgresRecorder) exec(sql string, args ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_, err := r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PostgresRecorder) RecordTransfer(evt *TransferEvent) error {
	Stamp(&evt.ID, &evt.At)
	alloc, err := allocationJSON(evt.Allocation)
	if err != nil {
		return err
	}
	err = r.exec(`INSERT INTO transfers
		(id, recorded_at, spender, from_addr, to_addr, amount, net, direction, regime, allocation, accepted, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11, $12)`,
		evt.ID, evt.At, nullable(string(evt.Spender)), string(evt.From), string(evt.To),
		evt.Amount, nullable(evt.Net), string(evt.Direction), string(evt.Regime), nullable(alloc),
		evt.Accepted, nullable(evt.Reason),
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) RecordPolicyChange(evt *PolicyEvent) error {
	Stamp(&evt.ID, &evt.At)
	err := r.exec(`INSERT INTO policy_changes
		(id, recorded_at, kind, caller, value, accepted, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		evt.ID, evt.At, string(evt.Kind), string(evt.Caller), evt.Value, evt.Accepted, nullable(evt.Reason),
	)
	if err != nil {
		return fmt.Errorf("insert policy change: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) RecordSwapBack(evt *SwapBackEvent) error {
	Stamp(&evt.ID, &evt.At)
	alloc, err := allocationJSON(evt.Allocation)
	if err != nil {
		return err
	}
	err = r.exec(`INSERT INTO swap_backs
		(id, recorded_at, router, total, allocation)
		VALUES ($1, $2, $3, $4, $5::jsonb)`,
		evt.ID, evt.At, string(evt.Router), evt.Total, nullable(alloc),
	)
	if err != nil {
		return fmt.Errorf("insert swap back: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Close() error {
	if r.pool != nil {
		r.log.Info("closing postgres recorder")
		r.pool.Close()
	}
	return nil
}

var _ Recorder = (*PostgresRecorder)(nil)
