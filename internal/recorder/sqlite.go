package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"TaxLedger/internal/model"
)

// SQLiteRecorder persists the journal to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the HTTP read surface can query while transfers are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS transfers (
		id          TEXT PRIMARY KEY,
		timestamp   INTEGER NOT NULL,
		spender     TEXT,
		from_addr   TEXT NOT NULL,
		to_addr     TEXT NOT NULL,
		amount      TEXT NOT NULL,
		net         TEXT,
		direction   TEXT,
		regime      TEXT,
		allocation  TEXT,
		accepted    INTEGER NOT NULL,
		reason      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_ts ON transfers(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_from ON transfers(from_addr)`,
	`CREATE INDEX IF NOT EXISTS idx_transfers_to ON transfers(to_addr)`,

	`CREATE TABLE IF NOT EXISTS policy_changes (
		id        TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		kind      TEXT NOT NULL,
		caller    TEXT,
		value     TEXT,
		accepted  INTEGER NOT NULL,
		reason    TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_policy_ts ON policy_changes(timestamp)`,

	`CREATE TABLE IF NOT EXISTS swap_backs (
		id         TEXT PRIMARY KEY,
		timestamp  INTEGER NOT NULL,
		router     TEXT NOT NULL,
		total      TEXT NOT NULL,
		allocation TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_swap_backs_ts ON swap_backs(timestamp)`,
}

func (r *SQLiteRecorder) migrate() error {
	for _, s := range sqliteSchema {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func allocationJSON(a map[model.Component]string) (string, error) {
	if len(a) == 0 {
		return "", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal allocation: %w", err)
	}
	return string(b), nil
}

func (r *SQLiteRecorder) RecordTransfer(evt *TransferEvent) error {
	Stamp(&evt.ID, &evt.At)
	alloc, err := allocationJSON(evt.Allocation)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO transfers
		(id, timestamp, spender, from_addr, to_addr, amount, net, direction, regime, allocation, accepted, reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, evt.At.Unix(), string(evt.Spender), string(evt.From), string(evt.To),
		evt.Amount, evt.Net, string(evt.Direction), string(evt.Regime), alloc,
		evt.Accepted, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordPolicyChange(evt *PolicyEvent) error {
	Stamp(&evt.ID, &evt.At)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO policy_changes
		(id, timestamp, kind, caller, value, accepted, reason)
		VALUES (?,?,?,?,?,?,?)`,
		evt.ID, evt.At.Unix(), string(evt.Kind), string(evt.Caller), evt.Value,
		evt.Accepted, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordSwapBack(evt *SwapBackEvent) error {
	Stamp(&evt.ID, &evt.At)
	alloc, err := allocationJSON(evt.Allocation)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO swap_backs
		(id, timestamp, router, total, allocation)
		VALUES (?,?,?,?,?)`,
		evt.ID, evt.At.Unix(), string(evt.Router), evt.Total, alloc,
	)
	return err
}

// CountTransfers returns how many transfers were journaled with the given outcome.
func (r *SQLiteRecorder) CountTransfers(accepted bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transfers WHERE accepted = ?`, accepted).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}

var _ Recorder = (*SQLiteRecorder)(nil)
