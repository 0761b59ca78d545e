// Package migrate computes and applies the store changes between two resolved
// models. A migration is generated from the store types of each binding and
// recorded in a schema_migrations table once applied.
package migrate

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/conduit-lang/typebind/internal/orm/resolution"
)

// Migration moves the store from the model fingerprinted From to the one
// fingerprinted To
type Migration struct {
	Version int64 // Unix milliseconds for ordering
	Name    string
	Up      string
	Down    string

	From string
	To   string

	Breaking bool // Requires manual review
	DataLoss bool

	Applied   bool
	AppliedAt time.Time
}

// Fingerprint identifies the tables a model produces. Two models with the same
// columns and store types share a fingerprint whatever their converters are.
func Fingerprint(m *resolution.Model) string {
	var lines []string
	for _, name := range m.Names() {
		binding, _ := m.Get(name)
		for _, col := range binding.Columns() {
			null := "not null"
			if col.Nullable {
				null = "null"
			}
			lines = append(lines, fmt.Sprintf("%s.%s %s %s", binding.Table(), col.Name, col.Type, null))
		}
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:8])
}

// Tracker reads and writes the schema_migrations history
type Tracker struct {
	db *sql.DB
}

// NewTracker creates a tracker over db
func NewTracker(db *sql.DB) *Tracker {
	return &Tracker{db: db}
}

const historyDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	from_model CHAR(16),
	to_model CHAR(16),
	breaking BOOLEAN NOT NULL DEFAULT FALSE,
	data_loss BOOLEAN NOT NULL DEFAULT FALSE,
	up_sql TEXT,
	down_sql TEXT,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// historyColumns is the column order of every history read
var historyColumns = []string{
	"version", "name", "from_model", "to_model", "breaking", "data_loss", "up_sql", "down_sql", "applied_at",
}

func historyQuery(order string) string {
	return fmt.Sprintf("SELECT %s FROM schema_migrations ORDER BY version %s",
		strings.Join(historyColumns, ", "), order)
}

// Initialize creates the history table when missing
func (t *Tracker) Initialize(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, historyDDL); err != nil {
		return fmt.Errorf("failed to initialize migrations table: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func readMigration(row rowScanner) (*Migration, error) {
	var (
		m                  = &Migration{Applied: true}
		from, to, up, down sql.NullString
	)
	err := row.Scan(&m.Version, &m.Name, &from, &to, &m.Breaking, &m.DataLoss, &up, &down, &m.AppliedAt)
	if err != nil {
		return nil, err
	}
	m.From, m.To = strings.TrimSpace(from.String), strings.TrimSpace(to.String)
	m.Up, m.Down = up.String, down.String
	return m, nil
}

// GetApplied returns the history, oldest first
func (t *Tracker) GetApplied(ctx context.Context) ([]*Migration, error) {
	rows, err := t.db.QueryContext(ctx, historyQuery("ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var history []*Migration
	for rows.Next() {
		m, err := readMigration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		history = append(history, m)
	}
	return history, rows.Err()
}

// GetLast returns the newest applied migration, or nil on an empty history
func (t *Tracker) GetLast(ctx context.Context) (*Migration, error) {
	m, err := readMigration(t.db.QueryRowContext(ctx, historyQuery("DESC")+" LIMIT 1"))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get last migration: %w", err)
	}
	return m, nil
}

// IsApplied reports whether version is in the history
func (t *Tracker) IsApplied(ctx context.Context, version int64) (bool, error) {
	var exists bool
	row := t.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// Record appends m to the history inside tx
func (t *Tracker) Record(ctx context.Context, tx *sql.Tx, m *Migration) error {
	const insert = `INSERT INTO schema_migrations
	(version, name, from_model, to_model, breaking, data_loss, up_sql, down_sql)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.ExecContext(ctx, insert,
		m.Version, m.Name, nullable(m.From), nullable(m.To), m.Breaking, m.DataLoss, m.Up, m.Down)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// Remove deletes version from the history inside tx
func (t *Tracker) Remove(ctx context.Context, tx *sql.Tx, version int64) error {
	result, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version)
	if err != nil {
		return fmt.Errorf("failed to remove migration: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("migration version %d not found", version)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
