package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNothingToRollback is returned by Rollback when no migration has been applied
	ErrNothingToRollback = errors.New("no migrations to rollback")

	// ErrModelMismatch is returned by Apply when the store is not at the model
	// the migration starts from
	ErrModelMismatch = errors.New("store is not at the migration's starting model")
)

// Runner executes migrations with transaction support
type Runner struct {
	db      *sql.DB
	tracker *Tracker
	logger  *zap.Logger
}

// NewRunner creates a new migration runner. A nil logger discards output.
func NewRunner(db *sql.DB, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		db:      db,
		tracker: NewTracker(db),
		logger:  logger,
	}
}

// Initialize sets up the migration tracking table
func (r *Runner) Initialize(ctx context.Context) error {
	return r.tracker.Initialize(ctx)
}

// Apply runs a migration and records it in one transaction. A migration whose
// version is already recorded is skipped and reported as not applied.
func (r *Runner) Apply(ctx context.Context, migration *Migration) (bool, error) {
	if migration.Up == "" {
		return false, fmt.Errorf("migration %s has no up SQL", migration.Name)
	}

	applied, err := r.tracker.IsApplied(ctx, migration.Version)
	if err != nil {
		return false, err
	}
	if applied {
		r.logger.Info("migration already applied", zap.String("migration", migration.Name))
		return false, nil
	}

	last, err := r.tracker.GetLast(ctx)
	if err != nil {
		return false, err
	}
	if last != nil && last.To != "" && migration.From != "" && last.To != migration.From {
		return false, fmt.Errorf("%w: store is at model %s after %s, migration %s starts from %s",
			ErrModelMismatch, last.To, last.Name, migration.Name, migration.From)
	}

	if migration.Breaking {
		r.logger.Warn("migration contains breaking changes", zap.String("migration", migration.Name))
	}
	if migration.DataLoss {
		r.logger.Warn("migration may cause data loss", zap.String("migration", migration.Name))
	}

	err = r.inTx(ctx, migration, "apply", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}
		return r.tracker.Record(ctx, tx, migration)
	})
	if err != nil {
		return false, fmt.Errorf("migration %s failed: %w", migration.Name, err)
	}
	return true, nil
}

// Rollback reverts the most recently applied migration
func (r *Runner) Rollback(ctx context.Context) (*Migration, error) {
	last, err := r.tracker.GetLast(ctx)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, ErrNothingToRollback
	}
	if last.Down == "" {
		return nil, fmt.Errorf("migration %s has no down migration", last.Name)
	}

	err = r.inTx(ctx, last, "rollback", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, last.Down); err != nil {
			return fmt.Errorf("failed to execute rollback SQL: %w", err)
		}
		return r.tracker.Remove(ctx, tx, last.Version)
	})
	if err != nil {
		return nil, fmt.Errorf("rollback of %s failed: %w", last.Name, err)
	}
	return last, nil
}

// inTx runs fn in a transaction and commits when it succeeds
func (r *Runner) inTx(ctx context.Context, migration *Migration, action string, fn func(*sql.Tx) error) error {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.Warn("failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("migration "+action,
		zap.String("migration", migration.Name),
		zap.Int64("version", migration.Version),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Status returns the applied migrations
func (r *Runner) Status(ctx context.Context) (*MigrationStatus, error) {
	applied, err := r.tracker.GetApplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	status := &MigrationStatus{Applied: applied}
	if len(applied) > 0 {
		status.LastApplied = applied[len(applied)-1]
	}
	return status, nil
}

// MigrationStatus represents the current state of migrations
type MigrationStatus struct {
	Applied     []*Migration
	LastApplied *Migration
}

// Summary returns a human-readable summary
func (s *MigrationStatus) Summary() string {
	if s.LastApplied == nil {
		return "No migrations applied"
	}
	summary := fmt.Sprintf("%d migrations applied, last: %s", len(s.Applied), s.LastApplied.Name)
	if s.LastApplied.To != "" {
		summary += " (model " + s.LastApplied.To + ")"
	}
	return summary
}
