package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/ports"
)

// historyRepository implements ports.HistoryRepository using SQLite.
type historyRepository struct {
	db *sql.DB
}

// newHistoryRepository creates a new history repository.
func newHistoryRepository(db *sql.DB) ports.HistoryRepository {
	return &historyRepository{db: db}
}

// Save persists a finished run.
func (r *historyRepository) Save(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (id, duration_ms, elapsed_ms, outcome, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Duration.Milliseconds(),
		run.Elapsed.Milliseconds(),
		string(run.Outcome),
		run.StartedAt.UTC(),
		run.EndedAt.UTC(),
	)
	if err != nil {
		if isConstraintError(err) {
			return domain.ErrRunExists
		}
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// FindRecent returns up to limit runs, newest first.
func (r *historyRepository) FindRecent(ctx context.Context, limit int) ([]*domain.Run, error) {
	query := `
		SELECT id, duration_ms, elapsed_ms, outcome, started_at, ended_at
		FROM runs
		ORDER BY ended_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*domain.Run
	for rows.Next() {
		var run domain.Run
		var durationMs, elapsedMs int64
		var outcome string

		if err := rows.Scan(&run.ID, &durationMs, &elapsedMs, &outcome, &run.StartedAt, &run.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		run.Outcome = domain.RunOutcome(outcome)
		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// DeleteAll removes every stored run.
func (r *historyRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}
