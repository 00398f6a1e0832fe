// Package ports defines the interfaces (driven and driving ports)
// for the countdown application following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/countdown-cli/internal/domain"
)

// HistoryRepository defines the interface for run history persistence.
// This is a driven port (implemented by adapters).
type HistoryRepository interface {
	// Save persists a finished run.
	Save(ctx context.Context, run *domain.Run) error

	// FindRecent returns up to limit runs, newest first. A limit <= 0 returns all runs.
	FindRecent(ctx context.Context, limit int) ([]*domain.Run, error)

	// DeleteAll removes every stored run and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// History provides access to run history operations.
	History() HistoryRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
