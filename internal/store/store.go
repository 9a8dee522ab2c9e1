// Package store persists match runs behind a driver-agnostic interface with
// SQLite and PostgreSQL implementations.
package store

import (
	"context"

	"github.com/cliplens/match-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	Product string          `json:"product,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for match runs.
type Store interface {
	CreateRun(ctx context.Context, product string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	SaveResult(ctx context.Context, runID string, result *model.MatchingOutput) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
