// Package store keeps local run history in SQLite.
package store

import (
	"context"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// Store records collection runs. Failures here never abort a run; callers
// log and continue.
type Store interface {
	CreateRun(ctx context.Context, req model.SearchRequest) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, resultCount int, runErr string) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
