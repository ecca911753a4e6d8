// Package sink pushes collected place records to a hosted table store.
// Sync is best effort: each record is inserted independently and a failed
// insert never stops the rest.
package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// RecordSink inserts one place record as one row in the remote table.
type RecordSink interface {
	Insert(ctx context.Context, record model.PlaceRecord) error
}

// SyncAll inserts every record through the sink, logging and skipping
// per-record failures. Returns the number of successful inserts.
func SyncAll(ctx context.Context, s RecordSink, records []model.PlaceRecord) int {
	synced := 0
	for _, record := range records {
		if err := s.Insert(ctx, record); err != nil {
			zap.L().Error("sink: insert failed",
				zap.String("name", record.Name),
				zap.Error(err),
			)
			continue
		}
		zap.L().Debug("sink: record inserted", zap.String("name", record.Name))
		synced++
	}

	zap.L().Info("sink: sync complete",
		zap.Int("synced", synced),
		zap.Int("failed", len(records)-synced),
	)
	return synced
}
