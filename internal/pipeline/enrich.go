package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// enrich fetches place details for every reference across the worker pool.
// Records are collected in completion order. A failing fetch is logged and
// its record omitted; it never cancels sibling workers.
func (p *Pipeline) enrich(ctx context.Context, refs []model.RawPlaceRef) []model.PlaceRecord {
	var (
		mu      sync.Mutex
		records []model.PlaceRecord
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.poolSize)

	for _, ref := range refs {
		g.Go(func() error {
			record, err := p.enrichPlace(gCtx, ref)
			if err != nil {
				zap.L().Warn("pipeline: place enrichment failed",
					zap.String("place_id", ref.PlaceID),
					zap.String("name", ref.Name),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			records = append(records, *record)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return records
}

// enrichPlace fetches full details for one place and attaches an extracted
// email when the listing has a website. Detail-fetch errors propagate; email
// extraction is best effort and never fails the record.
func (p *Pipeline) enrichPlace(ctx context.Context, ref model.RawPlaceRef) (*model.PlaceRecord, error) {
	details, err := p.maps.Details(ctx, ref.PlaceID)
	if err != nil {
		return nil, err
	}

	record := model.PlaceRecord{
		Name:    details.Name,
		Address: details.Address,
		Phone:   details.Phone,
		Website: details.Website,
		Rating:  details.Rating,
		Reviews: details.ReviewCount,
		Types:   details.Types,
	}

	if record.Website != "" {
		zap.L().Debug("pipeline: extracting email", zap.String("website", record.Website))
		record.Email = p.emails.Extract(ctx, record.Website)
	}

	return &record, nil
}
