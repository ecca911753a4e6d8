package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/mapleads-cli/internal/model"
	"github.com/sells-group/mapleads-cli/pkg/googlemaps"
)

// search pages through text-search results until the requested count is
// accumulated or the provider stops returning a continuation token. Pages are
// fetched strictly sequentially; each follow-up waits out the provider's
// token-activation delay first. A provider error ends pagination early and
// keeps whatever was collected.
func (p *Pipeline) search(ctx context.Context, req model.SearchRequest, coord model.Coordinate) []model.RawPlaceRef {
	var refs []model.RawPlaceRef
	pageToken := ""

	for len(refs) < req.NumResults {
		if pageToken != "" && !p.sleepForToken(ctx) {
			break
		}

		page, err := p.maps.SearchPage(ctx, googlemaps.SearchPageRequest{
			Query:        req.Query,
			Lat:          coord.Lat,
			Lng:          coord.Lng,
			RadiusMeters: req.RadiusMeters,
			PageToken:    pageToken,
		})
		if err != nil {
			zap.L().Warn("pipeline: search page failed, keeping partial results",
				zap.Int("collected", len(refs)),
				zap.Error(err),
			)
			break
		}

		for _, r := range page.Results {
			refs = append(refs, model.RawPlaceRef{PlaceID: r.PlaceID, Name: r.Name})
		}

		zap.L().Debug("pipeline: search page fetched",
			zap.Int("page_results", len(page.Results)),
			zap.Int("collected", len(refs)),
		)

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return refs
}

// sleepForToken waits out the token-activation delay. Returns false when the
// context was cancelled during the wait.
func (p *Pipeline) sleepForToken(ctx context.Context) bool {
	timer := time.NewTimer(p.pageDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
		return true
	}
}
