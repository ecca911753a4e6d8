// Package pipeline orchestrates the collection run: resolve the search
// location, page through text-search results, then enrich each listing with
// place details and a best-effort contact email.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mapleads-cli/internal/model"
	"github.com/sells-group/mapleads-cli/pkg/googlemaps"
)

// tokenActivationDelay is the provider-mandated wait before a next_page_token
// becomes usable.
const tokenActivationDelay = 2 * time.Second

// EmailExtractor pulls a contact email from a website. Empty string means
// none was found; extraction never fails the caller.
type EmailExtractor interface {
	Extract(ctx context.Context, siteURL string) string
}

// Pipeline runs the search-and-enrich flow against a places provider.
type Pipeline struct {
	maps      googlemaps.Client
	emails    EmailExtractor
	poolSize  int
	pageDelay time.Duration
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithPoolSize sets the enrichment worker pool width.
func WithPoolSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.poolSize = n
		}
	}
}

// WithPageDelay overrides the inter-page token-activation delay.
func WithPageDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		p.pageDelay = d
	}
}

// New creates a Pipeline.
func New(maps googlemaps.Client, emails EmailExtractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		maps:      maps,
		emails:    emails,
		poolSize:  10,
		pageDelay: tokenActivationDelay,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run executes the full pipeline for one request. It fails only when the
// location cannot be resolved; search and enrichment errors degrade to
// partial results.
func (p *Pipeline) Run(ctx context.Context, req model.SearchRequest) ([]model.PlaceRecord, error) {
	zap.L().Info("pipeline: starting",
		zap.String("query", req.Query),
		zap.String("location", req.Location),
		zap.Int("num_results", req.NumResults),
	)

	coord, err := p.resolveLocation(ctx, req.Location)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: resolve location %q", req.Location)
	}

	refs := p.search(ctx, req, coord)
	if len(refs) > req.NumResults {
		refs = refs[:req.NumResults]
	}

	records := p.enrich(ctx, refs)

	zap.L().Info("pipeline: complete",
		zap.Int("found", len(refs)),
		zap.Int("enriched", len(records)),
	)
	return records, nil
}
