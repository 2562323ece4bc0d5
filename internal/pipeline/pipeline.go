// Package pipeline orchestrates fetch → extract → geocode → rank.
package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pugetworks/healthmap-cli/internal/fetcher"
	"github.com/pugetworks/healthmap-cli/internal/geo"
	"github.com/pugetworks/healthmap-cli/internal/inspection"
	"github.com/pugetworks/healthmap-cli/internal/model"
)

// Options configures a Pipeline.
type Options struct {
	// Concurrency bounds the parallel geocode lookups. <= 1 means serial.
	Concurrency int
	// Strict aborts the run on the first geocode failure instead of
	// skipping the record.
	Strict bool
}

// Pipeline runs the whole extraction-and-enrichment flow for one query.
type Pipeline struct {
	source   fetcher.Source
	enricher *geo.Enricher
	opts     Options
}

// New creates a Pipeline over the given page source and enricher.
func New(source fetcher.Source, enricher *geo.Enricher, opts Options) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Pipeline{source: source, enricher: enricher, opts: opts}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Collection *geojson.FeatureCollection
	Records    int // records extracted from the page
	Dropped    int // records with no address
	Skipped    int // records whose geocode failed (non-strict runs)
}

// Run fetches the results page, extracts up to limit records, geocodes them
// concurrently, and ranks the features by key. Geocode lookups run in
// parallel but features are recombined in document order before ranking, so
// tie-breaking is reproducible.
func (p *Pipeline) Run(ctx context.Context, q fetcher.Query, key geo.SortKey, limit int, reverse bool) (*Result, error) {
	// Reject a bad sort key before any network traffic.
	if _, err := geo.ParseSortKey(string(key)); err != nil {
		return nil, err
	}

	page, err := p.source.Fetch(ctx, q)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch results page")
	}

	doc, err := inspection.Normalize(page.Content, page.Charset)
	if err != nil {
		return nil, err
	}

	var records []model.RestaurantRecord
	for rec := range inspection.Records(doc, limit) {
		records = append(records, rec)
	}
	zap.L().Info("pipeline: extracted records",
		zap.Int("records", len(records)),
		zap.Int("limit", limit),
	)

	features := make([]*geojson.Feature, len(records))
	var skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, rec := range records {
		g.Go(func() error {
			f, err := p.enricher.Enrich(gctx, rec)
			if err != nil {
				if p.opts.Strict {
					return err
				}
				zap.L().Warn("pipeline: skipping record after geocode failure",
					zap.Int("index", i),
					zap.String("business", rec.BusinessName()),
					zap.Error(err),
				)
				skipped.Add(1)
				return nil
			}
			features[i] = f // nil when the record has no address
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := make([]*geojson.Feature, 0, len(features))
	for _, f := range features {
		if f != nil {
			kept = append(kept, f)
		}
	}
	dropped := len(records) - len(kept) - int(skipped.Load())

	ranked, err := geo.Rank(kept, key, reverse)
	if err != nil {
		return nil, err
	}

	return &Result{
		Collection: geo.Collection(ranked),
		Records:    len(records),
		Dropped:    dropped,
		Skipped:    int(skipped.Load()),
	}, nil
}
