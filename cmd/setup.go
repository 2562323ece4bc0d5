package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pugetworks/healthmap-cli/internal/fetcher"
	"github.com/pugetworks/healthmap-cli/internal/store"
	"github.com/pugetworks/healthmap-cli/pkg/geocode"
)

// openStore opens and migrates the configured store. Returns nil for
// driver "none"; callers treat a nil store as cache-less.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, cfg.Geocode.CacheTTLDays)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, nil
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildGeocoder wires the geocoding client with the configured rate limit,
// optional Google fallback, and the store as cache when available.
func buildGeocoder(st store.Store) geocode.Client {
	opts := []geocode.Option{
		geocode.WithRateLimit(cfg.Geocode.RatePerSec),
	}
	if cfg.Geocode.GoogleKey != "" {
		opts = append(opts, geocode.WithGoogleAPIKey(cfg.Geocode.GoogleKey))
	}
	if st != nil {
		opts = append(opts, geocode.WithCache(st))
	}
	return geocode.NewClient(opts...)
}

// buildSource picks a fixture file when one is given (flag first, then
// config), otherwise the county endpoint.
func buildSource(fixturePath string) fetcher.Source {
	if fixturePath == "" {
		fixturePath = cfg.Fetch.FixturePath
	}
	if fixturePath != "" {
		return &fetcher.FileSource{Path: fixturePath}
	}
	return fetcher.NewHTTPSource(fetcher.HTTPOptions{
		BaseURL:    cfg.Fetch.BaseURL,
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		RatePerSec: cfg.Fetch.RatePerSec,
	})
}

// loadQuery reads the query file when given, otherwise an empty query,
// which asks the endpoint for everything.
func loadQuery(path string) (fetcher.Query, error) {
	if path == "" {
		return fetcher.Query{}, nil
	}
	return fetcher.LoadQueryFile(path)
}
