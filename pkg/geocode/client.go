// Package geocode resolves one-line street addresses to coordinates via the
// Census Geocoder (primary) with optional Google fallback and a pluggable
// persistent cache.
package geocode

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result holds the geocoding output for an address.
type Result struct {
	Latitude          float64
	Longitude         float64
	NormalizedAddress string // provider's canonical form, empty if not supplied
	Source            string // "census" or "google"
	Matched           bool
}

// Client geocodes one-line addresses.
type Client interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Cache persists geocode results keyed by address hash. Non-matches are
// cached too, so repeatedly bad addresses don't re-hit the providers.
type Cache interface {
	GetGeocode(ctx context.Context, addressHash string) (*Result, bool, error)
	PutGeocode(ctx context.Context, addressHash string, r *Result) error
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithGoogleAPIKey enables Google Geocoding API as a fallback.
func WithGoogleAPIKey(key string) Option {
	return func(g *geocoder) {
		g.googleKey = key
	}
}

// WithHTTPClient sets a custom HTTP client for provider requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for provider calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithCache sets a persistent result cache.
func WithCache(c Cache) Option {
	return func(g *geocoder) {
		g.cache = c
	}
}

type geocoder struct {
	httpClient *http.Client
	googleKey  string
	limiter    *rate.Limiter
	cache      Cache
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(2, 2),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode geocodes a single address, consulting the cache first, then
// Census, then Google if configured. An unmatched address is not an error;
// the caller inspects Result.Matched.
func (g *geocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	key := cacheKey(address)

	if g.cache != nil {
		if cached, ok, err := g.cache.GetGeocode(ctx, key); err == nil && ok {
			return cached, nil
		} else if err != nil {
			zap.L().Debug("geocode: cache lookup failed", zap.Error(err))
		}
	}

	result, censusErr := g.geocodeCensus(ctx, address)
	if censusErr != nil || !result.Matched {
		if g.googleKey != "" {
			if googleResult, err := g.geocodeGoogle(ctx, address); err == nil && googleResult.Matched {
				result, censusErr = googleResult, nil
			}
		}
	}
	if censusErr != nil {
		return nil, censusErr
	}

	if g.cache != nil {
		if err := g.cache.PutGeocode(ctx, key, result); err != nil {
			zap.L().Debug("geocode: cache store failed", zap.Error(err))
		}
	}
	return result, nil
}
