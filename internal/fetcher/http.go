package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"mime"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP page source.
type HTTPOptions struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64
}

// HTTPSource fetches the results page over HTTP with retry and rate
// limiting. The county endpoint is slow and occasionally flaky, so 5xx and
// 429 responses are retried with jittered exponential backoff.
type HTTPSource struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTPSource with the given options.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "healthmap-cli/1.0"
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 1
	}
	return &HTTPSource{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

// Fetch implements Source. The returned charset comes from the response
// Content-Type header; empty means the caller should assume UTF-8.
func (s *HTTPSource) Fetch(ctx context.Context, q Query) (*Page, error) {
	reqURL := s.opts.BaseURL + "?" + q.Values().Encode()

	var lastErr error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			backoff += time.Duration(rand.Int64N(int64(500 * time.Millisecond)))
			zap.L().Debug("fetcher: retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "fetcher: cancelled")
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limit")
		}

		page, retryable, err := s.fetchOnce(ctx, reqURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (s *HTTPSource) fetchOnce(ctx context.Context, reqURL string) (*Page, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, eris.Wrap(err, "fetcher: build request")
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, eris.Wrap(err, "fetcher: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, eris.Errorf("fetcher: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, eris.Wrap(err, "fetcher: read body")
	}

	return &Page{Content: body, Charset: responseCharset(resp)}, false, nil
}

// responseCharset extracts the charset parameter from the Content-Type
// header, if any.
func responseCharset(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return params["charset"]
}
