package geocode

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

// rewriteTransport redirects requests for a fixed production URL to a test
// server, leaving the path and query intact.
type rewriteTransport struct {
	targetPrefix string
	testURL      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	full := req.URL.String()
	if strings.HasPrefix(full, t.targetPrefix) {
		rewritten := t.testURL + strings.TrimPrefix(full, t.targetPrefix)
		u, err := req.URL.Parse(rewritten)
		if err != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.URL = u
		req.Host = u.Host
	}
	return http.DefaultTransport.RoundTrip(req)
}

// newRewriteClient builds an HTTP client that rewrites targetPrefix to testURL.
func newRewriteClient(testURL, targetPrefix string) *http.Client {
	return &http.Client{Transport: &rewriteTransport{targetPrefix: targetPrefix, testURL: testURL}}
}

// newTestLimiter returns a limiter that never blocks in tests.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}
