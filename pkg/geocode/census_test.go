package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCensusGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2808 E MADISON ST, SEATTLE, WA 98112", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"result": {
				"addressMatches": [{
					"coordinates": {"x": -122.2955, "y": 47.6206},
					"matchedAddress": "2808 E MADISON ST, SEATTLE, WA, 98112"
				}]
			}
		}`)
	}))
	defer srv.Close()

	g := &geocoder{
		httpClient: newRewriteClient(srv.URL, censusOneLineURL),
		limiter:    newTestLimiter(),
	}

	result, err := g.geocodeCensus(context.Background(), "2808 E MADISON ST, SEATTLE, WA 98112")
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.InDelta(t, 47.6206, result.Latitude, 1e-6)
	assert.InDelta(t, -122.2955, result.Longitude, 1e-6)
	assert.Equal(t, "2808 E MADISON ST, SEATTLE, WA, 98112", result.NormalizedAddress)
	assert.Equal(t, "census", result.Source)
}

func TestCensusGeocode_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"result": {"addressMatches": []}}`)
	}))
	defer srv.Close()

	g := &geocoder{
		httpClient: newRewriteClient(srv.URL, censusOneLineURL),
		limiter:    newTestLimiter(),
	}

	result, err := g.geocodeCensus(context.Background(), "1 NOWHERE LN")
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestCensusGeocode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := &geocoder{
		httpClient: newRewriteClient(srv.URL, censusOneLineURL),
		limiter:    newTestLimiter(),
	}

	_, err := g.geocodeCensus(context.Background(), "2808 E MADISON ST")
	require.Error(t, err)
}
