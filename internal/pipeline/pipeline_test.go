package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pugetworks/healthmap-cli/internal/fetcher"
	"github.com/pugetworks/healthmap-cli/internal/geo"
	"github.com/pugetworks/healthmap-cli/internal/model"
	"github.com/pugetworks/healthmap-cli/pkg/geocode"
)

// stubGeocoder maps full address strings to deterministic coordinates.
type stubGeocoder struct {
	coords map[string][2]float64 // address → {lon, lat}
	fail   map[string]bool
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) (*geocode.Result, error) {
	if s.fail[address] {
		return nil, eris.New("stub: provider unavailable")
	}
	c, ok := s.coords[address]
	if !ok {
		return &geocode.Result{Matched: false}, nil
	}
	return &geocode.Result{
		Longitude: c[0], Latitude: c[1],
		NormalizedAddress: address + " (NORMALIZED)",
		Source:            "stub",
		Matched:           true,
	}, nil
}

func fixturePipeline(gc geocode.Client, opts Options) *Pipeline {
	return New(
		&fetcher.FileSource{Path: "testdata/load_inspection.html"},
		geo.NewEnricher(gc),
		opts,
	)
}

func knownAddresses() *stubGeocoder {
	return &stubGeocoder{coords: map[string][2]float64{
		"2808 E MADISON ST SEATTLE, WA 98112": {-122.2955, 47.6206},
		"2901 E MADISON ST":                   {-122.2940, 47.6230},
	}}
}

func TestRun_EndToEnd(t *testing.T) {
	p := fixturePipeline(knownAddresses(), Options{Concurrency: 4})

	result, err := p.Run(context.Background(), fetcher.Query{}, geo.SortAverage, 10, false)
	require.NoError(t, err)

	// Three records extracted; the truck has no address and is dropped.
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, result.Collection.Features, 2)

	// average ascending: CAFE FLORA (35) before the GRILL (47.5).
	assert.Equal(t, "CAFE FLORA", result.Collection.Features[0].Properties[model.PropBusinessName])
	assert.Equal(t, "TOP OF THE HILL GRILL", result.Collection.Features[1].Properties[model.PropBusinessName])
	assert.Equal(t, "2901 E MADISON ST (NORMALIZED)", result.Collection.Features[0].Properties[model.PropAddress])
}

func TestRun_ByteStableAcrossRuns(t *testing.T) {
	p := fixturePipeline(knownAddresses(), Options{Concurrency: 4})

	var outputs [][]byte
	for range 2 {
		result, err := p.Run(context.Background(), fetcher.Query{}, geo.SortHighScore, 10, true)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, geo.WriteCollection(&buf, result.Collection))
		outputs = append(outputs, buf.Bytes())
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestRun_LimitBoundsExtraction(t *testing.T) {
	p := fixturePipeline(knownAddresses(), Options{})

	result, err := p.Run(context.Background(), fetcher.Query{}, geo.SortAverage, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Records)
	assert.Len(t, result.Collection.Features, 1)
}

func TestRun_GeocodeFailureSkipsRecord(t *testing.T) {
	gc := knownAddresses()
	gc.fail = map[string]bool{"2901 E MADISON ST": true}
	p := fixturePipeline(gc, Options{Concurrency: 2})

	result, err := p.Run(context.Background(), fetcher.Query{}, geo.SortAverage, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Collection.Features, 1)
	assert.Equal(t, "TOP OF THE HILL GRILL", result.Collection.Features[0].Properties[model.PropBusinessName])
}

func TestRun_StrictAbortsOnGeocodeFailure(t *testing.T) {
	gc := knownAddresses()
	gc.fail = map[string]bool{"2901 E MADISON ST": true}
	p := fixturePipeline(gc, Options{Concurrency: 2, Strict: true})

	_, err := p.Run(context.Background(), fetcher.Query{}, geo.SortAverage, 10, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrGeocode)
}

func TestRun_InvalidSortKeyBeforeFetch(t *testing.T) {
	p := New(&failingSource{}, geo.NewEnricher(knownAddresses()), Options{})

	_, err := p.Run(context.Background(), fetcher.Query{}, geo.SortKey("bogus"), 10, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrInvalidSortKey)
}

// failingSource proves validation happens before any fetch.
type failingSource struct{}

func (f *failingSource) Fetch(context.Context, fetcher.Query) (*fetcher.Page, error) {
	return nil, eris.New("should not be called")
}
