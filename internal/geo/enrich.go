// Package geo turns restaurant records into geocoded GeoJSON features and
// ranks them by inspection statistics.
package geo

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/pugetworks/healthmap-cli/internal/model"
	geocodepkg "github.com/pugetworks/healthmap-cli/pkg/geocode"
)

// ErrGeocode indicates the geocoding provider failed or returned no
// geometry for a record's address.
var ErrGeocode = eris.New("geo: geocode failed")

// Enricher builds GeoJSON features from restaurant records.
type Enricher struct {
	client geocodepkg.Client
}

// NewEnricher creates an Enricher backed by the given geocoding client.
func NewEnricher(client geocodepkg.Client) *Enricher {
	return &Enricher{client: client}
}

// Enrich geocodes the record's address and returns a Feature carrying the
// record's map-facing properties. A record with no address yields (nil, nil)
// — it is dropped, not an error. Provider failures and unmatched addresses
// return ErrGeocode; retry policy is the caller's concern.
func (e *Enricher) Enrich(ctx context.Context, rec model.RestaurantRecord) (*geojson.Feature, error) {
	address := rec.Address()
	if address == "" {
		return nil, nil
	}

	result, err := e.client.Geocode(ctx, address)
	if err != nil {
		return nil, eris.Wrapf(ErrGeocode, "%q: %v", address, err)
	}
	if result == nil || !result.Matched {
		return nil, eris.Wrapf(ErrGeocode, "no geometry for %q", address)
	}
	if result.NormalizedAddress != "" {
		address = result.NormalizedAddress
	}

	return &geojson.Feature{
		Geometry: geom.NewPointFlat(geom.XY, []float64{result.Longitude, result.Latitude}),
		Properties: map[string]any{
			model.PropBusinessName:     rec.BusinessName(),
			model.PropAddress:          address,
			model.PropAverageScore:     rec.Scores.AverageScore,
			model.PropHighScore:        rec.Scores.HighScore,
			model.PropTotalInspections: rec.Scores.TotalInspections,
		},
	}, nil
}
