package geo

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Collection wraps ranked features in a FeatureCollection.
func Collection(features []*geojson.Feature) *geojson.FeatureCollection {
	if features == nil {
		features = []*geojson.Feature{}
	}
	return &geojson.FeatureCollection{Features: features}
}

// WriteCollection writes the collection as GeoJSON text. Property maps
// marshal with sorted keys, so output for a fixed input is byte-stable.
func WriteCollection(w io.Writer, fc *geojson.FeatureCollection) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "geo: encode feature collection")
	}
	return nil
}
