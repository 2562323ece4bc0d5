package geo

import (
	"slices"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/pugetworks/healthmap-cli/internal/model"
)

// ErrInvalidSortKey indicates an unrecognized sort option.
var ErrInvalidSortKey = eris.New("geo: invalid sort key")

// SortKey selects which score statistic ranks the output.
type SortKey string

const (
	SortAverage   SortKey = "average"
	SortHighScore SortKey = "highscore"
	SortMost      SortKey = "most"
)

// ParseSortKey validates a user-supplied sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortAverage, SortHighScore, SortMost:
		return SortKey(s), nil
	default:
		return "", eris.Wrapf(ErrInvalidSortKey, "%q (want average, highscore, or most)", s)
	}
}

// property returns the feature property the key sorts by.
func (k SortKey) property() (string, error) {
	switch k {
	case SortAverage:
		return model.PropAverageScore, nil
	case SortHighScore:
		return model.PropHighScore, nil
	case SortMost:
		return model.PropTotalInspections, nil
	default:
		return "", eris.Wrapf(ErrInvalidSortKey, "%q", string(k))
	}
}

// Rank returns a new slice sorted by the key's property, ascending unless
// reverse is set. The sort is stable, so ties keep their document order.
func Rank(features []*geojson.Feature, key SortKey, reverse bool) ([]*geojson.Feature, error) {
	prop, err := key.property()
	if err != nil {
		return nil, err
	}

	ranked := slices.Clone(features)
	sort.SliceStable(ranked, func(i, j int) bool {
		a := numericProperty(ranked[i], prop)
		b := numericProperty(ranked[j], prop)
		if reverse {
			return a > b
		}
		return a < b
	})
	return ranked, nil
}

// numericProperty reads a numeric feature property, tolerating the int
// types the enricher stores and the float64 a JSON round-trip produces.
func numericProperty(f *geojson.Feature, name string) float64 {
	switch v := f.Properties[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
