package inspection

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/pugetworks/healthmap-cli/internal/model"
)

// Metadata folds a listing's descriptive rows into a label → values map.
// Only rows with exactly two direct-child cells participate; score-history
// rows have four and section headers have a different shape. A row whose key
// cell cleans to "" continues the most recent label, so multi-row values
// (addresses) accumulate under one key in document order. A listing with no
// rows at all produces an empty map.
func Metadata(listing *goquery.Selection) model.MetadataMap {
	meta := model.MetadataMap{}
	label := ""

	listing.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() != 2 {
			return
		}
		if key := CleanCell(cells.Eq(0)); key != "" {
			label = key
		}
		if label == "" {
			// Value row before any labeled row has no home.
			return
		}
		meta.Append(label, CleanCell(cells.Eq(1)))
	})

	return meta
}
