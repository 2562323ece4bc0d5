package inspection

import (
	"iter"

	"github.com/PuerkitoBio/goquery"

	"github.com/pugetworks/healthmap-cli/internal/model"
)

// DefaultRecordLimit bounds record extraction when the caller does not ask
// for a count.
const DefaultRecordLimit = 10

// Records yields one RestaurantRecord per listing in page order, stopping
// after limit records. Extraction happens as the sequence is pulled, so a
// bounded limit never pays for unrequested listings. The sequence is meant
// to be consumed once; a non-positive limit yields nothing.
func Records(doc *goquery.Document, limit int) iter.Seq[model.RestaurantRecord] {
	return func(yield func(model.RestaurantRecord) bool) {
		if limit <= 0 {
			return
		}
		for i, listing := range Listings(doc) {
			if i >= limit {
				return
			}
			rec := model.RestaurantRecord{
				Metadata: Metadata(listing),
				Scores:   Scores(listing),
			}
			if !yield(rec) {
				return
			}
		}
	}
}
