package inspection

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Each restaurant's listing block is a div whose id is the county's opaque
// program key, e.g. "PR0086259~".
var listingIDPattern = regexp.MustCompile(`^PR[0-9]+~`)

// Listings returns the per-restaurant listing blocks in page order. A page
// with no matching blocks yields an empty slice, not an error.
func Listings(doc *goquery.Document) []*goquery.Selection {
	var listings []*goquery.Selection
	doc.Find("div[id]").Each(func(_ int, s *goquery.Selection) {
		if listingIDPattern.MatchString(s.AttrOr("id", "")) {
			listings = append(listings, s)
		}
	})
	return listings
}
