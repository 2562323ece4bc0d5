package inspection

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pugetworks/healthmap-cli/internal/model"
)

// isInspectionRow reports whether a cleaned, lowercased first-cell text
// marks an inspection-history row. The section header starts with
// "inspection" and is excluded; real rows lead with the inspection type,
// e.g. "routine inspection/field review".
func isInspectionRow(firstCell string) bool {
	return strings.Contains(firstCell, "inspection") && !strings.HasPrefix(firstCell, "inspection")
}

// Scores aggregates a listing's inspection-history rows. Only rows with
// exactly four direct-child cells are considered; the score lives in the
// third cell. A row whose score does not parse as an integer is dropped
// from the sample without touching the total or high score. HighScore
// starts at zero, so an all-negative history reports zero rather than the
// true maximum.
func Scores(listing *goquery.Selection) model.ScoreSummary {
	var sum model.ScoreSummary
	total := 0

	listing.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() != 4 {
			return
		}
		if !isInspectionRow(strings.ToLower(CleanCell(cells.Eq(0)))) {
			return
		}
		sum.TotalInspections++

		score, err := strconv.Atoi(CleanCell(cells.Eq(2)))
		if err != nil {
			sum.TotalInspections--
			return
		}
		total += score
		if score > sum.HighScore {
			sum.HighScore = score
		}
	})

	if sum.TotalInspections > 0 {
		sum.AverageScore = float64(total) / float64(sum.TotalInspections)
	}
	return sum
}
