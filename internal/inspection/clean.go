package inspection

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Boilerplate stripped from both ends of every cell: whitespace plus the
// label punctuation the county wraps around values ("Name: ", " - ").
const cellCutset = " \t\r\n:-"

// CleanText strips leading and trailing whitespace, colons, and hyphens.
// Idempotent, never fails; an empty or text-free input cleans to "".
func CleanText(s string) string {
	return strings.Trim(s, cellCutset)
}

// CleanCell cleans the textual content of a table cell.
func CleanCell(cell *goquery.Selection) string {
	return CleanText(cell.Text())
}
