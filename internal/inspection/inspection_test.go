package inspection

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// resultsPage is a trimmed-down copy of the county results markup shape:
// one div per restaurant keyed by the PR program id, descriptive rows with
// two cells, and inspection-history rows with four.
const resultsPage = `<html><body>
<div id="container">
<div id="PR0086259~" name="PR0086259~">
	<table>
		<tr><td colspan="4">TOP OF THE HILL GRILL</td></tr>
		<tr><td>Business Name</td><td>- TOP OF THE HILL GRILL -</td></tr>
		<tr><td>Address</td><td>2808 E MADISON ST</td></tr>
		<tr><td></td><td>SEATTLE, WA 98112</td></tr>
		<tr><td>Business Category</td><td>Seating 0-12 - Risk Category III</td></tr>
		<tr><td>Inspection Type</td><td>Inspection Date</td><td>Score</td><td>Result</td></tr>
		<tr><td>Routine Inspection/Field Review</td><td>01/15/2015</td><td>85</td><td>Unsatisfactory</td></tr>
		<tr><td>Return Inspection</td><td>02/03/2015</td><td>10</td><td>Satisfactory</td></tr>
		<tr><td>Routine Inspection/Field Review</td><td>06/20/2015</td><td>not-a-number</td><td>Complete</td></tr>
		<tr><td>Consultation/Education - Field</td><td>07/07/2015</td><td>40</td><td>Complete</td></tr>
	</table>
</div>
<div id="PR0012345~" name="PR0012345~">
	<table>
		<tr><td>Business Name</td><td>EMPTY PLATE</td></tr>
		<tr><td>Business Category</td><td>Mobile Food Unit</td></tr>
	</table>
</div>
<div id="PRX not a listing">skipped</div>
<div id="nav">skipped</div>
</div>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := Normalize([]byte(html), "utf-8")
	require.NoError(t, err)
	return doc
}
