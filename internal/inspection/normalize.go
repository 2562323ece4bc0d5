// Package inspection turns the county inspection results page into typed
// restaurant records: normalize markup, locate per-restaurant listing
// blocks, extract metadata and score history, and assemble records.
package inspection

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrDecode indicates the raw page could not be decoded under its declared
// charset or parsed into a document.
var ErrDecode = eris.New("inspection: decode page")

// Normalize decodes raw markup under the declared charset and parses it into
// a navigable document. An empty charset means UTF-8. Callers that want
// charset sniffing as a fallback can retry with a detected value.
func Normalize(raw []byte, charset string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(raw)

	if charset != "" && !strings.EqualFold(charset, "utf-8") {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(ErrDecode, "unsupported charset %q", charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrapf(ErrDecode, "parse markup: %v", err)
	}
	return doc, nil
}
