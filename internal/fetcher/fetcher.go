// Package fetcher retrieves the inspection results page, either from the
// county endpoint or from a saved fixture.
package fetcher

import "context"

// Page is a fetched results page with its declared character encoding.
type Page struct {
	Content []byte
	Charset string
}

// Source supplies the inspection results page for a query.
type Source interface {
	Fetch(ctx context.Context, q Query) (*Page, error)
}
