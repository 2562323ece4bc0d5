package fetcher

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
)

// FileSource reads a previously saved results page from disk, ignoring the
// query. Useful for offline runs and deterministic tests.
type FileSource struct {
	Path string
}

// Fetch implements Source. Saved fixtures are assumed UTF-8.
func (s *FileSource) Fetch(_ context.Context, _ Query) (*Page, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read fixture %s", s.Path)
	}
	return &Page{Content: data, Charset: "utf-8"}, nil
}
