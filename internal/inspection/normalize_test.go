package inspection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_UTF8Default(t *testing.T) {
	doc, err := Normalize([]byte(`<html><body><p id="x">café</p></body></html>`), "")
	require.NoError(t, err)
	assert.Equal(t, "café", doc.Find("#x").Text())
}

func TestNormalize_DeclaredLatin1(t *testing.T) {
	// "café" with the é encoded as the single Latin-1 byte 0xE9.
	raw := append([]byte(`<html><body><p id="x">caf`), 0xE9)
	raw = append(raw, []byte(`</p></body></html>`)...)

	doc, err := Normalize(raw, "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café", doc.Find("#x").Text())
}

func TestNormalize_UnknownCharset(t *testing.T) {
	_, err := Normalize([]byte("<html></html>"), "no-such-charset")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}
