// Package extract holds the pure page-body classifiers: lexicon matching,
// price extraction, contact extraction and technology-category
// normalization. Every function is deterministic, takes its configuration
// as an argument and is safe to run concurrently across pages.
package extract

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeBody decodes raw page bytes as UTF-8, falling back to ISO-8859-1
// when the bytes are not valid UTF-8. Latin-1 maps every byte, so decoding
// never fails and no error is surfaced.
func DecodeBody(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
