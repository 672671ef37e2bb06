package csv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodingReader converts r from the named character set to UTF-8.
//
// Names follow the WHATWG encoding labels ("utf-8", "windows-1252",
// "latin1", "shift_jis", ...); an empty name means utf-8. A leading byte
// order mark is stripped and, when it names a Unicode encoding, overrides
// the requested one. Invalid input bytes decode to U+FFFD.
func DecodingReader(r io.Reader, name string) (io.Reader, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "utf-8"
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}
