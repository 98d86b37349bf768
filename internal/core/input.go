package core

import (
	"bytes"
	"unicode/utf8"
)

// utf8BOM is the byte order mark Windows tools prepend to UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalizeInput strips a leading UTF-8 BOM and replaces invalid UTF-8
// sequences with U+FFFD so the CSV reader only ever sees valid text.
func normalizeInput(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	return sanitizeUTF8(data)
}

// sanitizeUTF8 replaces invalid UTF-8 bytes with the replacement character.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
