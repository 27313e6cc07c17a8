// Package codec extracts typed values from fixed byte offsets inside
// vendor record buffers. All primitives are deterministic: identical bytes
// in identical layouts always produce identical typed values.
//
// Numeric fields are ASCII digits with leading spaces or zeroes. Empty or
// all-space fields decode to nil. Masked fields ("***"-prefixed, "--"
// runs, all '-'/'*') also decode to nil; other non-digit content decodes
// to nil with a warning so the record as a whole survives.
//
// Text fields are Shift-JIS. Invalid multi-byte sequences fall back to a
// byte-preserving single-byte decoding so no record is lost to encoding;
// the result is stored as UTF-8.
package codec

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/japanese"
)

// Int decodes an ASCII integer field. Returns (nil, false) for empty or
// masked content, (nil, true) when the content is non-numeric garbage.
func Int(buf []byte, off, length int) (interface{}, bool) {
	s := strings.TrimSpace(string(buf[off : off+length]))
	if s == "" {
		return nil, false
	}
	if masked(s) {
		return nil, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, true
	}
	return n, false
}

// Real decodes an ASCII integer field and divides it by 10^scale. A scale
// of zero yields the plain value as a float. Null rules match Int.
func Real(buf []byte, off, length, scale int) (interface{}, bool) {
	v, warn := Int(buf, off, length)
	if v == nil {
		return nil, warn
	}
	f := float64(v.(int64))
	for i := 0; i < scale; i++ {
		f /= 10
	}
	return f, false
}

// Text decodes a Shift-JIS field, trims trailing ASCII spaces and returns
// the UTF-8 string. Invalid multi-byte sequences fall back to the
// byte-preserving single-byte decoding.
func Text(buf []byte, off, length int) string {
	raw := buf[off : off+length]
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	var s string
	if err != nil {
		s = fallbackDecode(raw)
	} else {
		s = string(decoded)
		// The decoder substitutes U+FFFD for broken sequences; prefer the
		// byte-preserving form so nothing is silently dropped.
		if strings.ContainsRune(s, '�') {
			s = fallbackDecode(raw)
		}
	}
	return strings.TrimRight(s, " ")
}

// fallbackDecode maps each byte to the code point of equal value. ASCII
// subsequences round-trip byte-identically through UTF-8.
func fallbackDecode(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		b.WriteRune(rune(c))
	}
	return b.String()
}

// masked reports whether a numeric field carries one of the vendor's
// masked-value markers instead of digits.
func masked(s string) bool {
	if strings.HasPrefix(s, "***") || strings.Contains(s, "****") {
		return true
	}
	if strings.Contains(s, "--") {
		return true
	}
	all := true
	for _, c := range s {
		if c != '-' && c != '*' {
			all = false
			break
		}
	}
	return all
}
