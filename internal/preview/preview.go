// Package preview renders raw payload bytes for terminal output.
package preview

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// Text renders b as a single line. Bytes are read as Windows-1252 so that
// high bytes show as Latin-1 letters instead of replacement runes; control
// characters become '.'. Output longer than limit bytes of input is cut and
// annotated with the number of bytes left out. A limit <= 0 means no limit.
func Text(b []byte, limit int) string {
	extra := 0
	if limit > 0 && len(b) > limit {
		extra = len(b) - limit
		b = b[:limit]
	}

	s := decode(b)
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('.')
		}
	}
	if extra > 0 {
		fmt.Fprintf(&sb, "... (+%d bytes)", extra)
	}
	return sb.String()
}

// Dump returns a canonical hex dump of b, as hexdump -C would print it.
func Dump(b []byte) string {
	return hex.Dump(b)
}

func decode(b []byte) string {
	// Fast path: ASCII doesn't need decoding (same in Windows-1252 and UTF-8)
	if isASCII(b) {
		return string(b)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
