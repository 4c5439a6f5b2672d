package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		limit int
		want  string
	}{
		{"ascii", []byte("hello"), 0, "hello"},
		{"controls", []byte{'a', 0, '\n', 'b'}, 0, "a..b"},
		{"latin1", []byte{'c', 'a', 'f', 0xE9}, 0, "café"},
		{"cut", []byte("abcdefgh"), 3, "abc... (+5 bytes)"},
		{"limit covers input", []byte("abc"), 3, "abc"},
		{"empty", nil, 8, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in, tt.limit))
		})
	}
}

func TestDump(t *testing.T) {
	out := Dump([]byte("AAAA"))
	assert.Contains(t, out, "41 41 41 41")
	assert.Contains(t, out, "|AAAA|")
}
