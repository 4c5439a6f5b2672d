package kit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/wire"
)

func TestEncodeBatch_Layout(t *testing.T) {
	got := EncodeBatch([]Command{
		Allocate(0x10),
		Edit(2, []byte{0xAB}, true),
		Search(3),
	})
	want := []byte{
		3, 0, 0, 0,
		0, 0x10, 0, 0, 0, 0, 0, 0, 0,
		1, 2, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0xAB, 1,
		2, 3, 0, 0, 0, 0, 0, 0, 0,
	}
	assert.Equal(t, want, got)

	cmds, err := DecodeBatch(got)
	require.NoError(t, err)
	assert.Equal(t, []Command{
		Allocate(0x10),
		Edit(2, []byte{0xAB}, true),
		Search(3),
	}, cmds)
}

func TestDecodeBatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, wire.ErrTruncated},
		{"count exceeds input", []byte{2, 0, 0, 0, 2, 1, 0, 0, 0, 0, 0, 0, 0}, wire.ErrTruncated},
		{"unknown tag", []byte{1, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0, 0}, wire.ErrUnknownTag},
		{"truncated field", []byte{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}, wire.ErrTruncated},
		{
			"bad bool",
			[]byte{1, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2},
			wire.ErrInvalidBool,
		},
		{
			"edit length prefix past end",
			[]byte{1, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0, 0, 0, 0},
			wire.ErrTruncated,
		},
		{"trailing", []byte{1, 0, 0, 0, 2, 1, 0, 0, 0, 0, 0, 0, 0, 7}, wire.ErrTrailing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBatch(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeBatch_OversizedBatchDecodes(t *testing.T) {
	cmds := make([]Command, 10)
	for i := range cmds {
		cmds[i] = Search(uint64(i))
	}
	got, err := DecodeBatch(EncodeBatch(cmds))
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "allocate(16)", Allocate(16).String())
	assert.Equal(t, "edit(2, 3 bytes, truncate=true)", Edit(2, []byte("abc"), true).String())
	assert.Equal(t, "search(0)", Search(0).String())
	assert.Equal(t, "Op(7)", Op(7).String())
}
