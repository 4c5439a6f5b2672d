package image

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

func populatedArena(t *testing.T) *arena.Arena {
	t.Helper()
	a, err := arena.New(8192)
	require.NoError(t, err)
	for _, size := range []uint64{16, 16, 16, 64} {
		ref, err := a.Alloc(size)
		require.NoError(t, err)
		require.NoError(t, a.WritePayload(ref, bytes.Repeat([]byte{'z'}, int(size))))
	}
	return a
}

func TestSnapshot_RoundTripEachCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			src := populatedArena(t)

			var out bytes.Buffer
			require.NoError(t, WriteSnapshot(&out, src, c))
			assert.Equal(t, byte(c), out.Bytes()[format.SnapshotCompressionOffset],
				"a mostly empty region compresses well")
			if c != CompressionNone {
				assert.Less(t, out.Len(), int(src.Capacity()))
			}

			got, err := ReadSnapshot(&out)
			require.NoError(t, err)
			assert.Equal(t, src.Bytes(), got.Bytes())
			assert.Equal(t, src.Frontier(), got.Frontier())

			blocks, err := got.Blocks().Collect()
			require.NoError(t, err)
			assert.Len(t, blocks, 4)
		})
	}
}

func TestSnapshot_IncompressibleFallsBackToNone(t *testing.T) {
	a, err := arena.New(256)
	require.NoError(t, err)
	ref, err := a.Alloc(232)
	require.NoError(t, err)
	noise := make([]byte, 232)
	x := uint32(2463534242)
	for i := range noise {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		noise[i] = byte(x)
	}
	require.NoError(t, a.WritePayload(ref, noise))

	var out bytes.Buffer
	require.NoError(t, WriteSnapshot(&out, a, CompressionZSTD))
	assert.Equal(t, byte(CompressionNone), out.Bytes()[format.SnapshotCompressionOffset])

	got, err := ReadSnapshot(&out)
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), got.Bytes())
}

func TestReadSnapshot_Rejects(t *testing.T) {
	var good bytes.Buffer
	require.NoError(t, WriteSnapshot(&good, populatedArena(t), CompressionLZ4))

	tests := []struct {
		name   string
		mutate func(b []byte) []byte
		want   error
	}{
		{"empty", func([]byte) []byte { return nil }, ErrSnapshot},
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrBadMagic},
		{"truncated body", func(b []byte) []byte { return b[:len(b)-1] }, ErrSnapshot},
		{"checksum", func(b []byte) []byte { b[format.SnapshotChecksumOffset] ^= 1; return b }, ErrSnapshot},
		{"frontier", func(b []byte) []byte { b[format.SnapshotFrontierOffset] ^= 8; return b }, ErrSnapshot},
		{"capacity", func(b []byte) []byte {
			format.PutU64(b, format.SnapshotCapacityOffset, 4)
			return b
		}, arena.ErrCapacity},
		{"huge stored length", func(b []byte) []byte {
			format.PutU64(b, format.SnapshotStoredLenOffset, 1<<40)
			return b
		}, ErrSnapshot},
		{"unknown compression", func(b []byte) []byte { b[format.SnapshotCompressionOffset] = 7; return b }, ErrSnapshot},
		{"header only claiming max capacity", func(b []byte) []byte {
			format.PutU64(b, format.SnapshotCapacityOffset, format.MaxCapacity)
			format.PutU64(b, format.SnapshotStoredLenOffset, format.MaxCapacity)
			return b[:format.SnapshotHeaderSize]
		}, ErrSnapshot},
		{"trailing bytes", func(b []byte) []byte { return append(b, 0) }, ErrSnapshot},
		{"capacity beyond lz4 expansion", func(b []byte) []byte {
			format.PutU64(b, format.SnapshotCapacityOffset, format.MaxCapacity)
			return b
		}, ErrSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(append([]byte(nil), good.Bytes()...))
			_, err := ReadSnapshot(bytes.NewReader(data))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("gzip")
	require.Error(t, err)
}

func TestReadSnapshot_HeaderOnlyClaimingMaxCapacity(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			hdr := make([]byte, format.SnapshotHeaderSize)
			copy(hdr, format.SnapshotSignature)
			hdr[format.SnapshotCompressionOffset] = byte(c)
			format.PutU64(hdr, format.SnapshotCapacityOffset, format.MaxCapacity)
			format.PutU64(hdr, format.SnapshotStoredLenOffset, format.MaxCapacity)

			_, err := ReadSnapshot(bytes.NewReader(hdr))
			require.ErrorIs(t, err, ErrSnapshot)
			assert.Contains(t, err.Error(), "body is 0 bytes")
		})
	}
}

func TestReadSnapshot_SmallBodyClaimingHugeRegion(t *testing.T) {
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			hdr := make([]byte, format.SnapshotHeaderSize)
			copy(hdr, format.SnapshotSignature)
			hdr[format.SnapshotCompressionOffset] = byte(c)
			format.PutU64(hdr, format.SnapshotCapacityOffset, format.MaxCapacity)
			format.PutU64(hdr, format.SnapshotStoredLenOffset, 16)
			data := append(hdr, make([]byte, 16)...)

			_, err := ReadSnapshot(bytes.NewReader(data))
			require.ErrorIs(t, err, ErrSnapshot)
			assert.Contains(t, err.Error(), "cannot expand")
		})
	}
}
