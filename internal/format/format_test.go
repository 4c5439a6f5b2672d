package format

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionLayout(t *testing.T) {
	assert.Equal(t, 8, BaseOffset)
	assert.Equal(t, 16, BlockHeaderSize)
	assert.Equal(t, 24, MinCapacity)
	assert.Equal(t, MaxEditBytes, 40)
	assert.Equal(t, SpillWindow, WordSize)
}

func TestEncoding_LittleEndian(t *testing.T) {
	b := make([]byte, 16)
	PutU32(b, 1, 0x04030201)
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, b[:5])
	assert.Equal(t, uint32(0x04030201), ReadU32(b, 1))

	PutU64(b, 8, 0x0807060504030201)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, b[8:])
	assert.Equal(t, uint64(0x0807060504030201), ReadU64(b, 8))
}

func TestEncoding_ShortBufferPanics(t *testing.T) {
	assert.Panics(t, func() { ReadU64(make([]byte, 7), 0) })
	assert.Panics(t, func() { PutU32(make([]byte, 4), 1, 0) })
}

func TestImageHeaderLayout(t *testing.T) {
	// fields must not overlap and the checksum must follow everything it covers
	assert.Equal(t, ImageIDOffset+ImageIDSize, ImageChecksumOffset)
	assert.Less(t, ImageChecksumOffset+WordSize, ImageHeaderSize)
	assert.Len(t, ImageSignature, 4)
	assert.Len(t, SnapshotSignature, 4)
	assert.Equal(t, SnapshotStoredLenOffset+WordSize, SnapshotHeaderSize)
}

func TestImageChecksum(t *testing.T) {
	hdr := make([]byte, ImageHeaderSize)
	copy(hdr, ImageSignature)
	PutU32(hdr, ImageVersionOffset, ImageVersion)

	sum := ImageChecksum(hdr)
	assert.Equal(t, xxhash.Sum64(hdr[:ImageChecksumOffset]), sum)

	// the checksum field and everything after it are not covered
	PutU64(hdr, ImageChecksumOffset, sum)
	hdr[ImageHeaderSize-1] = 0xFF
	assert.Equal(t, sum, ImageChecksum(hdr))

	PutU32(hdr, ImagePrimarySeqOffset, 2)
	require.NotEqual(t, sum, ImageChecksum(hdr))
}
