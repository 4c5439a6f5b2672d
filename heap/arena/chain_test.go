package arena

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_EmptyArena(t *testing.T) {
	a := newTestArena(t, 256)

	for _, idx := range []uint64{0, 1, 2, 10} {
		length, ref := a.Search(idx)
		assert.Zero(t, length, "index %d", idx)
		assert.True(t, ref.IsNull(), "index %d", idx)
	}
}

func TestSearch_ThreeEqualBlocks(t *testing.T) {
	a := newTestArena(t, 1024)
	refs := allocAll(t, a, 0x10, 0x10, 0x10)

	var prev Ref
	for i := range refs {
		length, ref := a.Search(uint64(i + 1))
		assert.Equal(t, uint64(16), length)
		assert.Equal(t, refs[i], ref)
		if i > 0 {
			assert.Equal(t, uint64(32), uint64(ref-prev), "payloads spaced header+size apart")
		}
		prev = ref
	}
}

func TestSearch_ZeroAndOneAreEquivalent(t *testing.T) {
	a := newTestArena(t, 1024)
	allocAll(t, a, 24, 8)

	l0, r0 := a.Search(0)
	l1, r1 := a.Search(1)
	assert.Equal(t, l1, l0)
	assert.Equal(t, r1, r0)
	assert.Equal(t, uint64(24), l0)
}

func TestSearch_PastChainEnd(t *testing.T) {
	a := newTestArena(t, 1024)
	allocAll(t, a, 16, 16)

	length, ref := a.Search(3)
	assert.Zero(t, length)
	assert.True(t, ref.IsNull())

	length, ref = a.Search(1 << 40)
	assert.Zero(t, length)
	assert.True(t, ref.IsNull())
}

func TestSearch_LocatorOutsideRegion(t *testing.T) {
	a := newTestArena(t, 256)
	refs := allocAll(t, a, 16)

	// point block 2's self-locator past the region via the spill window
	data := make([]byte, 24)
	putTestWord(data[16:], 1<<20)
	require.True(t, a.Edit(refs[0], data, false).OK())

	length, ref := a.Search(2)
	assert.Zero(t, length)
	assert.True(t, ref.IsNull())
}

func TestBlocks_MatchesSearch(t *testing.T) {
	a := newTestArena(t, 2048)
	sizes := []uint64{16, 0, 40, 8, 100}
	refs := allocAll(t, a, sizes...)

	blocks, err := a.Blocks().Collect()
	require.NoError(t, err)
	require.Len(t, blocks, len(sizes))

	for i, blk := range blocks {
		assert.Equal(t, uint64(i+1), blk.Index)
		assert.Equal(t, sizes[i], blk.Length)
		assert.Equal(t, refs[i], blk.Payload)
		assert.Equal(t, uint64(blk.Payload)-8, blk.Locator)

		length, ref := a.Search(blk.Index)
		assert.Equal(t, blk.Length, length)
		assert.Equal(t, blk.Payload, ref)
	}
}

func TestBlocks_NotRestartable(t *testing.T) {
	a := newTestArena(t, 256)
	allocAll(t, a, 8)

	it := a.Blocks()
	_, err := it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF, "exhausted iterator stays exhausted")
}

func TestBlocks_LoopingChainTerminates(t *testing.T) {
	a := newTestArena(t, 256)
	refs := allocAll(t, a, 16, 16)

	// Spill into block 2's self-locator so it points back at block 1's
	// length field: 1 -> 1 -> 1 ...
	data := make([]byte, 24)
	putTestWord(data[16:], uint64(refs[0])-8)
	res := a.Edit(refs[0], data, false)
	require.True(t, res.OK(), "edit: %v", res.Status)

	blocks, err := a.Blocks().Collect()
	require.ErrorIs(t, err, ErrChainTooLong)
	require.NotEmpty(t, blocks)
	for _, blk := range blocks {
		assert.Equal(t, refs[0], blk.Payload)
	}

	// Search follows the desynchronized chain as-is.
	length, ref := a.Search(2)
	assert.Equal(t, uint64(16), length)
	assert.Equal(t, refs[0], ref)
}

func TestSearch_LoopingChainStopsAtBlockBound(t *testing.T) {
	a := newTestArena(t, 256)
	refs := allocAll(t, a, 16, 16)

	data := make([]byte, 24)
	putTestWord(data[16:], uint64(refs[0])-8)
	require.True(t, a.Edit(refs[0], data, false).OK())

	bound := a.maxBlocks()
	require.Equal(t, uint64(256/16+1), bound)

	// the last index inside the bound still walks the loop
	length, ref := a.Search(bound)
	assert.Equal(t, uint64(16), length)
	assert.Equal(t, refs[0], ref)

	// past it the walk is not attempted
	length, ref = a.Search(bound + 1)
	assert.Zero(t, length)
	assert.True(t, ref.IsNull())

	length, ref = a.Search(math.MaxUint64)
	assert.Zero(t, length)
	assert.True(t, ref.IsNull())
}

func putTestWord(b []byte, v uint64) {
	for i := range 8 {
		b[i] = byte(v >> (8 * i))
	}
}
