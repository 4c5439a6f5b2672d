package arena

import (
	"io"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Block describes one resolved link of the chain.
type Block struct {
	Index   uint64 // 1-based position in the chain
	Locator uint64 // offset of the length field, as read from the self-locator
	Length  uint64 // stored payload length
	Payload Ref    // start of the payload
}

// ContinuationSlot returns the offset of the word that locates the next block.
func (b Block) ContinuationSlot() uint64 {
	return buf.AddSat(uint64(b.Payload), b.Length)
}

// blockAt resolves the block whose length field lives at loc. It fails for
// the null locator and for locators whose length field is outside the region.
func (a *Arena) blockAt(loc uint64) (Block, bool) {
	if loc == 0 || !a.has(loc, format.LengthFieldSize) {
		return Block{}, false
	}
	return Block{
		Locator: loc,
		Length:  a.word(loc),
		Payload: Ref(buf.AddSat(loc, format.LengthFieldSize)),
	}, true
}

// Search walks the chain from block 1 and returns the length and payload of
// the block at the 1-based index, or (0, NullRef) when the chain ends first.
//
// Search(0) and Search(1) both resolve block 1. Nothing is cached; every call
// costs O(index). An index beyond the most blocks the region can hold
// resolves to (0, NullRef) without walking further, which bounds the walk
// when a corrupted chain loops.
func (a *Arena) Search(index uint64) (uint64, Ref) {
	if index > a.maxBlocks() {
		return 0, NullRef
	}
	blk, ok := a.blockAt(a.word(format.BaseOffset))
	for cur := uint64(1); cur < index; cur++ {
		if !ok {
			return 0, NullRef
		}
		blk, ok = a.blockAt(a.word(blk.ContinuationSlot()))
	}
	if !ok {
		return 0, NullRef
	}
	return blk.Length, blk.Payload
}

// Chain is a forward-only iterator over the blocks of an arena.
// It is not restartable; call Blocks again for a fresh walk.
type Chain struct {
	a     *Arena
	slot  uint64
	index uint64
	limit uint64
	done  bool
}

// Blocks returns an iterator positioned before block 1.
func (a *Arena) Blocks() *Chain {
	return &Chain{
		a:     a,
		slot:  format.BaseOffset,
		limit: a.maxBlocks(),
	}
}

// Next resolves the next block. It returns io.EOF once the chain ends and
// ErrChainTooLong if the walk outgrows the region, which means it loops.
func (c *Chain) Next() (Block, error) {
	if c.done {
		return Block{}, io.EOF
	}

	blk, ok := c.a.blockAt(c.a.word(c.slot))
	if !ok {
		c.done = true
		return Block{}, io.EOF
	}

	if c.index >= c.limit {
		c.done = true
		return Block{}, ErrChainTooLong
	}

	c.index++
	blk.Index = c.index
	c.slot = blk.ContinuationSlot()
	return blk, nil
}

// Collect drains the iterator. On ErrChainTooLong it returns the blocks seen
// so far together with the error.
func (c *Chain) Collect() ([]Block, error) {
	var out []Block
	for {
		blk, err := c.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, blk)
	}
}
