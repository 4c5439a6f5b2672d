package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Alloc appends a block with a size-byte payload at the frontier and returns
// the payload's Ref.
//
// The header is written before the capacity check. When the block does not
// fit, Alloc returns NullRef and ErrNoSpace and leaves the committed frontier
// alone, but the self-locator and length words stay in the uncommitted tail.
// The previous block's continuation slot therefore resolves to this phantom
// block until the next successful Alloc overwrites it. Header words that
// would land outside the region are skipped.
//
// Alloc never reclaims; there is no Free.
func (a *Arena) Alloc(size uint64) (Ref, error) {
	pos := a.word(format.FrontierOffset)
	if pos == 0 {
		pos = format.BaseOffset
	}

	// self-locator: points at the length field that follows it
	a.putWord(pos, buf.AddSat(pos, format.LocatorFieldSize))
	pos = buf.AddSat(pos, format.LocatorFieldSize)

	a.putWord(pos, size)
	pos = buf.AddSat(pos, format.LengthFieldSize)

	payload := pos
	pos = buf.AddSat(pos, size)

	if pos > a.capacity {
		return NullRef, fmt.Errorf("%w: size=%d frontier=%d capacity=%d",
			ErrNoSpace, size, a.Frontier(), a.capacity)
	}

	a.putWord(format.FrontierOffset, pos)
	return Ref(payload), nil
}
