package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Ref is an opaque handle to a payload: its offset from the start of the region.
type Ref uint64

// NullRef is the failure sentinel returned by Alloc and Search.
const NullRef Ref = 0

// IsNull reports whether r is the null sentinel.
func (r Ref) IsNull() bool { return r == NullRef }

func (r Ref) String() string { return fmt.Sprintf("%#x", uint64(r)) }

// DirtyTracker receives every byte range the arena writes.
// Offsets are relative to the start of the region.
type DirtyTracker interface {
	Add(off, length int)
}

// Arena is a fixed-capacity region with a bump allocator and a block chain.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Arena struct {
	data     []byte
	capacity uint64
	dt       DirtyTracker
}

// New creates an in-memory arena of capacity bytes with an unset frontier.
func New(capacity uint64) (*Arena, error) {
	if capacity < format.MinCapacity || capacity > format.MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	return &Arena{
		data:     make([]byte, capacity),
		capacity: capacity,
	}, nil
}

// FromBytes adopts data as the region without copying it. The capacity is
// len(data). Writes are reported to dt, which may be nil.
//
// A set frontier must lie within [BaseOffset, capacity].
func FromBytes(data []byte, dt DirtyTracker) (*Arena, error) {
	capacity := uint64(len(data))
	if capacity < format.MinCapacity || capacity > format.MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	a := &Arena{
		data:     data,
		capacity: capacity,
		dt:       dt,
	}
	if f := a.word(format.FrontierOffset); f != 0 && (f < format.BaseOffset || f > capacity) {
		return nil, fmt.Errorf("%w: frontier=%d capacity=%d", ErrCorruptFrontier, f, capacity)
	}
	return a, nil
}

// Capacity returns the region size in bytes.
func (a *Arena) Capacity() uint64 { return a.capacity }

// Bytes returns the region. Callers must not write header fields through it.
func (a *Arena) Bytes() []byte { return a.data }

// Frontier returns the committed allocation cursor. An arena that has never
// allocated reports BaseOffset.
func (a *Arena) Frontier() uint64 {
	f := a.word(format.FrontierOffset)
	if f == 0 {
		return format.BaseOffset
	}
	return f
}

// Remaining returns the bytes left between the frontier and capacity.
func (a *Arena) Remaining() uint64 {
	f := a.Frontier()
	if f >= a.capacity {
		return 0
	}
	return a.capacity - f
}

// Length returns the stored length of the block whose payload starts at ref.
func (a *Arena) Length(ref Ref) (uint64, error) {
	off := uint64(ref)
	if off < format.BlockHeaderSize || !a.has(off-format.LengthFieldSize, format.WordSize) {
		return 0, fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	return a.word(off - format.LengthFieldSize), nil
}

// Payload returns the payload of the block at ref, sized by its stored length.
// Writes through the slice go straight to the region; they are not reported
// to the dirty tracker, so use WritePayload for tracked writes.
func (a *Arena) Payload(ref Ref) ([]byte, error) {
	length, err := a.Length(ref)
	if err != nil {
		return nil, err
	}
	b, ok := buf.SliceU64(a.data, uint64(ref), length)
	if !ok {
		return nil, fmt.Errorf("%w: %s length=%d exceeds region", ErrBadRef, ref, length)
	}
	return b, nil
}

// WritePayload copies data to the start of the payload at ref. It never
// writes past the block's stored length and never touches header fields.
func (a *Arena) WritePayload(ref Ref, data []byte) error {
	p, err := a.Payload(ref)
	if err != nil {
		return err
	}
	if len(data) > len(p) {
		return fmt.Errorf("%w: %d bytes into %d-byte payload at %s", ErrNoSpace, len(data), len(p), ref)
	}
	copy(p, data)
	a.markDirty(uint64(ref), uint64(len(data)))
	return nil
}

// word reads the word at off, or 0 when it is not fully inside the region.
func (a *Arena) word(off uint64) uint64 {
	b, ok := buf.SliceU64(a.data, off, format.WordSize)
	if !ok {
		return 0
	}
	return buf.U64LE(b)
}

// putWord writes v at off if the whole word fits in the region.
func (a *Arena) putWord(off, v uint64) bool {
	b, ok := buf.SliceU64(a.data, off, format.WordSize)
	if !ok {
		return false
	}
	buf.PutU64LE(b, v)
	a.markDirty(off, format.WordSize)
	return true
}

func (a *Arena) has(off, n uint64) bool {
	_, ok := buf.SliceU64(a.data, off, n)
	return ok
}

func (a *Arena) markDirty(off, n uint64) {
	if a.dt != nil && n > 0 {
		a.dt.Add(int(off), int(n))
	}
}

// maxBlocks is the most blocks a well-formed chain can hold: each one needs
// at least a full header.
func (a *Arena) maxBlocks() uint64 {
	return a.capacity/format.BlockHeaderSize + 1
}
