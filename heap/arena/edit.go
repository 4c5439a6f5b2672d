package arena

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// EditStatus is the outcome of an Edit. Every status other than EditOK means
// the region was left untouched.
type EditStatus uint8

const (
	EditOK            EditStatus = iota
	EditBadRef                   // ref leaves no room for a length field
	EditCorruptLength            // stored length exceeds the region capacity
	EditZeroLength               // stored length is 0
	EditTooLong                  // data exceeds min(length+SpillWindow, MaxEditBytes)
	EditOutOfRegion              // the write would cross the end of the region
)

func (s EditStatus) String() string {
	switch s {
	case EditOK:
		return "ok"
	case EditBadRef:
		return "bad reference"
	case EditCorruptLength:
		return "data length is too long"
	case EditZeroLength:
		return "data length is 0"
	case EditTooLong:
		return "data is too long"
	case EditOutOfRegion:
		return "write crosses region end"
	default:
		return fmt.Sprintf("EditStatus(%d)", uint8(s))
	}
}

// EditResult reports what an Edit did.
type EditResult struct {
	Status    EditStatus
	Length    uint64 // stored length before the edit
	Written   int    // payload bytes copied
	Truncated bool   // length was shrunk and the continuation slot moved
}

// OK reports whether the edit was applied.
func (r EditResult) OK() bool { return r.Status == EditOK }

// Err returns nil for an applied edit and an ErrEditRejected wrap otherwise.
func (r EditResult) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s (length=%d)", ErrEditRejected, r.Status, r.Length)
}

// writeLimit is the most bytes an edit may write into a block of the given
// length. The SpillWindow term lets a write reach into the continuation slot.
func writeLimit(length uint64) uint64 {
	return min(length+format.SpillWindow, format.MaxEditBytes)
}

// Edit overwrites the payload at ref with data.
//
// The target's length is read from the word before ref. Writes of up to
// writeLimit(length) bytes are accepted, so data may run 8 bytes past the
// payload into the next block's self-locator field.
//
// When truncate is set and data is shorter than the stored length, the word
// at ref+length (the continuation slot) is copied to ref+len(data) and the
// length is set to len(data). Lengths never grow.
//
// Rejections are reported in the result, never as a panic or partial write.
func (a *Arena) Edit(ref Ref, data []byte, truncate bool) EditResult {
	off := uint64(ref)
	if off < format.BlockHeaderSize || !a.has(off-format.LengthFieldSize, format.WordSize) {
		return EditResult{Status: EditBadRef}
	}

	length := a.word(off - format.LengthFieldSize)
	res := EditResult{Length: length}

	if length > a.capacity {
		res.Status = EditCorruptLength
		return res
	}
	if length == 0 {
		res.Status = EditZeroLength
		return res
	}

	n := uint64(len(data))
	if n > writeLimit(length) {
		res.Status = EditTooLong
		return res
	}

	relink := truncate && n < length
	end := off + n
	if relink {
		end = max(end, off+n+format.WordSize)
	}
	if end > a.capacity {
		res.Status = EditOutOfRegion
		return res
	}

	copy(a.data[off:off+n], data)
	a.markDirty(off, n)
	res.Written = int(n)

	if relink {
		next := a.word(off + length)
		a.putWord(off+n, next)
		a.putWord(off-format.LengthFieldSize, n)
		res.Truncated = true
	}

	res.Status = EditOK
	return res
}
