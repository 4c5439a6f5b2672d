// Package dirty provides tracking and flushing of dirty pages in image files.
//
// The tracker maintains a list of dirty byte ranges, coalesces them into
// page-aligned ranges, and flushes them to disk. Mapped images are flushed
// with msync; buffered images write the ranges back with pwrite.
package dirty

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/joshuapare/heapkit/internal/format"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// FlushMode controls durability guarantees for transaction commits.
type FlushMode int

const (
	// FlushAuto flushes dirty data pages, then the header, then fdatasync.
	// On macOS it uses plain fsync.
	FlushAuto FlushMode = iota

	// FlushDataOnly flushes data pages and the header but skips fdatasync.
	// The caller is responsible for syncing the file later.
	FlushDataOnly

	// FlushFull is FlushAuto with F_FULLFSYNC on macOS.
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushDataOnly:
		return "data-only"
	case FlushFull:
		return "full"
	default:
		return fmt.Sprintf("FlushMode(%d)", int(m))
	}
}

// ParseFlushMode maps a flag value to a FlushMode.
func ParseFlushMode(s string) (FlushMode, error) {
	switch s {
	case "", "auto":
		return FlushAuto, nil
	case "data-only":
		return FlushDataOnly, nil
	case "full":
		return FlushFull, nil
	default:
		return FlushAuto, fmt.Errorf("dirty: unknown flush mode %q", s)
	}
}

// Backing is the file image a Tracker flushes. Bytes covers the whole file
// from offset 0: the header page followed by the region.
type Backing interface {
	Bytes() []byte
	File() *os.File
	Mapped() bool
}

// Range represents a dirty byte range (absolute file offsets).
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	b          Backing
	ranges     []Range // coalesced at flush time
	pageSize   int64
	headerSize int64
}

// NewTracker creates a dirty tracker for the given backing.
func NewTracker(b Backing) *Tracker {
	return &Tracker{
		b:          b,
		ranges:     make([]Range, 0, defaultRangeCapacity),
		pageSize:   int64(os.Getpagesize()),
		headerSize: format.ImageHeaderSize,
	}
}

// Add records a dirty range of absolute file offsets.
//
// The range will be page-aligned and coalesced with other ranges at flush time.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Offset returns a view of t that shifts every added range by base. The
// arena reports region-relative offsets; the image hands it Offset(header size).
func (t *Tracker) Offset(base int) DirtyTracker {
	return offsetTracker{t: t, base: base}
}

type offsetTracker struct {
	t    *Tracker
	base int
}

func (o offsetTracker) Add(off, length int) { o.t.Add(o.base+off, length) }

// Len returns the number of recorded, uncoalesced ranges.
func (t *Tracker) Len() int { return len(t.ranges) }

// FlushDataOnly flushes all dirty data ranges (not the header) to disk and
// clears them.
//
// If the context is cancelled mid-way, some ranges may have been flushed
// while others have not; the ranges are kept so a retry flushes them all.
func (t *Tracker) FlushDataOnly(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.b.Bytes()
	if len(data) == 0 {
		return nil
	}

	var err error
	if t.b.Mapped() {
		err = t.flushRanges(ctx, data)
	} else {
		err = t.writeRanges(ctx, data)
	}
	if err != nil {
		return err
	}

	t.ranges = t.ranges[:0]
	return nil
}

// FlushHeaderAndMeta flushes the header page and then, unless mode is
// FlushDataOnly, syncs the file descriptor.
//
// If cancelled after the header is flushed but before the sync completes,
// the header may be inconsistent with the data pages on disk.
func (t *Tracker) FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.b.Bytes()
	if len(data) == 0 {
		return nil
	}

	header := data[:min(int(t.headerSize), len(data))]
	if t.b.Mapped() {
		if err := msync(header); err != nil {
			return fmt.Errorf("msync header: %w", err)
		}
	} else {
		if _, err := t.b.File().WriteAt(header, 0); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if mode == FlushDataOnly {
		return nil
	}
	return fdatasync(t.b.File(), mode == FlushFull)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Ranges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) Ranges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// CoalescedRanges returns the page-aligned, sorted, merged ranges a flush
// would write.
func (t *Tracker) CoalescedRanges() []Range {
	return t.coalesce()
}

// writeRanges writes each coalesced range back to the file. Ranges are
// clipped to exclude the header and to stay within data.
func (t *Tracker) writeRanges(ctx context.Context, data []byte) error {
	f := t.b.File()
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start, end, ok := t.clip(r, len(data))
		if !ok {
			continue
		}
		if _, err := f.WriteAt(data[start:end], int64(start)); err != nil {
			return fmt.Errorf("write range [%d,%d): %w", start, end, err)
		}
	}
	return nil
}

// clipMapped is clip for msync, which needs page-aligned starts. A range
// that reaches past the header keeps its aligned start even when that start
// lies in the header, which happens when pages are larger than the header.
func (t *Tracker) clipMapped(r Range, size int) (int, int, bool) {
	end := min(r.Off+r.Len, int64(size))
	if end <= t.headerSize || r.Off >= end {
		return 0, 0, false
	}
	return int(r.Off), int(end), true
}

func (t *Tracker) clip(r Range, size int) (int, int, bool) {
	start := max(r.Off, t.headerSize)
	end := min(r.Off+r.Len, int64(size))
	if start >= end {
		return 0, 0, false
	}
	return int(start), int(end), true
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{
			Off: start,
			Len: end - start,
		}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for i := 1; i < len(aligned); i++ {
		next := aligned[i]
		if next.Off <= current.Off+current.Len {
			current.Len = max(current.Off+current.Len, next.Off+next.Len) - current.Off
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	merged = append(merged, current)
	return merged
}
