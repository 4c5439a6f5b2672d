package dirty

import "context"

// DirtyTracker is the minimal interface for tracking dirty byte ranges.
// It is what writers such as the arena need: they report ranges and never
// flush.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with methods for flushing dirty
// regions to disk. Transaction managers use it to order their flushes.
type FlushableTracker interface {
	DirtyTracker

	// FlushDataOnly flushes only the data regions (not the header).
	FlushDataOnly(ctx context.Context) error

	// FlushHeaderAndMeta flushes the header and syncs according to mode.
	FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error
}

var _ FlushableTracker = (*Tracker)(nil)
