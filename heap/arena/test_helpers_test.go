package arena

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// newTestArena creates an in-memory arena of the given capacity.
func newTestArena(t testing.TB, capacity uint64) *Arena {
	t.Helper()
	a, err := New(capacity)
	require.NoError(t, err)
	return a
}

// allocAll allocates every size in order and returns the payload refs.
func allocAll(t testing.TB, a *Arena, sizes ...uint64) []Ref {
	t.Helper()
	refs := make([]Ref, 0, len(sizes))
	for i, sz := range sizes {
		ref, err := a.Alloc(sz)
		require.NoError(t, err, "alloc %d (size %d)", i, sz)
		refs = append(refs, ref)
	}
	return refs
}

// wordAt reads a raw region word for assertions.
func wordAt(a *Arena, off uint64) uint64 {
	return format.ReadU64(a.Bytes(), int(off))
}

// recordingTracker captures dirty ranges reported by the arena.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off, length int) bool {
	for _, rg := range r.ranges {
		if off >= rg[0] && off+length <= rg[0]+rg[1] {
			return true
		}
	}
	return false
}
