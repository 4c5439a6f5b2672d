package dirty

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

// fileBacking is a buffered Backing over a temp file.
type fileBacking struct {
	data   []byte
	f      *os.File
	mapped bool
}

func (b *fileBacking) Bytes() []byte  { return b.data }
func (b *fileBacking) File() *os.File { return b.f }
func (b *fileBacking) Mapped() bool   { return b.mapped }

// setupBacking creates a zeroed file of size bytes and a private buffer
// mirroring it.
func setupBacking(t testing.TB, size int) *fileBacking {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.heap")
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return &fileBacking{data: make([]byte, size), f: f}
}

// newTestTracker pins the page size so coalescing is deterministic.
func newTestTracker(b Backing) *Tracker {
	tr := NewTracker(b)
	tr.pageSize = 4096
	return tr
}

func readFile(t *testing.T, b *fileBacking) []byte {
	t.Helper()
	data, err := os.ReadFile(b.f.Name())
	require.NoError(t, err)
	return data
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := newTestTracker(setupBacking(t, 8192))

	tracker.Add(100, 200)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0])
}

func Test_DirtyTracker_Coalesce(t *testing.T) {
	tests := []struct {
		name string
		adds []Range
		want []Range
	}{
		{
			name: "adjacent pages merge",
			adds: []Range{{4096, 4096}, {8192, 4096}},
			want: []Range{{4096, 8192}},
		},
		{
			name: "overlapping merge",
			adds: []Range{{4096, 6000}, {8000, 100}},
			want: []Range{{4096, 8192}},
		},
		{
			name: "gaps stay separate and sorted",
			adds: []Range{{20480, 10}, {4100, 8}},
			want: []Range{{4096, 4096}, {20480, 4096}},
		},
		{
			name: "same page collapses",
			adds: []Range{{4104, 8}, {4112, 8}, {4104, 8}},
			want: []Range{{4096, 4096}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker(setupBacking(t, 32768))
			for _, r := range tt.adds {
				tracker.Add(int(r.Off), int(r.Len))
			}
			assert.Equal(t, tt.want, tracker.CoalescedRanges())
			assert.Len(t, tracker.Ranges(), len(tt.adds), "raw ranges are kept")
		})
	}
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := newTestTracker(setupBacking(t, 8192))
	tracker.Add(4096, 0)
	tracker.Add(4096, -1)
	assert.Zero(t, tracker.Len())
	assert.Nil(t, tracker.CoalescedRanges())
}

func Test_DirtyTracker_Offset(t *testing.T) {
	tracker := newTestTracker(setupBacking(t, 8192))

	view := tracker.Offset(format.ImageHeaderSize)
	view.Add(8, 16)

	assert.Equal(t, []Range{{Off: format.ImageHeaderSize + 8, Len: 16}}, tracker.Ranges())
}

func Test_DirtyTracker_FlushBufferedWritesRegionOnly(t *testing.T) {
	b := setupBacking(t, 3*4096)
	tracker := newTestTracker(b)

	copy(b.data[0:], "HEAD")
	copy(b.data[4096+8:], "block")
	copy(b.data[2*4096+100:], "tail")
	tracker.Add(0, 4)
	tracker.Add(4096+8, 5)
	tracker.Add(2*4096+100, 4)

	require.NoError(t, tracker.FlushDataOnly(context.Background()))
	assert.Zero(t, tracker.Len(), "ranges cleared after flush")

	onDisk := readFile(t, b)
	assert.Equal(t, make([]byte, 4), onDisk[0:4], "header page is not a data range")
	assert.Equal(t, []byte("block"), onDisk[4096+8:4096+13])
	assert.Equal(t, []byte("tail"), onDisk[2*4096+100:2*4096+104])
}

func Test_DirtyTracker_FlushHeader(t *testing.T) {
	b := setupBacking(t, 2*4096)
	tracker := newTestTracker(b)

	copy(b.data[0:], "HEAP")
	copy(b.data[4096:], "data")

	require.NoError(t, tracker.FlushHeaderAndMeta(context.Background(), FlushAuto))

	onDisk := readFile(t, b)
	assert.Equal(t, []byte("HEAP"), onDisk[0:4])
	assert.Equal(t, make([]byte, 4), onDisk[4096:4100], "header flush leaves data pages alone")
}

func Test_DirtyTracker_FlushEmptyIsNoop(t *testing.T) {
	tracker := newTestTracker(setupBacking(t, 4096))
	require.NoError(t, tracker.FlushDataOnly(context.Background()))
}

func Test_DirtyTracker_Reset(t *testing.T) {
	tracker := newTestTracker(setupBacking(t, 8192))
	tracker.Add(4096, 10)
	tracker.Reset()
	assert.Zero(t, tracker.Len())
}

func TestParseFlushMode(t *testing.T) {
	for _, m := range []FlushMode{FlushAuto, FlushDataOnly, FlushFull} {
		got, err := ParseFlushMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseFlushMode("sometimes")
	require.Error(t, err)
}
