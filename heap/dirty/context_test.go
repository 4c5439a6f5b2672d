package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracker_FlushDataOnly_PreCancelled(t *testing.T) {
	tracker := newTestTracker(setupBacking(t, 3*4096))
	tracker.Add(4096, 100)
	tracker.Add(8192, 200)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.FlushDataOnly(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, tracker.Len(), "cancelled flush keeps ranges for retry")
}

func TestTracker_FlushHeaderAndMeta_PreCancelled(t *testing.T) {
	tracker := newTestTracker(setupBacking(t, 4096))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.FlushHeaderAndMeta(ctx, FlushAuto)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTracker_FlushHeaderAndMeta_AllModes(t *testing.T) {
	for _, mode := range []FlushMode{FlushAuto, FlushDataOnly, FlushFull} {
		t.Run(mode.String(), func(t *testing.T) {
			tracker := newTestTracker(setupBacking(t, 8192))
			require.NoError(t, tracker.FlushHeaderAndMeta(context.Background(), mode))
		})
	}
}
