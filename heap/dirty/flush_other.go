//go:build !unix

package dirty

import (
	"context"
	"os"
)

// Images are never mapped on these platforms, so mapped flushes reduce to
// writing the ranges back.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	return t.writeRanges(ctx, data)
}

func msync([]byte) error { return nil }

func fdatasync(f *os.File, _ bool) error {
	return f.Sync()
}
