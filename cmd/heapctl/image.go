package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/image"
)

// openImage opens path, read-only unless the command mutates it.
func openImage(path string, readOnly bool) (*image.Image, error) {
	printVerbose("Opening image: %s\n", path)
	img, err := image.Open(path, image.OpenOptions{ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// update opens path read-write and runs fn inside a transaction. The
// transaction commits only when fn succeeds.
func update(path string, fn func(img *image.Image) error) error {
	mode, err := dirty.ParseFlushMode(flushMode)
	if err != nil {
		return err
	}

	img, err := openImage(path, false)
	if err != nil {
		return err
	}
	defer img.Close()

	ctx := context.Background()
	m := img.Tx(mode)
	if err := m.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(img); err != nil {
		m.Rollback()
		return err
	}
	if err := m.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	printVerbose("Committed sequence %d\n", m.CurrentSequence())
	return nil
}

// parseRef accepts decimal or 0x-prefixed hex offsets.
func parseRef(s string) (arena.Ref, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return arena.NullRef, fmt.Errorf("invalid block reference %q: %w", s, err)
	}
	return arena.Ref(v), nil
}

func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}
