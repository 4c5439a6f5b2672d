// Package image stores an arena region in a file.
//
// An image is one header page followed by the region bytes:
//
//	0x0000  header (see format.ImageHeaderSize)
//	0x1000  region: frontier cell, root slot, blocks...
//
// On Unix the file is memory-mapped and the arena works directly on the
// mapping. Elsewhere the region is read into memory and dirty ranges are
// written back on flush. In both cases changes become durable only through
// a committed transaction (see Tx).
package image

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/tx"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

// CreateOptions configures Create.
type CreateOptions struct {
	// Capacity is the region size in bytes. Required.
	Capacity uint64

	// ID identifies the image. Default: a random UUID.
	ID uuid.UUID

	// Overwrite replaces an existing file instead of failing.
	Overwrite bool

	// Logger receives lifecycle diagnostics. Default: logger.L.
	Logger *slog.Logger
}

// OpenOptions configures Open.
type OpenOptions struct {
	// ReadOnly opens the file read-only. The arena stays writable but its
	// changes are private to this process and cannot be committed.
	ReadOnly bool

	// Logger receives lifecycle diagnostics. Default: logger.L.
	Logger *slog.Logger
}

// Image is an open image file.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Image struct {
	f        *os.File
	m        *mmfile.Mapping
	hdr      Header
	dt       *dirty.Tracker
	arena    *arena.Arena
	readOnly bool
	log      *slog.Logger
}

// Create writes a new image with an empty region and opens it read-write.
func Create(path string, opts CreateOptions) (*Image, error) {
	if opts.Capacity < format.MinCapacity || opts.Capacity > format.MaxCapacity {
		return nil, fmt.Errorf("create %s: %w: %d", path, arena.ErrCapacity, opts.Capacity)
	}
	if opts.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("create %s: image id: %w", path, err)
		}
		opts.ID = id
	}

	flags := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if opts.Overwrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}

	hdr := make([]byte, format.ImageHeaderSize)
	putHeader(hdr, opts.Capacity, opts.ID, time.Now())

	if err := f.Truncate(int64(format.ImageHeaderSize + opts.Capacity)); err != nil {
		f.Close()
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteAt(hdr, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("create %s: write header: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	img, err := open(f, false, opts.Logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	img.log.Info("image created", "path", path, "capacity", opts.Capacity, "id", opts.ID.String())
	return img, nil
}

// Open opens an existing image.
//
// It rejects files with a bad signature, an unknown version, a header
// checksum mismatch, a size short of header plus capacity, or a frontier
// outside the region.
func Open(path string, opts OpenOptions) (*Image, error) {
	flag := os.O_RDWR
	if opts.ReadOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}
	img, err := open(f, opts.ReadOnly, opts.Logger)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !img.hdr.Clean() {
		img.log.Warn("image has an uncommitted transaction",
			"path", path, "primary", img.hdr.PrimarySeq, "secondary", img.hdr.SecondarySeq)
	}
	return img, nil
}

func open(f *os.File, readOnly bool, l *slog.Logger) (*Image, error) {
	page := make([]byte, format.ImageHeaderSize)
	if _, err := f.ReadAt(page, 0); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrShortFile, err)
	}
	hdr, err := ParseHeader(page)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if hdr.Capacity < format.MinCapacity || hdr.Capacity > format.MaxCapacity {
		return nil, fmt.Errorf("%w: %d", arena.ErrCapacity, hdr.Capacity)
	}
	size := int64(format.ImageHeaderSize + hdr.Capacity)
	if info.Size() < size {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrShortFile, info.Size(), size)
	}

	m, err := mmfile.Map(f, int(size), !readOnly)
	if err != nil {
		return nil, err
	}

	img := &Image{
		f:        f,
		m:        m,
		hdr:      hdr,
		readOnly: readOnly,
		log:      logger.Or(l),
	}
	img.dt = dirty.NewTracker(img)

	region := m.Bytes()[format.ImageHeaderSize:size]
	img.arena, err = arena.FromBytes(region, img.dt.Offset(format.ImageHeaderSize))
	if err != nil {
		m.Close()
		return nil, err
	}
	return img, nil
}

// Bytes returns the whole file view: header page then region.
func (img *Image) Bytes() []byte {
	if img.m == nil {
		return nil
	}
	return img.m.Bytes()
}

// File returns the underlying file.
func (img *Image) File() *os.File { return img.f }

// Mapped reports whether region writes reach the file without a write-back.
func (img *Image) Mapped() bool { return img.m != nil && img.m.Mapped() }

// ReadOnly reports whether the image was opened read-only.
func (img *Image) ReadOnly() bool { return img.readOnly }

// Arena returns the arena over the image's region.
func (img *Image) Arena() *arena.Arena { return img.arena }

// Tracker returns the dirty tracker fed by the arena.
func (img *Image) Tracker() *dirty.Tracker { return img.dt }

// Header returns the header as of the last Open or Refresh.
func (img *Image) Header() Header { return img.hdr }

// Refresh re-reads the header from the mapped view, picking up sequence and
// timestamp changes made by a transaction.
func (img *Image) Refresh() error {
	b := img.Bytes()
	if b == nil {
		return ErrClosed
	}
	hdr, err := ParseHeader(b[:format.ImageHeaderSize])
	if err != nil {
		return err
	}
	img.hdr = hdr
	return nil
}

// ID returns the image id.
func (img *Image) ID() uuid.UUID { return img.hdr.ID }

// Clean reports whether the header's sequences match.
func (img *Image) Clean() bool { return img.hdr.Clean() }

// Tx returns a transaction manager over this image. Transactions on a
// read-only image fail at commit.
func (img *Image) Tx(mode dirty.FlushMode) *tx.Manager {
	return tx.NewManager(img, img.dt, mode)
}

// Restore replaces the region with src's bytes. The capacities must match.
// The whole region is marked dirty; commit a transaction to persist it.
func (img *Image) Restore(src *arena.Arena) error {
	if img.m == nil {
		return ErrClosed
	}
	if src.Capacity() != img.arena.Capacity() {
		return fmt.Errorf("%w: image %d, source %d", ErrCapacityMismatch, img.arena.Capacity(), src.Capacity())
	}
	copy(img.arena.Bytes(), src.Bytes())
	img.dt.Add(format.ImageHeaderSize, len(src.Bytes()))
	return nil
}

// Close unmaps and closes the file. Uncommitted changes to a buffered image
// are discarded; on a mapped image they may or may not reach the disk.
func (img *Image) Close() error {
	if img.m == nil {
		return nil
	}
	err := img.m.Close()
	img.m = nil
	img.arena = nil
	if cerr := img.f.Close(); err == nil {
		err = cerr
	}
	return err
}
