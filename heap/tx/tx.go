// Package tx provides transaction management for image modifications.
//
// The transaction manager ensures durability and consistency by managing
// the image header's sequence numbers and coordinating ordered flushes of
// dirty data.
//
// Transaction Protocol:
//  1. Begin() - Increment PrimarySeq, mark transaction as started
//  2. [Apply modifications - tracked by the dirty tracker]
//  3. Commit() - Flush data ranges, set SecondarySeq=PrimarySeq, flush header
//
// Crash Recovery:
// If a crash occurs between Begin() and Commit(), PrimarySeq != SecondarySeq,
// indicating an incomplete transaction. The image should be validated before use.
package tx

import (
	"context"
	"fmt"
	"time"

	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// Image is the byte view a Manager updates. Bytes starts with the header page.
type Image interface {
	Bytes() []byte
}

// Manager handles header sequence numbers and coordinates ordered flushes.
//
// The manager is NOT thread-safe. Only one goroutine should use it at a time.
type Manager struct {
	img  Image
	dt   dirty.FlushableTracker
	mode dirty.FlushMode
	seq  uint32
	inTx bool
	now  func() time.Time
}

// NewManager creates a transaction manager for the given image.
func NewManager(img Image, dt dirty.FlushableTracker, mode dirty.FlushMode) *Manager {
	return &Manager{
		img:  img,
		dt:   dt,
		mode: mode,
		now:  time.Now,
	}
}

// Begin starts a new transaction.
//
// It increments PrimarySeq, stamps the header and marks the header dirty.
// Calling Begin inside a transaction is a no-op.
func (m *Manager) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.inTx {
		return nil
	}

	data := m.img.Bytes()
	if len(data) < format.ImageHeaderSize {
		return fmt.Errorf("image data too small: %d bytes", len(data))
	}

	m.seq = format.ReadU32(data, format.ImagePrimarySeqOffset) + 1
	format.PutU32(data, format.ImagePrimarySeqOffset, m.seq)
	m.stamp(data)

	m.dt.Add(0, format.ImageHeaderSize)
	m.inTx = true
	return nil
}

// Commit finalizes the transaction using the ordered flush protocol:
//
//  1. Flush all dirty data pages
//  2. Set SecondarySeq = PrimarySeq
//  3. Update the timestamp and header checksum
//  4. Flush the header page and sync according to the flush mode
//
// After Commit returns successfully, all changes are durable.
// Commit without an active transaction is a no-op.
//
// Cancelling the context mid-way may leave a partial commit behind; the
// sequence mismatch on disk reports it.
func (m *Manager) Commit(ctx context.Context) error {
	if !m.inTx {
		return nil
	}

	if err := m.dt.FlushDataOnly(ctx); err != nil {
		return fmt.Errorf("flush data pages: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	data := m.img.Bytes()
	format.PutU32(data, format.ImageSecondarySeqOffset, m.seq)
	m.stamp(data)
	m.dt.Add(0, format.ImageHeaderSize)

	if err := m.dt.FlushHeaderAndMeta(ctx, m.mode); err != nil {
		return fmt.Errorf("flush header: %w", err)
	}

	m.inTx = false
	return nil
}

// Rollback aborts the current transaction.
//
// It does not restore PrimarySeq and flushes nothing, so the image keeps
// PrimarySeq != SecondarySeq until the next successful commit. Region bytes
// already written in memory stay written.
func (m *Manager) Rollback() {
	m.inTx = false
}

// InTransaction returns whether a transaction is currently active.
func (m *Manager) InTransaction() bool {
	return m.inTx
}

// CurrentSequence returns the sequence number of the last Begin.
func (m *Manager) CurrentSequence() uint32 {
	return m.seq
}

// stamp writes the current time and refreshes the checksum. The checksum
// covers the timestamp, so it is always written last.
func (m *Manager) stamp(data []byte) {
	format.PutU64(data, format.ImageTimestampOffset, uint64(m.now().UnixNano()))
	format.PutU64(data, format.ImageChecksumOffset, format.ImageChecksum(data))
}
