package image

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joshuapare/heapkit/internal/format"
)

// Header is the decoded first page of an image file.
type Header struct {
	Version      uint32
	PrimarySeq   uint32
	SecondarySeq uint32
	Capacity     uint64
	Timestamp    time.Time // last commit
	ID           uuid.UUID
	Checksum     uint64
}

// Clean reports whether the last transaction committed.
func (h Header) Clean() bool { return h.PrimarySeq == h.SecondarySeq }

// ParseHeader decodes and validates an image header page.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < format.ImageChecksumOffset+format.WordSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes", ErrShortFile, len(b))
	}
	if !bytes.Equal(b[:len(format.ImageSignature)], format.ImageSignature) {
		return Header{}, fmt.Errorf("%w: %q", ErrBadMagic, b[:len(format.ImageSignature)])
	}

	h := Header{
		Version:      format.ReadU32(b, format.ImageVersionOffset),
		PrimarySeq:   format.ReadU32(b, format.ImagePrimarySeqOffset),
		SecondarySeq: format.ReadU32(b, format.ImageSecondarySeqOffset),
		Capacity:     format.ReadU64(b, format.ImageCapacityOffset),
		Timestamp:    time.Unix(0, int64(format.ReadU64(b, format.ImageTimestampOffset))).UTC(),
		Checksum:     format.ReadU64(b, format.ImageChecksumOffset),
	}
	copy(h.ID[:], b[format.ImageIDOffset:format.ImageIDOffset+format.ImageIDSize])

	if h.Version != format.ImageVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	if sum := format.ImageChecksum(b); sum != h.Checksum {
		return Header{}, fmt.Errorf("%w: stored %#016x, computed %#016x", ErrChecksum, h.Checksum, sum)
	}
	return h, nil
}

// putHeader writes a fresh header for a new image into b.
func putHeader(b []byte, capacity uint64, id uuid.UUID, now time.Time) {
	copy(b[format.ImageSignatureOffset:], format.ImageSignature)
	format.PutU32(b, format.ImageVersionOffset, format.ImageVersion)
	format.PutU32(b, format.ImagePrimarySeqOffset, 1)
	format.PutU32(b, format.ImageSecondarySeqOffset, 1)
	format.PutU64(b, format.ImageCapacityOffset, capacity)
	format.PutU64(b, format.ImageTimestampOffset, uint64(now.UnixNano()))
	copy(b[format.ImageIDOffset:], id[:])
	format.PutU64(b, format.ImageChecksumOffset, format.ImageChecksum(b))
}
