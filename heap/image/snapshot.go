package image

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

// Compression selects how a snapshot stores the region.
type Compression uint8

const (
	// CompressionNone stores the region verbatim.
	CompressionNone Compression = 0
	// CompressionLZ4 stores one LZ4 block (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores one zstd frame (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression maps a flag value to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q (want none, lz4 or zstd)", s)
	}
}

// ZSTD encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// WriteSnapshot writes a's region to w. If compression does not shrink the
// region below 90% of its size the snapshot is stored uncompressed and the
// header says so.
func WriteSnapshot(w io.Writer, a *arena.Arena, c Compression) error {
	region := a.Bytes()

	stored, c, err := compress(region, c)
	if err != nil {
		return fmt.Errorf("snapshot: %s: %w", c, err)
	}

	hdr := make([]byte, format.SnapshotHeaderSize)
	copy(hdr, format.SnapshotSignature)
	hdr[format.SnapshotCompressionOffset] = byte(c)
	format.PutU64(hdr, format.SnapshotCapacityOffset, a.Capacity())
	format.PutU64(hdr, format.SnapshotFrontierOffset, a.Frontier())
	format.PutU64(hdr, format.SnapshotChecksumOffset, xxhash.Sum64(region))
	format.PutU64(hdr, format.SnapshotStoredLenOffset, uint64(len(stored)))

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// ReadSnapshot reads a snapshot written by WriteSnapshot and returns an
// in-memory arena holding the restored region.
func ReadSnapshot(r io.Reader) (*arena.Arena, error) {
	hdr := make([]byte, format.SnapshotHeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrSnapshot, err)
	}
	if !bytes.Equal(hdr[:len(format.SnapshotSignature)], format.SnapshotSignature) {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, hdr[:len(format.SnapshotSignature)])
	}

	c := Compression(hdr[format.SnapshotCompressionOffset])
	capacity := format.ReadU64(hdr, format.SnapshotCapacityOffset)
	frontier := format.ReadU64(hdr, format.SnapshotFrontierOffset)
	sum := format.ReadU64(hdr, format.SnapshotChecksumOffset)
	storedLen := format.ReadU64(hdr, format.SnapshotStoredLenOffset)

	if capacity < format.MinCapacity || capacity > format.MaxCapacity {
		return nil, fmt.Errorf("%w: %w: %d", ErrSnapshot, arena.ErrCapacity, capacity)
	}
	if storedLen > storedBound(capacity, c) {
		return nil, fmt.Errorf("%w: stored length %d for capacity %d", ErrSnapshot, storedLen, capacity)
	}

	// The header is untrusted: read what is actually there before sizing
	// anything from it.
	stored, err := io.ReadAll(io.LimitReader(r, int64(storedLen)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrSnapshot, err)
	}
	if uint64(len(stored)) != storedLen {
		return nil, fmt.Errorf("%w: body is %d bytes, header says %d", ErrSnapshot, len(stored), storedLen)
	}
	if limit := maxExpansion(c) * storedLen; capacity > limit {
		return nil, fmt.Errorf("%w: %s cannot expand %d bytes to capacity %d", ErrSnapshot, c, storedLen, capacity)
	}

	region, err := decompress(stored, c, capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshot, c, err)
	}
	if got := xxhash.Sum64(region); got != sum {
		return nil, fmt.Errorf("%w: region checksum %#016x, want %#016x", ErrSnapshot, got, sum)
	}

	a, err := arena.FromBytes(region, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	if a.Frontier() != frontier {
		return nil, fmt.Errorf("%w: frontier %d, header says %d", ErrSnapshot, a.Frontier(), frontier)
	}
	return a, nil
}

// maxExpansion is the largest decompressed/stored size ratio a codec can
// produce. An LZ4 run-length byte adds at most 255 output bytes; the
// smallest zstd block is a 4-byte RLE block holding 128 KiB.
func maxExpansion(c Compression) uint64 {
	switch c {
	case CompressionLZ4:
		return 255
	case CompressionZSTD:
		return 128 << 10 / 4
	default:
		return 1
	}
}

// storedBound is the largest stored length a well-formed snapshot of the
// given capacity can carry. It caps the allocation before reading the body.
func storedBound(capacity uint64, c Compression) uint64 {
	switch c {
	case CompressionNone:
		return capacity
	default:
		// covers the LZ4 block bound and zstd frame overhead
		return capacity + capacity/255 + 1024
	}
}

func compress(data []byte, c Compression) ([]byte, Compression, error) {
	var out []byte
	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, c, err
		}
		out = buf[:n] // n == 0 means incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		out = enc.EncodeAll(data, nil)
	default:
		return nil, c, fmt.Errorf("unknown compression %d", uint8(c))
	}

	// If compression doesn't help (ratio > 0.9), store uncompressed
	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return data, CompressionNone, nil
	}
	return out, c, nil
}

func decompress(stored []byte, c Compression, capacity uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		if uint64(len(stored)) != capacity {
			return nil, fmt.Errorf("stored %d bytes, capacity %d", len(stored), capacity)
		}
		return stored, nil

	case CompressionLZ4:
		out := make([]byte, capacity)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, err
		}
		if uint64(n) != capacity {
			return nil, fmt.Errorf("decompressed size %d, want %d", n, capacity)
		}
		return out, nil

	case CompressionZSTD:
		var h zstd.Header
		if err := h.Decode(stored); err != nil {
			return nil, err
		}
		if h.HasFCS && h.FrameContentSize != capacity {
			return nil, fmt.Errorf("frame content size %d, want %d", h.FrameContentSize, capacity)
		}

		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(stored, make([]byte, 0, capacity))
		if err != nil {
			return nil, err
		}
		if uint64(len(out)) != capacity {
			return nil, fmt.Errorf("decompressed size %d, want %d", len(out), capacity)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown compression %d", uint8(c))
	}
}
