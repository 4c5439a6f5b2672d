package format

import "github.com/cespare/xxhash/v2"

var (
	// ImageSignature is the four-byte magic at the start of every image file.
	ImageSignature = []byte{'H', 'E', 'A', 'P'}

	// SnapshotSignature is the four-byte magic at the start of a snapshot stream.
	SnapshotSignature = []byte{'H', 'S', 'N', 'P'}
)

// Image header layout (little-endian). The header occupies one page so the
// region that follows is page-aligned:
//
//	0x00  'H' 'E' 'A' 'P'
//	0x04  version
//	0x08  primary sequence
//	0x0C  secondary sequence
//	0x10  region capacity
//	0x18  last commit time (unix nanoseconds)
//	0x20  image id (16 bytes)
//	0x30  xxhash64 of bytes [0x00, 0x30)
const (
	ImageHeaderSize = 0x1000

	ImageSignatureOffset    = 0x00
	ImageVersionOffset      = 0x04
	ImagePrimarySeqOffset   = 0x08
	ImageSecondarySeqOffset = 0x0C
	ImageCapacityOffset     = 0x10
	ImageTimestampOffset    = 0x18
	ImageIDOffset           = 0x20
	ImageIDSize             = 16
	ImageChecksumOffset     = 0x30

	// ImageVersion is the only header version this package writes or reads.
	ImageVersion = 1
)

// Snapshot header layout (little-endian):
//
//	0x00  'H' 'S' 'N' 'P'
//	0x04  compression (0 none, 1 lz4, 2 zstd)
//	0x08  region capacity
//	0x10  committed frontier
//	0x18  xxhash64 of the uncompressed region
//	0x20  stored length
//	0x28  stored bytes...
const (
	SnapshotHeaderSize = 0x28

	SnapshotCompressionOffset = 0x04
	SnapshotCapacityOffset    = 0x08
	SnapshotFrontierOffset    = 0x10
	SnapshotChecksumOffset    = 0x18
	SnapshotStoredLenOffset   = 0x20
)

// ImageChecksum returns the xxhash64 of the header bytes that precede the
// checksum field. hdr must hold at least ImageChecksumOffset bytes.
func ImageChecksum(hdr []byte) uint64 {
	return xxhash.Sum64(hdr[:ImageChecksumOffset])
}
