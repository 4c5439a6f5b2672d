package format

import "encoding/binary"

// Fixed-offset accessors for header fields. Every multi-byte field in the
// region and in image and snapshot headers is little-endian. These panic on
// short buffers like encoding/binary does; callers check bounds first.

// PutU32 stores v at b[off:off+4].
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

// PutU64 stores v at b[off:off+8].
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}

// ReadU32 loads the word at b[off:off+4].
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

// ReadU64 loads the word at b[off:off+8].
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off:])
}
