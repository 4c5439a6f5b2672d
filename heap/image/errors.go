package image

import "errors"

var (
	// ErrBadMagic indicates a file that does not start with the image signature.
	ErrBadMagic = errors.New("image: bad magic")

	// ErrVersion indicates a header version this build does not read.
	ErrVersion = errors.New("image: unsupported version")

	// ErrChecksum indicates a header whose checksum does not match its bytes.
	ErrChecksum = errors.New("image: header checksum mismatch")

	// ErrShortFile indicates a file smaller than its header says it must be.
	ErrShortFile = errors.New("image: file shorter than header and region")

	// ErrClosed indicates use of an image after Close.
	ErrClosed = errors.New("image: closed")

	// ErrSnapshot indicates a snapshot stream that cannot be restored.
	ErrSnapshot = errors.New("image: corrupt snapshot")

	// ErrCapacityMismatch indicates a restore between regions of different sizes.
	ErrCapacityMismatch = errors.New("image: capacity mismatch")
)
