// Package wire implements the compact binary encoding shared by command
// batches and board records.
//
// Encoding rules (little-endian throughout):
//
//	u8, u32, u64   fixed width
//	bool           one byte, 0 or 1; anything else is rejected
//	bytes, string  u32 length prefix followed by the bytes
//	enum           u8 tag followed by the variant's fields
//
// Decoding is strict: length prefixes are checked against the remaining
// input before anything is allocated, and Finish rejects trailing bytes.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

var (
	// ErrTruncated indicates the input ended inside a field.
	ErrTruncated = errors.New("wire: truncated input")

	// ErrInvalidBool indicates a bool byte other than 0 or 1.
	ErrInvalidBool = errors.New("wire: invalid bool")

	// ErrTrailing indicates bytes left over after a complete value.
	ErrTrailing = errors.New("wire: trailing bytes")

	// ErrUnknownTag indicates an enum tag with no matching variant.
	ErrUnknownTag = errors.New("wire: unknown tag")
)

// Encoder appends encoded fields to a growing buffer.
type Encoder struct {
	b []byte
}

// NewEncoder returns an Encoder with room for sizeHint bytes.
func NewEncoder(sizeHint int) *Encoder {
	return &Encoder{b: make([]byte, 0, sizeHint)}
}

// Data returns the encoded bytes.
func (e *Encoder) Data() []byte { return e.b }

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int { return len(e.b) }

func (e *Encoder) PutU8(v uint8) { e.b = append(e.b, v) }

func (e *Encoder) PutBool(v bool) {
	if v {
		e.b = append(e.b, 1)
	} else {
		e.b = append(e.b, 0)
	}
}

func (e *Encoder) PutU32(v uint32) { e.b = binary.LittleEndian.AppendUint32(e.b, v) }

func (e *Encoder) PutU64(v uint64) { e.b = binary.LittleEndian.AppendUint64(e.b, v) }

// PutRaw appends b without a length prefix.
func (e *Encoder) PutRaw(b []byte) { e.b = append(e.b, b...) }

// PutBytes appends a u32 length prefix and b.
func (e *Encoder) PutBytes(b []byte) {
	e.PutU32(uint32(len(b)))
	e.b = append(e.b, b...)
}

// PutString appends s as length-prefixed bytes.
func (e *Encoder) PutString(s string) {
	e.PutU32(uint32(len(s)))
	e.b = append(e.b, s...)
}

// Decoder reads fields from a byte slice in order.
type Decoder struct {
	b   []byte
	off int
}

// NewDecoder returns a Decoder positioned at the start of b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{b: b}
}

// Offset returns the number of bytes consumed.
func (d *Decoder) Offset() int { return d.off }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.b) - d.off }

// Finish returns ErrTrailing if any input is left unread.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrTrailing, n, d.off)
	}
	return nil
}

func (d *Decoder) take(n int) ([]byte, error) {
	b, ok := buf.Slice(d.b, d.off, n)
	if !ok {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, d.off, d.Remaining())
	}
	d.off += n
	return b, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %#x at offset %d", ErrInvalidBool, v, d.off-1)
	}
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return buf.U32LE(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return buf.U64LE(b), nil
}

// Raw reads exactly n bytes without a length prefix. The result aliases the input.
func (d *Decoder) Raw(n int) ([]byte, error) {
	return d.take(n)
}

// Bytes reads a length-prefixed byte string into a fresh slice.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.U32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(d.Remaining()) {
		return nil, fmt.Errorf("%w: length prefix %d exceeds %d remaining bytes", ErrTruncated, n, d.Remaining())
	}
	b, err := d.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// String reads a length-prefixed string.
func (d *Decoder) String() (string, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
