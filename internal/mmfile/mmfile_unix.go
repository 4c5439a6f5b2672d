//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the first size bytes of f into memory. With writable set the
// mapping is shared, so stores reach the page cache directly. Otherwise the
// mapping is private copy-on-write: stores are allowed but never reach the
// file, and f may be opened read-only.
func Map(f *os.File, size int, writable bool) (*Mapping, error) {
	if size == 0 {
		return &Mapping{data: []byte{}, mapped: false}, nil
	}
	if size < 0 {
		return nil, fmt.Errorf("mmfile: negative mapping size %d", size)
	}

	flags := unix.MAP_PRIVATE
	if writable {
		flags = unix.MAP_SHARED
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil {
		return nil, fmt.Errorf("mmfile: mmap %d bytes: %w", size, err)
	}

	return &Mapping{
		data:   data,
		mapped: writable,
		unmap: func() error {
			err := unix.Munmap(data)
			if errors.Is(err, unix.EINVAL) {
				// Treat double-unmap as no-op for callers.
				return nil
			}
			return err
		},
	}, nil
}
