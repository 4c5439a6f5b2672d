//go:build !unix

package mmfile

import (
	"fmt"
	"io"
	"os"
)

// Map reads the first size bytes of f when mmap is not available.
func Map(f *os.File, size int, _ bool) (*Mapping, error) {
	if size < 0 {
		return nil, fmt.Errorf("mmfile: negative mapping size %d", size)
	}
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return &Mapping{
		data:  data,
		unmap: func() error { return nil },
	}, nil
}
