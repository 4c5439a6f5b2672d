// Package mmfile provides platform-specific helpers for memory-mapping image files.
package mmfile

// Mapping is a view of a file's leading bytes. Mapped reports whether writes
// to the view reach the file on their own. When it is false (private
// mappings, and platforms without mmap) the caller writes changes back.
type Mapping struct {
	data   []byte
	mapped bool
	unmap  func() error
}

// Bytes returns the mapped bytes.
func (m *Mapping) Bytes() []byte { return m.data }

// Mapped reports whether Bytes is backed by a shared file mapping.
func (m *Mapping) Mapped() bool { return m.mapped }

// Close releases the mapping. Calling it twice is a no-op.
func (m *Mapping) Close() error {
	if m.unmap == nil {
		return nil
	}
	err := m.unmap()
	m.unmap = nil
	m.data = nil
	return err
}
