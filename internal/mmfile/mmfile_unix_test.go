//go:build unix

package mmfile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_WritableIsShared(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	f := openTemp(t, make([]byte, 8192))

	m, err := Map(f, 8192, true)
	require.NoError(t, err)
	require.True(t, m.Mapped())

	copy(m.Bytes()[4096:], "heap")
	require.NoError(t, m.Close())

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, []byte("heap"), got[4096:4100])
}

func TestMap_ReadOnlyIsPrivate(t *testing.T) {
	f := openTemp(t, make([]byte, 4096))

	m, err := Map(f, 4096, false)
	require.NoError(t, err)
	assert.False(t, m.Mapped())

	copy(m.Bytes(), "scratch")
	require.NoError(t, m.Close())

	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 7), got[:7], "private writes never reach the file")
}
