package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	prev := L
	t.Cleanup(func() { L = prev })
}

func TestInit_DisabledDiscards(t *testing.T) {
	restoreGlobal(t)

	var out bytes.Buffer
	closeFn, err := Init(Options{Enabled: false, Writer: &out})
	require.NoError(t, err)
	defer closeFn()

	Info("hello")
	assert.Zero(t, out.Len())
}

func TestInit_TextWriter(t *testing.T) {
	restoreGlobal(t)

	var out bytes.Buffer
	closeFn, err := Init(Options{Enabled: true, Writer: &out, Level: slog.LevelWarn})
	require.NoError(t, err)
	defer closeFn()

	Info("quiet")
	Warn("loud", "index", 3)
	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud")
	assert.Contains(t, out.String(), "index=3")
}

func TestInit_LogDirWritesJSONAndPrunes(t *testing.T) {
	restoreGlobal(t)

	dir := t.TempDir()
	old := filepath.Join(dir, logPrefix+time.Now().AddDate(0, 0, -retentionDays-5).Format("2006-01-02")+logSuffix)
	require.NoError(t, os.WriteFile(old, []byte("{}\n"), 0o644))
	keep := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(keep, nil, 0o644))

	closeFn, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)
	Error("boom", "ptr", "0x18")
	require.NoError(t, closeFn())

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "expired log removed")
	_, err = os.Stat(keep)
	assert.NoError(t, err)

	today := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	data, err := os.ReadFile(today)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"), "JSON records: %s", data)
	assert.Contains(t, string(data), `"msg":"boom"`)
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, ok = ParseLevel("WARN")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, ok = ParseLevel("loud")
	assert.False(t, ok)
}

func TestOr(t *testing.T) {
	restoreGlobal(t)
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, Or(custom))
	assert.Same(t, L, Or(nil))
}
