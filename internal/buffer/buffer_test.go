package buffer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keybridge/internal/option"
)

func TestBuffer_ContentAndTimestamp(t *testing.T) {
	b := New("scratch", "one\ntwo\n", 0, option.NewGlobalManager())

	assert.Equal(t, 2, b.LineCount())
	assert.Equal(t, "two", b.Line(1))
	assert.Equal(t, "", b.Line(5))
	assert.Equal(t, "one\ntwo\n", b.Text())
	assert.False(t, b.IsModified())

	before := b.Timestamp()
	b.Replace("three\n")
	assert.Greater(t, b.Timestamp(), before)
	assert.True(t, b.IsModified())
	assert.Equal(t, "three\n", b.Text())

	b.MarkSaved()
	assert.False(t, b.IsModified())
}

func TestBuffer_OptionsInherit(t *testing.T) {
	global := option.NewGlobalManager()
	b := New("scratch", "", 0, global)

	opt, err := b.Options().Get("tabstop")
	require.NoError(t, err)
	n, _ := opt.Int()
	assert.Equal(t, 8, n)
}

func TestBuffer_Write(t *testing.T) {
	b := New(DebugName, "", FlagDebug, nil)

	_, err := b.Write([]byte("first\n"))
	require.NoError(t, err)
	_, err = b.Write([]byte("second\nthird\n"))
	require.NoError(t, err)

	assert.Equal(t, "first\nsecond\nthird\n", b.Text())
}

func TestBuffer_Clamp(t *testing.T) {
	b := New("s", "héllo\nab\n", 0, nil)

	tests := []struct {
		name string
		in   Coord
		want Coord
	}{
		{"valid", Coord{0, 1}, Coord{0, 1}},
		{"line past end", Coord{7, 1}, Coord{1, 1}},
		{"column past end", Coord{1, 9}, Coord{1, 2}},
		{"negative", Coord{-1, -3}, Coord{0, 0}},
		{"inside rune", Coord{0, 2}, Coord{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Clamp(tt.in))
		})
	}
}

func TestManager_OpenAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	m := NewManager(option.NewGlobalManager())
	b, err := m.Open(path)
	require.NoError(t, err)
	assert.True(t, b.Flags().Has(FlagFile))
	assert.False(t, b.Flags().Has(FlagNew))
	assert.Equal(t, "file.txt", b.DisplayName())
	assert.Equal(t, FileTimestamp(path), b.FSTimestamp())

	again, err := m.Open(path)
	require.NoError(t, err)
	assert.Same(t, b, again)

	b.Options().Set("tabstop", 2)
	require.NoError(t, os.WriteFile(path, []byte("new\ncontent\n"), 0o644))

	fresh, err := m.Reload(path)
	require.NoError(t, err)
	assert.NotSame(t, b, fresh)
	assert.True(t, b.Closed())
	assert.False(t, fresh.Closed())
	assert.Equal(t, "new\ncontent\n", fresh.Text())
	assert.Same(t, fresh, m.Get(path))
	assert.True(t, fresh.Options().IsLocal("tabstop"), "buffer options survive reload")
}

func TestManager_ReloadDeletedFileKeepsBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("precious\n"), 0o644))

	m := NewManager(option.NewGlobalManager())
	b, err := m.Open(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	fresh, err := m.Reload(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Nil(t, fresh)
	assert.Same(t, b, m.Get(path))
	assert.False(t, b.Closed())
	assert.Equal(t, "precious\n", b.Text())
}

func TestManager_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	m := NewManager(option.NewGlobalManager())
	b, err := m.Open(path)
	require.NoError(t, err)
	require.True(t, b.Flags().Has(FlagNew))

	b.Replace("written\n")
	require.True(t, b.IsModified())
	require.NoError(t, m.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "written\n", string(data))
	assert.False(t, b.IsModified())
	assert.False(t, b.Flags().Has(FlagNew))
	assert.Equal(t, FileTimestamp(path), b.FSTimestamp())

	_, err = m.Scratch("scratch", "")
	require.NoError(t, err)
	assert.True(t, errors.Is(m.Save("scratch"), ErrNotFile))
	assert.True(t, errors.Is(m.Save("missing"), ErrBufferNotFound))
}

func TestManager_OpenMissingFile(t *testing.T) {
	m := NewManager(option.NewGlobalManager())
	b, err := m.Open(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.True(t, b.Flags().Has(FlagNew))
	assert.True(t, b.FSTimestamp().IsZero())
}

func TestManager_Delete(t *testing.T) {
	m := NewManager(option.NewGlobalManager())
	b, err := m.Scratch("scratch", "x")
	require.NoError(t, err)

	require.NoError(t, m.Delete("scratch"))
	assert.Nil(t, m.Get("scratch"))
	assert.True(t, b.Closed())
	assert.Empty(t, m.Buffers())

	err = m.Delete("scratch")
	assert.True(t, errors.Is(err, ErrBufferNotFound))

	_, err = m.Reload("scratch")
	assert.True(t, errors.Is(err, ErrBufferNotFound))
}

func TestManager_ScratchDuplicate(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Scratch("a", "")
	require.NoError(t, err)
	_, err = m.Scratch("a", "")
	assert.True(t, errors.Is(err, ErrBufferExists))
}

func TestManager_Debug(t *testing.T) {
	m := NewManager(nil)
	d := m.Debug()
	assert.Same(t, d, m.Debug())
	assert.True(t, d.Flags().Has(FlagDebug))
}

func TestFileTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	assert.True(t, FileTimestamp(path).IsZero())

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, when, when))
	assert.True(t, FileTimestamp(path).Equal(when))
}
