package anydir_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CageChen/anydir"
)

var invalidUTF8 = []byte{0xff, 0xfe, 0xfd}

func TestReadStringInvalidData(t *testing.T) {
	ctDir, err := anydir.NewCtDir(fstest.MapFS{
		"bin.dat": &fstest.MapFile{Data: invalidUTF8},
	}, ".")
	require.NoError(t, err)

	tests := []struct {
		name string
		dir  anydir.AnyDir
	}{
		{name: "ct", dir: anydir.Ct(ctDir)},
		{name: "rt", dir: anydir.Rt(filepath.Join("testdata", "binary"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := tt.dir.FileEntries()
			require.Len(t, entries, 1)

			b, err := entries[0].ReadBytes()
			require.NoError(t, err)
			assert.Equal(t, invalidUTF8, b)

			_, err = entries[0].ReadString()
			assert.ErrorIs(t, err, anydir.ErrInvalidData)

			var pathErr *fs.PathError
			require.ErrorAs(t, err, &pathErr)
			assert.Equal(t, "read", pathErr.Op)
		})
	}
}

func TestReadStringMatchesReadBytes(t *testing.T) {
	for _, e := range anydir.Rt(filepath.Join("testdata", "assets")).FileEntries() {
		b, err := e.ReadBytes()
		require.NoError(t, err)

		s, err := e.ReadString()
		require.NoError(t, err, e.Path())
		assert.Equal(t, string(b), s)
	}
}

func TestRtFileEntryReadRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	e, err := anydir.FileFromPath(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = e.ReadBytes()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = e.ReadString()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewRtFileEntry(t *testing.T) {
	t.Chdir(t.TempDir())

	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "below working directory",
			path:     filepath.Join(cwd, "data", "x.txt"),
			expected: filepath.Join("data", "x.txt"),
		},
		{
			name:     "outside working directory",
			path:     "/does/not/matter/x.txt",
			expected: "/does/not/matter/x.txt",
		},
		{
			name:     "sibling with common prefix",
			path:     cwd + "-other/x.txt",
			expected: cwd + "-other/x.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := anydir.NewRtFileEntry(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.Path())
			assert.Equal(t, tt.expected, e.String())

			abs, ok := e.AbsolutePath()
			assert.True(t, ok)
			assert.Equal(t, tt.path, abs)

			anyEntry, err := anydir.FileFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, anydir.KindRt, anyEntry.Kind())
			assert.Equal(t, tt.expected, anyEntry.Path())
		})
	}
}

func TestAnyFileEntryAccessors(t *testing.T) {
	ctEntry, err := anydir.Ct(assetsDir(t)).Open("a.txt")
	require.NoError(t, err)

	_, ok := ctEntry.Ct()
	assert.True(t, ok)

	_, ok = ctEntry.Rt()
	assert.False(t, ok)

	rtEntry, err := anydir.FileFromPath(filepath.Join("testdata", "assets", "a.txt"))
	require.NoError(t, err)

	inner, ok := rtEntry.Rt()
	require.True(t, ok)

	abs, _ := inner.AbsolutePath()
	assert.Equal(t, filepath.Join("testdata", "assets", "a.txt"), abs)

	_, ok = rtEntry.Ct()
	assert.False(t, ok)
}

func TestAnyFileEntryZeroValue(t *testing.T) {
	var e anydir.AnyFileEntry

	assert.Empty(t, e.Path())
	assert.Empty(t, e.String())

	_, ok := e.AbsolutePath()
	assert.False(t, ok)

	_, err := e.ReadBytes()
	assert.ErrorIs(t, err, anydir.ErrUnknownKind)

	_, err = e.ReadString()
	assert.ErrorIs(t, err, anydir.ErrUnknownKind)
}
