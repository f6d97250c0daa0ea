package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/encap/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func implementations() map[string]types.FS {
	return map[string]types.FS{
		"os":    NewOS(),
		"afero": NewAferoFS(afero.NewOsFs()),
	}
}

func TestBasicOperations(t *testing.T) {
	for name, fsys := range implementations() {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			testFile := filepath.Join(tmpDir, "test.txt")
			testContent := []byte("hello world")

			require.NoError(t, fsys.WriteFile(testFile, testContent, 0644))

			info, err := fsys.Stat(testFile)
			require.NoError(t, err)
			assert.Equal(t, "test.txt", info.Name())

			content, err := fsys.ReadFile(testFile)
			require.NoError(t, err)
			assert.Equal(t, testContent, content)

			require.NoError(t, fsys.AppendFile(testFile, []byte("!"), 0644))
			content, err = fsys.ReadFile(testFile)
			require.NoError(t, err)
			assert.Equal(t, "hello world!", string(content))

			require.NoError(t, fsys.MkdirAll(filepath.Join(tmpDir, "sub", "dir"), 0755))
			require.NoError(t, fsys.Mkdir(filepath.Join(tmpDir, "other"), 0755))

			entries, err := fsys.ReadDir(tmpDir)
			require.NoError(t, err)
			assert.Len(t, entries, 3)

			require.NoError(t, fsys.Rename(testFile, filepath.Join(tmpDir, "moved.txt")))
			require.NoError(t, fsys.Remove(filepath.Join(tmpDir, "moved.txt")))
			_, err = fsys.Stat(testFile)
			assert.True(t, os.IsNotExist(err))

			require.NoError(t, fsys.RemoveAll(filepath.Join(tmpDir, "sub")))
		})
	}
}

func TestSymlinks(t *testing.T) {
	for name, fsys := range implementations() {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			dest := filepath.Join(tmpDir, "dest")
			require.NoError(t, fsys.WriteFile(dest, []byte("x"), 0644))

			link := filepath.Join(tmpDir, "link")
			require.NoError(t, fsys.Symlink("dest", link))

			value, err := fsys.Readlink(link)
			require.NoError(t, err)
			assert.Equal(t, "dest", value)

			info, err := fsys.Lstat(link)
			require.NoError(t, err)
			assert.NotZero(t, info.Mode()&os.ModeSymlink)

			info, err = fsys.Stat(link)
			require.NoError(t, err)
			assert.True(t, info.Mode().IsRegular())
		})
	}
}

func TestAferoWithoutSymlinkSupport(t *testing.T) {
	fsys := NewAferoFS(afero.NewMemMapFs())
	require.NoError(t, fsys.MkdirAll("/a", 0755))

	err := fsys.Symlink("/a", "/b")
	assert.ErrorIs(t, err, afero.ErrNoSymlink)

	_, err = fsys.Readlink("/a")
	assert.Error(t, err)

	info, err := fsys.Lstat("/a")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
