// pkg/testutil/environment.go
// DEPENDENCIES: filesystem, types
// PURPOSE: Temporary source and target trees for package tests

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/encap/pkg/filesystem"
	"github.com/arthur-debert/encap/pkg/types"
)

// EnvType selects the filesystem implementation behind an environment.
type EnvType int

const (
	EnvIsolated EnvType = iota // types.FS straight on the OS, in a temp directory
	EnvAfero                   // types.FS through afero's OsFs, in a temp directory
)

func (e EnvType) String() string {
	if e == EnvAfero {
		return "afero"
	}
	return "os"
}

// AllEnvTypes lists every environment type, for table driven tests.
var AllEnvTypes = []EnvType{EnvIsolated, EnvAfero}

// TestEnvironment is a target tree with the source directory nested in
// it, the layout of a default installation (/usr/local and
// /usr/local/encap).
type TestEnvironment struct {
	Root   string
	Target string
	Source string
	FS     types.FS
	Type   EnvType

	t *testing.T
}

// NewTestEnvironment creates the directory layout and returns the
// environment.
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	// macOS hands out temp dirs behind a symlink
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	env := &TestEnvironment{
		Root:   root,
		Target: filepath.Join(root, "usr", "local"),
		Type:   envType,
		t:      t,
	}
	env.Source = filepath.Join(env.Target, "encap")

	switch envType {
	case EnvAfero:
		env.FS = filesystem.NewAferoFS(afero.NewOsFs())
	default:
		env.FS = filesystem.NewOS()
	}

	require.NoError(t, os.MkdirAll(env.Source, 0755))
	return env
}

// SourcePath joins elems onto the source directory.
func (env *TestEnvironment) SourcePath(elems ...string) string {
	return filepath.Join(append([]string{env.Source}, elems...)...)
}

// TargetPath joins elems onto the target directory.
func (env *TestEnvironment) TargetPath(elems ...string) string {
	return filepath.Join(append([]string{env.Target}, elems...)...)
}

// WriteFile writes content at an absolute path, creating parents.
func (env *TestEnvironment) WriteFile(path, content string) {
	env.t.Helper()
	require.NoError(env.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.t, os.WriteFile(path, []byte(content), 0644))
}

// Mkdir creates an absolute directory path with parents.
func (env *TestEnvironment) Mkdir(path string) {
	env.t.Helper()
	require.NoError(env.t, os.MkdirAll(path, 0755))
}

// Symlink creates a symlink at path pointing to dest, creating parents.
func (env *TestEnvironment) Symlink(dest, path string) {
	env.t.Helper()
	require.NoError(env.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.t, os.Symlink(dest, path))
}

// LinkDest returns the raw value of the symlink at the target relative
// path, and false when it is not a symlink.
func (env *TestEnvironment) LinkDest(targetRel string) (string, bool) {
	dest, err := os.Readlink(env.TargetPath(targetRel))
	if err != nil {
		return "", false
	}
	return dest, true
}

// Exists reports whether anything, including a dangling link, is at the
// target relative path.
func (env *TestEnvironment) Exists(targetRel string) bool {
	_, err := os.Lstat(env.TargetPath(targetRel))
	return err == nil
}

// AssertLinkTo fails the test unless the target relative path is a
// symlink resolving to the given package relative path.
func (env *TestEnvironment) AssertLinkTo(targetRel, pkg, pkgRel string) {
	env.t.Helper()
	path := env.TargetPath(targetRel)
	dest, err := os.Readlink(path)
	require.NoError(env.t, err, "%s should be a symlink", targetRel)
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(path), dest)
	}
	require.Equal(env.t, env.SourcePath(pkg, pkgRel), filepath.Clean(dest))
}

// Snapshot returns every entry below the target directory, excluding the
// source directory, mapped to a short description: "dir", "file" or
// "-> dest".
func (env *TestEnvironment) Snapshot() map[string]string {
	env.t.Helper()
	snap := make(map[string]string)
	err := filepath.Walk(env.Target, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == env.Target {
			return nil
		}
		if path == env.Source {
			return filepath.SkipDir
		}
		rel, _ := filepath.Rel(env.Target, path)
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			dest, _ := os.Readlink(path)
			snap[rel] = "-> " + dest
		case info.IsDir():
			snap[rel] = "dir"
		default:
			snap[rel] = "file"
		}
		return nil
	})
	require.NoError(env.t, err)
	return snap
}
