package types

import (
	"io/fs"
)

// FS is the filesystem seam used by every encap component.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	// AppendFile appends data to name, creating it with perm if needed
	AppendFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	Mkdir(path string, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// Handle is the read-only view of an open package given to decision
// functions and mode actions.
type Handle interface {
	// Name is the package directory name, empty when cleaning a target
	Name() string
	SourceDir() string
	TargetDir() string
	Options() Options
	FS() FS
	Reportf(src *SourceInfo, tgt *TargetInfo, kind EventKind, format string, args ...interface{})
}

// DecisionFunc is consulted once per visited entry before the mode action
// runs. ActionOK lets processing continue; the other results propagate
// like mode action results. It may update tgt in place.
type DecisionFunc func(h Handle, src *SourceInfo, tgt *TargetInfo) Action
