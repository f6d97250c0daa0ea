package engine

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/encap/pkg/linkinfo"
	"github.com/arthur-debert/encap/pkg/types"
)

type entryState int

const (
	stateRemoved entryState = iota + 1
	stateDir
	stateLink
)

type overlayEntry struct {
	state entryState
	value string
}

// overlay records the mutations a show-only walk would have made.
type overlay struct {
	entries map[string]overlayEntry
}

func newOverlay() *overlay {
	return &overlay{entries: make(map[string]overlayEntry)}
}

func (o *overlay) record(path string, state entryState, value string) {
	o.entries[filepath.Clean(path)] = overlayEntry{state: state, value: value}
}

// gone reports whether path was removed, or lies below a removed or newly
// created (and therefore empty) directory.
func (o *overlay) gone(path string) bool {
	path = filepath.Clean(path)
	if e, ok := o.entries[path]; ok {
		return e.state == stateRemoved
	}
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if e, ok := o.entries[dir]; ok && (e.state == stateRemoved || e.state == stateDir) {
			return true
		}
		if dir == filepath.Dir(dir) {
			return false
		}
	}
}

// probe answers a target probe from the overlay. ok is false when the
// overlay knows nothing about path and the filesystem must be asked.
func (o *overlay) probe(fsys types.FS, sourceRoot, path string) (info *types.TargetInfo, ok bool, err error) {
	if e, found := o.entries[filepath.Clean(path)]; found {
		switch e.state {
		case stateDir:
			return &types.TargetInfo{Flags: types.TgtExists | types.TgtIsDir}, true, nil
		case stateLink:
			info, err := linkinfo.ProbeLink(fsys, sourceRoot, path, e.value)
			return info, true, err
		}
	}
	if o.gone(path) {
		return &types.TargetInfo{}, true, nil
	}
	return nil, false, nil
}

// emptyDir reports whether the directory at path would be empty once the
// recorded mutations were applied.
func (o *overlay) emptyDir(fsys types.FS, path string) bool {
	path = filepath.Clean(path)
	for p, e := range o.entries {
		if filepath.Dir(p) == path && e.state != stateRemoved {
			return false
		}
	}

	entries, err := fsys.ReadDir(path)
	if err != nil {
		e, created := o.entries[path]
		return created && e.state == stateDir && stderrors.Is(err, fs.ErrNotExist)
	}
	for _, entry := range entries {
		if !o.gone(filepath.Join(path, entry.Name())) {
			return false
		}
	}
	return true
}

// removeError returns the error removing path would fail with, given the
// recorded mutations: ENOENT for a missing entry and ENOTEMPTY for a
// directory that still has content.
func (o *overlay) removeError(fsys types.FS, path string) error {
	path = filepath.Clean(path)
	isDir := false
	if e, found := o.entries[path]; found && e.state != stateRemoved {
		isDir = e.state == stateDir
	} else if o.gone(path) {
		return &os.PathError{Op: "remove", Path: path, Err: syscall.ENOENT}
	} else {
		fi, err := fsys.Lstat(path)
		if err != nil {
			var pathErr *os.PathError
			if stderrors.As(err, &pathErr) {
				return &os.PathError{Op: "remove", Path: path, Err: pathErr.Err}
			}
			return err
		}
		isDir = fi.IsDir()
	}

	if isDir && !o.emptyDir(fsys, path) {
		return &os.PathError{Op: "remove", Path: path, Err: syscall.ENOTEMPTY}
	}
	return nil
}
