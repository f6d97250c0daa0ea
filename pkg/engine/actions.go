package engine

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/arthur-debert/encap/pkg/encapinfo"
	"github.com/arthur-debert/encap/pkg/linkinfo"
	"github.com/arthur-debert/encap/pkg/types"
)

const forcedReplacement = "forced replacement"

// ownsLink reports whether tgt already is the link src expects.
func (w *walker) ownsLink(src *types.SourceInfo, tgt *types.TargetInfo) bool {
	return tgt.IsEncapLink() &&
		tgt.Flags.Has(types.TgtDestPkgdirExists) &&
		tgt.LinkExistingPkg == w.pkg.Name() &&
		tgt.LinkExistingPkgdirRelative == src.PkgdirRelative
}

func (w *walker) installDir(src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
	kind, msg := types.EventInstOK, ""

	if tgt.Exists() {
		if tgt.Flags.Has(types.TgtIsDir) {
			w.pkg.Reportf(src, tgt, types.EventInstNoop, "")
			return types.ActionSkip
		}

		if !w.opts.Has(types.OptForce) {
			if !tgt.IsEncapLink() {
				w.pkg.Reportf(src, tgt, types.EventInstFail, "not an Encap link")
				return types.ActionError
			}
			if tgt.Flags.Has(types.TgtDestExists) {
				w.pkg.Reportf(src, tgt, types.EventInstFail, "target directory conflicts with symlink: %s -> %s",
					src.TargetPath, tgt.LinkExisting)
				return types.ActionError
			}
		} else {
			msg = forcedReplacement
		}

		if err := w.remove(src.TargetPath); err != nil {
			w.pkg.Reportf(src, tgt, types.EventInstError, "remove: %v", err)
			return types.ActionError
		}
		kind = types.EventInstRepl
	}

	if err := w.mkdir(src.TargetPath); err != nil {
		w.pkg.Reportf(src, tgt, types.EventInstError, "mkdir: %v", err)
		return types.ActionError
	}
	w.pkg.Reportf(src, tgt, kind, msg)

	info := w.pkg.Info()
	if w.opts.Has(types.OptExcludes) && !info.FormatAtLeast(linkinfo.GlobFormat) {
		entries, found, err := encapinfo.ReadExcludeFile(w.fs, src.Path, src.PkgdirRelative)
		if err != nil {
			w.pkg.Reportf(src, tgt, types.EventPkgError, "cannot read %s: %v", encapinfo.ExcludeFileName, err)
		} else if found {
			info.AddExcludes(entries...)
			w.pkg.Reportf(src, tgt, types.EventPkgInfo, "read %s file", encapinfo.ExcludeFileName)
		}
	}
	return types.ActionOK
}

func (w *walker) installLink(src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
	kind, msg := types.EventInstOK, ""

	if tgt.Exists() {
		if w.ownsLink(src, tgt) {
			w.pkg.Reportf(src, tgt, types.EventInstNoop, "")
			return types.ActionSkip
		}

		if !w.opts.Has(types.OptForce) {
			if !tgt.Flags.Has(types.TgtIsLink) {
				w.pkg.Reportf(src, tgt, types.EventInstFail, "not a symlink")
				return types.ActionError
			}
			if !tgt.IsEncapLink() {
				w.pkg.Reportf(src, tgt, types.EventInstFail, "not an Encap link")
				return types.ActionError
			}
			if tgt.Flags.Has(types.TgtDestExists) &&
				tgt.Flags.Has(types.TgtDestPkgdirExists) &&
				tgt.LinkExistingPkg != w.pkg.Name() {
				w.pkg.Reportf(src, tgt, types.EventInstFail, "conflicting link to package %s", tgt.LinkExistingPkg)
				return types.ActionError
			}
		} else {
			msg = forcedReplacement
		}

		if err := w.remove(src.TargetPath); err != nil {
			w.pkg.Reportf(src, tgt, types.EventInstError, "remove: %v", err)
			return types.ActionError
		}
		kind = types.EventInstRepl
	}

	if err := w.symlink(src.LinkExpecting, src.TargetPath); err != nil {
		w.pkg.Reportf(src, tgt, types.EventInstError, "symlink: %v", err)
		return types.ActionError
	}
	w.pkg.Reportf(src, tgt, kind, msg)
	return types.ActionOK
}

// linkdirExpanded reports whether a linkdir was installed by recursing
// into it, leaving a real directory at the target. Remove and check then
// fall back to recursion without reporting a failure.
func linkdirExpanded(src *types.SourceInfo, tgt *types.TargetInfo) bool {
	return src.LinkDir() && src.IsDir() && tgt.Flags.Has(types.TgtIsDir)
}

func (w *walker) removeDir(src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
	if !w.opts.Has(types.OptNukeTargetDirs) {
		return types.ActionOK
	}

	removed, err := w.rmdir(src.TargetPath)
	if err != nil {
		w.pkg.Reportf(src, tgt, types.EventRemError, "rmdir: %v", err)
		return types.ActionError
	}
	if removed {
		w.pkg.Reportf(src, tgt, types.EventRemOK, "")
	}
	return types.ActionOK
}

func (w *walker) removeLink(src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
	if !tgt.Exists() {
		w.pkg.Reportf(src, tgt, types.EventRemNoop, "")
		return types.ActionSkip
	}
	if linkdirExpanded(src, tgt) {
		return types.ActionError
	}

	switch {
	case !tgt.Flags.Has(types.TgtIsLink):
		w.pkg.Reportf(src, tgt, types.EventRemFail, "not a symlink")
		return types.ActionSkip
	case !tgt.IsEncapLink():
		w.pkg.Reportf(src, tgt, types.EventRemFail, "not an Encap link")
		return types.ActionSkip
	case !tgt.Flags.Has(types.TgtDestPkgdirExists):
		w.pkg.Reportf(src, tgt, types.EventRemFail, "link to non-existent package")
		return types.ActionSkip
	case tgt.LinkExistingPkg != w.pkg.Name():
		w.pkg.Reportf(src, tgt, types.EventRemFail, "link to package %s", tgt.LinkExistingPkg)
		return types.ActionSkip
	}

	if err := w.remove(src.TargetPath); err != nil {
		w.pkg.Reportf(src, tgt, types.EventRemError, "remove: %v", err)
		return types.ActionError
	}
	w.pkg.Reportf(src, tgt, types.EventRemOK, "")
	return types.ActionOK
}

func (w *walker) checkLink(src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
	if linkdirExpanded(src, tgt) {
		return types.ActionError
	}

	switch {
	case !tgt.Exists():
		w.pkg.Reportf(src, tgt, types.EventChkFail, "link does not exist")
		return types.ActionError
	case !tgt.Flags.Has(types.TgtIsLink):
		w.pkg.Reportf(src, tgt, types.EventChkFail, "not a symlink")
		return types.ActionError
	case !tgt.IsEncapLink():
		w.pkg.Reportf(src, tgt, types.EventChkFail, "not an Encap link")
		return types.ActionError
	case tgt.LinkExistingPkg != w.pkg.Name():
		w.pkg.Reportf(src, tgt, types.EventChkFail, "link to package %s", tgt.LinkExistingPkg)
		return types.ActionError
	case tgt.LinkExistingPkgdirRelative != src.PkgdirRelative:
		w.pkg.Reportf(src, tgt, types.EventChkFail, "link to incorrect file %s", tgt.LinkExistingPkgdirRelative)
		return types.ActionError
	}

	w.pkg.Reportf(src, tgt, types.EventChkNoop, "")
	return types.ActionOK
}

// remove deletes path, or records the deletion in show-only mode. In
// show-only mode it fails where the real removal would.
func (w *walker) remove(path string) error {
	if w.overlay != nil {
		if err := w.overlay.removeError(w.fs, path); err != nil {
			return err
		}
		w.overlay.record(path, stateRemoved, "")
		return nil
	}
	return w.fs.Remove(path)
}

func (w *walker) mkdir(path string) error {
	if w.overlay != nil {
		w.overlay.record(path, stateDir, "")
		return nil
	}
	return w.fs.Mkdir(path, 0755)
}

func (w *walker) symlink(value, path string) error {
	if w.overlay != nil {
		w.overlay.record(path, stateLink, value)
		return nil
	}
	return w.fs.Symlink(value, path)
}

// rmdir removes an empty directory. A directory that is not empty, busy
// or already gone is left alone without error; removed reports whether
// the directory was (or in show-only mode would be) removed.
func (w *walker) rmdir(path string) (removed bool, err error) {
	if w.overlay != nil && w.overlay.gone(path) {
		return false, nil
	}

	fi, err := w.fs.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !fi.IsDir() {
		return false, &os.PathError{Op: "rmdir", Path: path, Err: syscall.ENOTDIR}
	}

	if w.overlay != nil {
		if !w.overlay.emptyDir(w.fs, path) {
			return false, nil
		}
		w.overlay.record(path, stateRemoved, "")
		return true, nil
	}

	if err := w.fs.Remove(path); err != nil {
		if tolerableRmdirError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func tolerableRmdirError(err error) bool {
	for _, errno := range []syscall.Errno{syscall.EEXIST, syscall.EBUSY, syscall.ENOTEMPTY, syscall.ENOENT} {
		if stderrors.Is(err, errno) {
			return true
		}
	}
	return false
}
