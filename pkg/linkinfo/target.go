package linkinfo

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/types"
)

// ProbeTarget describes what exists at targetPath. A missing path is not
// an error and yields a zero TargetInfo. Symlinks are resolved one level,
// relative values against the link's own directory, and classified as
// Encap links when the result lies strictly below sourceRoot.
func ProbeTarget(fsys types.FS, sourceRoot, targetPath string) (*types.TargetInfo, error) {
	info := &types.TargetInfo{}

	fi, err := fsys.Lstat(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return info, errors.Wrapf(err, errors.ErrFileAccess, "cannot lstat %s", targetPath)
	}
	info.Flags |= types.TgtExists

	if fi.Mode()&os.ModeSymlink == 0 {
		if fi.IsDir() {
			info.Flags |= types.TgtIsDir
		}
		return info, nil
	}
	info.Flags |= types.TgtIsLink

	value, err := fsys.Readlink(targetPath)
	if err != nil {
		return info, errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", targetPath)
	}
	return ProbeLink(fsys, sourceRoot, targetPath, value)
}

// ProbeLink describes a symlink at linkPath with the given value, whether
// or not it exists yet.
func ProbeLink(fsys types.FS, sourceRoot, linkPath, value string) (*types.TargetInfo, error) {
	info := &types.TargetInfo{Flags: types.TgtExists | types.TgtIsLink}

	existing := resolveLink(linkPath, value)
	info.LinkExisting = existing

	if dest, err := fsys.Stat(existing); err == nil {
		info.Flags |= types.TgtDestExists
		if dest.IsDir() {
			info.Flags |= types.TgtDestIsDir
		}
	} else if !os.IsNotExist(err) && !isNotDir(err) {
		return info, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", existing)
	}

	pkg, pkgRel, ok := splitUnder(sourceRoot, existing)
	if !ok {
		return info, nil
	}
	info.Flags |= types.TgtDestEncapSrc
	info.LinkExistingPkg = pkg
	info.LinkExistingPkgdirRelative = pkgRel

	if _, err := fsys.Stat(filepath.Join(sourceRoot, pkg)); err == nil {
		info.Flags |= types.TgtDestPkgdirExists
	} else if !os.IsNotExist(err) {
		return info, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat package directory %s", pkg)
	}
	return info, nil
}

func resolveLink(linkPath, value string) string {
	if !filepath.IsAbs(value) {
		value = filepath.Join(filepath.Dir(linkPath), value)
	}
	return filepath.Clean(value)
}

// isNotDir reports ENOTDIR, returned when a path component of a dangling
// link's destination is a regular file.
func isNotDir(err error) bool {
	return stderrors.Is(err, syscall.ENOTDIR)
}

// splitUnder splits path into the first component below root and the
// remainder. The prefix must end on a path separator.
func splitUnder(root, path string) (first, rest string, ok bool) {
	root = filepath.Clean(root)
	prefix := root + string(filepath.Separator)
	if root == string(filepath.Separator) {
		prefix = root
	}
	if !strings.HasPrefix(path, prefix) || len(path) == len(prefix) {
		return "", "", false
	}
	first, rest, _ = strings.Cut(path[len(prefix):], string(filepath.Separator))
	return first, rest, true
}

// ExpectedLink returns the symlink value a target entry at targetPath
// should have to point at pkgPath: pkgPath itself in absolute mode,
// otherwise the path relative to the target entry's directory.
func ExpectedLink(pkgPath, targetPath string, absolute bool) string {
	if absolute {
		return pkgPath
	}
	rel, err := filepath.Rel(filepath.Dir(targetPath), pkgPath)
	if err != nil {
		return pkgPath
	}
	return rel
}
