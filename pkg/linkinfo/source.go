package linkinfo

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/encap/pkg/encapinfo"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/matchers"
	"github.com/arthur-debert/encap/pkg/types"
)

// Package is an open package as seen by the descriptor builder and the
// engine: the handle plus its metadata.
type Package interface {
	types.Handle
	Info() *encapinfo.Info
}

// GlobFormat is the first package format whose exclude patterns are globs
// rather than exact paths.
const GlobFormat = "2.0"

// DescribeSource builds the descriptor of entry file in the package
// relative directory dir. Both may be empty; the root of the package is
// described with both empty. The descriptor is returned even when the
// final lstat fails, so callers can still consult its flags.
func DescribeSource(p Package, dir, file string) (*types.SourceInfo, error) {
	info := p.Info()
	opts := p.Options()

	src := &types.SourceInfo{}
	src.PkgdirRelative = joinRel(dir, file)
	src.Path = filepath.Join(p.SourceDir(), p.Name(), src.PkgdirRelative)

	targetName := file
	if opts.Has(types.OptLinkNames) {
		if newName, ok := info.LinkName(src.PkgdirRelative); ok {
			targetName = newName
		}
	}
	src.TargetRelative = joinRel(dir, targetName)
	src.TargetPath = filepath.Join(p.TargetDir(), src.TargetRelative)
	src.LinkExpecting = ExpectedLink(src.Path, src.TargetPath, opts.Has(types.OptAbsLinks))

	if opts.Has(types.OptExcludes) {
		match := matchers.Glob
		if !info.FormatAtLeast(GlobFormat) {
			match = matchers.Exact
		}
		if matchers.Any(src.PkgdirRelative, info.Excludes, match) {
			src.Flags |= types.SrcExcluded
		}
	}

	if matchers.Any(src.PkgdirRelative, info.Requires, matchers.Glob) {
		src.Flags |= types.SrcRequired
	}

	if opts.Has(types.OptLinkDirs) && matchers.Any(src.PkgdirRelative, info.LinkDirs, matchers.Glob) {
		src.Flags |= types.SrcLinkDir
	}

	// a required file under a linkdir makes the linkdir itself required
	if src.LinkDir() && !src.Required() && matchers.Any(src.PkgdirRelative, info.Requires, matchers.Partial) {
		src.Flags |= types.SrcRequired
	}

	fi, err := p.FS().Lstat(src.Path)
	if err != nil {
		return src, errors.Wrapf(err, errors.ErrFileAccess, "cannot lstat %s", src.Path)
	}
	if fi.IsDir() {
		src.Flags |= types.SrcIsDir
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		src.Flags |= types.SrcIsLink
	}
	return src, nil
}

func joinRel(dir, file string) string {
	switch {
	case dir == "":
		return file
	case file == "":
		return dir
	}
	return dir + "/" + file
}
