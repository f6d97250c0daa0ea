package pkgspec

import (
	"path/filepath"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/types"
	"github.com/arthur-debert/encap/pkg/vercmp"
)

// ScanFunc is called for every version found. Returning false stops the scan.
type ScanFunc func(version string) bool

// Scan calls fn for every directory in source whose parsed name equals
// name. Entries are stat'ed, so symlinks to directories count. It returns
// the number of versions visited and whether fn stopped the scan.
func Scan(fsys types.FS, source, name string, fn ScanFunc) (int, bool, error) {
	entries, err := fsys.ReadDir(source)
	if err != nil {
		return 0, false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read source directory %s", source)
	}

	found := 0
	for _, entry := range entries {
		info, err := fsys.Stat(filepath.Join(source, entry.Name()))
		if err != nil {
			return found, false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", entry.Name())
		}
		if !info.IsDir() {
			continue
		}

		spec, err := Parse(entry.Name())
		if err != nil || spec.Name != name {
			continue
		}

		found++
		if fn != nil && !fn(spec.Version) {
			return found, true, nil
		}
	}
	return found, false, nil
}

// Versions returns every version of name found in source, oldest first.
func Versions(fsys types.FS, source, name string) ([]string, error) {
	var versions []string
	_, _, err := Scan(fsys, source, name, func(version string) bool {
		versions = append(versions, version)
		return true
	})
	if err != nil {
		return nil, err
	}
	vercmp.Sort(versions)
	return versions, nil
}

// All groups every package directory in source by package name. Entries
// accepted by skip are left out.
func All(fsys types.FS, source string, skip func(dirName string) bool) (map[string][]string, error) {
	entries, err := fsys.ReadDir(source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read source directory %s", source)
	}

	packages := make(map[string][]string)
	for _, entry := range entries {
		info, err := fsys.Stat(filepath.Join(source, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", entry.Name())
		}
		if !info.IsDir() || (skip != nil && skip(entry.Name())) {
			continue
		}
		spec, err := Parse(entry.Name())
		if err != nil {
			return nil, err
		}
		packages[spec.Name] = append(packages[spec.Name], spec.Version)
	}
	for _, versions := range packages {
		vercmp.Sort(versions)
	}
	return packages, nil
}
