// Package pkgspec converts between package names plus versions and the
// directory names ("pkgspecs") used for packages in the source directory.
//
//	name-version[-encap-platform][.tar.gz|.tgz]
package pkgspec

import (
	"strings"

	"github.com/arthur-debert/encap/pkg/errors"
)

// PathMax is the longest pkgspec accepted, matching the POSIX path limit.
const PathMax = 4096

// PlatformMarker introduces the platform suffix of an archive name.
const PlatformMarker = "-encap-"

// Spec is a parsed pkgspec.
type Spec struct {
	Name      string
	Version   string
	Platform  string
	Extension string
}

// String joins the name and version back into a directory name.
func (s Spec) String() string {
	joined, err := Join(s.Name, s.Version)
	if err != nil {
		return s.Name
	}
	return joined
}

// Parse splits a pkgspec into its components. The extension is stripped
// first, then the platform suffix, then the version after the last
// remaining hyphen. A trailing hyphen yields the version "-".
func Parse(pkgspec string) (Spec, error) {
	var spec Spec
	if len(pkgspec) >= PathMax {
		return spec, errors.Newf(errors.ErrNameTooLong, "pkgspec too long (%d bytes)", len(pkgspec))
	}

	buf := pkgspec

	idx := strings.LastIndex(buf, ".tar")
	if idx < 0 {
		idx = strings.LastIndex(buf, ".tgz")
	}
	if idx >= 0 {
		spec.Extension = buf[idx+1:]
		buf = buf[:idx]
	}

	if idx = strings.LastIndex(buf, PlatformMarker); idx >= 0 {
		spec.Platform = buf[idx+len(PlatformMarker):]
		buf = buf[:idx]
	}

	if idx = strings.LastIndexByte(buf, '-'); idx >= 0 {
		spec.Version = buf[idx+1:]
		if spec.Version == "" {
			spec.Version = "-"
		}
		buf = buf[:idx]
	}

	spec.Name = buf
	return spec, nil
}

// Join builds the directory name for name and version. The separator is
// omitted for an empty version, and a version starting with '-' yields
// "name-".
func Join(name, version string) (string, error) {
	var joined string
	switch {
	case version == "":
		joined = name
	case strings.HasPrefix(version, "-"):
		joined = name + "-"
	default:
		joined = name + "-" + version
	}
	if len(joined) >= PathMax {
		return "", errors.Newf(errors.ErrNameTooLong, "pkgspec for %q too long", name)
	}
	return joined, nil
}

// Normalize strips archive and platform decorations from a pkgspec,
// e.g. "foo-1.0-encap-sparc-solaris8.tar.gz" becomes "foo-1.0".
func Normalize(pkgspec string) (string, error) {
	spec, err := Parse(pkgspec)
	if err != nil {
		return "", err
	}
	return Join(spec.Name, spec.Version)
}

// Match reports whether two pkgspecs have the same name and equal versions.
func Match(a, b string, compare func(v1, v2 string) int) bool {
	sa, err := Parse(a)
	if err != nil {
		return false
	}
	sb, err := Parse(b)
	if err != nil {
		return false
	}
	return sa.Name == sb.Name && compare(sa.Version, sb.Version) == 0
}
