package epkg

import (
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/pkgspec"
	"github.com/arthur-debert/encap/pkg/vercmp"
)

// FindVersions returns the versions of package name found in the source
// directory, oldest first.
func (s *Session) FindVersions(name string) ([]string, error) {
	logger := logging.GetLogger("epkg.versions")

	if cached, ok := s.versions.Get(name); ok {
		return append([]string(nil), cached...), nil
	}

	versions, err := pkgspec.Versions(s.fs, s.settings.Source, name)
	if err != nil {
		return nil, err
	}
	logger.Trace().Str("name", name).Strs("versions", versions).Msg("scanned source directory")

	s.versions.Add(name, versions)
	return append([]string(nil), versions...), nil
}

// InvalidateVersions drops cached version scans.
func (s *Session) InvalidateVersions() {
	s.versions.Purge()
}

// lookup resolves a command line pkgspec to a package name, an optional
// requested version and the versions available. The spec is first tried
// as a package name of its own, then split into name and version.
func (s *Session) lookup(spec string) (name, version string, versions []string, err error) {
	versions, err = s.FindVersions(spec)
	if err != nil {
		return "", "", nil, err
	}
	if len(versions) > 0 {
		return spec, "", versions, nil
	}

	parsed, err := pkgspec.Parse(spec)
	if err != nil {
		return "", "", nil, err
	}
	versions, err = s.FindVersions(parsed.Name)
	if err != nil {
		return "", "", nil, err
	}
	if len(versions) == 0 {
		return "", "", nil, errors.Newf(errors.ErrVersionNotFound, "no versions of package %s found", spec)
	}
	return parsed.Name, parsed.Version, versions, nil
}

// selectVersion picks the version to install: the requested one, else
// the newest, else with backoff the one before it. The remaining
// versions are returned as well.
func (s *Session) selectVersion(name, requested string, versions []string) (string, []string, error) {
	idx := -1
	if requested != "" {
		for i, v := range versions {
			if vercmp.Compare(v, requested) == 0 {
				idx = i
				break
			}
		}
		if idx < 0 {
			joined, _ := pkgspec.Join(name, requested)
			return "", nil, errors.Newf(errors.ErrVersionNotFound, "package %s not found", joined)
		}
	} else {
		idx = len(versions) - 1
		if s.settings.Backoff {
			idx--
		}
		if idx < 0 {
			return "", nil, errors.Newf(errors.ErrVersionNotFound, "previous version of package %s not found", name)
		}
	}

	others := make([]string, 0, len(versions)-1)
	others = append(others, versions[:idx]...)
	others = append(others, versions[idx+1:]...)
	return versions[idx], others, nil
}
