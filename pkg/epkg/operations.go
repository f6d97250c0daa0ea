package epkg

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/encap/pkg/encap"
	"github.com/arthur-debert/encap/pkg/encapinfo"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/pkgspec"
	"github.com/arthur-debert/encap/pkg/policy"
	"github.com/arthur-debert/encap/pkg/types"
)

// Install installs spec, which may carry archive and platform
// decorations. With versioning every other version of the package is
// removed first.
func (s *Session) Install(ctx context.Context, spec string) ([]Result, error) {
	pkg, err := pkgspec.Normalize(filepath.Base(spec))
	if err != nil {
		return nil, err
	}
	if !s.settings.Versioning {
		return []Result{s.runPackage(ctx, pkg, types.ModeInstall, s.reporter)}, nil
	}

	name, version, versions, err := s.lookup(pkg)
	if err != nil {
		return nil, err
	}
	return s.installVersion(ctx, name, version, versions)
}

// installVersion selects one version of name, removes the others and
// installs the selected one.
func (s *Session) installVersion(ctx context.Context, name, version string, versions []string) ([]Result, error) {
	selected, others, err := s.selectVersion(name, version, versions)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, v := range others {
		pkg, err := pkgspec.Join(name, v)
		if err != nil {
			return results, err
		}
		results = append(results, s.runPackage(ctx, pkg, types.ModeRemove, s.reporter))
	}

	pkg, err := pkgspec.Join(name, selected)
	if err != nil {
		return results, err
	}
	return append(results, s.runPackage(ctx, pkg, types.ModeInstall, s.reporter)), nil
}

// Remove removes spec. With versioning a bare package name removes every
// version of it.
func (s *Session) Remove(ctx context.Context, spec string) ([]Result, error) {
	spec = filepath.Base(spec)
	if !s.settings.Versioning {
		return []Result{s.runPackage(ctx, spec, types.ModeRemove, s.reporter)}, nil
	}

	name, version, versions, err := s.lookup(spec)
	if err != nil {
		return nil, err
	}

	if version == "" {
		results := make([]Result, 0, len(versions))
		for _, v := range versions {
			pkg, err := pkgspec.Join(name, v)
			if err != nil {
				return results, err
			}
			results = append(results, s.runPackage(ctx, pkg, types.ModeRemove, s.reporter))
		}
		return results, nil
	}

	if _, _, err := s.selectVersion(name, version, versions); err != nil {
		return nil, err
	}
	return []Result{s.runPackage(ctx, spec, types.ModeRemove, s.reporter)}, nil
}

// Check checks spec. With versioning a bare package name checks every
// version found, newest first.
func (s *Session) Check(ctx context.Context, spec string) ([]Result, error) {
	return s.check(ctx, filepath.Base(spec), s.reporter)
}

func (s *Session) check(ctx context.Context, spec string, reporter types.Reporter) ([]Result, error) {
	if !s.settings.Versioning {
		return []Result{s.runPackage(ctx, spec, types.ModeCheck, reporter)}, nil
	}

	name, version, versions, err := s.lookup(spec)
	if err != nil {
		return nil, err
	}
	if version != "" {
		selected, _, err := s.selectVersion(name, version, versions)
		if err != nil {
			return nil, err
		}
		versions = []string{selected}
	}

	results := make([]Result, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		pkg, err := pkgspec.Join(name, versions[i])
		if err != nil {
			return results, err
		}
		results = append(results, s.runPackage(ctx, pkg, types.ModeCheck, reporter))
	}
	return results, nil
}

// Batch installs every package found in the source directory: the
// selected version of each with versioning, every version without.
func (s *Session) Batch(ctx context.Context) ([]Result, error) {
	logger := logging.GetLogger("epkg.batch")

	var excluded map[string]struct{}
	if s.settings.LegacyExcludes {
		entries, found, err := encapinfo.ReadExcludeFile(s.fs, s.settings.Source, "")
		if err != nil {
			return nil, err
		}
		if found {
			s.reporter.Report(types.Event{
				Kind:    types.EventPkgInfo,
				Message: "reading " + filepath.Join(s.settings.Source, encapinfo.ExcludeFileName),
			})
		}
		excluded = make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			excluded[entry] = struct{}{}
		}
	}

	all, err := pkgspec.All(s.fs, s.settings.Source, func(dirName string) bool {
		_, skip := excluded[dirName]
		if skip {
			logger.Debug().Str("package", dirName).Msg("excluding package")
		}
		return skip
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []Result
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		versions := all[name]
		if !s.settings.Versioning {
			for _, v := range versions {
				pkg, err := pkgspec.Join(name, v)
				if err != nil {
					return results, err
				}
				results = append(results, s.runPackage(ctx, pkg, types.ModeInstall, s.reporter))
			}
			continue
		}

		res, err := s.installVersion(ctx, name, "", versions)
		results = append(results, res...)
		if err != nil {
			s.reporter.Report(types.Event{Package: name, Kind: types.EventPkgFail, Message: errors.Message(err), Err: err})
		}
	}
	return results, nil
}

// runPackage opens pkg and runs mode on it, logging the transaction.
func (s *Session) runPackage(ctx context.Context, pkg string, mode types.Mode, reporter types.Reporter) Result {
	logger := logging.GetLogger("epkg").With().Str("package", pkg).Str("mode", mode.String()).Logger()
	res := Result{Package: pkg, Mode: mode, Outcome: types.OutcomeFailed}

	reporter.Report(types.Event{Package: pkg, Kind: types.EventPkgInfo, Message: progressVerb(mode) + " package " + pkg})

	p, err := encap.Open(s.fs, s.settings.Source, s.settings.Target, pkg, s.settings.Options, reporter)
	if err != nil {
		res.Err = err
		reporter.Report(types.Event{Package: pkg, Kind: types.EventPkgFail, Message: "cannot open package " + pkg + ": " + errors.Message(err), Err: err})
		return res
	}
	defer p.Close()

	switch mode {
	case types.ModeInstall:
		res.Outcome, err = p.Install(ctx, policy.OverrideDecision(s.settings.Excludes, s.settings.Overrides))
	case types.ModeRemove:
		res.Outcome, err = p.Remove(ctx, policy.ExcludeDecision(s.settings.Excludes))
	default:
		res.Outcome, err = p.Check(ctx, nil)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("package operation failed")
	}

	if mode != types.ModeCheck && res.Outcome != types.OutcomeNoop && !s.showOnly() && s.settings.WriteLog {
		if err := s.txlog.Record(pkg, mode, res.Outcome); err != nil {
			reporter.Report(types.Event{Package: pkg, Kind: types.EventPkgError, Message: errors.Message(err), Err: err})
		}
	}

	logger.Info().Str("outcome", res.Outcome.String()).Msg("package processed")
	return res
}

func progressVerb(mode types.Mode) string {
	switch mode {
	case types.ModeInstall:
		return "installing"
	case types.ModeRemove:
		return "removing"
	}
	return "checking"
}
