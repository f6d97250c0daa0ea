// Package encap is the package handle and lifecycle controller. A Package
// is opened for one package directory of a source tree and offers the
// install, remove and check operations, each running the lifecycle
// scripts, README display and prerequisite checks around a walk of the
// package contents.
package encap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/encap/pkg/encapinfo"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/linkinfo"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/types"
)

// Package is an open package. It satisfies types.Handle, so decision
// functions and reporters see the same view the engine does.
type Package struct {
	name     string
	source   string
	target   string
	opts     types.Options
	fs       types.FS
	reporter types.Reporter
	info     *encapinfo.Info
}

var _ linkinfo.Package = (*Package)(nil)

// Open opens the package directory name below source for operations on
// target. reporter may be nil.
func Open(fsys types.FS, source, target, name string, opts types.Options, reporter types.Reporter) (*Package, error) {
	logger := logging.GetLogger("encap.open")

	pkgDir := filepath.Join(source, name)
	fi, err := fsys.Stat(pkgDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrPackageNotFound, "package %s not found", name).
				WithDetail("path", pkgDir)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat package %s", name)
	}
	if !fi.IsDir() {
		return nil, errors.Newf(errors.ErrPackageInvalid, "package %s is not a directory", name).
			WithDetail("path", pkgDir)
	}

	info, err := encapinfo.Load(fsys, pkgDir)
	if err != nil {
		return nil, err
	}

	if reporter == nil {
		reporter = types.Discard
	}

	logger.Debug().
		Str("package", name).
		Str("format", info.Format).
		Str("options", opts.String()).
		Msg("package opened")

	return &Package{
		name:     name,
		source:   source,
		target:   target,
		opts:     opts,
		fs:       fsys,
		reporter: reporter,
		info:     info,
	}, nil
}

// Close releases the handle. The package can not be used afterwards.
func (p *Package) Close() error {
	p.info = nil
	p.reporter = types.Discard
	return nil
}

func (p *Package) Name() string           { return p.name }
func (p *Package) SourceDir() string      { return p.source }
func (p *Package) TargetDir() string      { return p.target }
func (p *Package) Options() types.Options { return p.opts }
func (p *Package) FS() types.FS           { return p.fs }

// Info returns the package metadata.
func (p *Package) Info() *encapinfo.Info { return p.info }

// Dir returns the absolute path of the package directory.
func (p *Package) Dir() string { return filepath.Join(p.source, p.name) }

// Reportf formats a message and passes the event to the reporter. When
// the last argument is an error it is also attached to the event.
func (p *Package) Reportf(src *types.SourceInfo, tgt *types.TargetInfo, kind types.EventKind, format string, args ...interface{}) {
	ev := types.Event{
		Package: p.name,
		Kind:    kind,
		Source:  src,
		Target:  tgt,
		Message: fmt.Sprintf(format, args...),
	}
	if n := len(args); n > 0 {
		if err, ok := args[n-1].(error); ok {
			ev.Err = err
		}
	}
	p.reporter.Report(ev)
}
