package engine

import (
	"github.com/rs/zerolog"

	"github.com/arthur-debert/encap/pkg/encapinfo"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/linkinfo"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/types"
)

// actionFunc is a mode specific action applied to one entry.
type actionFunc func(w *walker, src *types.SourceInfo, tgt *types.TargetInfo) types.Action

// modeActions holds the actions of one mode. Any of them may be nil.
type modeActions struct {
	preDir  actionFunc
	postDir actionFunc
	entry   actionFunc
}

var modes = map[types.Mode]modeActions{
	types.ModeInstall: {preDir: (*walker).installDir, entry: (*walker).installLink},
	types.ModeRemove:  {postDir: (*walker).removeDir, entry: (*walker).removeLink},
	types.ModeCheck:   {entry: (*walker).checkLink},
}

// Result is the outcome of a walk.
type Result struct {
	Status types.WalkStatus
	// Unwound is set when a required failure terminated the walk early
	Unwound bool
}

type walker struct {
	pkg     linkinfo.Package
	fs      types.FS
	opts    types.Options
	actions modeActions
	decide  types.DecisionFunc
	status  types.WalkStatus
	overlay *overlay
	log     zerolog.Logger
}

// Walk runs mode over every entry of the package p. decide may be nil.
// An error is returned only when the package root itself cannot be
// described.
func Walk(p linkinfo.Package, mode types.Mode, decide types.DecisionFunc) (Result, error) {
	actions, ok := modes[mode]
	if !ok {
		return Result{}, errors.Newf(errors.ErrInvalidInput, "unknown mode %d", mode)
	}

	w := &walker{
		pkg:     p,
		fs:      p.FS(),
		opts:    p.Options(),
		actions: actions,
		decide:  decide,
		log:     logging.GetLogger("engine").With().Str("package", p.Name()).Str("mode", mode.String()).Logger(),
	}
	if w.opts.Has(types.OptShowOnly) {
		w.overlay = newOverlay()
	}

	root, err := linkinfo.DescribeSource(p, "", "")
	if err != nil {
		return Result{Status: types.StatusFatal}, err
	}

	res := w.recurse(root)
	w.log.Debug().Uint8("status", uint8(w.status)).Str("result", res.String()).Msg("walk finished")
	return Result{Status: w.status, Unwound: res == types.ActionReturn}, nil
}

// fatal marks the walk fatal and returns ActionReturn.
func (w *walker) fatal() types.Action {
	w.status.Mark(types.StatusFatal)
	return types.ActionReturn
}

// escalate applies the required rule to a failed entry: ActionReturn for
// required entries, otherwise a recorded non-fatal error and ActionSkip.
func (w *walker) escalate(src *types.SourceInfo) types.Action {
	if src.Required() {
		return w.fatal()
	}
	w.status.Mark(types.StatusErr)
	return types.ActionSkip
}

// skipName reports whether a directory entry is package bookkeeping
// rather than content.
func (w *walker) skipName(atRoot bool, name string) bool {
	info := w.pkg.Info()
	if atRoot {
		for _, script := range encapinfo.ScriptNames {
			if name == script {
				return true
			}
		}
		if name == encapinfo.TOMLFileName {
			return true
		}
	}
	if !info.FormatAtLeast(linkinfo.GlobFormat) {
		return name == encapinfo.ExcludeFileName
	}
	return atRoot && name == encapinfo.FileName
}

// recurse walks the directory described by dir. It returns ActionReturn
// when the walk must unwind and ActionError when dir cannot be listed.
func (w *walker) recurse(dir *types.SourceInfo) types.Action {
	entries, err := w.fs.ReadDir(dir.Path)
	if err != nil {
		w.pkg.Reportf(dir, nil, types.EventPkgError, "opendir: %v", err)
		w.status.Mark(types.StatusErr)
		return types.ActionError
	}

	atRoot := dir.PkgdirRelative == ""
	for _, entry := range entries {
		if w.skipName(atRoot, entry.Name()) {
			continue
		}
		if w.visit(dir, atRoot, entry.Name()) == types.ActionReturn {
			return types.ActionReturn
		}
	}
	return types.ActionOK
}

// visit processes a single entry. Only ActionReturn is significant to the
// caller.
func (w *walker) visit(dir *types.SourceInfo, atRoot bool, name string) types.Action {
	src, err := linkinfo.DescribeSource(w.pkg, dir.PkgdirRelative, name)
	if err != nil {
		w.pkg.Reportf(src, nil, types.EventPkgError, "cannot check source: %s", errors.Message(err))
		return w.escalate(src)
	}
	log := w.log.With().Str("entry", src.PkgdirRelative).Logger()

	if src.Flags.Has(types.SrcExcluded) {
		w.pkg.Reportf(src, nil, types.EventPkgInfo, "excluding")
		return types.ActionSkip
	}

	// loose files at the package root are only linked on request
	if atRoot && !src.IsDir() && !w.opts.Has(types.OptPkgdirLinks) {
		log.Trace().Msg("skipping package root file")
		return types.ActionSkip
	}

	tgt, err := w.probe(src.TargetPath)
	if err != nil {
		w.pkg.Reportf(src, tgt, types.EventPkgError, "cannot check target: %s", errors.Message(err))
		return w.escalate(src)
	}
	log.Trace().Uint8("source_flags", uint8(src.Flags)).Uint8("target_flags", uint8(tgt.Flags)).Msg("visiting")

	if w.decide != nil {
		switch w.decide(w.pkg, src, tgt) {
		case types.ActionError:
			return w.escalate(src)
		case types.ActionReturn:
			return w.fatal()
		case types.ActionSkip:
			return types.ActionSkip
		}
	}

	if !src.IsDir() || src.LinkDir() {
		if res, done := w.applyEntry(src, tgt); done {
			return res
		}
	}

	return w.descend(src, tgt)
}

// applyEntry runs the entry action. done is false only when a failed
// linkdir falls back to recursing into its contents. A required linkdir
// never falls back.
func (w *walker) applyEntry(src *types.SourceInfo, tgt *types.TargetInfo) (res types.Action, done bool) {
	switch w.actions.entry(w, src, tgt) {
	case types.ActionError:
		if src.LinkDir() && src.IsDir() && !src.Required() {
			src.Flags &^= types.SrcLinkDir
			w.pkg.Reportf(nil, nil, types.EventPkgInfo, "%s: linkdir failed; falling back to recursion method", src.TargetRelative)
			return types.ActionOK, false
		}
		return w.escalate(src), true
	case types.ActionReturn:
		return w.fatal(), true
	case types.ActionSkip:
		w.status.Mark(types.StatusNoNeed)
		return types.ActionSkip, true
	default:
		w.status.Mark(types.StatusOK)
		return types.ActionOK, true
	}
}

// descend runs the pre-directory action, the recursion and the
// post-directory action for a directory entry.
func (w *walker) descend(src *types.SourceInfo, tgt *types.TargetInfo) types.Action {
	if w.actions.preDir != nil {
		switch w.actions.preDir(w, src, tgt) {
		case types.ActionError:
			return w.escalate(src)
		case types.ActionReturn:
			return w.fatal()
		}
	}

	switch w.recurse(src) {
	case types.ActionError:
		if src.Required() {
			return w.fatal()
		}
		return types.ActionSkip
	case types.ActionReturn:
		return types.ActionReturn
	}

	if w.actions.postDir != nil {
		switch w.actions.postDir(w, src, tgt) {
		case types.ActionError:
			return w.escalate(src)
		case types.ActionReturn:
			return w.fatal()
		}
	}
	return types.ActionOK
}

// probe describes a target path, through the dry-run overlay when one is
// active.
func (w *walker) probe(path string) (*types.TargetInfo, error) {
	if w.overlay != nil {
		if info, ok, err := w.overlay.probe(w.fs, w.pkg.SourceDir(), path); ok {
			return info, err
		}
	}
	return linkinfo.ProbeTarget(w.fs, w.pkg.SourceDir(), path)
}
