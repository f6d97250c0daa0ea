package encap

import (
	"context"

	"github.com/arthur-debert/encap/pkg/engine"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/prereq"
	"github.com/arthur-debert/encap/pkg/types"
)

const (
	// readmeFormat is the first package format whose README is shown and
	// whose prerequisites are checked before installing
	readmeFormat = "2.0"
	// scriptFormat must be exceeded for lifecycle scripts to run
	scriptFormat = "1.0"
)

// Install links the package into the target tree. decide may be nil. The
// returned error describes system failures that prevented the operation
// from running at all; the outcome is always meaningful.
func (p *Package) Install(ctx context.Context, decide types.DecisionFunc) (types.Outcome, error) {
	logger := logging.GetLogger("encap.install")
	done := logging.LogOperationStart(logger.With().Str("package", p.name).Logger(), "install")
	defer done()

	if p.info.FormatAtLeast(readmeFormat) {
		p.displayReadme()
		if p.opts.Has(types.OptPrereqs) {
			if err := prereq.Check(p, p.info.Prereqs); err != nil {
				logger.Info().Err(err).Str("package", p.name).Msg("prerequisites not met")
				return types.OutcomeFailed, nil
			}
		}
	}

	status, err := p.process(ctx, types.ModeInstall, decide)
	return reduceInstall(status), err
}

// Remove unlinks the package from the target tree.
func (p *Package) Remove(ctx context.Context, decide types.DecisionFunc) (types.Outcome, error) {
	logger := logging.GetLogger("encap.remove")
	done := logging.LogOperationStart(logger.With().Str("package", p.name).Logger(), "remove")
	defer done()

	status, err := p.process(ctx, types.ModeRemove, decide)
	return reduceRemove(status), err
}

// Check verifies that every entry of the package is linked.
func (p *Package) Check(ctx context.Context, decide types.DecisionFunc) (types.Outcome, error) {
	logger := logging.GetLogger("encap.check")
	done := logging.LogOperationStart(logger.With().Str("package", p.name).Logger(), "check")
	defer done()

	status, err := p.process(ctx, types.ModeCheck, decide)
	return reduceCheck(status), err
}

// process runs the pre script, the walk and the post script of mode and
// returns the aggregate walk status.
func (p *Package) process(ctx context.Context, mode types.Mode, decide types.DecisionFunc) (types.WalkStatus, error) {
	logger := logging.GetLogger("encap.process").With().Str("package", p.name).Str("mode", mode.String()).Logger()

	runScripts := p.opts.Any(types.OptRunScripts|types.OptScriptsOnly) && p.info.FormatAbove(scriptFormat)
	if mode != types.ModeCheck && runScripts {
		if !p.runScript(ctx, scriptPre, mode) {
			return types.StatusFatal, nil
		}
	}

	var status types.WalkStatus
	if !p.opts.Has(types.OptScriptsOnly) {
		res, err := engine.Walk(p, mode, decide)
		if err != nil {
			p.Reportf(nil, nil, types.EventPkgError, "cannot check package directory: %v", err)
			return res.Status, err
		}
		status = res.Status
		if res.Unwound {
			logger.Debug().Msg("walk unwound, skipping post script")
			return status, nil
		}
	}

	if p.opts.Has(types.OptScriptsOnly) ||
		(status.Has(types.StatusOK) &&
			mode != types.ModeCheck &&
			p.opts.Has(types.OptRunScripts) &&
			p.info.FormatAbove(scriptFormat)) {
		if !p.runScript(ctx, scriptPost, mode) {
			status.Mark(types.StatusFatal)
		}
	}

	logger.Debug().Uint8("status", uint8(status)).Msg("package processed")
	return status, nil
}

// reduceInstall maps a walk status onto an install outcome. Errors with
// no successes and nothing already present fail the install.
func reduceInstall(s types.WalkStatus) types.Outcome {
	switch {
	case s.Has(types.StatusFatal) || s == types.StatusErr:
		return types.OutcomeFailed
	case s == 0 || (s.Has(types.StatusNoNeed) && !s.Has(types.StatusOK)):
		return types.OutcomeNoop
	case s.Has(types.StatusErr):
		return types.OutcomePartial
	}
	return types.OutcomeSuccess
}

// reduceRemove maps a walk status onto a remove outcome. Entries already
// absent next to removed ones make a partial removal.
func reduceRemove(s types.WalkStatus) types.Outcome {
	switch {
	case s.Has(types.StatusFatal) || s.Has(types.StatusErr):
		return types.OutcomeFailed
	case s == 0 || s == types.StatusNoNeed:
		return types.OutcomeNoop
	case s.Has(types.StatusNoNeed):
		return types.OutcomePartial
	}
	return types.OutcomeSuccess
}

// reduceCheck maps a walk status onto a check outcome; there is no
// partial check.
func reduceCheck(s types.WalkStatus) types.Outcome {
	if s.Has(types.StatusFatal) || !s.Has(types.StatusOK) {
		return types.OutcomeFailed
	}
	return types.OutcomeSuccess
}
