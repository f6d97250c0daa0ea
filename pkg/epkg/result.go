package epkg

import (
	"github.com/arthur-debert/encap/pkg/types"
)

// Result is the outcome of one operation on one package directory.
type Result struct {
	Package string
	Mode    types.Mode
	Outcome types.Outcome
	// Err is set when the package could not be opened
	Err error
}

// Failed reports whether the results of one command argument count
// towards the exit status. Checks fail unless some version checked
// successfully. Installs and removes fail when the requested operation
// failed or, in show-only mode, when it would have changed something.
// Versions removed as a side effect of an install are not counted.
func Failed(mode types.Mode, results []Result, err error, showOnly bool) bool {
	if err != nil {
		return true
	}
	if mode == types.ModeCheck {
		for _, r := range results {
			if r.Err == nil && r.Outcome == types.OutcomeSuccess {
				return false
			}
		}
		return true
	}

	for _, r := range results {
		if r.Mode != mode {
			continue
		}
		if r.Err != nil || r.Outcome == types.OutcomeFailed {
			return true
		}
		if showOnly && r.Outcome != types.OutcomeNoop {
			return true
		}
	}
	return false
}
