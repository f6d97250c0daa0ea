package cli

import (
	stderrors "errors"
	"fmt"
)

// maxExitStatus caps the number of failed packages reported through the
// exit status.
const maxExitStatus = 125

// ExitError carries the exit status of a command whose packages failed.
// Its message has already been printed.
type ExitError struct {
	Failed int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf(MsgErrFailed, e.Failed)
}

// exitStatus returns nil when nothing failed.
func exitStatus(failed int) error {
	if failed == 0 {
		return nil
	}
	return &ExitError{Failed: failed}
}

// ExitCode maps the error returned by the root command onto a process
// exit status: the number of failed packages, or 1 for any other error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		if exitErr.Failed > maxExitStatus {
			return maxExitStatus
		}
		return exitErr.Failed
	}
	return 1
}
