// Package translog appends install and remove transactions to the log
// file kept in the source directory.
package translog

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/types"
)

// FileName is the log file created in the source directory.
const FileName = "epkg.log"

// Log writes transaction entries for one source directory.
type Log struct {
	fs     types.FS
	path   string
	target string
	now    func() time.Time
}

// New returns a log for the given source and target directories.
func New(fsys types.FS, source, target string) *Log {
	return &Log{
		fs:     fsys,
		path:   filepath.Join(source, FileName),
		target: target,
		now:    time.Now,
	}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Record appends an entry for pkg. No-op outcomes are not logged, and
// only install and remove are loggable modes.
func (l *Log) Record(pkg string, mode types.Mode, outcome types.Outcome) error {
	logger := logging.GetLogger("translog")

	if outcome == types.OutcomeNoop {
		return nil
	}
	if mode != types.ModeInstall && mode != types.ModeRemove {
		return errors.Newf(errors.ErrInvalidInput, "cannot write log: unknown mode %s", mode)
	}

	line := FormatEntry(l.now(), l.target, pkg, mode.String(), outcome.String())
	if err := l.fs.AppendFile(l.path, []byte(line), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrLogWrite, "cannot write log %s", l.path)
	}
	logger.Debug().Str("package", pkg).Str("mode", mode.String()).Str("outcome", outcome.String()).Msg("transaction logged")
	return nil
}

// FormatEntry renders one log line, e.g.
//
//	Oct  8 2026 14:05 /usr/local           foo-1.0                  install success
func FormatEntry(t time.Time, target, pkg, mode, status string) string {
	return fmt.Sprintf("%s %2d %d %s %-20s %-24s %-7s %s\n",
		t.Format("Jan"), t.Day(), t.Year(), t.Format("15:04"), target, pkg, mode, status)
}
