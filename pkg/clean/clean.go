// Package clean removes stale Encap links from a target tree. A link is
// stale when it points into the source directory at something that no
// longer exists. Directories left empty are removed as well when
// requested.
package clean

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/encap/pkg/encapinfo"
	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/filesystem"
	"github.com/arthur-debert/encap/pkg/linkinfo"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/types"
)

// Params configures a clean run.
type Params struct {
	Source   string
	Target   string
	Options  types.Options
	Reporter types.Reporter
	// Decision is consulted for every target entry; it sees a handle
	// with an empty package name
	Decision types.DecisionFunc
	FS       types.FS
}

// Stats counts what a clean run did.
type Stats struct {
	Removed  int
	Valid    int
	Foreign  int
	Excluded int
}

type cleaner struct {
	params   Params
	excludes map[string]struct{}
	stats    Stats
	log      zerolog.Logger
}

// Clean walks params.Target and removes stale Encap links. It stops at
// the first probe or unlink failure and returns an error; decision
// function failures are returned once the walk is done.
func Clean(ctx context.Context, params Params) (Stats, error) {
	logger := logging.GetLogger("clean")
	done := logging.LogOperationStart(logger, "clean")
	defer done()

	if params.FS == nil {
		params.FS = filesystem.NewOS()
	}
	if params.Reporter == nil {
		params.Reporter = types.Discard
	}

	c := &cleaner{
		params:   params,
		excludes: make(map[string]struct{}),
		log:      logger,
	}

	root := &types.SourceInfo{TargetPath: filepath.Clean(params.Target)}
	rootTgt, err := linkinfo.ProbeTarget(params.FS, params.Source, root.TargetPath)
	if err != nil {
		c.Reportf(nil, nil, types.EventClnError, "cannot check target %s: %v", root.TargetPath, err)
		return c.stats, err
	}
	if !rootTgt.Flags.Has(types.TgtIsDir) {
		err := errors.Newf(errors.ErrNotFound, "target directory %s does not exist", root.TargetPath)
		c.Reportf(nil, nil, types.EventClnError, "%v", err)
		return c.stats, err
	}

	err = c.clean(ctx, root, rootTgt)
	logger.Info().
		Int("removed", c.stats.Removed).
		Int("valid", c.stats.Valid).
		Int("foreign", c.stats.Foreign).
		Int("excluded", c.stats.Excluded).
		Msg("target cleaned")
	return c.stats, err
}

// types.Handle for decision functions
func (c *cleaner) Name() string           { return "" }
func (c *cleaner) SourceDir() string      { return c.params.Source }
func (c *cleaner) TargetDir() string      { return c.params.Target }
func (c *cleaner) Options() types.Options { return c.params.Options }
func (c *cleaner) FS() types.FS           { return c.params.FS }

func (c *cleaner) Reportf(src *types.SourceInfo, tgt *types.TargetInfo, kind types.EventKind, format string, args ...interface{}) {
	ev := types.Event{Kind: kind, Source: src, Target: tgt, Message: fmt.Sprintf(format, args...)}
	if n := len(args); n > 0 {
		if err, ok := args[n-1].(error); ok {
			ev.Err = err
		}
	}
	c.params.Reporter.Report(ev)
}

// clean processes the directory dir. Its own removal is attempted once
// every entry is handled.
func (c *cleaner) clean(ctx context.Context, dir *types.SourceInfo, dirTgt *types.TargetInfo) error {
	fsys := c.params.FS
	opts := c.params.Options

	if opts.Has(types.OptTargetExcludes) {
		entries, found, err := encapinfo.ReadExcludeFile(fsys, dir.TargetPath, dir.TargetRelative)
		if err != nil {
			c.Reportf(dir, dirTgt, types.EventClnError, "%v", err)
		} else if found {
			for _, entry := range entries {
				c.excludes[entry] = struct{}{}
			}
			c.Reportf(dir, dirTgt, types.EventClnInfo, "read %s", filepath.Join(dir.TargetPath, encapinfo.ExcludeFileName))
		}
	}

	entries, err := fsys.ReadDir(dir.TargetPath)
	if err != nil {
		c.Reportf(dir, dirTgt, types.EventClnError, "opendir: %v", err)
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", dir.TargetPath)
	}

	var decisionErr error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		src := &types.SourceInfo{
			TargetPath:     filepath.Join(dir.TargetPath, entry.Name()),
			TargetRelative: joinRel(dir.TargetRelative, entry.Name()),
		}
		tgt, err := linkinfo.ProbeTarget(fsys, c.params.Source, src.TargetPath)
		if err != nil {
			c.Reportf(src, nil, types.EventClnError, "cannot check target: %v", err)
			return err
		}

		if _, ok := c.excludes[src.TargetRelative]; ok && opts.Has(types.OptTargetExcludes) {
			c.stats.Excluded++
			c.Reportf(src, tgt, types.EventClnInfo, "excluding")
			continue
		}

		if c.params.Decision != nil {
			switch c.params.Decision(c, src, tgt) {
			case types.ActionSkip:
				c.stats.Excluded++
				continue
			case types.ActionError, types.ActionReturn:
				decisionErr = errors.Newf(errors.ErrInternal, "decision failed for %s", src.TargetRelative)
			}
		}

		switch {
		case tgt.Flags.Has(types.TgtIsLink):
			if err := c.cleanLink(src, tgt); err != nil {
				return err
			}
		case tgt.Flags.Has(types.TgtIsDir):
			if err := c.clean(ctx, src, tgt); err != nil {
				return err
			}
		}
	}
	if decisionErr != nil {
		return decisionErr
	}

	if dir.TargetRelative == "" || opts.Has(types.OptShowOnly) || !opts.Has(types.OptNukeTargetDirs) {
		return nil
	}
	if err := fsys.Remove(dir.TargetPath); err != nil {
		if tolerableRmdirError(err) {
			return nil
		}
		c.Reportf(dir, dirTgt, types.EventClnError, "rmdir: %v", err)
		return errors.Wrapf(err, errors.ErrRemove, "cannot remove directory %s", dir.TargetPath)
	}
	c.Reportf(dir, dirTgt, types.EventClnOK, "")
	return nil
}

// cleanLink removes src when it is a stale Encap link.
func (c *cleaner) cleanLink(src *types.SourceInfo, tgt *types.TargetInfo) error {
	if !tgt.IsEncapLink() {
		c.stats.Foreign++
		c.Reportf(src, tgt, types.EventClnFail, "not an Encap link")
		return nil
	}
	if tgt.Flags.Has(types.TgtDestExists) {
		c.stats.Valid++
		c.Reportf(src, tgt, types.EventClnNoop, "")
		return nil
	}

	if !c.params.Options.Has(types.OptShowOnly) {
		if err := c.params.FS.Remove(src.TargetPath); err != nil {
			c.Reportf(src, tgt, types.EventClnError, "unlink: %v", err)
			return errors.Wrapf(err, errors.ErrRemove, "cannot remove stale link %s", src.TargetPath)
		}
	}
	c.stats.Removed++
	c.log.Debug().Str("link", src.TargetRelative).Str("dest", tgt.LinkExisting).Msg("stale link removed")
	c.Reportf(src, tgt, types.EventClnOK, "")
	return nil
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func tolerableRmdirError(err error) bool {
	for _, errno := range []syscall.Errno{syscall.EEXIST, syscall.EBUSY, syscall.ENOTEMPTY, syscall.ENOENT} {
		if stderrors.Is(err, errno) {
			return true
		}
	}
	return false
}
