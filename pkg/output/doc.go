// Package output renders package operation events for the terminal.
//
// A Printer is a types.Reporter. Each event becomes one line in the
// classic epkg layout, prefixed by a marker that says what happened to a
// target path:
//
//	    > installing package foo-1.0
//	     + bin/foo
//	     + share/doc/foo/
//	    !  bin/bar: conflicting link to package bar-1.0
//	     * lib/libfoo.so: already installed
//	     - bin/foo
//	    ! preinstall script returned 1
//
// Verbosity decides which events are shown. At 0 only problems and
// replaced links are printed. Level 1 adds progress and level 2 every
// created or removed link. Level 3 shows absolute paths with link values
// and level 4 adds entries that needed no change.
//
// When colors are enabled lines are styled by event class using the
// registry from pkg/output/styles.
package output
