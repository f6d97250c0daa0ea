package types

import "strings"

// Options is the bit set of behaviours requested for an operation.
type Options uint32

const (
	// OptForce replaces conflicting target entries
	OptForce Options = 1 << iota
	// OptShowOnly reports every action without touching the filesystem
	OptShowOnly
	// OptAbsLinks creates absolute instead of relative links
	OptAbsLinks
	// OptPrereqs checks package prerequisites before installing
	OptPrereqs
	// OptRunScripts runs pre/post lifecycle scripts
	OptRunScripts
	// OptExcludes honors the package exclude list
	OptExcludes
	// OptScriptsOnly runs lifecycle scripts without linking
	OptScriptsOnly
	// OptNukeTargetDirs removes target directories left empty
	OptNukeTargetDirs
	// OptPkgdirLinks links plain files found at the package root
	OptPkgdirLinks
	// OptLinkDirs honors linkdir directives
	OptLinkDirs
	// OptLinkNames honors linkname directives
	OptLinkNames
	// OptTargetExcludes honors encap.exclude files found in the target tree
	OptTargetExcludes
)

// DefaultOptions is the option set used when nothing else is requested.
const DefaultOptions = OptPrereqs | OptRunScripts | OptExcludes |
	OptNukeTargetDirs | OptLinkDirs | OptLinkNames

var optionNames = []struct {
	opt  Options
	name string
}{
	{OptForce, "force"},
	{OptShowOnly, "show-only"},
	{OptAbsLinks, "abs-links"},
	{OptPrereqs, "prereqs"},
	{OptRunScripts, "run-scripts"},
	{OptExcludes, "excludes"},
	{OptScriptsOnly, "scripts-only"},
	{OptNukeTargetDirs, "nuke-target-dirs"},
	{OptPkgdirLinks, "pkgdir-links"},
	{OptLinkDirs, "linkdirs"},
	{OptLinkNames, "linknames"},
	{OptTargetExcludes, "target-excludes"},
}

// Has reports whether every bit of opt is set.
func (o Options) Has(opt Options) bool {
	return o&opt == opt
}

// Any reports whether at least one bit of opt is set.
func (o Options) Any(opt Options) bool {
	return o&opt != 0
}

// Set returns o with opt added.
func (o Options) Set(opt Options) Options {
	return o | opt
}

// Clear returns o with opt removed.
func (o Options) Clear(opt Options) Options {
	return o &^ opt
}

// With sets or clears opt depending on on.
func (o Options) With(opt Options, on bool) Options {
	if on {
		return o.Set(opt)
	}
	return o.Clear(opt)
}

func (o Options) String() string {
	var names []string
	for _, n := range optionNames {
		if o.Has(n.opt) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
