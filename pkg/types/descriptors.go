package types

// SourceFlags classify an entry inside a package directory.
type SourceFlags uint8

const (
	SrcRequired SourceFlags = 1 << iota
	SrcLinkDir
	SrcExcluded
	SrcIsDir
	SrcIsLink
)

// Has reports whether all bits of f are set.
func (s SourceFlags) Has(f SourceFlags) bool { return s&f == f }

// SourceInfo describes one entry of a package directory and where it maps to
// in the target tree. It is computed afresh for every visited entry.
type SourceInfo struct {
	Flags SourceFlags

	// Path is the absolute path of the entry inside the package
	Path string
	// PkgdirRelative is Path relative to the package directory
	PkgdirRelative string
	// TargetPath is the absolute path of the entry in the target tree
	TargetPath string
	// TargetRelative is TargetPath relative to the target directory
	TargetRelative string
	// LinkExpecting is the value the target symlink should have
	LinkExpecting string
}

// Required reports whether the entry must be linked for the operation to succeed.
func (s *SourceInfo) Required() bool { return s.Flags.Has(SrcRequired) }

// IsDir reports whether the entry is a directory.
func (s *SourceInfo) IsDir() bool { return s.Flags.Has(SrcIsDir) }

// LinkDir reports whether the entry is linked as a single unit.
func (s *SourceInfo) LinkDir() bool { return s.Flags.Has(SrcLinkDir) }

// TargetFlags describe the state found at a target path.
//
// TgtDestPkgdirExists implies TgtDestEncapSrc, which implies TgtIsLink,
// which implies TgtExists.
type TargetFlags uint8

const (
	TgtExists TargetFlags = 1 << iota
	TgtIsLink
	TgtIsDir
	TgtDestExists
	TgtDestIsDir
	TgtDestEncapSrc
	TgtDestPkgdirExists
)

// Has reports whether all bits of f are set.
func (t TargetFlags) Has(f TargetFlags) bool { return t&f == f }

// TargetInfo describes what currently exists at a target path.
type TargetInfo struct {
	Flags TargetFlags

	// LinkExisting is the resolved absolute destination of the symlink
	LinkExisting string
	// LinkExistingPkg is the package the destination belongs to
	LinkExistingPkg string
	// LinkExistingPkgdirRelative is the destination relative to that package
	LinkExistingPkgdirRelative string
}

// Exists reports whether anything is present at the target path.
func (t *TargetInfo) Exists() bool { return t.Flags.Has(TgtExists) }

// IsEncapLink reports whether the target is a symlink into the source tree.
func (t *TargetInfo) IsEncapLink() bool { return t.Flags.Has(TgtDestEncapSrc) }
