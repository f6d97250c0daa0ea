// Package prereq parses and checks package prerequisites.
//
// Prerequisites are declared in a package's encapinfo file as one of
//
//	prereq pkgspec <range> <pkgspec>
//	prereq directory <path>
//	prereq regfile <path>
//
// where range is one of =, *, >, >=, < or <=.
package prereq

import (
	"os"
	"strings"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/pkgspec"
	"github.com/arthur-debert/encap/pkg/types"
	"github.com/arthur-debert/encap/pkg/vercmp"
)

// Kind is what a prerequisite refers to.
type Kind int

const (
	KindPkgspec Kind = iota + 1
	KindDirectory
	KindRegfile
)

var kindNames = map[Kind]string{
	KindPkgspec:   "pkgspec",
	KindDirectory: "directory",
	KindRegfile:   "regfile",
}

func (k Kind) String() string { return kindNames[k] }

// Range is the set of acceptable version relations for a pkgspec prerequisite.
type Range uint8

const (
	RangeNewer Range = 1 << iota
	RangeExact
	RangeOlder
	RangeAny
)

func (r Range) String() string {
	switch r {
	case RangeOlder:
		return "<"
	case RangeExact:
		return "="
	case RangeNewer:
		return ">"
	case RangeAny:
		return "*"
	case RangeOlder | RangeExact:
		return "<="
	case RangeNewer | RangeExact:
		return ">="
	}
	return ""
}

// accepts reports whether a comparison result of an installed version
// against the declared one is in range.
func (r Range) accepts(cmp int) bool {
	return (r&RangeOlder != 0 && cmp < 0) ||
		(r&RangeExact != 0 && cmp == 0) ||
		(r&RangeNewer != 0 && cmp > 0)
}

// Prereq is a single prerequisite record.
type Prereq struct {
	Kind  Kind
	Range Range
	// Payload is a pkgspec for KindPkgspec and a path otherwise
	Payload string
}

// String renders the prerequisite in encapinfo syntax, without the
// leading "prereq" keyword.
func (p Prereq) String() string {
	if p.Kind == KindPkgspec {
		return p.Kind.String() + " " + p.Range.String() + " " + p.Payload
	}
	return p.Kind.String() + " " + p.Payload
}

// Parse parses the arguments of a prereq directive.
func Parse(line string) (Prereq, error) {
	kindName, rest := splitToken(line)
	if kindName == "" {
		return Prereq{}, errors.New(errors.ErrPrereqParse, "empty prerequisite")
	}

	var p Prereq
	for k, name := range kindNames {
		if name == kindName {
			p.Kind = k
		}
	}
	if p.Kind == 0 {
		return Prereq{}, errors.Newf(errors.ErrPrereqParse, "unknown prerequisite type %q", kindName)
	}

	if p.Kind != KindPkgspec {
		if rest == "" {
			return Prereq{}, errors.Newf(errors.ErrPrereqParse, "missing path for %s prerequisite", kindName)
		}
		p.Payload = rest
		return p, nil
	}

	op, spec := splitToken(rest)
	if op == "" || spec == "" {
		return Prereq{}, errors.Newf(errors.ErrPrereqParse, "malformed pkgspec prerequisite %q", line)
	}
	switch op[0] {
	case '=':
		p.Range = RangeExact
	case '*':
		p.Range = RangeAny
	case '>':
		p.Range = RangeNewer
	case '<':
		p.Range = RangeOlder
	default:
		return Prereq{}, errors.Newf(errors.ErrPrereqParse, "unknown version range %q", op)
	}
	if len(op) > 1 && op[1] == '=' && p.Range&(RangeNewer|RangeOlder) != 0 {
		p.Range |= RangeExact
	}
	p.Payload = spec
	return p, nil
}

// splitToken returns the first whitespace separated token of s and the
// remainder with leading whitespace removed.
func splitToken(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeft(s[idx:], " \t")
}

// Check verifies every prerequisite in order, reporting through h, and
// stops at the first one that is not met. It returns an ErrPrereqUnmet
// error for an unmet prerequisite and ErrFileAccess for system errors.
func Check(h types.Handle, prereqs []Prereq) error {
	log := logging.GetLogger("prereq")
	for _, p := range prereqs {
		var err error
		switch p.Kind {
		case KindPkgspec:
			err = checkPkgspec(h, p)
		case KindDirectory, KindRegfile:
			err = checkPath(h, p)
		default:
			h.Reportf(nil, nil, types.EventPkgFail, "internal error: unknown prerequisite type")
			err = errors.New(errors.ErrInternal, "unknown prerequisite type")
		}
		if err != nil {
			log.Debug().Str("package", h.Name()).Str("prereq", p.String()).Err(err).Msg("prerequisite check stopped")
			return err
		}
	}
	return nil
}

func checkPath(h types.Handle, p Prereq) error {
	info, err := h.FS().Stat(p.Payload)
	if err != nil {
		if !os.IsNotExist(err) {
			h.Reportf(nil, nil, types.EventPkgError, "prerequisite error: stat(%q): %v", p.Payload, err)
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", p.Payload)
		}
		return unmet(h, p)
	}

	if (p.Kind == KindDirectory) != info.IsDir() {
		return unmet(h, p)
	}
	h.Reportf(nil, nil, types.EventPkgInfo, "prerequisite met: %q", p.String())
	return nil
}

func checkPkgspec(h types.Handle, p Prereq) error {
	name, version := p.Payload, ""
	if p.Range != RangeAny {
		spec, err := pkgspec.Parse(p.Payload)
		if err != nil {
			return err
		}
		name, version = spec.Name, spec.Version
	}

	_, matched, err := pkgspec.Scan(h.FS(), h.SourceDir(), name, func(installed string) bool {
		if p.Range == RangeAny {
			return false
		}
		return !p.Range.accepts(vercmp.Compare(installed, version))
	})
	if err != nil {
		h.Reportf(nil, nil, types.EventPkgError, "error while verifying prerequisite: %q", p.String())
		return err
	}
	if !matched {
		return unmet(h, p)
	}

	h.Reportf(nil, nil, types.EventPkgInfo, "verified prerequisite: %q", p.String())
	return nil
}

func unmet(h types.Handle, p Prereq) error {
	h.Reportf(nil, nil, types.EventPkgFail, "prerequisite not met: %q", p.String())
	return errors.Newf(errors.ErrPrereqUnmet, "prerequisite not met: %s", p.String())
}
