// Package encapinfo reads and writes package metadata.
//
// A package declares its metadata in an "encapinfo" file at the top of
// the package directory:
//
//	encap 2.1
//	platform ix86-linux
//	description my tools
//	prereq pkgspec >= libfoo-1.2
//	linkname bin/tool tool-2
//	linkdir lib/perl5
//	require bin/tool
//	exclude share/info/dir
//
// Packages without an encapinfo file may carry an encapinfo.toml with the
// same fields, and packages with neither get a format inferred from their
// lifecycle scripts.
package encapinfo

import (
	"bufio"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/prereq"
	"github.com/arthur-debert/encap/pkg/vercmp"
)

const (
	// FileName is the metadata file looked up in every package directory
	FileName = "encapinfo"
	// MaxFormat is the newest package format understood
	MaxFormat = "2.1"
)

// Info is the metadata of one package.
type Info struct {
	Format      string
	Platform    string
	Description string
	Date        string
	Contact     string

	Prereqs []prereq.Prereq
	// LinkNames maps package relative paths to the name their target
	// link is given instead of the entry's own name
	LinkNames map[string]string
	LinkDirs  []string
	Requires  []string
	Excludes  []string
}

// New returns empty metadata of the given format.
func New(format string) *Info {
	return &Info{Format: format, LinkNames: make(map[string]string)}
}

// FormatAbove reports whether the package format is newer than version.
func (i *Info) FormatAbove(version string) bool {
	return vercmp.Compare(i.Format, version) > 0
}

// FormatAtLeast reports whether the package format is version or newer.
func (i *Info) FormatAtLeast(version string) bool {
	return vercmp.Compare(i.Format, version) >= 0
}

// LinkName returns the replacement name for a package relative path.
func (i *Info) LinkName(pkgRel string) (string, bool) {
	name, ok := i.LinkNames[pkgRel]
	return name, ok
}

// AddExcludes extends the exclude list, for legacy packages whose
// encap.exclude files are discovered during a walk.
func (i *Info) AddExcludes(patterns ...string) {
	i.Excludes = append(i.Excludes, patterns...)
}

// sortedLinkNames returns the linkname sources in a stable order.
func (i *Info) sortedLinkNames() []string {
	keys := make([]string, 0, len(i.LinkNames))
	for k := range i.LinkNames {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Parse reads the text encapinfo format.
func Parse(r io.Reader) (*Info, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "error reading encapinfo file")
		}
		return nil, errors.New(errors.ErrInfoParse, `parse error in encapinfo file: ""`)
	}

	header := scanner.Text()
	fields := strings.Fields(header)
	if len(fields) < 2 || fields[0] != "encap" {
		return nil, errors.Newf(errors.ErrInfoParse, "parse error in encapinfo file: %q", header)
	}

	info := New(fields[1])
	if info.FormatAbove(MaxFormat) {
		return nil, errors.Newf(errors.ErrPackageFormat,
			"unsupported Encap package format version %q - you may need to upgrade encap", info.Format).
			WithDetail("format", info.Format)
	}

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if strings.TrimSpace(line) == "" {
			continue
		}
		if reason := info.parseDirective(line); reason != "" {
			return nil, errors.Newf(errors.ErrInfoParse, "%s: %s", reason, line).
				WithDetail("line", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "error reading encapinfo file")
	}
	return info, nil
}

// stripComment cuts line at the first '#' not preceded by a backslash and
// turns the escaped "\#" into "#".
func stripComment(line string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) && line[i+1] == '#' {
			b.WriteByte('#')
			i++
			continue
		}
		if c == '#' {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

// parseDirective applies one directive line and returns the reason it was
// rejected, or "".
func (i *Info) parseDirective(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	tok, arg := trimmed, ""
	if idx := strings.IndexAny(trimmed, " \t"); idx >= 0 {
		tok, arg = trimmed[:idx], strings.TrimLeft(trimmed[idx:], " \t")
	}
	if arg == "" {
		return "missing argument"
	}

	unique := func(field *string) string {
		if *field != "" {
			return `unique field "` + tok + `" specified twice`
		}
		*field = arg
		return ""
	}

	switch tok {
	case "platform":
		return unique(&i.Platform)
	case "description":
		return unique(&i.Description)
	case "date":
		return unique(&i.Date)
	case "contact":
		return unique(&i.Contact)
	case "prereq":
		p, err := prereq.Parse(arg)
		if err != nil {
			return "parse error in encapinfo file"
		}
		i.Prereqs = append(i.Prereqs, p)
	case "linkname":
		path, newName, ok := strings.Cut(arg, " ")
		newName = strings.TrimLeft(newName, " \t")
		if !ok || path == "" || newName == "" {
			return "parse error in encapinfo file"
		}
		i.LinkNames[filepath.Clean(path)] = newName
	case "linkdir":
		i.LinkDirs = append(i.LinkDirs, arg)
	case "require":
		i.Requires = append(i.Requires, arg)
	case "exclude":
		i.Excludes = append(i.Excludes, arg)
	default:
		return "unknown encapinfo directive"
	}
	return ""
}
