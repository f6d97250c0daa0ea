package encapinfo

import (
	"bytes"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/prereq"
	"github.com/arthur-debert/encap/pkg/types"
)

// TOMLFileName is the TOML metadata variant, used when FileName is absent.
const TOMLFileName = "encapinfo.toml"

// ScriptNames lists the lifecycle scripts a package may carry.
var ScriptNames = []string{"preinstall", "postinstall", "preremove", "postremove"}

// Load reads the metadata of the package in pkgDir. Packages without any
// metadata file get format 1.1 when they carry a lifecycle script and
// 1.0 otherwise.
func Load(fsys types.FS, pkgDir string) (*Info, error) {
	log := logging.GetLogger("encapinfo")

	data, err := fsys.ReadFile(filepath.Join(pkgDir, FileName))
	if err == nil {
		log.Trace().Str("pkg", pkgDir).Msg("reading encapinfo")
		return Parse(bytes.NewReader(data))
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", FileName)
	}

	data, err = fsys.ReadFile(filepath.Join(pkgDir, TOMLFileName))
	if err == nil {
		log.Trace().Str("pkg", pkgDir).Msg("reading encapinfo.toml")
		return ParseTOML(data)
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", TOMLFileName)
	}

	for _, script := range ScriptNames {
		if _, err := fsys.Stat(filepath.Join(pkgDir, script)); err == nil {
			return New("1.1"), nil
		}
	}
	return New("1.0"), nil
}

type tomlInfo struct {
	Encap       string            `toml:"encap"`
	Platform    string            `toml:"platform"`
	Description string            `toml:"description"`
	Date        string            `toml:"date"`
	Contact     string            `toml:"contact"`
	Prereqs     []string          `toml:"prereq"`
	LinkNames   map[string]string `toml:"linkname"`
	LinkDirs    []string          `toml:"linkdir"`
	Requires    []string          `toml:"require"`
	Excludes    []string          `toml:"exclude"`
}

// ParseTOML reads the TOML metadata variant:
//
//	encap = "2.1"
//	description = "my tools"
//	prereq = ["pkgspec >= libfoo-1.2"]
//	linkdir = ["lib/perl5"]
//
//	[linkname]
//	"bin/tool" = "tool-2"
func ParseTOML(data []byte) (*Info, error) {
	var raw tomlInfo
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrInfoParse, "parse error in encapinfo.toml")
	}
	if raw.Encap == "" {
		return nil, errors.New(errors.ErrInfoParse, `encapinfo.toml: missing "encap" format version`)
	}

	info := New(raw.Encap)
	if info.FormatAbove(MaxFormat) {
		return nil, errors.Newf(errors.ErrPackageFormat,
			"unsupported Encap package format version %q - you may need to upgrade encap", info.Format).
			WithDetail("format", info.Format)
	}

	info.Platform = raw.Platform
	info.Description = raw.Description
	info.Date = raw.Date
	info.Contact = raw.Contact
	info.LinkDirs = raw.LinkDirs
	info.Requires = raw.Requires
	info.Excludes = raw.Excludes
	for path, name := range raw.LinkNames {
		info.LinkNames[filepath.Clean(path)] = name
	}
	for _, line := range raw.Prereqs {
		p, err := prereq.Parse(line)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInfoParse, "parse error in encapinfo.toml: prereq %q", line)
		}
		info.Prereqs = append(info.Prereqs, p)
	}
	return info, nil
}
