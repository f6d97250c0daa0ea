package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/encap/pkg/errors"
	"github.com/arthur-debert/encap/pkg/logging"
)

// Environment variable names
const (
	// EnvSource names the source directory when none is given on the
	// command line
	EnvSource = "ENCAP_SOURCE"

	// EnvTarget names the target directory when none is given on the
	// command line
	EnvTarget = "ENCAP_TARGET"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// DefaultSource is the source directory used when nothing else is
	// configured
	DefaultSource = "/usr/local/encap"

	// DefaultTarget is the target directory used when nothing else is
	// configured
	DefaultTarget = "/usr/local"

	// SourceDirName is the name of the source directory below a target
	SourceDirName = "encap"

	// AppDirName is the directory name for encap's own files
	AppDirName = "encap"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"
)

// Dirs is a pair of source and target directories.
type Dirs struct {
	Source string
	Target string
}

// Resolve determines the source and target directories. optSource and
// optTarget come from the command line and may be relative to cwd.
// configured holds values from the configuration; they are considered
// only when no directory was given on the command line, and only when
// absolute.
func Resolve(cwd, optSource, optTarget string, configured Dirs) (Dirs, error) {
	logger := logging.GetLogger("paths")

	if optSource == "" && optTarget == "" {
		if filepath.IsAbs(configured.Source) {
			optSource = configured.Source
		}
		if filepath.IsAbs(configured.Target) {
			optTarget = configured.Target
		}
	}

	dirs := Dirs{Source: DefaultSource, Target: DefaultTarget}

	if optSource != "" {
		abs, err := absolute(cwd, optSource)
		if err != nil {
			return Dirs{}, err
		}
		dirs.Source = abs
	}
	if optTarget != "" {
		abs, err := absolute(cwd, optTarget)
		if err != nil {
			return Dirs{}, err
		}
		dirs.Target = abs
	}

	switch {
	case optSource != "" && optTarget == "":
		dirs.Target = filepath.Dir(dirs.Source)
	case optTarget != "" && optSource == "":
		dirs.Source = filepath.Join(dirs.Target, SourceDirName)
	}

	logger.Debug().
		Str("source", dirs.Source).
		Str("target", dirs.Target).
		Msg("resolved directories")
	return dirs, nil
}

// absolute makes path absolute relative to cwd and cleans it.
func absolute(cwd, path string) (string, error) {
	path = ExpandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if !filepath.IsAbs(cwd) {
		return "", errors.Newf(errors.ErrInvalidInput, "cannot resolve %q: working directory %q is not absolute", path, cwd)
	}
	return filepath.Join(cwd, path), nil
}

// SourceExclude returns the path of source relative to target when the
// source directory lies inside the target directory. Such a path belongs
// on the global exclude list so the source tree is never linked over.
func SourceExclude(source, target string) (string, bool) {
	rel, err := filepath.Rel(target, source)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ConfigFile returns the location of the user configuration file.
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to HOME env var
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is not expanded
	return path
}
