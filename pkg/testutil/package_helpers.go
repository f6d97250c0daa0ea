package testutil

import (
	"os"
	"path/filepath"
)

// PackageConfig describes the contents of a test package directory.
type PackageConfig struct {
	Files       map[string]string // package relative path -> content
	Dirs        []string          // empty directories
	Executables map[string]string // package relative path -> script body
	Links       map[string]string // package relative path -> symlink value
	// Info is written verbatim to the encapinfo file when non-empty
	Info string
}

// SetupPackage creates a package directory in the source tree and
// returns its absolute path.
func (env *TestEnvironment) SetupPackage(name string, cfg PackageConfig) string {
	env.t.Helper()

	pkgDir := env.SourcePath(name)
	env.Mkdir(pkgDir)

	for rel, content := range cfg.Files {
		env.WriteFile(filepath.Join(pkgDir, rel), content)
	}
	for _, rel := range cfg.Dirs {
		env.Mkdir(filepath.Join(pkgDir, rel))
	}
	for rel, body := range cfg.Executables {
		path := filepath.Join(pkgDir, rel)
		env.WriteFile(path, body)
		if err := os.Chmod(path, 0755); err != nil {
			env.t.Fatalf("chmod %s: %v", path, err)
		}
	}
	for rel, dest := range cfg.Links {
		env.Symlink(dest, filepath.Join(pkgDir, rel))
	}
	if cfg.Info != "" {
		env.WriteFile(filepath.Join(pkgDir, "encapinfo"), cfg.Info)
	}
	return pkgDir
}

// SimplePackage creates a package with bin/<name> and share/doc/<name>/README.
func (env *TestEnvironment) SimplePackage(pkg, binary string) string {
	env.t.Helper()
	return env.SetupPackage(pkg, PackageConfig{
		Files: map[string]string{
			filepath.Join("share", "doc", binary, "README"): "readme for " + binary + "\n",
		},
		Executables: map[string]string{
			filepath.Join("bin", binary): "#!/bin/sh\necho " + binary + "\n",
		},
	})
}
