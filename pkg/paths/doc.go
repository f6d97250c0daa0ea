// Package paths resolves the Encap source and target directories and the
// locations of encap's own files.
//
// # Source and Target
//
// The target directory is where links are created, the source directory
// holds one subdirectory per package. Either may be given on the command
// line; relative values are taken relative to the working directory. When
// only one is given the other is derived from it:
//
//   - source defaults to <target>/encap
//   - target defaults to <source>/..
//
// When neither is given on the command line, the configured values are
// used, but only when they are absolute paths. This is how ENCAP_SOURCE
// and ENCAP_TARGET from the environment are honored. The built-in defaults
// are /usr/local/encap and /usr/local.
//
// # XDG Base Directory Structure
//
//   - Config: $XDG_CONFIG_HOME/encap/config.toml
//   - Log: $XDG_STATE_HOME/encap/encap.log
//
// # Usage
//
//	dirs, err := paths.Resolve(cwd, flagSource, flagTarget, paths.Dirs{
//	    Source: cfg.Source,
//	    Target: cfg.Target,
//	})
//	if rel, ok := paths.SourceExclude(dirs.Source, dirs.Target); ok {
//	    excludes = append(excludes, rel)
//	}
package paths
