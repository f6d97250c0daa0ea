// Package filesystem provides the implementations of types.FS used by
// encap: the host filesystem and an afero-backed one.
package filesystem
