// Package types defines the core types and interfaces shared by the encap
// packages: the option set, the per-entry source and target descriptors,
// action results, the aggregate walk status, reporting events and the
// filesystem abstraction.
package types
