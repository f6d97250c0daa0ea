// Package engine implements the reconciliation walk: a depth-first
// traversal of a package directory that pairs each entry with its target
// path, consults a decision function and applies the install, remove or
// check action for the entry.
//
// Every action returns a types.Action. ActionError is recoverable unless
// the entry is required, and ActionReturn unwinds the whole walk. The
// outcome of every entry is accumulated into a types.WalkStatus that is
// only read once the walk has finished.
//
// With types.OptShowOnly set, no filesystem mutation happens. The walk
// keeps an overlay of the changes it would have made so that later probes
// see the same state a mutating run would, and reports the same events.
package engine
