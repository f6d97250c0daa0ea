// Package testutil provides utilities for testing encap components.
//
// Key components:
//   - TestEnvironment: temporary source and target trees with helpers to
//     lay out packages and inspect the resulting links
//   - Recorder: a types.Reporter that keeps every event for assertions
//   - StubHandle: a minimal types.Handle for decision function and
//     prerequisite tests
//
// Every environment lives under t.TempDir() and is removed automatically.
package testutil
