package testutil

import (
	"fmt"
	"strings"
	"sync"

	"github.com/arthur-debert/encap/pkg/types"
)

// Recorder is a types.Reporter that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []types.Event
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report implements types.Reporter.
func (r *Recorder) Report(ev types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind types.EventKind) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// CountClass returns how many events of the given class were recorded.
func (r *Recorder) CountClass(class types.EventClass) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Kind.Class() == class {
			n++
		}
	}
	return n
}

// Messages returns the messages of every event of kind.
func (r *Recorder) Messages(kind types.EventKind) []string {
	var msgs []string
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			msgs = append(msgs, ev.Message)
		}
	}
	return msgs
}

// Has reports whether an event of kind with a message containing substr
// was recorded.
func (r *Recorder) Has(kind types.EventKind, substr string) bool {
	for _, msg := range r.Messages(kind) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// TargetsOf returns the target relative paths of every event of kind.
func (r *Recorder) TargetsOf(kind types.EventKind) []string {
	var paths []string
	for _, ev := range r.Events() {
		if ev.Kind == kind && ev.Source != nil {
			paths = append(paths, ev.Source.TargetRelative)
		}
	}
	return paths
}

// String renders the events one per line, for failure messages.
func (r *Recorder) String() string {
	var b strings.Builder
	for _, ev := range r.Events() {
		fmt.Fprintf(&b, "%s %s", ev.Kind, ev.Message)
		if ev.Source != nil {
			fmt.Fprintf(&b, " [%s]", ev.Source.TargetRelative)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// StubHandle is a fixed types.Handle.
type StubHandle struct {
	PkgName    string
	Source     string
	Target     string
	Opts       types.Options
	Filesystem types.FS
	Reporter   types.Reporter
}

var _ types.Handle = (*StubHandle)(nil)

// NewStubHandle builds a handle for pkg inside env, reporting to rec.
func NewStubHandle(env *TestEnvironment, pkg string, opts types.Options, rec types.Reporter) *StubHandle {
	return &StubHandle{
		PkgName:    pkg,
		Source:     env.Source,
		Target:     env.Target,
		Opts:       opts,
		Filesystem: env.FS,
		Reporter:   rec,
	}
}

func (h *StubHandle) Name() string           { return h.PkgName }
func (h *StubHandle) SourceDir() string      { return h.Source }
func (h *StubHandle) TargetDir() string      { return h.Target }
func (h *StubHandle) Options() types.Options { return h.Opts }
func (h *StubHandle) FS() types.FS           { return h.Filesystem }

func (h *StubHandle) Reportf(src *types.SourceInfo, tgt *types.TargetInfo, kind types.EventKind, format string, args ...interface{}) {
	if h.Reporter == nil {
		return
	}
	h.Reporter.Report(types.Event{
		Package: h.PkgName,
		Kind:    kind,
		Source:  src,
		Target:  tgt,
		Message: fmt.Sprintf(format, args...),
	})
}
