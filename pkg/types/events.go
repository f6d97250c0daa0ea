package types

// EventKind classifies a reported notification.
type EventKind int

const (
	EventInstOK EventKind = iota + 1
	EventInstRepl
	EventInstFail
	EventInstError
	EventInstNoop
	EventRemOK
	EventRemFail
	EventRemError
	EventRemNoop
	EventChkNoop
	EventChkFail
	EventChkError
	EventPkgInfo
	EventPkgFail
	EventPkgError
	EventPkgRaw
	EventClnOK
	EventClnInfo
	EventClnFail
	EventClnError
	EventClnNoop
)

// EventClass groups event kinds across modes.
type EventClass string

const (
	ClassOK    EventClass = "ok"
	ClassNoop  EventClass = "noop"
	ClassFail  EventClass = "fail"
	ClassError EventClass = "error"
	ClassInfo  EventClass = "info"
	ClassRaw   EventClass = "raw"
)

var eventKinds = map[EventKind]struct {
	name  string
	class EventClass
}{
	EventInstOK:    {"INST_OK", ClassOK},
	EventInstRepl:  {"INST_REPL", ClassOK},
	EventInstFail:  {"INST_FAIL", ClassFail},
	EventInstError: {"INST_ERROR", ClassError},
	EventInstNoop:  {"INST_NOOP", ClassNoop},
	EventRemOK:     {"REM_OK", ClassOK},
	EventRemFail:   {"REM_FAIL", ClassFail},
	EventRemError:  {"REM_ERROR", ClassError},
	EventRemNoop:   {"REM_NOOP", ClassNoop},
	EventChkNoop:   {"CHK_NOOP", ClassNoop},
	EventChkFail:   {"CHK_FAIL", ClassFail},
	EventChkError:  {"CHK_ERROR", ClassError},
	EventPkgInfo:   {"PKG_INFO", ClassInfo},
	EventPkgFail:   {"PKG_FAIL", ClassFail},
	EventPkgError:  {"PKG_ERROR", ClassError},
	EventPkgRaw:    {"PKG_RAW", ClassRaw},
	EventClnOK:     {"CLN_OK", ClassOK},
	EventClnInfo:   {"CLN_INFO", ClassInfo},
	EventClnFail:   {"CLN_FAIL", ClassFail},
	EventClnError:  {"CLN_ERROR", ClassError},
	EventClnNoop:   {"CLN_NOOP", ClassNoop},
}

func (k EventKind) String() string {
	if e, ok := eventKinds[k]; ok {
		return e.name
	}
	return "UNKNOWN"
}

// Class returns the mode-independent class of the kind.
func (k EventKind) Class() EventClass {
	if e, ok := eventKinds[k]; ok {
		return e.class
	}
	return ClassInfo
}

// Event is a single notification emitted during an operation. Source and
// Target are nil for package-level events.
type Event struct {
	Package string
	Kind    EventKind
	Source  *SourceInfo
	Target  *TargetInfo
	Message string
	Err     error
}

// Reporter receives events. Implementations must not fail.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

// Report calls f(ev).
func (f ReporterFunc) Report(ev Event) { f(ev) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})
