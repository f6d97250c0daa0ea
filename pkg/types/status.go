package types

// Action is the result of a mode action or a decision function.
type Action int

const (
	// ActionOK means the entry was handled; the walk continues
	ActionOK Action = iota
	// ActionSkip means nothing needed doing for the entry
	ActionSkip
	// ActionError is a non-fatal failure unless the entry is required
	ActionError
	// ActionReturn unwinds the whole walk
	ActionReturn
)

func (a Action) String() string {
	switch a {
	case ActionOK:
		return "ok"
	case ActionSkip:
		return "skip"
	case ActionError:
		return "error"
	case ActionReturn:
		return "return"
	}
	return "unknown"
}

// WalkStatus accumulates what happened across an entire walk.
type WalkStatus uint8

const (
	// StatusNoNeed is set when at least one entry needed no action
	StatusNoNeed WalkStatus = 1 << iota
	// StatusOK is set when at least one entry succeeded
	StatusOK
	// StatusErr is set when at least one non-fatal error occurred
	StatusErr
	// StatusFatal is set when a required entry failed
	StatusFatal
)

// Has reports whether all bits of s are set.
func (w WalkStatus) Has(s WalkStatus) bool { return w&s == s }

// Mark adds s to the status.
func (w *WalkStatus) Mark(s WalkStatus) { *w |= s }

// Outcome is the closed set of results for a package operation.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeNoop
	OutcomePartial
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeNoop:
		return "no-op"
	case OutcomePartial:
		return "partial"
	case OutcomeSuccess:
		return "success"
	}
	return "unknown"
}

// Mode selects the operation the engine performs.
type Mode int

const (
	ModeInstall Mode = iota + 1
	ModeRemove
	ModeCheck
)

func (m Mode) String() string {
	switch m {
	case ModeInstall:
		return "install"
	case ModeRemove:
		return "remove"
	case ModeCheck:
		return "check"
	}
	return "unknown"
}
