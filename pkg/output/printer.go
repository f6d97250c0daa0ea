package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/encap/pkg/logging"
	"github.com/arthur-debert/encap/pkg/output/styles"
	"github.com/arthur-debert/encap/pkg/types"
)

// Verbosity levels
const (
	Quiet      = 0
	Normal     = 1
	Changes    = 2
	Paths      = 3
	Everything = 4
)

// Printer writes events as text lines. It is safe for concurrent use.
type Printer struct {
	mu        sync.Mutex
	w         io.Writer
	verbosity int
	color     bool
	registry  styles.Registry
}

var _ types.Reporter = (*Printer)(nil)

// NewPrinter returns a printer writing to w. config may be nil for the
// embedded styles.
func NewPrinter(w io.Writer, verbosity int, color bool, config *styles.Config) *Printer {
	logger := logging.GetLogger("output")

	if config == nil {
		config = styles.Default()
	}
	renderer := lipgloss.NewRenderer(w)
	if color {
		// the renderer downgrades to plain text when w is not a terminal
		if renderer.ColorProfile() == termenv.Ascii {
			renderer.SetColorProfile(termenv.ANSI256)
		}
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}

	logger.Debug().
		Int("verbosity", verbosity).
		Bool("color", color).
		Msg("printer created")

	return &Printer{
		w:         w,
		verbosity: verbosity,
		color:     color,
		registry:  config.Build(renderer),
	}
}

// Verbosity returns the configured verbosity.
func (p *Printer) Verbosity() int { return p.verbosity }

// Report implements types.Reporter.
func (p *Printer) Report(ev types.Event) {
	line, ok := p.format(ev)
	if !ok {
		return
	}
	p.writeLine(string(ev.Kind.Class()), line)
}

// Header writes a progress line shown at Normal verbosity.
func (p *Printer) Header(format string, args ...interface{}) {
	if p.verbosity < Normal {
		return
	}
	p.writeLine("Header", fmt.Sprintf(format, args...))
}

// Summary writes the closing line for one package operation.
func (p *Printer) Summary(mode types.Mode, outcome types.Outcome) {
	if p.verbosity < Normal || outcome == types.OutcomeNoop {
		return
	}

	var noun string
	switch mode {
	case types.ModeInstall:
		noun = "installation"
	case types.ModeRemove:
		noun = "removal"
	default:
		noun = "check"
	}

	switch outcome {
	case types.OutcomeFailed:
		p.writeLine(string(types.ClassFail), fmt.Sprintf("    ! %s failed", noun))
	case types.OutcomePartial:
		p.writeLine("Summary", fmt.Sprintf("    > %s partially successful", noun))
	case types.OutcomeSuccess:
		p.writeLine("Summary", fmt.Sprintf("    > %s successful", noun))
	}
}

// Errorf writes a failure line regardless of verbosity.
func (p *Printer) Errorf(format string, args ...interface{}) {
	p.writeLine(string(types.ClassError), fmt.Sprintf(format, args...))
}

// Blank writes an empty line when verbosity reaches level.
func (p *Printer) Blank(level int) {
	if p.verbosity < level {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}

func (p *Printer) writeLine(style, line string) {
	if p.color && line != "" {
		line = p.registry.Get(style).Render(line)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, line)
}

// srcRef names the entry of an event: the target relative path, or the
// absolute target path at Paths verbosity.
func (p *Printer) srcRef(src *types.SourceInfo) string {
	if p.verbosity >= Paths {
		return src.TargetPath
	}
	return src.TargetRelative
}

// format renders ev, reporting false when the event is not shown at the
// current verbosity.
func (p *Printer) format(ev types.Event) (string, bool) {
	var b strings.Builder

	switch ev.Kind {
	case types.EventInstOK, types.EventInstRepl:
		if ev.Kind == types.EventInstOK && p.verbosity < Changes {
			return "", false
		}
		if ev.Source == nil {
			return ev.Message, true
		}
		fmt.Fprintf(&b, "     + %s", p.srcRef(ev.Source))
		if ev.Source.IsDir() && !ev.Source.LinkDir() {
			b.WriteByte('/')
		} else if p.verbosity >= Paths {
			fmt.Fprintf(&b, " -> %s", ev.Source.LinkExpecting)
		}
		if ev.Kind == types.EventInstRepl {
			b.WriteByte(' ')
			b.WriteString(replacement(ev))
		}

	case types.EventRemFail, types.EventRemError, types.EventInstFail, types.EventInstError,
		types.EventClnFail, types.EventClnError:
		if ev.Kind == types.EventRemFail && p.verbosity < Everything {
			return "", false
		}
		if ev.Source == nil {
			return "    ! " + ev.Message, true
		}
		if ev.Kind != types.EventClnFail && ev.Kind != types.EventClnError {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "  !  %s: %s", p.srcRef(ev.Source), ev.Message)

	case types.EventInstNoop, types.EventRemNoop, types.EventChkNoop, types.EventClnNoop:
		if p.verbosity < Everything || ev.Source == nil {
			return "", false
		}
		if ev.Kind != types.EventClnNoop {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "   * %s: ", p.srcRef(ev.Source))
		switch ev.Kind {
		case types.EventChkNoop, types.EventClnNoop:
			b.WriteString("valid link")
		case types.EventRemNoop:
			b.WriteString("already removed")
		default:
			b.WriteString("already installed")
		}

	case types.EventRemOK, types.EventClnOK:
		if p.verbosity < Changes || ev.Source == nil {
			return "", false
		}
		if ev.Kind != types.EventClnOK {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "   - %s", p.srcRef(ev.Source))
		if ev.Target != nil && ev.Target.Flags.Has(types.TgtIsDir) {
			b.WriteByte('/')
		}

	case types.EventChkFail, types.EventChkError:
		if ev.Source == nil {
			return "    ! " + ev.Message, true
		}
		msg := ev.Message
		if msg == "" {
			msg = "not installed"
		}
		fmt.Fprintf(&b, "    !  %s: %s", p.srcRef(ev.Source), msg)

	case types.EventPkgInfo, types.EventClnInfo:
		if p.verbosity < Normal {
			return "", false
		}
		if ev.Kind == types.EventPkgInfo {
			b.WriteString("  ")
		}
		b.WriteString("  > ")
		if ev.Source != nil {
			fmt.Fprintf(&b, "%s: ", p.srcRef(ev.Source))
		}
		b.WriteString(ev.Message)

	case types.EventPkgFail, types.EventPkgError:
		b.WriteString("    ! ")
		b.WriteString(ev.Message)

	case types.EventPkgRaw:
		return ev.Message, true

	default:
		return fmt.Sprintf("unknown event %d: %s", ev.Kind, ev.Message), true
	}

	return b.String(), true
}

// replacement describes what an InstRepl event replaced.
func replacement(ev types.Event) string {
	if ev.Message != "" {
		return "(" + ev.Message + ")"
	}
	if ev.Target == nil {
		return "(replaced link)"
	}
	missing := ""
	if !ev.Target.Flags.Has(types.TgtDestExists) {
		missing = "non-existent "
	}
	return fmt.Sprintf("(replaced link to %spackage %s)", missing, ev.Target.LinkExistingPkg)
}
