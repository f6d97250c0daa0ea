package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ColorMode selects when output is styled.
type ColorMode int

const (
	// ColorAuto styles output written to a color capable terminal
	ColorAuto ColorMode = iota
	// ColorAlways styles output regardless of the destination
	ColorAlways
	// ColorNever writes plain text
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	}
	return "auto"
}

// ParseColorMode parses a --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return ColorAuto, nil
	case "always", "yes":
		return ColorAlways, nil
	case "never", "no":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("unknown color mode: %s", s)
}

// UseColor decides whether output to w is styled.
func UseColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check if we're being piped or redirected
	f, ok := w.(*os.File)
	if !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		return false
	}

	return termenv.NewOutput(f).ColorProfile() != termenv.Ascii
}
