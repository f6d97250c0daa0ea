package topics

import (
	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown topics with glamour. Other formats are
// passed through.
type GlamourRenderer struct {
	// Color selects the auto-detected style; without it the "notty" style
	// renders plain text layout
	Color bool
	// Width wraps text at the given column; 0 keeps glamour's default
	Width int
}

// NewGlamourRenderer creates a markdown renderer
func NewGlamourRenderer(color bool) *GlamourRenderer {
	return &GlamourRenderer{Color: color}
}

// Render converts markdown to terminal output, falling back to the raw
// content on errors
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	options := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if r.Color {
		options = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
