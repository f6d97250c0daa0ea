// Package styles defines the visual styling for encap's terminal output.
//
// Styles are read from YAML and use adaptive colors that adjust to light
// and dark terminal themes. Event lines are styled by event class, so the
// registry holds one style per types.EventClass plus a few named styles
// for headers and tables.
package styles

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultStyles []byte

// ColorDef represents an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
	PaddingRight int    `yaml:"paddingRight,omitempty"`
}

// Config represents the complete styles configuration
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Registry maps semantic names to lipgloss styles
type Registry map[string]lipgloss.Style

// Parse reads a styles configuration.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}
	return &config, nil
}

// Default returns the embedded styles configuration.
func Default() *Config {
	config, err := Parse(defaultStyles)
	if err != nil {
		panic(fmt.Sprintf("failed to load embedded styles: %v", err))
	}
	return config
}

// LoadFile reads a styles configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read styles file %s: %w", path, err)
	}
	return Parse(data)
}

// Build constructs the registry for renderer. A nil renderer uses the
// lipgloss default.
func (c *Config) Build(renderer *lipgloss.Renderer) Registry {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(c.Colors))
	for name, def := range c.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	registry := make(Registry, len(c.Styles))
	for name, def := range c.Styles {
		registry[name] = buildStyle(renderer, colors, def)
	}
	return registry
}

// buildStyle constructs a lipgloss style from a style definition
func buildStyle(renderer *lipgloss.Renderer, colors map[string]lipgloss.AdaptiveColor, def StyleDef) lipgloss.Style {
	style := renderer.NewStyle()

	// Apply text formatting
	if def.Bold {
		style = style.Bold(true)
	}
	if def.Italic {
		style = style.Italic(true)
	}
	if def.Underline {
		style = style.Underline(true)
	}

	// Apply colors
	if def.Foreground != "" {
		if color, ok := colors[def.Foreground]; ok {
			style = style.Foreground(color)
		}
	}
	if def.Background != "" {
		if color, ok := colors[def.Background]; ok {
			style = style.Background(color)
		}
	}

	if def.PaddingLeft > 0 || def.PaddingRight > 0 {
		style = style.Padding(0, def.PaddingRight, 0, def.PaddingLeft)
	}
	return style
}

// Get safely retrieves a style from the registry
func (r Registry) Get(name string) lipgloss.Style {
	if style, ok := r[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
