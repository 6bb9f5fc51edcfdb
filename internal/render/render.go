// Package render draws a projected resource list for humans (text) or
// machines (JSON, YAML). It is the only place that knows about the
// empty-state messages and the alerts-on-top toggle indicator.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/reslist/internal/options"
	"github.com/hupe1980/reslist/internal/projector"
)

// Empty-state rows.
const (
	NoMatchingResources = "No matching resources"
	NoResources         = "No resources"
)

// Row markers.
const (
	markerAlert = "✗"
	markerOK    = "·"
)

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: must be one of text, json, yaml", s)
	}
}

// Renderer writes projections to a destination.
type Renderer struct {
	out    io.Writer
	format Format

	header lipgloss.Style
	alert  lipgloss.Style
	muted  lipgloss.Style
	on     lipgloss.Style
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormat sets the output format (default text).
func WithFormat(f Format) Option {
	return func(r *Renderer) { r.format = f }
}

// WithColor enables or disables styling. Styling is also dropped
// automatically when out is not a colour-capable terminal.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		if !enabled {
			r.header, r.alert, r.muted, r.on = plainStyles()
		}
	}
}

// New creates a Renderer writing to out.
func New(out io.Writer, opts ...Option) *Renderer {
	lr := lipgloss.NewRenderer(out)

	r := &Renderer{
		out:    out,
		format: FormatText,
		header: lr.NewStyle().Bold(true),
		alert:  lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}),
		muted:  lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}),
		on:     lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func plainStyles() (header, alert, muted, on lipgloss.Style) {
	s := lipgloss.NewStyle()
	return s, s, s, s
}

// Render writes p in the configured format.
func (r *Renderer) Render(p projector.Projection) error {
	switch r.format {
	case FormatJSON:
		data, err := json.MarshalIndent(newDocument(p), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}

		return r.write(append(data, '\n'))
	case FormatYAML:
		data, err := sigsyaml.Marshal(newDocument(p))
		if err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}

		return r.write(data)
	default:
		return r.write([]byte(r.Text(p)))
	}
}

// Text returns the human-readable list.
func (r *Renderer) Text(p projector.Projection) string {
	var b strings.Builder

	b.WriteString(r.header.Render(fmt.Sprintf("Resources (%d of %d)", len(p.Resources), p.Total)))
	b.WriteString("  ")
	b.WriteString(r.Toggle(p.Options))

	if p.Options.FilterActive() {
		fmt.Fprintf(&b, "  filter: %q", p.Options.ResourceNameFilter)
	}

	b.WriteByte('\n')

	switch {
	case p.NoMatches():
		b.WriteString("  " + r.muted.Render(NoMatchingResources) + "\n")
	case p.Empty():
		b.WriteString("  " + r.muted.Render(NoResources) + "\n")
	}

	for _, res := range p.Resources {
		marker := r.muted.Render(markerOK)
		name := res.Name

		if res.HasAlert {
			marker = r.alert.Render(markerAlert)
			name = r.alert.Render(name)
		}

		b.WriteString(marker + " " + name)

		if res.Kind != "" {
			b.WriteString(" " + r.muted.Render("("+res.Kind+")"))
		}

		b.WriteByte('\n')
	}

	return b.String()
}

// Toggle renders the alerts-on-top control state.
func (r *Renderer) Toggle(o options.Options) string {
	if o.AlertsOnTop {
		return "[alerts on top: " + r.on.Render("on") + "]"
	}

	return "[alerts on top: " + r.muted.Render("off") + "]"
}

func (r *Renderer) write(data []byte) error {
	if _, err := r.out.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// document is the machine-readable shape of a projection.
type document struct {
	Options   options.Options `json:"options"`
	Total     int             `json:"total"`
	NoMatches bool            `json:"noMatches"`
	Resources []entry         `json:"resources"`
}

type entry struct {
	Name  string `json:"name"`
	Alert bool   `json:"alert"`
	Index int    `json:"index"`
	Kind  string `json:"kind,omitempty"`
}

func newDocument(p projector.Projection) document {
	entries := make([]entry, 0, len(p.Resources))

	for _, res := range p.Resources {
		entries = append(entries, entry{
			Name:  res.Name,
			Alert: res.HasAlert,
			Index: res.Index,
			Kind:  res.Kind,
		})
	}

	return document{
		Options:   p.Options,
		Total:     p.Total,
		NoMatches: p.NoMatches(),
		Resources: entries,
	}
}
