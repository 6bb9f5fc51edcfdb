package config

import (
	"fmt"
	"os"
	"regexp"

	sigsyaml "sigs.k8s.io/yaml"
)

// Preset is a named set of list options declared in the config file.
//
//	presets:
//	  failing-tests:
//	    filter: test
//	    alertsOnTop: true
//	    selector: group=backend
type Preset struct {
	// Filter is the name filter text.
	Filter string `json:"filter,omitempty"`

	// AlertsOnTop sets the alerts-on-top toggle when non-nil.
	AlertsOnTop *bool `json:"alertsOnTop,omitempty"`

	// Selector is a label selector applied before the name filter.
	Selector string `json:"selector,omitempty"`
}

// Presets maps preset names to their definitions.
type Presets map[string]Preset

// presetNamePattern restricts preset names to identifier-like strings.
var presetNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ParsePresets parses the presets section from raw config file bytes.
func ParsePresets(data []byte) (Presets, error) {
	var raw struct {
		Presets Presets `json:"presets,omitempty"`
	}

	if err := sigsyaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}

	if raw.Presets == nil {
		raw.Presets = Presets{}
	}

	if err := raw.Presets.Validate(); err != nil {
		return nil, err
	}

	return raw.Presets, nil
}

// LoadPresets reads presets from the config file at path. An empty path
// yields no presets.
func LoadPresets(path string) (Presets, error) {
	if path == "" {
		return Presets{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from config discovery
	if err != nil {
		return nil, fmt.Errorf("reading presets from %q: %w", path, err)
	}

	return ParsePresets(data)
}

// Validate checks preset names.
func (p Presets) Validate() error {
	for name := range p {
		if !presetNamePattern.MatchString(name) {
			return fmt.Errorf("presets[%s]: invalid name (must match %s)", name, presetNamePattern.String())
		}
	}

	return nil
}

// Lookup returns the named preset.
func (p Presets) Lookup(name string) (Preset, error) {
	preset, ok := p[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q", name)
	}

	return preset, nil
}
