// Package manifest loads declarative event registrations from JSON, JSONC
// or YAML files and applies them to a bus. A manifest registers event names
// and debounce defaults; listeners are always attached in code.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/uibus/uibus/pkg/eventbus"
)

// Declaration declares one emittable event.
type Declaration struct {
	Event       string `json:"event" yaml:"event"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	DebounceMs  int    `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
}

// Manifest is a declarative set of event registrations.
type Manifest struct {
	Events []Declaration `json:"events" yaml:"events"`
}

// Load reads a manifest from path. The format follows the extension:
// .json/.jsonc (comments and trailing commas allowed) or .yaml/.yml.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest extension %q", ext)
	}

	for i, d := range m.Events {
		if strings.TrimSpace(d.Event) == "" {
			return nil, fmt.Errorf("manifest entry %d: missing event name", i)
		}
	}
	return &m, nil
}

// Apply registers every declared event on the bus and installs its debounce
// default and description. Applying the same manifest twice is a no-op;
// applying a grown manifest adds the new declarations.
func (m *Manifest) Apply(b *eventbus.Bus) error {
	for _, d := range m.Events {
		if err := b.RegisterEvent(d.Event); err != nil {
			return err
		}
		if d.DebounceMs > 0 {
			b.SetDefaultDebounce(d.Event, time.Duration(d.DebounceMs)*time.Millisecond)
		}
		if d.Description != "" {
			b.DescribeEvent(d.Event, d.Description)
		}
	}
	return nil
}
