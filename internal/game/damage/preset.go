package damage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named rune loaded from a preset library file.
type Preset struct {
	Name         string  `yaml:"name"`
	RuneFlat     float64 `yaml:"rune_flat"`
	RuneScaling  float64 `yaml:"rune_scaling"`
	RuneAccuracy float64 `yaml:"rune_accuracy"`
	// CritChance overrides the current crit chance when set.
	CritChance *int `yaml:"crit_chance,omitempty"`
	// MaxValue is only used by the max-hit ruleset.
	MaxValue float64 `yaml:"max_value"`
}

// Apply returns base with the preset's rune fields written over it.
func (p Preset) Apply(base Config) Config {
	base.RuneFlat = p.RuneFlat
	base.RuneScaling = p.RuneScaling
	base.RuneAccuracy = p.RuneAccuracy
	if p.MaxValue > 0 {
		base.MaxValue = p.MaxValue
	}
	if p.CritChance != nil {
		base.CritChance = *p.CritChance
	}
	return base.Sanitized()
}

// PresetLibrary holds presets keyed by lowercased name.
type PresetLibrary struct {
	presets map[string]Preset
	order   []string
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// NewPresetLibrary builds a library from presets.
//
// Postcondition: Returns an error if a preset has an empty or duplicate name
// or a negative value.
func NewPresetLibrary(presets []Preset) (*PresetLibrary, error) {
	lib := &PresetLibrary{presets: make(map[string]Preset, len(presets))}
	var errs []string
	for _, p := range presets {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			errs = append(errs, "preset name must not be empty")
			continue
		}
		if _, dup := lib.presets[key]; dup {
			errs = append(errs, fmt.Sprintf("duplicate preset %q", p.Name))
			continue
		}
		if p.RuneFlat < 0 || p.RuneScaling < 0 || p.RuneAccuracy < 0 || p.MaxValue < 0 {
			errs = append(errs, fmt.Sprintf("preset %q: values must be >= 0", p.Name))
			continue
		}
		if p.CritChance != nil && (*p.CritChance < 0 || *p.CritChance > 100) {
			errs = append(errs, fmt.Sprintf("preset %q: crit_chance must be 0-100, got %d", p.Name, *p.CritChance))
			continue
		}
		lib.presets[key] = p
		lib.order = append(lib.order, key)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("preset validation failed: %s", strings.Join(errs, "; "))
	}
	return lib, nil
}

// LoadPresets reads a YAML preset library from path. An empty path yields an
// empty library.
//
// Postcondition: Returns a non-nil library or an error naming the file.
func LoadPresets(path string) (*PresetLibrary, error) {
	if path == "" {
		return NewPresetLibrary(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets %q: %w", path, err)
	}
	var f presetFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing presets %q: %w", path, err)
	}
	lib, err := NewPresetLibrary(f.Presets)
	if err != nil {
		return nil, fmt.Errorf("presets %q: %w", path, err)
	}
	return lib, nil
}

// Get returns the preset named name, ignoring case.
func (l *PresetLibrary) Get(name string) (Preset, bool) {
	p, ok := l.presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// All returns the presets in file order.
func (l *PresetLibrary) All() []Preset {
	out := make([]Preset, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.presets[k])
	}
	return out
}
