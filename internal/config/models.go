package config

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/muurk/orbis-ime/internal/filters"
	"github.com/muurk/orbis-ime/internal/imedialog"
)

// ErrPresetNotFound is returned when a preset name is not in the registry
var ErrPresetNotFound = errors.New("preset not found")

// Registry represents the entire user configuration file.
// It stores named dialog presets and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Presets     map[string]*Preset `yaml:"presets,omitempty"` // Keyed by preset name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Preset is a named dialog configuration. String fields hold the names
// accepted by the imedialog Parse functions; empty means the default.
type Preset struct {
	Description string `yaml:"description,omitempty"`

	Title       string `yaml:"title,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	InitialText string `yaml:"initial_text,omitempty"`

	Type          string `yaml:"type,omitempty"`        // default, basic_latin, url, mail, number
	EnterLabel    string `yaml:"enter_label,omitempty"` // default, send, search, go
	MaxTextLength uint32 `yaml:"max_text_length"`       // Orbis code units, 1..2048
	MultiLine     bool   `yaml:"multi_line,omitempty"`
	Numeric       bool   `yaml:"numeric,omitempty"`

	Encoding string `yaml:"encoding,omitempty"` // IANA name, UTF-16LE when empty
	Overflow string `yaml:"overflow,omitempty"` // truncate or reject

	TextFilters     []filters.Spec `yaml:"text_filters,omitempty"`
	KeyboardFilters []filters.Spec `yaml:"keyboard_filters,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultPreset string `yaml:"default_preset"` // Preset used when none is named
	ListenAddr    string `yaml:"listen_addr"`    // Address of the remote dialog host
	Advertise     bool   `yaml:"advertise"`      // Announce the remote host over mDNS
	FrameRate     int    `yaml:"frame_rate"`     // Terminal host frames per second
	ScanTimeout   int    `yaml:"scan_timeout"`   // mDNS scan timeout in seconds
}

// Default preference values
const (
	DefaultPresetName  = "default"
	DefaultListenAddr  = ":7780"
	DefaultFrameRate   = 30
	DefaultScanTimeout = 5
)

func defaultPreferences() *Preferences {
	return &Preferences{
		DefaultPreset: DefaultPresetName,
		ListenAddr:    DefaultListenAddr,
		FrameRate:     DefaultFrameRate,
		ScanTimeout:   DefaultScanTimeout,
	}
}

// DefaultPresets returns the presets shipped with a new registry
func DefaultPresets() map[string]*Preset {
	return map[string]*Preset{
		"default": {
			Description:   "Single-line text",
			Title:         "Enter text",
			MaxTextLength: 256,
		},
		"username": {
			Description:     "Account name without spaces",
			Title:           "User name",
			Placeholder:     "letters and digits",
			Type:            "basic_latin",
			MaxTextLength:   16,
			KeyboardFilters: []filters.Spec{{Name: "reject_runes", Args: []string{" "}}},
		},
		"search": {
			Description:   "Search box",
			Title:         "Search",
			EnterLabel:    "search",
			MaxTextLength: 128,
			TextFilters:   []filters.Spec{{Name: "trim_space"}},
		},
		"message": {
			Description:   "Multi-line chat message",
			Title:         "Message",
			Placeholder:   "Say something",
			EnterLabel:    "send",
			MaxTextLength: 1024,
			MultiLine:     true,
			TextFilters:   []filters.Spec{{Name: "max_lines", Args: []string{"8"}}},
		},
		"pin": {
			Description:     "Numeric PIN",
			Title:           "PIN",
			Type:            "number",
			MaxTextLength:   8,
			Overflow:        "reject",
			TextFilters:     []filters.Spec{{Name: "digits_only"}},
			KeyboardFilters: []filters.Spec{{Name: "submit_on_tab"}},
		},
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Presets:     DefaultPresets(),
		Preferences: defaultPreferences(),
	}
}

// GetPreset retrieves a preset by name.
// Returns nil if the preset doesn't exist in the registry.
func (r *Registry) GetPreset(name string) *Preset {
	return r.Presets[name]
}

// SetPreset adds or replaces a preset
func (r *Registry) SetPreset(name string, p *Preset) {
	if r.Presets == nil {
		r.Presets = make(map[string]*Preset)
	}
	r.Presets[name] = p
}

// DeletePreset removes a preset. It reports whether the preset existed.
func (r *Registry) DeletePreset(name string) bool {
	if _, ok := r.Presets[name]; !ok {
		return false
	}
	delete(r.Presets, name)
	return true
}

// PresetNames returns the preset names, sorted
func (r *Registry) PresetNames() []string {
	names := make([]string, 0, len(r.Presets))
	for name := range r.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the named preset, or the default preset when name is
// empty.
func (r *Registry) Resolve(name string) (*Preset, error) {
	if name == "" && r.Preferences != nil {
		name = r.Preferences.DefaultPreset
	}
	if name == "" {
		name = DefaultPresetName
	}
	p := r.GetPreset(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	return p, nil
}

// DialogConfig resolves the named preset and builds its dialog
// configuration for the anonymous user.
func (r *Registry) DialogConfig(name string) (*imedialog.Config, error) {
	p, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return p.DialogConfig(0)
}

// Validate checks every preset and the preferences, combining all problems
func (r *Registry) Validate() error {
	var errs error
	for _, name := range r.PresetNames() {
		if _, err := r.Presets[name].DialogConfig(0); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("preset %q: %w", name, err))
		}
	}
	if p := r.Preferences; p != nil {
		if p.FrameRate < 1 || p.FrameRate > 240 {
			errs = multierr.Append(errs, fmt.Errorf("frame rate %d out of range 1..240", p.FrameRate))
		}
		if p.ScanTimeout < 0 {
			errs = multierr.Append(errs, fmt.Errorf("negative scan timeout %d", p.ScanTimeout))
		}
		if p.DefaultPreset != "" && r.GetPreset(p.DefaultPreset) == nil {
			errs = multierr.Append(errs, fmt.Errorf("default preset %q not found", p.DefaultPreset))
		}
	}
	return errs
}

// DialogConfig turns the preset into a validated dialog configuration
func (p *Preset) DialogConfig(userID int32) (*imedialog.Config, error) {
	var errs error

	typ, err := imedialog.ParseType(p.Type)
	errs = multierr.Append(errs, err)
	label, err := imedialog.ParseEnterLabel(p.EnterLabel)
	errs = multierr.Append(errs, err)
	overflow, err := imedialog.ParseOverflow(p.Overflow)
	errs = multierr.Append(errs, err)
	textFilter, err := filters.BuildText(p.TextFilters)
	errs = multierr.Append(errs, err)
	keyFilter, err := filters.BuildKeyboard(p.KeyboardFilters)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}

	cfg := &imedialog.Config{
		UserID:         userID,
		MultiLine:      p.MultiLine,
		Numeric:        p.Numeric,
		Type:           typ,
		EnterLabel:     label,
		TextFilter:     textFilter,
		KeyboardFilter: keyFilter,
		MaxTextLength:  p.MaxTextLength,
		Title:          p.Title,
		Placeholder:    p.Placeholder,
		InitialText:    p.InitialText,
		Encoding:       p.Encoding,
		Overflow:       overflow,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
