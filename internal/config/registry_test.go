package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/muurk/orbis-ime/internal/filters"
	"github.com/muurk/orbis-ime/internal/imedialog"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "orbis-ime") {
		t.Errorf("GetConfigDir() = %v, should contain 'orbis-ime'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDirHonoursXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join("/tmp/xdg-test", "orbis-ime") {
		t.Errorf("GetConfigDir() = %v", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.FrameRate != DefaultFrameRate {
		t.Errorf("FrameRate = %v, want %v", reg.Preferences.FrameRate, DefaultFrameRate)
	}
	if reg.Preferences.DefaultPreset != "default" {
		t.Errorf("DefaultPreset = %q, want default", reg.Preferences.DefaultPreset)
	}

	for _, name := range []string{"default", "username", "search", "message", "pin"} {
		if reg.GetPreset(name) == nil {
			t.Errorf("NewRegistry() missing preset %q", name)
		}
	}

	if err := reg.Validate(); err != nil {
		t.Errorf("default registry should validate: %v", err)
	}
}

func TestDefaultPresetsBuildDialogs(t *testing.T) {
	for name, preset := range DefaultPresets() {
		t.Run(name, func(t *testing.T) {
			cfg, err := preset.DialogConfig(7)
			if err != nil {
				t.Fatalf("DialogConfig() error = %v", err)
			}
			if cfg.UserID != 7 {
				t.Errorf("UserID = %d, want 7", cfg.UserID)
			}
			if cfg.MaxTextLength != preset.MaxTextLength {
				t.Errorf("MaxTextLength = %d, want %d", cfg.MaxTextLength, preset.MaxTextLength)
			}
			if (cfg.TextFilter != nil) != (len(preset.TextFilters) > 0) {
				t.Error("text filter presence does not match the preset")
			}
			if (cfg.KeyboardFilter != nil) != (len(preset.KeyboardFilters) > 0) {
				t.Error("keyboard filter presence does not match the preset")
			}
		})
	}
}

func TestPresetDialogConfig(t *testing.T) {
	tests := []struct {
		name    string
		preset  Preset
		check   func(t *testing.T, cfg *imedialog.Config)
		wantErr string
	}{
		{
			name:   "enum names",
			preset: Preset{MaxTextLength: 32, Type: "mail", EnterLabel: "go", Overflow: "reject"},
			check: func(t *testing.T, cfg *imedialog.Config) {
				if cfg.Type != imedialog.TypeMail || cfg.EnterLabel != imedialog.EnterLabelGo || cfg.Overflow != imedialog.OverflowReject {
					t.Errorf("config = %v %v %v", cfg.Type, cfg.EnterLabel, cfg.Overflow)
				}
			},
		},
		{
			name:    "unknown type",
			preset:  Preset{MaxTextLength: 32, Type: "hex"},
			wantErr: "unknown dialog type",
		},
		{
			name:    "unknown filter",
			preset:  Preset{MaxTextLength: 32, TextFilters: []filters.Spec{{Name: "rot13"}}},
			wantErr: "unknown filter",
		},
		{
			name:    "missing length",
			preset:  Preset{Title: "x"},
			wantErr: "out of range",
		},
		{
			name:    "numeric multi-line",
			preset:  Preset{MaxTextLength: 8, Type: "number", MultiLine: true},
			wantErr: "cannot be multi-line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.preset.DialogConfig(0)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("DialogConfig() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DialogConfig() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestPresetDialogConfigCombinesErrors(t *testing.T) {
	p := Preset{MaxTextLength: 8, Type: "hex", EnterLabel: "launch", Overflow: "wrap"}
	_, err := p.DialogConfig(0)
	if n := len(multierr.Errors(err)); n != 3 {
		t.Errorf("DialogConfig() returned %d errors, want 3: %v", n, err)
	}
}

func TestRegistryPresets(t *testing.T) {
	reg := &Registry{Version: 1}

	reg.SetPreset("b", &Preset{MaxTextLength: 4})
	reg.SetPreset("a", &Preset{MaxTextLength: 4})

	if got := reg.PresetNames(); strings.Join(got, ",") != "a,b" {
		t.Errorf("PresetNames() = %v, want [a b]", got)
	}

	if !reg.DeletePreset("a") {
		t.Error("DeletePreset(a) should report true")
	}
	if reg.DeletePreset("a") {
		t.Error("DeletePreset(a) twice should report false")
	}
	if reg.GetPreset("a") != nil {
		t.Error("preset a should be gone")
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()

	p, err := reg.Resolve("")
	if err != nil || p != reg.GetPreset("default") {
		t.Errorf("Resolve(\"\") = %v, %v, want default preset", p, err)
	}

	reg.Preferences.DefaultPreset = "pin"
	if p, _ := reg.Resolve(""); p != reg.GetPreset("pin") {
		t.Error("Resolve(\"\") should honour the default preset preference")
	}

	if _, err := reg.Resolve("nope"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("Resolve(nope) error = %v, want ErrPresetNotFound", err)
	}
}

func TestRegistryDialogConfig(t *testing.T) {
	reg := NewRegistry()

	cfg, err := reg.DialogConfig("pin")
	if err != nil {
		t.Fatalf("DialogConfig(pin) error = %v", err)
	}
	if !cfg.Mode().Numeric || cfg.MaxTextLength != 8 || cfg.Overflow != imedialog.OverflowReject {
		t.Errorf("DialogConfig(pin) = %+v, want numeric 8-unit reject dialog", cfg)
	}
	if cfg.UserID != 0 {
		t.Errorf("UserID = %d, want 0", cfg.UserID)
	}

	if _, err := reg.DialogConfig("nope"); err == nil {
		t.Error("DialogConfig(nope) should fail")
	}
}

func TestRegistryValidate(t *testing.T) {
	reg := NewRegistry()
	reg.SetPreset("broken", &Preset{MaxTextLength: 0})
	reg.Preferences.FrameRate = 0
	reg.Preferences.DefaultPreset = "missing"

	errs := multierr.Errors(reg.Validate())
	if len(errs) != 3 {
		t.Fatalf("Validate() returned %d errors, want 3: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), `preset "broken"`) {
		t.Errorf("first error = %v, want it to name the preset", errs[0])
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.SetPreset("chat", &Preset{
		Description:     "Chat line",
		Title:           "Say",
		MaxTextLength:   140,
		EnterLabel:      "send",
		TextFilters:     []filters.Spec{{Name: "deny_words", Args: []string{"spoiler"}}},
		KeyboardFilters: []filters.Spec{{Name: "submit_on_tab"}},
	})
	reg.Preferences.ListenAddr = "127.0.0.1:9000"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not survive a save")
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# orbis-ime configuration file") {
		t.Error("saved file should start with the header comment")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	chat := loaded.GetPreset("chat")
	if chat == nil {
		t.Fatal("preset chat should exist in loaded registry")
	}
	if chat.Title != "Say" || chat.MaxTextLength != 140 || chat.EnterLabel != "send" {
		t.Errorf("loaded preset = %+v", chat)
	}
	if len(chat.TextFilters) != 1 || chat.TextFilters[0].Args[0] != "spoiler" {
		t.Errorf("loaded text filters = %+v", chat.TextFilters)
	}
	if loaded.Preferences.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q", loaded.Preferences.ListenAddr)
	}
	if len(loaded.Presets) != len(reg.Presets) {
		t.Errorf("loaded %d presets, want %d", len(loaded.Presets), len(reg.Presets))
	}
}

func TestLoadFileMissing(t *testing.T) {
	reg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if reg.GetPreset("default") == nil {
		t.Error("missing file should give the default registry")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
		check   func(t *testing.T, reg *Registry)
	}{
		{
			name: "minimal file gets defaults",
			data: "version: 1\n",
			check: func(t *testing.T, reg *Registry) {
				if reg.GetPreset("default") == nil {
					t.Error("missing presets section should give the built-in presets")
				}
				if reg.Preferences.FrameRate != DefaultFrameRate {
					t.Errorf("FrameRate = %d", reg.Preferences.FrameRate)
				}
			},
		},
		{
			name: "partial preferences",
			data: `
version: 1
presets:
  only:
    max_text_length: 12
    type: url
preferences:
  advertise: true
`,
			check: func(t *testing.T, reg *Registry) {
				if len(reg.Presets) != 1 || reg.GetPreset("only").Type != "url" {
					t.Errorf("presets = %v", reg.PresetNames())
				}
				if !reg.Preferences.Advertise || reg.Preferences.ListenAddr != DefaultListenAddr {
					t.Errorf("preferences = %+v", reg.Preferences)
				}
			},
		},
		{
			name:    "wrong version",
			data:    "version: 2\n",
			wantErr: "unsupported config version",
		},
		{
			name:    "bad yaml",
			data:    "version: [1\n",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := Parse([]byte(tt.data))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			tt.check(t, reg)
		})
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	got, err := CreateDefaultConfig(path, false)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if got != path {
		t.Errorf("CreateDefaultConfig() path = %q, want %q", got, path)
	}

	if _, err := CreateDefaultConfig(path, false); err == nil {
		t.Error("second CreateDefaultConfig() without force should fail")
	}
	if _, err := CreateDefaultConfig(path, true); err != nil {
		t.Errorf("CreateDefaultConfig() with force error = %v", err)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkPresetDialogConfig(b *testing.B) {
	p := DefaultPresets()["pin"]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.DialogConfig(0)
	}
}
