// Package config provides the on-disk preset registry for orbis-ime.
//
// The registry is a YAML file holding named dialog presets and host
// preferences. A preset is turned into an imedialog.Config with
// Preset.DialogConfig, which resolves enum names and built-in filters and
// validates the result.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/orbis-ime/config.yaml or $HOME/.config/orbis-ime/config.yaml
//   - macOS: $HOME/.config/orbis-ime/config.yaml
//   - Windows: %LOCALAPPDATA%\orbis-ime\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	preset, err := registry.Resolve("username")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := preset.DialogConfig(userID)
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are protected by a mutex and replace the file atomically.
package config
