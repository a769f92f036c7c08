package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Keys of the persisted JSON document.
const (
	KeyPlayerExecutable = "potplayer_exe"
	KeyWebPrefix        = "web_prefix"
	KeyLocalRoot        = "unc_root"
	KeyHost             = "host"
	KeyPort             = "port"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8080

	// DefaultPath is where the configuration lives relative to the working directory.
	DefaultPath = "config.json"
)

// Default returns the configuration used when nothing is persisted.
// The path fields stay blank until the user fills them in.
func Default() Config {
	return Config{
		PlayerExecutable: "",
		WebPrefix:        "",
		LocalRoot:        "",
		Host:             DefaultHost,
		Port:             DefaultPort,
	}
}

// newViper returns a viper instance bound to a single JSON file on fsys.
func newViper(fsys afero.Fs, path string) *viper.Viper {
	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	return v
}

// setDefaults applies default values using Viper.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyPlayerExecutable, d.PlayerExecutable)
	v.SetDefault(KeyWebPrefix, d.WebPrefix)
	v.SetDefault(KeyLocalRoot, d.LocalRoot)
	v.SetDefault(KeyHost, d.Host)
	v.SetDefault(KeyPort, d.Port)
}

// LoadStrict reads the configuration at path and overlays every non-null
// field on the defaults. On any read or parse error it returns the defaults
// together with the error.
func LoadStrict(fsys afero.Fs, path string) (Config, error) {
	v := newViper(fsys, path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Default(), fmt.Errorf("failed to read/parse config file %s: %w", path, err)
	}
	return fromViper(v), nil
}

// Load is LoadStrict without the error: a missing, unreadable or malformed
// file yields the default configuration.
func Load(fsys afero.Fs, path string) Config {
	cfg, _ := LoadStrict(fsys, path)
	return cfg
}

// fromViper converts the merged settings into a Config. Values of the wrong
// JSON type are coerced where possible and otherwise fall back to the default.
func fromViper(v *viper.Viper) Config {
	d := Default()
	return Config{
		PlayerExecutable: stringValue(v, KeyPlayerExecutable, d.PlayerExecutable),
		WebPrefix:        stringValue(v, KeyWebPrefix, d.WebPrefix),
		LocalRoot:        stringValue(v, KeyLocalRoot, d.LocalRoot),
		Host:             stringValue(v, KeyHost, d.Host),
		Port:             portValue(v.Get(KeyPort)),
	}
}

func stringValue(v *viper.Viper, key, fallback string) string {
	s, err := cast.ToStringE(v.Get(key))
	if err != nil {
		return fallback
	}
	return s
}

// portValue accepts a JSON number or a numeric string in 1-65535.
func portValue(raw any) int {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	p, err := cast.ToIntE(raw)
	if err != nil || p < 1 || p > 65535 {
		return DefaultPort
	}
	return p
}

// Save writes the full configuration to path as indented JSON, replacing
// whatever was there before. Non-ASCII text and characters such as & or <
// are written as is, so the file stays readable when edited by hand.
func Save(fsys afero.Fs, path string, cfg Config) error {
	if filepath.Ext(path) != ".json" {
		return fmt.Errorf("config file %s must have a .json extension", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the values the service cannot start without.
// It is used by the config commands, never on the request path.
func Validate(cfg Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Host) == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is outside 1-65535", cfg.Port))
	}
	return errors.Join(errs...)
}
