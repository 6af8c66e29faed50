package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/colfit/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses the embedded defaults.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return nil, fmt.Errorf("decode embedded default config: %w", err)
	}
	return &cfg, nil
}

// Load merges the defaults, the config file and the environment, then
// validates the result. An explicit path must exist; the discovered
// path is optional.
func Load(explicitPath string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	path := ResolvePath(explicitPath)
	if path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	problems := applyEnvOverrides(cfg)
	if err := validate(cfg, problems); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvePath returns explicit when set, else the user config file under
// $XDG_CONFIG_HOME or ~/.config when it exists, else "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate == "" {
		return ""
	}
	if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
		return candidate
	}
	return ""
}

// mergeFile decodes path on top of cfg; keys missing from the file keep
// their current values.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("reading file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}

// applyEnvOverrides applies COLFIT_* variables and returns a message for
// each value it could not parse.
func applyEnvOverrides(cfg *Config) []string {
	var problems []string
	boolVar := func(name string, dst *bool) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s=%q is not a boolean", name, v))
			return
		}
		*dst = b
	}
	intVar := func(name string, dst *int) {
		v := os.Getenv(name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s=%q is not an integer", name, v))
			return
		}
		*dst = n
	}

	boolVar("COLFIT_FILTERS", &cfg.Layout.Filters)
	boolVar("COLFIT_FIT", &cfg.Layout.FitToContainer)
	intVar("COLFIT_FALLBACK_WIDTH", &cfg.Session.FallbackWidth)
	intVar("COLFIT_DEBOUNCE_MS", &cfg.Preview.DebounceMs)
	return problems
}
