package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/soocke/pixel-trigger-go/domain/color"
)

// Policy names accepted in Config.Policy.
const (
	PolicyLevel = "level"
	PolicyEdge  = "edge"
)

// Placeholder is substituted with the numeric value in CommandTemplate.
// LegacyPlaceholder is accepted as an alias.
const (
	Placeholder       = "{value}"
	LegacyPlaceholder = "{dpi}"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// KeyResolver reports whether a key or button name is known. Validate uses it so the
// config package stays free of the platform key table.
type KeyResolver interface {
	ResolveKey(name string) error
	ResolveButton(name string) error
}

// Config holds startup-only runtime configuration. Fields may be loaded from a JSON,
// YAML or INI file and overridden by command-line flags. Nothing changes after startup.
type Config struct {
	Debug bool `json:"debug" yaml:"debug" ini:"debug"`

	// Sampling
	SampleSize int     `json:"sample_size" yaml:"sample_size" ini:"sample_size"`
	FPS        float64 `json:"fps" yaml:"fps" ini:"fps"`
	Monitor    int     `json:"monitor" yaml:"monitor" ini:"monitor"`

	// Target color window
	HueMin float64 `json:"hue_min" yaml:"hue_min" ini:"hue_min"`
	HueMax float64 `json:"hue_max" yaml:"hue_max" ini:"hue_max"`
	SatMin float64 `json:"sat_min" yaml:"sat_min" ini:"sat_min"`
	ValMin float64 `json:"val_min" yaml:"val_min" ini:"val_min"`

	// Trigger policy
	Policy          string  `json:"policy" yaml:"policy" ini:"policy"`
	CooldownSeconds float64 `json:"cooldown_seconds" yaml:"cooldown_seconds" ini:"cooldown_seconds"`
	TargetValue     int     `json:"target_value" yaml:"target_value" ini:"target_value"`
	DefaultValue    int     `json:"default_value" yaml:"default_value" ini:"default_value"`
	CommandTemplate string  `json:"command_template" yaml:"command_template" ini:"command_template"`
	CommandTimeout  float64 `json:"command_timeout_seconds" yaml:"command_timeout_seconds" ini:"command_timeout_seconds"`
	TargetKey       string  `json:"target_key" yaml:"target_key" ini:"target_key"`
	DefaultKey      string  `json:"default_key" yaml:"default_key" ini:"default_key"`
	EdgeButton      string  `json:"edge_button" yaml:"edge_button" ini:"edge_button"`
	EdgeKey         string  `json:"edge_key" yaml:"edge_key" ini:"edge_key"`

	// Hotkeys
	ToggleKey   string `json:"toggle_key" yaml:"toggle_key" ini:"toggle_key"`
	TestKey     string `json:"test_key" yaml:"test_key" ini:"test_key"`
	LeftTestKey string `json:"left_test_key" yaml:"left_test_key" ini:"left_test_key"`

	// Status sink
	Overlay bool `json:"overlay" yaml:"overlay" ini:"overlay"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:           false,
		SampleSize:      10,
		FPS:             100,
		Monitor:         -1,
		HueMin:          35,
		HueMax:          60,
		SatMin:          0.4,
		ValMin:          0.4,
		Policy:          PolicyLevel,
		CooldownSeconds: 0.5,
		TargetValue:     500,
		DefaultValue:    2000,
		CommandTemplate: "",
		CommandTimeout:  5,
		TargetKey:       "f20",
		DefaultKey:      "f21",
		EdgeButton:      "left",
		EdgeKey:         "",
		ToggleKey:       "f8",
		TestKey:         "f9",
		LeftTestKey:     "f10",
		Overlay:         true,
	}
}

// ColorModel returns the classifier thresholds.
func (c *Config) ColorModel() color.Model {
	return color.Model{HueMin: c.HueMin, HueMax: c.HueMax, SatMin: c.SatMin, ValMin: c.ValMin}
}

// Validate reports every invalid field. Unlike clamping, any error here is fatal at
// startup. keys may be nil, in which case key and button names are not checked.
func (c *Config) Validate(keys KeyResolver) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if c.SampleSize <= 0 {
		bad("sample_size must be positive, got %d", c.SampleSize)
	}
	if c.FPS <= 0 {
		bad("fps must be positive, got %g", c.FPS)
	}
	if c.CooldownSeconds < 0 {
		bad("cooldown_seconds must not be negative, got %g", c.CooldownSeconds)
	}
	if c.CommandTimeout <= 0 {
		bad("command_timeout_seconds must be positive, got %g", c.CommandTimeout)
	}
	if err := c.ColorModel().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	switch c.Policy {
	case PolicyLevel, PolicyEdge:
	default:
		bad("policy must be %q or %q, got %q", PolicyLevel, PolicyEdge, c.Policy)
	}
	if n := strings.Count(c.CommandTemplate, Placeholder) + strings.Count(c.CommandTemplate, LegacyPlaceholder); n > 1 {
		bad("command_template must contain at most one placeholder, found %d", n)
	}
	if keys != nil {
		for _, k := range []struct{ field, name string }{
			{"toggle_key", c.ToggleKey},
			{"test_key", c.TestKey},
			{"left_test_key", c.LeftTestKey},
			{"target_key", c.TargetKey},
			{"default_key", c.DefaultKey},
			{"edge_key", c.EdgeKey},
		} {
			if k.name == "" {
				if k.field == "toggle_key" {
					bad("toggle_key is required")
				}
				continue
			}
			if err := keys.ResolveKey(k.name); err != nil {
				bad("%s: %v", k.field, err)
			}
		}
		if err := keys.ResolveButton(c.EdgeButton); err != nil {
			bad("edge_button: %v", err)
		}
	}
	return errors.Join(errs...)
}

// Load reads configuration from path, choosing the format by extension (.json, .yaml,
// .yml, .ini). If the file does not exist it returns DefaultConfig(). Fields absent from
// the file keep their defaults. Load does not validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", "":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".ini":
		var f *ini.File
		if f, err = ini.Load(data); err == nil {
			err = f.Section("").MapTo(cfg)
		}
	default:
		err = fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path in the format implied by its extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", "":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".ini":
		f := ini.Empty()
		if err = f.Section("").ReflectFrom(c); err == nil {
			return f.SaveTo(path)
		}
	default:
		err = fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
