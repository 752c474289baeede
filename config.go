package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	SaveDirectory   string  `toml:"save_directory"`
	Confirmations   bool    `toml:"confirmations"`
	GridSize        float64 `toml:"grid_size" validate:"gte=0,lte=200"`
	SnapRadius      float64 `toml:"snap_radius" validate:"gt=0,lte=200"`
	LogFile         string  `toml:"log_file"`
	LogLevel        string  `toml:"log_level" validate:"oneof=debug info warn error"`
	DefaultNodeType string  `toml:"default_node_type" validate:"oneof=process decision start input"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Confirmations:   true,
		GridSize:        defaultGridSize,
		SnapRadius:      defaultSnapRadius,
		LogLevel:        "info",
		DefaultNodeType: string(NodeProcess),
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/flowchart, or ~/.config/flowchart.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowchart")
}

func defaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadConfig reads the TOML config at path, or the default location when path
// is empty. A missing file yields the defaults; a malformed or invalid one is
// an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env := os.Getenv("FLOWCHART_LOG"); env != "" {
		cfg.LogFile = env
	}
	cfg.SaveDirectory = expandPath(cfg.SaveDirectory)
	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.DefaultNodeType = strings.ToLower(strings.TrimSpace(cfg.DefaultNodeType))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validate.Struct(cfg); err != nil {
		return nil, formatConfigError(err)
	}
	return cfg, nil
}

func formatConfigError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}
	e := verrs[0]
	switch e.Tag() {
	case "oneof":
		return fmt.Errorf("invalid config: %s must be one of %s", e.Field(), e.Param())
	case "gt", "gte":
		return fmt.Errorf("invalid config: %s must be at least %s", e.Field(), e.Param())
	case "lte":
		return fmt.Errorf("invalid config: %s must not exceed %s", e.Field(), e.Param())
	}
	return fmt.Errorf("invalid config: %s failed %s", e.Field(), e.Tag())
}

// expandPath resolves a leading ~ and makes relative paths absolute.
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p
}

// GetSavePath places filename in the save directory, creating it on demand.
// Without a save directory the name is used as is.
func (c *Config) GetSavePath(filename string) (string, error) {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename, nil
	}
	if err := os.MkdirAll(c.SaveDirectory, 0o755); err != nil {
		return "", fmt.Errorf("create save directory: %w", err)
	}
	return filepath.Join(c.SaveDirectory, filename), nil
}

func (c *Config) NodeType() NodeType {
	t := NodeType(c.DefaultNodeType)
	if !t.Valid() {
		return NodeProcess
	}
	return t
}
