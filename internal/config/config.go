package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields shelfhand needs to reach the shelfd daemon and
// present the library.
type Config struct {
	APIBind  string `env:"SHELFHAND_API_BIND"`
	Timezone string `env:"SHELFHAND_TIMEZONE"`
	PageSize int    `env:"SHELFHAND_PAGE_SIZE"`
}

const (
	defaultConfigPath = "~/.config/shelfhand/config.toml"
	defaultAPIBind    = "127.0.0.1:8399"
	defaultTimezone   = "UTC"
	defaultPageSize   = 50
	maxPageSize       = 200
)

// Load locates and parses the shelfhand config, falling back to defaults
// when missing, then applies SHELFHAND_* environment overrides on top.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{APIBind: defaultAPIBind, Timezone: defaultTimezone, PageSize: defaultPageSize}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg)
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBind  string `toml:"api_bind"`
		Timezone string `toml:"timezone"`
		PageSize int    `toml:"page_size"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if bind := strings.TrimSpace(raw.APIBind); bind != "" {
		cfg.APIBind = bind
	}
	if tz := strings.TrimSpace(raw.Timezone); tz != "" {
		cfg.Timezone = tz
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}

	return applyEnv(cfg)
}

// applyEnv layers SHELFHAND_* variables over the file values and clamps the
// page size to something the daemon will accept.
func applyEnv(cfg Config) (Config, error) {
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
