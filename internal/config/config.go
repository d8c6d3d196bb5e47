package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

const FileName = "config.toml"

type Config struct {
	Color         string `toml:"color"`
	Theme         string `toml:"theme"`
	ContextLines  int    `toml:"context_lines"`
	ShowUntracked bool   `toml:"show_untracked"`
	Syntax        bool   `toml:"syntax"`
}

func Default() Config {
	return Config{
		Color:        "auto",
		Theme:        "auto",
		ContextLines: 3,
		Syntax:       true,
	}
}

// Path returns the config file location, or "" when no directory can be
// determined.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no config file", slog.String("path", path))
			return Default(), nil
		}
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", slog.String("path", path), slog.String("key", key.String()))
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !slices.Contains([]string{"auto", "always", "never"}, c.Color) {
		return fmt.Errorf("color: unknown value %q", c.Color)
	}
	if !slices.Contains([]string{"auto", "light", "dark"}, c.Theme) {
		return fmt.Errorf("theme: unknown value %q", c.Theme)
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("context_lines: must not be negative, got %d", c.ContextLines)
	}
	return nil
}
