// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Saves   SavesConfig   `toml:"saves"`
	Report  ReportConfig  `toml:"report"`
	History HistoryConfig `toml:"history"`
	Watch   WatchConfig   `toml:"watch"`
	Log     LogConfig     `toml:"log"`
}

// SavesConfig maps save discovery settings.
type SavesConfig struct {
	Dir     *string `toml:"dir"`
	Workers *int    `toml:"workers"`
}

// ReportConfig maps report rendering settings.
type ReportConfig struct {
	Format *string `toml:"format"`
	Color  *string `toml:"color"`
}

// HistoryConfig maps snapshot database settings.
type HistoryConfig struct {
	DB *string `toml:"db"`
}

// WatchConfig maps watch mode settings.
type WatchConfig struct {
	DebounceMs *int  `toml:"debounce-ms"`
	Archive    *bool `toml:"archive"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Encode writes the config as TOML.
func Encode(w io.Writer, cfg FileConfig) error {
	return toml.NewEncoder(w).Encode(cfg)
}
