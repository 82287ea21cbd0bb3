// Package config loads the TOML configuration of the command line tools.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/cstockton/go-xray/internal/logging"
)

// Config is the merged configuration of a tool run.
type Config struct {
	Decode DecodeConfig `toml:"decode"`
	Log    LogConfig    `toml:"log"`
}

// DecodeConfig bounds how much of a log is decoded.
type DecodeConfig struct {
	// MaxRecords stops decoding after this many records, zero for no limit.
	MaxRecords  int  `toml:"max_records"`
	StopOnError bool `toml:"stop_on_error"`
}

// LogConfig is the [log] table, see logging.Config.
type LogConfig struct {
	Level   string `toml:"level"`
	NoColor bool   `toml:"no_color"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Decode: DecodeConfig{StopOnError: true},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults. Keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if keys := meta.Undecoded(); len(keys) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", keys[0].String())
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg for values the tools can not use.
func Validate(cfg Config) error {
	if cfg.Decode.MaxRecords < 0 {
		return fmt.Errorf("decode.max_records must not be negative: %d", cfg.Decode.MaxRecords)
	}
	if _, err := cfg.Log.ZerologLevel(); err != nil {
		return err
	}
	return nil
}

// ZerologLevel returns the configured level, info when unset.
func (c LogConfig) ZerologLevel() (zerolog.Level, error) {
	if strings.TrimSpace(c.Level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, ok := logging.ParseLevel(c.Level)
	if !ok {
		return zerolog.InfoLevel, fmt.Errorf("log.level %q is not a log level", c.Level)
	}
	return lvl, nil
}

// Logging returns the logger configuration for the runtime profile with the
// environment overrides applied over the file values.
func (c LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	cfg.Level, _ = c.ZerologLevel()
	cfg.NoColor = c.NoColor
	logging.ApplyEnv(&cfg)
	return cfg
}
