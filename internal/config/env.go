package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvTickMs   = "KEYRUSH_TICK_MS"
	EnvDelay    = "KEYRUSH_DELAY"
	EnvDuration = "KEYRUSH_DURATION"
	EnvTextFile = "KEYRUSH_TEXT_FILE"
	EnvLogLevel = "KEYRUSH_LOG_LEVEL"
)

// LoadEnv loads a dotenv file into the process environment. Variables that
// are already set win, and a missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays KEYRUSH_* variables onto cfg.
func ApplyEnv(cfg *GameConfig) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *GameConfig, lookup func(string) (string, bool)) error {
	ints := []struct {
		name   string
		target **int
	}{
		{EnvTickMs, &cfg.TickMs},
		{EnvDelay, &cfg.Delay},
		{EnvDuration, &cfg.Duration},
	}
	for _, v := range ints {
		raw, ok := lookup(v.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.name, err)
		}
		*v.target = &n
	}
	if raw, ok := lookup(EnvTextFile); ok && raw != "" {
		cfg.TextFile = &raw
	}
	if raw, ok := lookup(EnvLogLevel); ok && raw != "" {
		cfg.LogLevel = &raw
	}
	return nil
}
