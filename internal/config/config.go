// Package config loads console configuration from a TOML file with
// environment variable overrides.
//
// Resolution order, later wins: built-in defaults, the config file,
// ELISP_EVAL_* environment variables. A missing config file is not an
// error; the defaults simply stand.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable overrides.
const (
	EnvHistoryFile = "ELISP_EVAL_HISTORY_FILE"
	EnvHistoryMax  = "ELISP_EVAL_HISTORY_MAX"
	EnvBackend     = "ELISP_EVAL_BACKEND"
)

// Config holds every console setting.
type Config struct {
	History HistoryConfig `toml:"history"`
	Eval    EvalConfig    `toml:"eval"`
}

// HistoryConfig configures the persisted submission history.
type HistoryConfig struct {
	// FilePath is where the history ring is persisted.
	FilePath string `toml:"file_path"`

	// MaxSize bounds the ring; must be positive.
	MaxSize int `toml:"max_size"`
}

// EvalConfig configures expression evaluation.
type EvalConfig struct {
	// Backend selects the expression backend: "lisp" or "lua".
	Backend string `toml:"backend"`
}

// FileSystem abstracts file access so tests can load from an in-memory
// tree.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real filesystem.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{
			FilePath: defaultHistoryPath(),
			MaxSize:  100,
		},
		Eval: EvalConfig{
			Backend: "lisp",
		},
	}
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "elisp-eval", "history.json")
}

// Load builds the effective configuration from path. An empty path or a
// nonexistent file yields the defaults plus environment overrides.
func Load(path string) (Config, error) {
	return LoadFS(OSFS{}, path)
}

// LoadFS is Load with an explicit filesystem.
func LoadFS(fsys FileSystem, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := fsys.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// defaults stand
		default:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvHistoryFile); ok {
		cfg.History.FilePath = v
	}
	if v, ok := os.LookupEnv(EnvHistoryMax); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxSize = n
		}
	}
	if v, ok := os.LookupEnv(EnvBackend); ok {
		cfg.Eval.Backend = v
	}
}

func (c Config) validate() error {
	if c.History.MaxSize <= 0 {
		return fmt.Errorf("history.max_size must be positive, got %d", c.History.MaxSize)
	}
	switch c.Eval.Backend {
	case "lisp", "lua":
	default:
		return fmt.Errorf("eval.backend must be \"lisp\" or \"lua\", got %q", c.Eval.Backend)
	}
	return nil
}
