// Package config loads tada settings from <data-dir>/config.toml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/idilsaglam/tada/internal/debounce"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/search"
	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/ui"
)

// FileName is the config file inside the data directory.
const FileName = "config.toml"

type Config struct {
	Backend string       `toml:"backend"`
	Theme   string       `toml:"theme"`
	Search  SearchConfig `toml:"search"`
	Log     LogConfig    `toml:"log"`
}

type SearchConfig struct {
	Engine   string   `toml:"engine"`
	Debounce Duration `toml:"debounce"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration reads and writes Go duration strings such as "400ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func Default() *Config {
	return &Config{
		Backend: store.BackendJSON,
		Theme:   ui.ThemeClassic,
		Search: SearchConfig{
			Engine:   search.EngineFuzzy,
			Debounce: Duration(debounce.DefaultDelay),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// DefaultDataDir is $TADA_DATA_DIR, else ~/.tada.
func DefaultDataDir() (string, error) {
	if v := os.Getenv("TADA_DATA_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// Path returns the config file location for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load returns defaults overlaid with the config file, if present, and
// then the environment. The result is validated.
func Load(dataDir string) (*Config, error) {
	cfg := Default()
	path := Path(dataDir)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(dataDir string, cfg *Config) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.Create(Path(dataDir))
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TADA_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("TADA_SEARCH_ENGINE"); v != "" {
		c.Search.Engine = v
	}
	if v := os.Getenv("TADA_DEBOUNCE"); v != "" {
		if err := c.Search.Debounce.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("TADA_DEBOUNCE: %w", err)
		}
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TADA_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Overrides holds command-line values. Empty fields are left alone.
type Overrides struct {
	Backend  string
	Theme    string
	Engine   string
	LogLevel string
}

// Apply overlays o and revalidates.
func (c *Config) Apply(o Overrides) error {
	if o.Backend != "" {
		c.Backend = o.Backend
	}
	if o.Theme != "" {
		c.Theme = o.Theme
	}
	if o.Engine != "" {
		c.Search.Engine = o.Engine
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	return c.Validate()
}

// Validate normalizes names to lower case and rejects unknown values.
func (c *Config) Validate() error {
	var errs []error

	backend, ok := store.NormalizeBackend(c.Backend)
	if !ok {
		errs = append(errs, fmt.Errorf("backend %q: want one of %s", c.Backend, strings.Join(store.Backends, ", ")))
	}
	c.Backend = backend

	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if c.Theme == "" {
		c.Theme = ui.ThemeClassic
	}
	if !slices.Contains(ui.Themes, c.Theme) {
		errs = append(errs, fmt.Errorf("theme %q: want one of %s", c.Theme, strings.Join(ui.Themes, ", ")))
	}

	c.Search.Engine = strings.ToLower(strings.TrimSpace(c.Search.Engine))
	if c.Search.Engine == "" {
		c.Search.Engine = search.EngineFuzzy
	}
	if !slices.Contains(search.Engines, c.Search.Engine) {
		errs = append(errs, fmt.Errorf("search.engine %q: want one of %s", c.Search.Engine, strings.Join(search.Engines, ", ")))
	}
	if c.Search.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("search.debounce %s: must be positive", time.Duration(c.Search.Debounce)))
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format %q: want text, json or logfmt", c.Log.Format))
	}
	return errors.Join(errs...)
}

// DebounceDelay returns the search quiet period.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Search.Debounce)
}

// LogOptions converts the [log] table for logging.New.
func (c *Config) LogOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.Log.Level
	opts.Format = c.Log.Format
	return opts
}
