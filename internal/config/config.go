// Package config loads RetroDay settings and API credentials.
//
// Settings live in a YAML file (~/.retroday/config.yaml, overridable via
// RETRODAY_CONFIG). Credentials live in a separate JSON file so the format
// stays compatible with existing api_keys.json files. Neither file is
// required: every problem degrades to defaults, and a missing movie API key
// simply routes movies to the static tier.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/retroday/internal/fetch"
	"github.com/abelbrown/retroday/internal/onthisday"
	"github.com/abelbrown/retroday/internal/tmdb"
	"github.com/abelbrown/retroday/internal/wiki"
)

// Config is the application configuration.
type Config struct {
	Endpoints EndpointConfig `yaml:"endpoints"`

	// TimeoutSeconds bounds every individual network call.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// CacheDir holds downloaded poster images.
	CacheDir string `yaml:"cache_dir"`

	// KeysFile is the JSON credentials file.
	KeysFile string `yaml:"keys_file"`

	// EventLog is the JSONL observability log.
	EventLog string `yaml:"event_log"`

	// Keys are loaded from KeysFile and the environment, never from YAML.
	Keys Credentials `yaml:"-"`
}

// EndpointConfig holds upstream base URLs.
type EndpointConfig struct {
	Wikipedia  string `yaml:"wikipedia"`
	OnThisDay  string `yaml:"onthisday"`
	TMDB       string `yaml:"tmdb"`
	TMDBImages string `yaml:"tmdb_images"`
}

// Credentials is the api_keys.json shape.
type Credentials struct {
	TMDB string `json:"tmdb"`
	News string `json:"news"`
}

// DataDir returns ~/.retroday.
func DataDir() string {
	return filepath.Join(userHomeDir(), ".retroday")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		Endpoints: EndpointConfig{
			Wikipedia:  wiki.DefaultEndpoint,
			OnThisDay:  onthisday.DefaultBaseURL,
			TMDB:       tmdb.DefaultEndpoint,
			TMDBImages: tmdb.DefaultImageBase,
		},
		TimeoutSeconds: int(fetch.DefaultTimeout / time.Second),
		CacheDir:       filepath.Join(dir, "cache"),
		KeysFile:       filepath.Join(dir, "api_keys.json"),
		EventLog:       filepath.Join(dir, "retroday.events.jsonl"),
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	if custom := os.Getenv("RETRODAY_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(DataDir(), "config.yaml")
}

// Load reads config from ConfigPath. See LoadFrom.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path, then credentials. The returned Config is
// always usable. A missing file yields defaults and no error; a malformed
// settings or credentials file yields defaults for that part plus an error
// describing it. Defaults are never written back to disk.
func LoadFrom(path string) (*Config, error) {
	var errs []error

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		errs = append(errs, fmt.Errorf("read config: %w", err))
	default:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", path, err))
		} else {
			cfg = hydrateDefaults(fileCfg)
		}
	}

	if err := cfg.LoadKeys(); err != nil {
		errs = append(errs, err)
	}
	cfg.AutoPopulateFromEnv()

	return cfg, errors.Join(errs...)
}

// hydrateDefaults fills every zero field from DefaultConfig.
func hydrateDefaults(cfg Config) *Config {
	def := DefaultConfig()
	if cfg.Endpoints.Wikipedia == "" {
		cfg.Endpoints.Wikipedia = def.Endpoints.Wikipedia
	}
	if cfg.Endpoints.OnThisDay == "" {
		cfg.Endpoints.OnThisDay = def.Endpoints.OnThisDay
	}
	if cfg.Endpoints.TMDB == "" {
		cfg.Endpoints.TMDB = def.Endpoints.TMDB
	}
	if cfg.Endpoints.TMDBImages == "" {
		cfg.Endpoints.TMDBImages = def.Endpoints.TMDBImages
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = def.CacheDir
	}
	if cfg.KeysFile == "" {
		cfg.KeysFile = def.KeysFile
	}
	if cfg.EventLog == "" {
		cfg.EventLog = def.EventLog
	}
	cfg.CacheDir = expandPath(cfg.CacheDir)
	cfg.KeysFile = expandPath(cfg.KeysFile)
	cfg.EventLog = expandPath(cfg.EventLog)
	return &cfg
}

// Timeout is the per-request network timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadKeys reads credentials from KeysFile. A missing file is not an error.
// A malformed file leaves every key empty.
func (c *Config) LoadKeys() error {
	c.Keys = Credentials{}
	data, err := os.ReadFile(c.KeysFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read keys: %w", err)
	}

	var keys Credentials
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("parse %s: %w", c.KeysFile, err)
	}
	c.Keys = keys
	return nil
}

// AutoPopulateFromEnv overrides keys from environment variables
func (c *Config) AutoPopulateFromEnv() {
	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		c.Keys.TMDB = key
	}
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		c.Keys.News = key
	}
}

// ConfiguredKeys names the credentials that are present, for startup logging.
// Values are never included.
func (c *Config) ConfiguredKeys() []string {
	var keys []string
	if c.Keys.TMDB != "" {
		keys = append(keys, "tmdb")
	}
	if c.Keys.News != "" {
		keys = append(keys, "news")
	}
	return keys
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
