package store

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/navi-cx/fid/fid"
)

// SeriesConfig names one FID file tracked by a Store, with an optional
// page-size override (falling back to the store's default).
type SeriesConfig struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	PageSize int    `yaml:"page_size,omitempty"`
}

// Config is the top-level store configuration document.
type Config struct {
	DefaultPageSize int            `yaml:"default_page_size"`
	HandleCacheSize int            `yaml:"handle_cache_size"`
	Series          []SeriesConfig `yaml:"series"`
}

// LoadConfig decodes a store configuration from r, filling in defaults for
// any zero-valued fields.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("store: decode config: %w", err)
	}
	if cfg.DefaultPageSize == 0 {
		cfg.DefaultPageSize = fid.DefaultPageSize
	}
	if cfg.HandleCacheSize == 0 {
		cfg.HandleCacheSize = 32
	}
	for i := range cfg.Series {
		if cfg.Series[i].Path == "" {
			return nil, fmt.Errorf("store: series %q has no path", cfg.Series[i].Name)
		}
		if cfg.Series[i].PageSize == 0 {
			cfg.Series[i].PageSize = cfg.DefaultPageSize
		}
	}
	return &cfg, nil
}

func (c *Config) pageSize(name string) (int, bool) {
	for _, s := range c.Series {
		if s.Name == name {
			return s.PageSize, true
		}
	}
	return 0, false
}

func (c *Config) path(name string) (string, bool) {
	for _, s := range c.Series {
		if s.Name == name {
			return s.Path, true
		}
	}
	return "", false
}
