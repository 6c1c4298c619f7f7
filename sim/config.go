package sim

import (
	"encoding/json"
	"os"

	"github.com/kestrelsim/rv32cache/cache"
	"github.com/kestrelsim/rv32cache/mem"
	"github.com/kestrelsim/rv32cache/simerr"
)

// Config bundles every construction parameter the simulator needs: main
// memory sizing, whether a cache sits in front of it, and the cache's own
// parameters. Mirrors the teacher's timing-config file pattern: a plain
// JSON-tagged struct with Default/Load/Save/Validate/Clone.
type Config struct {
	Memory   mem.Config   `json:"memory"`
	UseCache bool         `json:"use_cache"`
	Cache    cache.Config `json:"cache"`
}

// DefaultConfig returns the spec's default configuration: default main
// memory, a cache present and using its own defaults.
func DefaultConfig() Config {
	return Config{
		Memory:   mem.DefaultConfig(),
		UseCache: true,
		Cache:    cache.DefaultConfig(),
	}
}

// LoadConfig reads a Config from a JSON file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, simerr.Wrap(simerr.ConfigError, err, "reading config %s", path)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, simerr.Wrap(simerr.ConfigError, err, "parsing config %s", path)
	}
	return cfg, nil
}

// SaveConfig writes cfg as JSON to path.
func SaveConfig(cfg Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return simerr.Wrap(simerr.ConfigError, err, "encoding config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return simerr.Wrap(simerr.ConfigError, err, "writing config %s", path)
	}
	return nil
}

// Validate checks every structural precondition on the bundled
// configuration. The memory side has none beyond a positive size; the
// cache side delegates to cache.Config.Validate.
func (c Config) Validate() error {
	if c.Memory.SizeWords <= 0 {
		return simerr.New(simerr.ConfigError, "memory size %d must be positive", c.Memory.SizeWords)
	}
	if c.UseCache {
		if err := c.Cache.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of cfg.
func (c Config) Clone() Config {
	return c
}
