package graph

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the resource profile applied to a store opened by Open.
// The defaults describe a disposable, low-footprint session store:
// small bounded caches, an in-memory journal, a fixed plan-cache size.
// They are not a production durability profile.
type Config struct {
	// PageCacheKiB bounds the engine page cache, in KiB.
	PageCacheKiB int `yaml:"page_cache_kib"`
	// HeapLimitBytes is a soft cap on the engine's heap usage.
	HeapLimitBytes int64 `yaml:"heap_limit_bytes"`
	// DurabilityLog requests a persistent rollback journal. Off by
	// default: the disposable store keeps its journal in memory, which
	// still supports rollback but survives no crash.
	DurabilityLog bool `yaml:"durability_log"`
	// PlanCacheSize bounds the number of cached prepared statements.
	PlanCacheSize int `yaml:"plan_cache_size"`
}

// DefaultConfig returns the disposable-session profile.
func DefaultConfig() Config {
	return Config{
		PageCacheKiB:   5 * 1024,
		HeapLimitBytes: 5 << 20,
		DurabilityLog:  false,
		PlanCacheSize:  15,
	}
}

// ParseConfig decodes a YAML document over the default profile, so keys
// omitted from the document keep their default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("graph: parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PageCacheKiB < 0 {
		return fmt.Errorf("graph: config: page_cache_kib must not be negative, got %d", c.PageCacheKiB)
	}
	if c.HeapLimitBytes < 0 {
		return fmt.Errorf("graph: config: heap_limit_bytes must not be negative, got %d", c.HeapLimitBytes)
	}
	if c.PlanCacheSize < 0 {
		return fmt.Errorf("graph: config: plan_cache_size must not be negative, got %d", c.PlanCacheSize)
	}
	return nil
}
