// Package config loads the surrounding CLI's configuration surface:
// cache file path and size, page size, backend store descriptors, and
// the idle-eviction period. None of this is part of the core
// cache/device contract; it exists to wire concrete components
// together for the command-line front-end.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BackendKind selects which Store implementation a Backend descriptor
// resolves to.
type BackendKind string

const (
	BackendFile  BackendKind = "file"
	BackendSQL   BackendKind = "sql"
	BackendBolt  BackendKind = "bolt"
	BackendNull  BackendKind = "null"
	BackendMulti BackendKind = "multi"
)

// PolicyKind selects how a Multi backend composes its sub-backends.
type PolicyKind string

const (
	PolicyConcat PolicyKind = "concat"
	PolicyStrip  PolicyKind = "strip"
	PolicyMirror PolicyKind = "mirror"
)

// Backend describes one backend Store, possibly a composition of
// nested backends under a policy.
type Backend struct {
	Kind   BackendKind `yaml:"kind"`
	Path   string      `yaml:"path,omitempty"`
	SizeMB uint64      `yaml:"size_mb,omitempty"`

	Policy PolicyKind `yaml:"policy,omitempty"`
	Parts  []Backend  `yaml:"parts,omitempty"`
}

// Config is the root configuration document for the pagecached CLI.
type Config struct {
	// CachePath is the path to the local mmap'd cache file.
	CachePath string `yaml:"cache_path"`
	// CacheSizeMB is the cache's total data size in mebibytes; its size
	// in bytes must be a multiple of the page size in bytes.
	CacheSizeMB uint64 `yaml:"cache_size_mb"`
	// PageSizeKB is the page size in kibibytes.
	PageSizeKB uint64 `yaml:"page_size_kb"`

	// Backend describes the backend Store the cache warms from and
	// writes dirty pages back to.
	Backend Backend `yaml:"backend"`

	// IdleEvictionPeriod is how often the idle-eviction ticker fires
	// control(Evict(...)) against the Device.
	IdleEvictionPeriod time.Duration `yaml:"idle_eviction_period"`
	// IdleThreshold is how long the Device must have been untouched
	// before an idle tick actually triggers an eviction sweep.
	IdleThreshold time.Duration `yaml:"idle_threshold"`

	// MetricsAddr is the HTTP listen address for the metrics scrape
	// endpoint; empty disables it. Not part of the core contract.
	MetricsAddr string `yaml:"metrics_addr"`
}

// PageSizeBytes returns the page size in bytes.
func (c Config) PageSizeBytes() uint64 { return c.PageSizeKB * 1024 }

// CacheSizeBytes returns the cache data size in bytes.
func (c Config) CacheSizeBytes() uint64 { return c.CacheSizeMB * 1024 * 1024 }

// Load reads and parses a YAML configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns a Config with conservative defaults, to be
// overwritten by whatever a loaded YAML document specifies.
func Default() Config {
	return Config{
		CachePath:          "pagecached.bin",
		CacheSizeMB:        256,
		PageSizeKB:         4,
		Backend:            Backend{Kind: BackendNull, SizeMB: 1024},
		IdleEvictionPeriod: 5 * time.Second,
		IdleThreshold:      2 * time.Second,
	}
}

// Validate checks the geometry invariants the core's constructors will
// otherwise reject deeper in the stack, so misconfiguration is reported
// with a config-shaped error instead of a pagemap one.
func (c Config) Validate() error {
	if c.CacheSizeBytes() == 0 {
		return fmt.Errorf("cache_size_mb must be nonzero")
	}
	if c.PageSizeBytes() == 0 {
		return fmt.Errorf("page_size_kb must be nonzero")
	}
	if c.CacheSizeBytes()%c.PageSizeBytes() != 0 {
		return fmt.Errorf("cache size in bytes must be a multiple of page size in bytes")
	}
	if c.CachePath == "" {
		return fmt.Errorf("cache_path must be set")
	}
	return nil
}
