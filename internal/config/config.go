package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evgensr/md5-dedupe/internal/digest"
	"github.com/evgensr/md5-dedupe/internal/resolve"
)

type HashingCfg struct {
	ChunkSizeBytes int    `yaml:"chunk_size_bytes" json:"chunk_size_bytes"` // Read buffer size (default: 1 MiB)
	Algorithm      string `yaml:"algorithm" json:"algorithm"`               // md5 (default) or xxh64
	Workers        int    `yaml:"workers" json:"workers"`                   // Concurrent digest workers (default: 1, sequential)
}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics server
}

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"` // 0 disables throttling
}

type Config struct {
	Root            string         `yaml:"root" json:"root"`
	Keep            string         `yaml:"keep" json:"keep"` // first | oldest | newest
	DryRun          bool           `yaml:"dry_run" json:"dry_run"`
	Verbose         bool           `yaml:"verbose" json:"verbose"`
	FollowSymlinks  bool           `yaml:"follow_symlinks" json:"follow_symlinks"`
	IntervalMinutes int            `yaml:"interval_minutes" json:"interval_minutes"` // Daemon mode cycle interval
	Hashing         HashingCfg     `yaml:"hashing" json:"hashing"`
	Prometheus      PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg     `yaml:"logging" json:"logging"`
	ResourceLimits  ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
	DatabasePath    string         `yaml:"database_path" json:"database_path"` // SQLite deletion history; "" disables
	ProtectedPaths  []string       `yaml:"protected_paths" json:"protected_paths"`
}

var (
	errNegativeChunk = errors.New("hashing.chunk_size_bytes cannot be negative")
	errNegativeCPU   = errors.New("resource_limits.max_cpu_percent cannot be negative")
)

// Default returns the configuration used when no config file is given;
// every field can still be overridden by CLI flags.
func Default() *Config {
	cfg := &Config{Root: "."}
	// Defaults cannot fail validation
	_ = cfg.validateAndDefault()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.Root == "" {
		c.Root = "."
	}

	// Keep policy and hash algorithm are validated here, once, so an
	// invalid value fails before any traversal or hashing work begins
	policy, err := resolve.ParseKeepPolicy(c.Keep)
	if err != nil {
		return err
	}
	c.Keep = policy.String()

	algo, err := digest.ParseAlgorithm(c.Hashing.Algorithm)
	if err != nil {
		return err
	}
	c.Hashing.Algorithm = string(algo)

	if c.Hashing.ChunkSizeBytes < 0 {
		return errNegativeChunk
	}
	if c.Hashing.ChunkSizeBytes == 0 {
		c.Hashing.ChunkSizeBytes = digest.DefaultChunkSize
	}
	if c.Hashing.Workers <= 0 {
		c.Hashing.Workers = 1
	}

	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = 60 // Default: hourly cycles in daemon mode
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.ResourceLimits.MaxCPUPercent < 0 {
		return errNegativeCPU
	}

	return nil
}

// KeepPolicy returns the validated keep policy
func (c *Config) KeepPolicy() resolve.KeepPolicy {
	return resolve.KeepPolicy(c.Keep)
}

// HashAlgorithm returns the validated digest algorithm
func (c *Config) HashAlgorithm() digest.Algorithm {
	return digest.Algorithm(c.Hashing.Algorithm)
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
