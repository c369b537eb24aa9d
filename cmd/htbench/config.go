package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/theflywheel/hashtable"
	"github.com/theflywheel/hashtable/hashfn"
)

const envPrefix = "HTBENCH_"

// Key kinds a workload can generate.
const (
	KeyKindInt    = "int"
	KeyKindString = "string"
	KeyKindUUID   = "uuid"
)

// Config describes one workload run.
type Config struct {
	Keys        int     `koanf:"keys"`
	RemoveRatio float64 `koanf:"remove-ratio"`
	KeyKind     string  `koanf:"key-kind"`
	Hash        string  `koanf:"hash"`
	MinCapacity int     `koanf:"min-capacity"`
	LowerBound  float64 `koanf:"lower-bound"`
	UpperBound  float64 `koanf:"upper-bound"`
	Seed        uint64  `koanf:"seed"`
	Output      string  `koanf:"output"`
}

// DefaultConfig returns the configuration used for keys no source sets.
func DefaultConfig() *Config {
	return &Config{
		Keys:        100_000,
		RemoveRatio: 0.9,
		KeyKind:     KeyKindString,
		Hash:        "xxhash",
		MinCapacity: 2,
		LowerBound:  hashtable.DefaultLoadFactorBounds.Lower,
		UpperBound:  hashtable.DefaultLoadFactorBounds.Upper,
		Seed:        1,
	}
}

// LoadConfig merges configuration from, in increasing priority: defaults,
// the file at path (if any), HTBENCH_ environment variables and overrides.
func LoadConfig(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := loadConfigFromPath(k, path); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := loadEnvironmentVariables(k); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("error applying flag %s: %w", key, err)
		}
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

func loadConfigFromPath(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch filepath.Ext(path) {
	case ".json":
		parser = json.Parser()
	default:
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

// loadEnvironmentVariables maps HTBENCH_REMOVE_RATIO to remove-ratio and so on.
func loadEnvironmentVariables(k *koanf.Koanf) error {
	return k.Load(env.ProviderWithValue(envPrefix, "", func(key, value string) (string, interface{}) {
		if !strings.HasPrefix(key, envPrefix) {
			return "", nil
		}
		return strings.ToLower(strings.ReplaceAll(key[len(envPrefix):], "_", "-")), value
	}), nil)
}

// Bounds returns the configured load factor bounds.
func (c *Config) Bounds() hashtable.LoadFactorBounds {
	return hashtable.LoadFactorBounds{Lower: c.LowerBound, Upper: c.UpperBound}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Keys <= 0 {
		result = multierror.Append(result, fmt.Errorf("keys must be positive, got %d", c.Keys))
	}
	if c.RemoveRatio < 0 || c.RemoveRatio > 1 {
		result = multierror.Append(result, fmt.Errorf("remove-ratio must be within [0, 1], got %v", c.RemoveRatio))
	}
	if c.MinCapacity < 0 {
		result = multierror.Append(result, fmt.Errorf("min-capacity must not be negative, got %d", c.MinCapacity))
	}
	if err := c.Bounds().Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	switch c.KeyKind {
	case KeyKindInt:
		if _, err := hashfn.IntByName(c.Hash); err != nil {
			result = multierror.Append(result, err)
		}
	case KeyKindString, KeyKindUUID:
		if _, err := hashfn.StringByName(c.Hash); err != nil {
			result = multierror.Append(result, err)
		}
	default:
		result = multierror.Append(result, fmt.Errorf("key-kind must be one of int, string, uuid, got %q", c.KeyKind))
	}

	return result.ErrorOrNil()
}
