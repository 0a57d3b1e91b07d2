// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// pkg/config/source.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every zscan environment variable.
const EnvPrefix = "ZSCAN_"

// ConfigSource represents a configuration source that can load values into koanf.
// Sources are loaded in priority order (lowest first), with higher priority sources
// overriding lower priority values.
//
// Built-in sources and their priorities:
//   - DefaultSource (10): Hardcoded default values
//   - FileSource (20): YAML config file
//   - CIEnvSource (25): Variables set by the CI server (BRANCH_NAME, BUILD_NUMBER)
//   - EnvSource (30): Environment variables (ZSCAN_*)
//   - FlagSource (40): Command-line flags
type ConfigSource interface {
	// Name returns a human-readable name for this source (for logging/debugging)
	Name() string

	// Priority returns the load priority. Lower values are loaded first,
	// higher values override lower ones.
	Priority() int

	// Load loads configuration values into the provided koanf instance.
	Load(k *koanf.Koanf) error
}

// DefaultSource provides hardcoded default configuration values.
// Priority: 10 (lowest, loaded first)
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads configuration from a YAML file.
// Priority: 20
type FileSource struct {
	Path string // Path to config file (optional, silently skipped if empty or missing)
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}

	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error checking config file %s: %w", s.Path, err)
	}

	if err := k.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}
	return nil
}

// ciEnvKeys maps variables exported by the CI server to config keys.
var ciEnvKeys = map[string]string{
	"BRANCH_NAME":  "upload.branch_name",
	"BUILD_NUMBER": "upload.build_number",
}

// CIEnvSource reads the branch and build number the CI server exports.
// Priority: 25
type CIEnvSource struct{}

func (s *CIEnvSource) Name() string  { return "ci-env" }
func (s *CIEnvSource) Priority() int { return 25 }

func (s *CIEnvSource) Load(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("", ".", func(key string) string {
		if v, ok := ciEnvKeys[key]; ok && os.Getenv(key) != "" {
			return v
		}
		return ""
	}), nil); err != nil {
		return fmt.Errorf("error loading CI environment: %w", err)
	}
	return nil
}

// EnvSource loads configuration from environment variables. Names are
// the upper-cased key with dots replaced by underscores:
//
//	ZSCAN_LOG_LEVEL -> log.level
//	ZSCAN_AUTH_CLIENT_ID -> auth.client_id
//
// Variables that name no known key are ignored.
// Priority: 30
type EnvSource struct {
	Prefix string // Environment variable prefix (default: "ZSCAN_")
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}

	known := make(map[string]string)
	for key := range DefaultConfigAsMap() {
		known[prefix+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = key
	}

	if err := k.Load(env.Provider(prefix, ".", func(name string) string {
		return known[name]
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// FlagSource loads configuration from command-line flags. Flags listed in
// FlagKeys are stored under their config key; other flags are ignored.
// Priority: 40 (highest, overrides all other sources)
type FlagSource struct {
	Flags *pflag.FlagSet
	Debug bool // If true, set log.level to "debug"
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags != nil {
		provider := posflag.ProviderWithFlag(s.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			val := posflag.FlagVal(s.Flags, f)
			if f.Name == FlagNoWait {
				if b, isBool := val.(bool); isBool {
					val = !b
				}
			}
			return key, val
		})
		if err := k.Load(provider, nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}
	}

	// --debug wins over any configured level.
	if s.Debug {
		_ = k.Set("log.level", "debug")
	}

	return nil
}

// DefaultSources returns the standard configuration sources.
// Order: defaults -> file -> CI env -> env -> flags
func DefaultSources(configPath string, flags *pflag.FlagSet, debug bool) []ConfigSource {
	return []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&CIEnvSource{},
		&EnvSource{Prefix: EnvPrefix},
		&FlagSource{Flags: flags, Debug: debug},
	}
}
