// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// pkg/config/config.go
package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
)

// Defaults for values the user rarely changes.
const (
	DefaultTeamName     = "Default"
	DefaultCIToolID     = "GOCD"
	DefaultCIToolName   = "GoCD Plugin"
	DefaultMaxFiles     = workflow.DefaultMaxFiles
	DefaultSettleDelay  = workflow.DefaultSettleDelay
	DefaultPollInterval = workflow.DefaultPollInterval
	DefaultPollTimeout  = workflow.DefaultPollTimeout
)

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a Manager with an empty koanf instance.
func NewManager() *Manager {
	return &Manager{koanfInstance: koanf.New(".")}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
// These serve as the baseline configuration if no other sources override them.
func DefaultConfig() Config {
	return Config{
		Team: TeamConfig{Name: DefaultTeamName},
		Input: InputConfig{
			Dir:      ".",
			MaxFiles: DefaultMaxFiles,
		},
		Report: ReportConfig{
			Format:   workflow.DefaultReportFormat,
			Wait:     true,
			Fetcher:  "http",
			CurlPath: "curl",
		},
		Upload: UploadConfig{
			CIToolID:   DefaultCIToolID,
			CIToolName: DefaultCIToolName,
		},
		Timing: TimingConfig{
			SettleDelay:  DefaultSettleDelay,
			PollInterval: DefaultPollInterval,
			PollTimeout:  DefaultPollTimeout,
		},
		HTTP: HTTPConfig{
			ConnectTimeout: 10 * time.Second,
			ReadTimeout:    30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Archive: ArchiveConfig{
			Targets: []string{},
			Retry: RetryConfig{
				MaxAttempts: 3,
				InitialWait: time.Second,
				MaxWait:     30 * time.Second,
			},
			SFTP: SFTPConfig{Port: 22},
			FTPS: FTPSConfig{Port: 21},
		},
	}
}

// Load reads configPath, the environment and flags on top of the defaults.
func (m *Manager) Load(flags *pflag.FlagSet, configPath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(configPath, flags, debug))
}

// LoadWithSources loads sources in ascending priority into a fresh koanf
// instance and unmarshals the result. It does not validate.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := make([]ConfigSource, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	k := koanf.New(".")
	for _, src := range ordered {
		if err := src.Load(k); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := k.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}

	m.koanfInstance = k
	m.currentConfig = postProcess(newCfg)
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := m.currentConfig
	cfg.Archive.Targets = append([]string(nil), m.currentConfig.Archive.Targets...)
	return cfg
}

// Source returns the key's value as loaded, before unmarshaling.
func (m *Manager) Source(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance.Get(key)
}

// postProcess normalizes values that sources can deliver in several shapes.
func postProcess(cfg Config) Config {
	cfg.Server.URL = strings.TrimRight(strings.TrimSpace(cfg.Server.URL), "/")
	cfg.Input.Pattern = strings.TrimSpace(cfg.Input.Pattern)
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = cfg.Input.Dir
	}
	cfg.Report.Format = strings.ToLower(cfg.Report.Format)

	// Environment variables deliver lists as one comma separated string.
	var targets []string
	for _, t := range cfg.Archive.Targets {
		for _, part := range strings.Split(t, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				targets = append(targets, part)
			}
		}
	}
	cfg.Archive.Targets = targets
	return cfg
}

// DefaultConfigAsMap converts the DefaultConfig struct to a flat map for
// koanf's confmap.Provider. Every known key is listed, including those
// without a default, so environment variables can be matched against it.
func DefaultConfigAsMap() map[string]interface{} {
	return DefaultConfig().AsMap()
}

// AsMap flattens c into dotted koanf keys.
func (c Config) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"server.url": c.Server.URL,

		"auth.client_id":     c.Auth.ClientID,
		"auth.client_secret": c.Auth.ClientSecret,

		"team.name": c.Team.Name,

		"input.dir":       c.Input.Dir,
		"input.pattern":   c.Input.Pattern,
		"input.max_files": c.Input.MaxFiles,

		"report.format":    c.Report.Format,
		"report.wait":      c.Report.Wait,
		"report.fetcher":   c.Report.Fetcher,
		"report.dir":       c.Report.Dir,
		"report.timeout":   c.Report.Timeout,
		"report.curl_path": c.Report.CurlPath,

		"upload.branch_name":  c.Upload.BranchName,
		"upload.build_number": c.Upload.BuildNumber,
		"upload.ci_tool_id":   c.Upload.CIToolID,
		"upload.ci_tool_name": c.Upload.CIToolName,

		"timing.settle_delay":  c.Timing.SettleDelay,
		"timing.poll_interval": c.Timing.PollInterval,
		"timing.poll_timeout":  c.Timing.PollTimeout,

		"http.connect_timeout": c.HTTP.ConnectTimeout,
		"http.read_timeout":    c.HTTP.ReadTimeout,

		"log.level":  c.Log.Level,
		"log.format": c.Log.Format,
		"log.file":   c.Log.File,

		"archive.targets":            c.Archive.Targets,
		"archive.retry.max_attempts": c.Archive.Retry.MaxAttempts,
		"archive.retry.initial_wait": c.Archive.Retry.InitialWait,
		"archive.retry.max_wait":     c.Archive.Retry.MaxWait,

		"archive.s3.bucket":   c.Archive.S3.Bucket,
		"archive.s3.prefix":   c.Archive.S3.Prefix,
		"archive.s3.region":   c.Archive.S3.Region,
		"archive.s3.endpoint": c.Archive.S3.Endpoint,

		"archive.azure.account":   c.Archive.Azure.Account,
		"archive.azure.key":       c.Archive.Azure.Key,
		"archive.azure.container": c.Archive.Azure.Container,
		"archive.azure.prefix":    c.Archive.Azure.Prefix,
		"archive.azure.endpoint":  c.Archive.Azure.Endpoint,

		"archive.sftp.host":     c.Archive.SFTP.Host,
		"archive.sftp.port":     c.Archive.SFTP.Port,
		"archive.sftp.user":     c.Archive.SFTP.User,
		"archive.sftp.password": c.Archive.SFTP.Password,
		"archive.sftp.key_path": c.Archive.SFTP.KeyPath,
		"archive.sftp.base_dir": c.Archive.SFTP.BaseDir,

		"archive.ftps.host":     c.Archive.FTPS.Host,
		"archive.ftps.port":     c.Archive.FTPS.Port,
		"archive.ftps.user":     c.Archive.FTPS.User,
		"archive.ftps.password": c.Archive.FTPS.Password,
		"archive.ftps.base_dir": c.Archive.FTPS.BaseDir,
	}
}

// Tree returns c as nested maps keyed like the config file, with durations
// rendered as strings.
func (c Config) Tree() map[string]interface{} {
	flat := c.AsMap()
	for key, v := range flat {
		if d, ok := v.(time.Duration); ok {
			flat[key] = d.String()
		}
	}
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(flat, "."), nil)
	return k.Raw()
}

const redacted = "********"

// Redacted returns a copy safe to log: secrets are masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}
	c.Auth.ClientSecret = mask(c.Auth.ClientSecret)
	c.Archive.Azure.Key = mask(c.Archive.Azure.Key)
	c.Archive.SFTP.Password = mask(c.Archive.SFTP.Password)
	c.Archive.FTPS.Password = mask(c.Archive.FTPS.Password)
	return c
}
