// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for zscan.
type Config struct {
	Server  ServerConfig  `description:"zScan server" koanf:"server"`
	Auth    AuthConfig    `description:"API credentials" koanf:"auth"`
	Team    TeamConfig    `description:"Team assignment" koanf:"team"`
	Input   InputConfig   `description:"Binaries to upload" koanf:"input"`
	Report  ReportConfig  `description:"Assessment report retrieval" koanf:"report"`
	Upload  UploadConfig  `description:"Upload metadata" koanf:"upload"`
	Timing  TimingConfig  `description:"Waits and polling" koanf:"timing"`
	HTTP    HTTPConfig    `description:"HTTP client timeouts" koanf:"http"`
	Log     LogConfig     `description:"Logging configuration" koanf:"log"`
	Archive ArchiveConfig `description:"Report archival" koanf:"archive"`
}

// ServerConfig holds the zScan console location.
type ServerConfig struct {
	URL string `description:"Base URL of the zScan server" koanf:"url" validate:"required,url"`
}

// AuthConfig holds API key credentials.
type AuthConfig struct {
	ClientID     string `description:"API client id" koanf:"client_id" validate:"required"`
	ClientSecret string `description:"API client secret" koanf:"client_secret" validate:"required"`
}

// TeamConfig selects the team new apps are assigned to.
type TeamConfig struct {
	Name string `description:"Team name; falls back to Default" koanf:"name" validate:"required"`
}

// InputConfig selects the binaries.
type InputConfig struct {
	Dir      string `description:"Directory searched for binaries" koanf:"dir" validate:"required"`
	Pattern  string `description:"Wildcard pattern (* and ?) matched against file names" koanf:"pattern" validate:"required"`
	MaxFiles int    `description:"Maximum number of matched files" koanf:"max_files" validate:"min=1"`
}

// ReportConfig controls waiting for and downloading reports.
type ReportConfig struct {
	Format   string        `description:"Report format: json | sarif" koanf:"format" validate:"oneof=json sarif"`
	Wait     bool          `description:"Wait for the assessment and download its report" koanf:"wait"`
	Fetcher  string        `description:"Report downloader: http | curl" koanf:"fetcher" validate:"oneof=http curl"`
	Dir      string        `description:"Report output directory (defaults to input.dir)" koanf:"dir"`
	Timeout  time.Duration `description:"Maximum time for one report download (0 = no limit)" koanf:"timeout" validate:"min=0"`
	CurlPath string        `description:"curl binary used by the curl fetcher" koanf:"curl_path"`
}

// UploadConfig is sent with every upload.
type UploadConfig struct {
	BranchName  string `description:"Source branch" koanf:"branch_name"`
	BuildNumber string `description:"CI build number" koanf:"build_number"`
	CIToolID    string `description:"CI tool identifier" koanf:"ci_tool_id" validate:"required"`
	CIToolName  string `description:"CI tool display name" koanf:"ci_tool_name" validate:"required"`
}

// TimingConfig holds the waits used while a build is processed.
type TimingConfig struct {
	SettleDelay  time.Duration `description:"Wait before listing teams and after an assessment completes" koanf:"settle_delay" validate:"min=0"`
	PollInterval time.Duration `description:"Interval between status checks" koanf:"poll_interval" validate:"gt=0"`
	PollTimeout  time.Duration `description:"Maximum time spent polling one build" koanf:"poll_timeout" validate:"gt=0"`
}

// HTTPConfig holds HTTP client timeouts.
type HTTPConfig struct {
	ConnectTimeout time.Duration `description:"TCP and TLS connect timeout" koanf:"connect_timeout" validate:"gt=0"`
	ReadTimeout    time.Duration `description:"Response header timeout" koanf:"read_timeout" validate:"gt=0"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level: debug | info | warn | error" koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `description:"Log format: json | text" koanf:"format" validate:"oneof=json text"`
	File   string `description:"Log file path" koanf:"file"`
}

// ArchiveConfig lists the stores every downloaded report is copied to.
type ArchiveConfig struct {
	Targets []string    `description:"Archive targets: s3 | azure | sftp | ftps" koanf:"targets" validate:"dive,oneof=s3 azure sftp ftps"`
	Retry   RetryConfig `description:"Retry policy for archive uploads" koanf:"retry"`
	S3      S3Config    `koanf:"s3"`
	Azure   AzureConfig `koanf:"azure"`
	SFTP    SFTPConfig  `koanf:"sftp"`
	FTPS    FTPSConfig  `koanf:"ftps"`
}

// RetryConfig is the backoff policy for archive uploads.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" validate:"min=1"`
	InitialWait time.Duration `koanf:"initial_wait" validate:"min=0"`
	MaxWait     time.Duration `koanf:"max_wait" validate:"min=0"`
}

// S3Config uses the AWS default credential chain.
type S3Config struct {
	Bucket   string `koanf:"bucket"`
	Prefix   string `koanf:"prefix"`
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"` // S3-compatible store instead of AWS
}

type AzureConfig struct {
	Account   string `koanf:"account"`
	Key       string `koanf:"key"`
	Container string `koanf:"container"`
	Prefix    string `koanf:"prefix"`
	Endpoint  string `koanf:"endpoint"` // service URL, e.g. Azurite; defaults to the account's public endpoint
}

type SFTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	KeyPath  string `koanf:"key_path"`
	BaseDir  string `koanf:"base_dir"`
}

type FTPSConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	BaseDir  string `koanf:"base_dir"`
}
