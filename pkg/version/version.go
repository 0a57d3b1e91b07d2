// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// pkg/version/version.go
// Package version provides version metadata for the application.
package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of zscan.
	Version = "dev"
	// Commit holds the current version commit of zscan.
	Commit = "none"
	// BuildDate holds the build date of zscan.
	BuildDate = "unknown"
	// StartDate holds the start date of zscan.
	StartDate = time.Now()
)

// Struct returns version information in a structured format.
type Struct struct {
	Version    string `json:"version" yaml:"version"`
	Commit     string `json:"commit" yaml:"commit"`
	BuildDate  string `json:"buildDate" yaml:"buildDate"`
	GoVersion  string `json:"goVersion" yaml:"goVersion"`
	Platform   string `json:"platform" yaml:"platform"`
	Prerelease bool   `json:"prerelease" yaml:"prerelease"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("zscan %s (commit: %s, date: %s)", Version, Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	s := Struct{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if v, err := Parse(); err == nil {
		s.Version = v.String()
		s.Prerelease = v.Prerelease() != ""
	} else {
		s.Prerelease = true
	}
	return s
}

// Parse parses Version as a semantic version. Development builds fail.
func Parse() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("version %q: %w", Version, err)
	}
	return v, nil
}

// UserAgent identifies zscan in HTTP requests.
func UserAgent() string {
	v := "dev"
	if parsed, err := Parse(); err == nil {
		v = parsed.String()
	}
	return fmt.Sprintf("zscan-gocd/%s (%s/%s)", v, runtime.GOOS, runtime.GOARCH)
}
