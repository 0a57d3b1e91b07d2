// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigFileName is the file looked up when --config is not given.
const ConfigFileName = "zscan.yaml"

// ConfigDir returns the per-user config directory for zscan.
// Order: XDG_CONFIG_HOME/zscan, platform-specific fallback.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zscan")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "zscan")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "zscan")
}

// DefaultConfigFile returns the first existing config file among
// ./zscan.yaml and ConfigDir()/zscan.yaml, or "" if neither exists.
func DefaultConfigFile() string {
	for _, candidate := range []string{
		ConfigFileName,
		filepath.Join(ConfigDir(), ConfigFileName),
	} {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}
