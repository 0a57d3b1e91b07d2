// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package bind

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/zscan"
)

func TestBindUploadSettings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		expected workflow.Settings
	}{
		{
			name: "defaults",
			mutate: func(c *config.Config) {
				c.Input.Pattern = "*.apk"
			},
			expected: workflow.Settings{
				Dir:           ".",
				Pattern:       "*.apk",
				MaxFiles:      config.DefaultMaxFiles,
				TeamName:      config.DefaultTeamName,
				WaitForReport: true,
				ReportFormat:  "json",
				Upload: zscan.UploadMetadata{
					CIToolID:   config.DefaultCIToolID,
					CIToolName: config.DefaultCIToolName,
				},
				SettleDelay:  config.DefaultSettleDelay,
				PollInterval: config.DefaultPollInterval,
				PollTimeout:  config.DefaultPollTimeout,
			},
		},
		{
			name: "everything overridden",
			mutate: func(c *config.Config) {
				c.Input = config.InputConfig{Dir: "/ci/out", Pattern: "*.ipa", MaxFiles: 2}
				c.Auth = config.AuthConfig{ClientID: "id", ClientSecret: "secret"}
				c.Team.Name = "Mobile"
				c.Report = config.ReportConfig{Format: "sarif", Wait: false, Fetcher: "curl", Dir: "/ci/reports"}
				c.Upload.BranchName = "main"
				c.Upload.BuildNumber = "42"
				c.Timing = config.TimingConfig{SettleDelay: time.Second, PollInterval: 2 * time.Second, PollTimeout: time.Minute}
			},
			expected: workflow.Settings{
				Dir:          "/ci/out",
				Pattern:      "*.ipa",
				MaxFiles:     2,
				ClientID:     "id",
				ClientSecret: "secret",
				TeamName:     "Mobile",
				ReportFormat: "sarif",
				ReportDir:    "/ci/reports",
				Upload: zscan.UploadMetadata{
					CIToolID:    config.DefaultCIToolID,
					CIToolName:  config.DefaultCIToolName,
					BranchName:  "main",
					BuildNumber: "42",
				},
				SettleDelay:  time.Second,
				PollInterval: 2 * time.Second,
				PollTimeout:  time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(&cfg)
			require.Equal(t, tt.expected, BindUploadSettings(cfg))
		})
	}
}

func TestBindUploadSettingsFromFlags(t *testing.T) {
	t.Setenv("BRANCH_NAME", "")
	t.Setenv("BUILD_NUMBER", "")

	flags := pflag.NewFlagSet("upload", pflag.ContinueOnError)
	config.BindFlags(flags)
	config.BindUploadFlags(flags)
	require.NoError(t, flags.Parse([]string{
		"--pattern", "*.apk",
		"--team", "Mobile",
		"--no-wait",
		"--build-number", "7",
	}))

	mgr := config.NewManager()
	require.NoError(t, mgr.Load(flags, ""))

	settings := BindUploadSettings(mgr.Get())
	require.Equal(t, "*.apk", settings.Pattern)
	require.Equal(t, "Mobile", settings.TeamName)
	require.False(t, settings.WaitForReport)
	require.Equal(t, "7", settings.Upload.BuildNumber)
	require.Equal(t, ".", settings.ReportDir, "report dir follows the input dir")
}
