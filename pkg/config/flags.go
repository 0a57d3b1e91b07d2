// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// pkg/config/flags.go
package config

import "github.com/spf13/pflag"

// Flag names for the upload command.
const (
	FlagServerURL    = "server-url"
	FlagClientID     = "client-id"
	FlagClientSecret = "client-secret"
	FlagTeam         = "team"
	FlagDir          = "dir"
	FlagPattern      = "pattern"
	FlagMaxFiles     = "max-files"
	FlagReportFormat = "report-format"
	FlagReportDir    = "report-dir"
	FlagFetcher      = "fetcher"
	FlagNoWait       = "no-wait"
	FlagBranch       = "branch"
	FlagBuildNumber  = "build-number"
	FlagPollTimeout  = "poll-timeout"
	FlagArchive      = "archive"
	FlagLogFormat    = "log-format"
	FlagLogFile      = "log-file"
)

// FlagKeys maps flag names to the config keys they override.
var FlagKeys = map[string]string{
	FlagServerURL:    "server.url",
	FlagClientID:     "auth.client_id",
	FlagClientSecret: "auth.client_secret",
	FlagTeam:         "team.name",
	FlagDir:          "input.dir",
	FlagPattern:      "input.pattern",
	FlagMaxFiles:     "input.max_files",
	FlagReportFormat: "report.format",
	FlagReportDir:    "report.dir",
	FlagFetcher:      "report.fetcher",
	FlagNoWait:       "report.wait",
	FlagBranch:       "upload.branch_name",
	FlagBuildNumber:  "upload.build_number",
	FlagPollTimeout:  "timing.poll_timeout",
	FlagArchive:      "archive.targets",
	FlagLogFormat:    "log.format",
	FlagLogFile:      "log.file",
}

// BindFlags defines the flags shared by every command.
func BindFlags(flags *pflag.FlagSet) {
	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")
	flags.String(FlagLogFormat, "", "Log format (text, json)")
	flags.String(FlagLogFile, "", "Also write logs to this file")
}

// BindUploadFlags defines flags overriding the upload settings. Defaults
// shown in help come from DefaultConfig; unset flags never override other
// sources.
func BindUploadFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()

	flags.String(FlagServerURL, "", "zScan server URL (e.g. https://ziap.zimperium.com)")
	flags.String(FlagClientID, "", "API client id")
	flags.String(FlagClientSecret, "", "API client secret (prefer "+EnvPrefix+"AUTH_CLIENT_SECRET)")
	flags.String(FlagTeam, def.Team.Name, "Team assigned to new applications")
	flags.String(FlagDir, def.Input.Dir, "Directory to search for binaries")
	flags.String(FlagPattern, "", "File name pattern, e.g. *.apk")
	flags.Int(FlagMaxFiles, def.Input.MaxFiles, "Maximum number of files per run")
	flags.String(FlagReportFormat, def.Report.Format, "Report format (json, sarif)")
	flags.String(FlagReportDir, "", "Directory for downloaded reports (default: --dir)")
	flags.String(FlagFetcher, def.Report.Fetcher, "Report downloader (http, curl)")
	flags.Bool(FlagNoWait, false, "Upload only; do not wait for the report")
	flags.String(FlagBranch, "", "Branch name sent with the upload (default: $BRANCH_NAME)")
	flags.String(FlagBuildNumber, "", "Build number sent with the upload (default: $BUILD_NUMBER)")
	flags.Duration(FlagPollTimeout, def.Timing.PollTimeout, "Maximum time to wait for one assessment")
	flags.StringSlice(FlagArchive, nil, "Copy reports to these targets (s3, azure, sftp, ftps)")
}
