// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package bind

import (
	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/zscan"
)

// BindUploadSettings maps the loaded configuration onto the workflow settings
// of one upload run. cfg is expected to be validated already.
func BindUploadSettings(cfg config.Config) workflow.Settings {
	return workflow.Settings{
		Dir:          cfg.Input.Dir,
		Pattern:      cfg.Input.Pattern,
		MaxFiles:     cfg.Input.MaxFiles,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		TeamName:     cfg.Team.Name,

		WaitForReport: cfg.Report.Wait,
		ReportFormat:  cfg.Report.Format,
		ReportDir:     cfg.Report.Dir,

		Upload: zscan.UploadMetadata{
			CIToolID:    cfg.Upload.CIToolID,
			CIToolName:  cfg.Upload.CIToolName,
			BranchName:  cfg.Upload.BranchName,
			BuildNumber: cfg.Upload.BuildNumber,
		},

		SettleDelay:  cfg.Timing.SettleDelay,
		PollInterval: cfg.Timing.PollInterval,
		PollTimeout:  cfg.Timing.PollTimeout,
	}
}
