// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"github.com/spf13/cobra"

	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/internal/format"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/appctx"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := appctx.Current(cmd.Context())
			if err != nil {
				return err
			}
			f := format.FromCommand(cmd)
			if file := appctx.ConfigFile(cmd.Context()); file != "" {
				if err := f.PrintSummary("# config file: " + file); err != nil {
					return err
				}
			}
			if f.IsJSON() {
				return f.PrintJSON(cfg.Redacted().Tree())
			}
			return f.PrintYAML(cfg.Redacted().Tree())
		},
	}
	config.BindUploadFlags(show.Flags())

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check the merged configuration for an upload run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := appctx.Current(cmd.Context())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return format.FromCommand(cmd).PrintSummary("Configuration is valid")
		},
	}
	config.BindUploadFlags(validate.Flags())

	cmd.AddCommand(show, validate)
	return cmd
}
