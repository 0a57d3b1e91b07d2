// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/internal/format"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/appctx"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/logging"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/paths"
)

const cliExecutable = "zscan"

// NewCommand constructs the top-level zscan CLI command, wiring global flags,
// configuration loading and logging.
func NewCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Upload mobile app binaries to zScan and collect assessment reports",
		Long: `zscan uploads Android and iOS binaries produced by a CI build to a
Zimperium zScan server, assigns new apps to a team, waits for each assessment
and downloads its report next to the build output.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("output")
			if err := format.ValidateMode(mode); err != nil {
				return usageError(err)
			}

			path := configFile
			if path == "" {
				path = paths.DefaultConfigFile()
			} else if _, err := os.Stat(path); err != nil {
				return usageError(fmt.Errorf("config file: %w", err))
			}
			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), path); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()

			logOut := cmd.OutOrStdout()
			if format.ParseMode(mode) != format.ModeTable {
				logOut = cmd.ErrOrStderr()
			}
			closer, err := logging.ConfigureGlobalLogging(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				File:   cfg.Log.File,
				Out:    logOut,
			})
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			log.Debug().Str("file", path).Interface("config", cfg.Redacted()).Msg("Configuration loaded")

			ctx := appctx.WithConfig(cmd.Context(), mgr, path)
			if closer != nil {
				ctx = appctx.WithCleanup(ctx, closer.Close)
			}
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (default ./zscan.yaml, then the user config dir)")
	cmd.PersistentFlags().StringP("output", "o", string(format.ModeTable), "Output format (table, json, yaml)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Print only the final message")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newUploadCommand())
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute runs root and then the cleanups its run registered, such as
// closing the --log-file handle. Cleanups run even when the command failed.
// The returned command is the one that ran, for error formatting.
func Execute(root *cobra.Command) (*cobra.Command, error) {
	cmd, err := root.ExecuteC()
	if cleanupErr := appctx.Cleanup(root.Context()); cleanupErr != nil && err == nil {
		err = fmt.Errorf("cleanup: %w", cleanupErr)
	}
	return cmd, err
}
