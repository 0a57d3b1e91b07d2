// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/internal/format"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/version"
)

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()

			if short {
				_, err := fmt.Fprintln(out, info.Version)
				return err
			}

			f := format.FromCommand(cmd)
			if mode, _ := cmd.Flags().GetString("output"); format.ParseMode(mode) != format.ModeTable {
				if f.IsJSON() {
					return f.PrintJSON(info)
				}
				return f.PrintYAML(info)
			}

			fmt.Fprintf(out, "%s version: %s\n", cliExecutable, info.Version)
			fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			if info.Prerelease {
				fmt.Fprintln(out, "Prerelease: yes")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
