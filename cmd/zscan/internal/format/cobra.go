// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// FromCommand builds a Formatter for cmd's output writers from the persistent
// --output, --quiet and --no-color flags. Missing flags fall back to table
// output. Color is also off when fatih/color detects no terminal or NO_COLOR.
func FromCommand(cmd *cobra.Command) Formatter {
	flags := cmd.Flags()

	mode := ModeTable
	if v, err := flags.GetString("output"); err == nil {
		mode = ParseMode(v)
	}
	quiet, _ := flags.GetBool("quiet")
	noColor, _ := flags.GetBool("no-color")

	// OutOrStdout and ErrOrStderr fall back to os.Stdout and os.Stderr.
	return New(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode, quiet, !noColor && !color.NoColor)
}
