// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	"fmt"
	"os"

	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/commands"
	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/internal/format"
)

func main() {
	cmd, err := commands.Execute(commands.NewCommand())
	if err != nil {
		if cmd == nil || format.FromCommand(cmd).PrintError(err) != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(commands.ExitCode(err))
}
