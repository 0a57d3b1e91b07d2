// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workspace"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitLocked    = 3
	ExitCancelled = 130
)

var errUsage = errors.New("usage")

func usageError(err error) error {
	return fmt.Errorf("%w: %w", errUsage, err)
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, workspace.ErrLocked):
		return ExitLocked
	case errors.Is(err, errUsage),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, workflow.ErrInvalidDirectory),
		errors.Is(err, workflow.ErrInvalidPattern),
		errors.Is(err, workflow.ErrTooManyFiles):
		return ExitUsage
	default:
		return ExitFailure
	}
}
