// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package report

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/logging"
)

// CommandFetcher downloads reports by running curl. The authorization
// header is passed on stdin so the token never shows up in the process list.
type CommandFetcher struct {
	path    string
	maxTime time.Duration
	logger  zerolog.Logger
}

// NewCommandFetcher creates a CommandFetcher running the curl binary at path.
func NewCommandFetcher(path string, logger zerolog.Logger) *CommandFetcher {
	if path == "" {
		path = "curl"
	}
	return &CommandFetcher{
		path:   path,
		logger: logger.With().Str("component", "report").Logger(),
	}
}

// args returns the curl arguments for req.
func (f *CommandFetcher) args(req Request) []string {
	args := []string{"--silent", "--show-error", "--fail", "-H", "@-"}
	if f.maxTime > 0 {
		args = append(args, "--max-time", strconv.FormatFloat(f.maxTime.Seconds(), 'f', -1, 64))
	}
	return append(args, "-o", req.Destination, "-L", req.URL)
}

// Fetch implements Fetcher. It succeeds iff curl exits with status 0.
func (f *CommandFetcher) Fetch(ctx context.Context, req Request) error {
	cmd := exec.CommandContext(ctx, f.path, f.args(req)...)
	cmd.Stdin = strings.NewReader("Authorization: Bearer " + req.AccessToken + "\n")

	stdout := logging.NewLineWriter(f.logger, zerolog.InfoLevel)
	stderr := logging.NewLineWriter(f.logger, zerolog.WarnLevel)
	cmd.Stdout, cmd.Stderr = stdout, stderr

	f.logger.Info().
		Str("command", f.path).
		Str("url", req.URL).
		Str("destination", req.Destination).
		Msg("Launching download command")

	err := cmd.Run()
	_ = stdout.Close()
	_ = stderr.Close()

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrFetchFailed, ctx.Err())
		}
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, f.path, err)
	}

	f.logger.Info().Str("destination", req.Destination).Msg("Downloaded report")
	return nil
}
