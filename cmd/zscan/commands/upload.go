// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/internal/bind"
	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/internal/format"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/appctx"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/archive"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/report"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/zscan"
)

func newUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload binaries and download their assessment reports",
		Long: `Upload every file in --dir whose name matches --pattern, assign new apps
to --team (or the Default team) and, unless --no-wait is given, wait for each
assessment and save its report as report-<assessmentId>-<format>.json.

A failure on one file is reported and the remaining files are still processed.`,
		Example: `  zscan upload --server-url https://ziap.zimperium.com --pattern '*.apk' \
      --client-id "$ZSCAN_CLIENT_ID" --team Mobile
  ZSCAN_AUTH_CLIENT_SECRET=... zscan upload -c zscan.yaml --no-wait -o json`,
		Args: cobra.NoArgs,
		RunE: runUpload,
	}

	config.BindUploadFlags(cmd.Flags())
	return cmd
}

func runUpload(cmd *cobra.Command, _ []string) error {
	cfg, err := appctx.Current(cmd.Context())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator, err := newOrchestrator(ctx, cfg, log.Logger)
	if err != nil {
		return err
	}

	result, runErr := orchestrator.Run(ctx)
	if result.Message != "" || len(result.Files) > 0 {
		if err := format.FromCommand(cmd).PrintBatch(result); err != nil {
			log.Warn().Err(err).Msg("Failed to print run summary")
		}
	}
	return runErr
}

// newOrchestrator wires the API session, client, report fetcher and archive
// connectors for one run.
func newOrchestrator(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*workflow.Orchestrator, error) {
	httpClient := zscan.NewHTTPClient(cfg.HTTP.ConnectTimeout, cfg.HTTP.ReadTimeout)
	endpoints := zscan.NewEndpoints(cfg.Server.URL)
	session := zscan.NewSession(endpoints, httpClient, logger)
	client := zscan.NewClient(endpoints, httpClient, session, logger)

	fetcher, err := report.New(fetcherOptions(cfg, httpClient, logger))
	if err != nil {
		return nil, usageError(fmt.Errorf("report fetcher: %w", err))
	}

	opts := []workflow.Option{workflow.WithLogger(logger)}
	if conns := archive.Load(ctx, cfg.Archive, logger); len(conns) > 0 {
		opts = append(opts, workflow.WithArchiver(
			archive.NewPublisher(conns, archive.RetryConfig(cfg.Archive.Retry), logger),
		))
	}

	return workflow.New(bind.BindUploadSettings(cfg), session, client, fetcher, endpoints, opts...), nil
}

func fetcherOptions(cfg config.Config, httpClient *http.Client, logger zerolog.Logger) report.Options {
	return report.Options{
		Kind:       report.Kind(cfg.Report.Fetcher),
		HTTPClient: httpClient,
		Timeout:    cfg.Report.Timeout,
		CurlPath:   cfg.Report.CurlPath,
		Logger:     logger,
	}
}
