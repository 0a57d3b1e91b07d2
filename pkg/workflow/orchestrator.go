// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package workflow drives a zScan batch: discover binaries, log in, then
// upload each file, assign its app to a team, wait for the assessment and
// download the report. A failure on one file never stops the others.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/report"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workspace"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/zscan"
)

// Defaults applied to zero-valued Settings fields.
const (
	DefaultMaxFiles     = 5
	DefaultSettleDelay  = 30 * time.Second
	DefaultPollInterval = 30 * time.Second
	DefaultPollTimeout  = 1200 * time.Second
	DefaultReportFormat = "json"
)

// Authenticator holds the session tokens.
type Authenticator interface {
	Login(ctx context.Context, clientID, clientSecret string) error
	Refresh(ctx context.Context) error
	AccessToken() string
}

// Service is the part of the zScan API used per file.
type Service interface {
	Upload(ctx context.Context, path string, meta zscan.UploadMetadata) (zscan.UploadOutcome, error)
	ListTeams(ctx context.Context) ([]zscan.Team, error)
	AssignAppToTeam(ctx context.Context, appID, teamID string) error
	CheckStatus(ctx context.Context, buildID string) (zscan.AssessmentStatus, error)
}

// Archiver copies a downloaded report somewhere else. Failures are logged
// and never fail the file.
type Archiver interface {
	Publish(ctx context.Context, assessmentID, path string) error
}

// Settings are the per-run inputs.
type Settings struct {
	Dir          string
	Pattern      string
	MaxFiles     int
	ClientID     string
	ClientSecret string
	TeamName     string

	WaitForReport bool
	ReportFormat  string
	// ReportDir defaults to Dir.
	ReportDir string

	Upload zscan.UploadMetadata

	SettleDelay  time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.MaxFiles == 0 {
		s.MaxFiles = DefaultMaxFiles
	}
	if s.TeamName == "" {
		s.TeamName = DefaultTeamName
	}
	if s.ReportFormat == "" {
		s.ReportFormat = DefaultReportFormat
	}
	if s.ReportDir == "" {
		s.ReportDir = s.Dir
	}
	if s.SettleDelay == 0 {
		s.SettleDelay = DefaultSettleDelay
	}
	if s.PollInterval == 0 {
		s.PollInterval = DefaultPollInterval
	}
	if s.PollTimeout == 0 {
		s.PollTimeout = DefaultPollTimeout
	}
	return s
}

// Orchestrator runs one batch.
type Orchestrator struct {
	settings  Settings
	auth      Authenticator
	service   Service
	fetcher   report.Fetcher
	endpoints zscan.Endpoints
	archiver  Archiver
	clock     Clock
	logger    zerolog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithArchiver publishes every downloaded report through a.
func WithArchiver(a Archiver) Option {
	return func(o *Orchestrator) { o.archiver = a }
}

// WithLogger sets the base logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator. Report URLs are built from endpoints.
func New(settings Settings, auth Authenticator, service Service, fetcher report.Fetcher, endpoints zscan.Endpoints, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		settings:  settings.withDefaults(),
		auth:      auth,
		service:   service,
		fetcher:   fetcher,
		endpoints: endpoints,
		clock:     RealClock{},
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With().Str("component", "workflow").Logger()
	return o
}

// Run processes the batch. The returned error is non-nil only for
// run-level failures (bad directory or pattern, too many files, login
// failure, another run holding the lock) or cancellation; per-file
// failures are reported in BatchResult.Files.
func (o *Orchestrator) Run(ctx context.Context) (BatchResult, error) {
	result := BatchResult{RunID: uuid.NewString()}
	logger := o.logger.With().Str("run_id", result.RunID).Logger()

	dir, err := workspace.ResolveDir(o.settings.Dir)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrInvalidDirectory, err)
	}
	reportDir := o.settings.ReportDir
	if reportDir == o.settings.Dir {
		reportDir = dir
	}
	if reportDir, err = workspace.Prepare(reportDir); err != nil {
		return result, err
	}

	lock, err := workspace.Acquire(reportDir)
	if err != nil {
		return result, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn().Err(err).Str("path", lock.Path()).Msg("Failed to release run lock")
		}
	}()

	files, err := Discover(dir, o.settings.Pattern, o.settings.MaxFiles, logger)
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		result.Success = true
		result.Message = MessageNoFiles
		logger.Info().Msg(result.Message)
		return result, nil
	}

	if err := o.auth.Login(ctx, o.settings.ClientID, o.settings.ClientSecret); err != nil {
		result.Message = MessageLoginFailed
		logger.Error().Err(err).Msg(result.Message)
		return result, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			for _, rest := range files[i:] {
				result.Files = append(result.Files, FileResult{Path: rest, Stage: StageSkipped, Err: err})
			}
			break
		}

		fr := o.processFile(ctx, logger, reportDir, path)
		result.Files = append(result.Files, fr)
		if fr.Stage == StageDone {
			result.SuccessCount++
		}
	}

	result.Message = UploadedMessage(result.SuccessCount)
	if err := ctx.Err(); err != nil {
		logger.Warn().Int("succeeded", result.SuccessCount).Msg("Run cancelled")
		return result, err
	}

	result.Success = true
	logger.Info().Int("succeeded", result.SuccessCount).Int("files", len(files)).Msg(result.Message)
	return result, nil
}

func (o *Orchestrator) processFile(ctx context.Context, runLogger zerolog.Logger, reportDir, path string) FileResult {
	res := FileResult{Path: path, Stage: StageUpload}
	logger := runLogger.With().Str("file", filepath.Base(path)).Logger()

	logger.Info().Msg("Uploading binary")
	outcome, err := o.service.Upload(ctx, path, o.settings.Upload)
	if err != nil {
		logger.Error().Err(err).Msg("Error uploading binary")
		return res.fail(StageUpload, err)
	}
	res.AppID = outcome.AppID.String()
	res.BuildID = outcome.BuildID.String()

	if outcome.TeamID.Empty() {
		if err := o.assignTeam(ctx, logger, res.AppID); err != nil && ctx.Err() != nil {
			return res.fail(StageTeam, ctx.Err())
		}
	} else {
		logger.Info().Str("team_id", outcome.TeamID.String()).Msg("Application already belongs to a team")
	}

	o.refresh(ctx, logger)

	if !o.settings.WaitForReport {
		res.Stage = StageUploaded
		return res
	}

	if res.BuildID == "" {
		logger.Error().Msg("Upload response has no build id. Cannot wait for the assessment.")
		return res.fail(StagePoll, ErrMissingBuildID)
	}

	assessmentID, pollErr := o.pollAssessment(ctx, logger, res.BuildID)
	if err := ctx.Err(); err != nil {
		return res.fail(StagePoll, err)
	}
	res.AssessmentID = assessmentID

	o.refresh(ctx, logger)

	if assessmentID == "" {
		err := ErrEmptyAssessmentID
		if pollErr != nil {
			err = fmt.Errorf("%w: %w", ErrEmptyAssessmentID, pollErr)
		}
		logger.Error().Err(err).Msg("No assessment to download")
		return res.fail(StagePoll, err)
	}

	dest := filepath.Join(reportDir, report.FileName(assessmentID, o.settings.ReportFormat))
	err = o.fetcher.Fetch(ctx, report.Request{
		AssessmentID: assessmentID,
		URL:          o.endpoints.Report(assessmentID, o.settings.ReportFormat),
		Destination:  dest,
		AccessToken:  o.auth.AccessToken(),
	})
	if err != nil {
		logger.Error().Err(err).Str("assessment_id", assessmentID).Msg("Error downloading assessment report")
		return res.fail(StageFetch, err)
	}
	res.ReportPath = dest
	res.Stage = StageDone
	logger.Info().Str("assessment_id", assessmentID).Str("report", dest).Msg("Report downloaded")

	if o.archiver != nil {
		if err := o.archiver.Publish(ctx, assessmentID, dest); err != nil {
			logger.Warn().Err(err).Str("report", dest).Msg("Report archival incomplete")
		}
	}
	return res
}

// refresh renews the session. Failures are logged; the current token stays.
func (o *Orchestrator) refresh(ctx context.Context, logger zerolog.Logger) {
	if err := o.auth.Refresh(ctx); err != nil {
		if errors.Is(err, zscan.ErrNoRefreshToken) {
			logger.Debug().Msg("No refresh token held; skipping refresh")
			return
		}
		logger.Warn().Err(err).Msg("Token refresh failed; continuing with current token")
	}
}
