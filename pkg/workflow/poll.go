// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package workflow

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/zscan"
)

// pollAssessment checks the build's assessment every PollInterval until it
// is Done, PollTimeout elapses, the server answers with a hard error, or
// ctx is done. On Done it waits one more SettleDelay so the report can be
// generated, then returns the assessment id.
//
// 404 answers mean "not yet" and transport failures are logged; both keep
// polling. Any other error stops polling for this build.
func (o *Orchestrator) pollAssessment(ctx context.Context, logger zerolog.Logger, buildID string) (string, error) {
	deadline := o.clock.Now().Add(o.settings.PollTimeout)

	for o.clock.Now().Before(deadline) {
		status, err := o.service.CheckStatus(ctx, buildID)
		switch {
		case err == nil:
			logger.Info().Str("status", status.Analysis).Msg("Scan status")
			if status.State == zscan.AnalysisDone {
				logger.Info().Msg("Waiting for the report to become available")
				if err := o.clock.Sleep(ctx, o.settings.SettleDelay); err != nil {
					return "", err
				}
				return status.ID.String(), nil
			}

		case errors.Is(err, zscan.ErrNotReady):
			logger.Debug().Msg("Assessment not created yet")

		case errors.Is(err, zscan.ErrTransport):
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			logger.Warn().Err(err).Msg("Status check failed; retrying")

		default:
			logger.Error().Err(err).Msg("Unable to get assessment report. Please check credentials and try again.")
			return "", err
		}

		wait := o.settings.PollInterval
		if remaining := deadline.Sub(o.clock.Now()); remaining < wait {
			wait = remaining
		}
		if err := o.clock.Sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	logger.Warn().Dur("timeout", o.settings.PollTimeout).Msg("Timed out waiting for the assessment to complete")
	return "", ErrPollTimeout
}
