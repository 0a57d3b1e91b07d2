// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/retry"
)

// Publisher copies a report to every connector, retrying transient failures.
type Publisher struct {
	connectors []Connector
	retry      retry.Config
	logger     zerolog.Logger
}

// RetryConfig converts the configured archive retry policy.
func RetryConfig(cfg config.RetryConfig) retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = cfg.MaxAttempts
	rc.InitialWait = cfg.InitialWait
	rc.MaxWait = cfg.MaxWait
	return rc
}

// NewPublisher returns a Publisher over connectors.
func NewPublisher(connectors []Connector, rc retry.Config, logger zerolog.Logger) *Publisher {
	return &Publisher{
		connectors: connectors,
		retry:      rc,
		logger:     logger.With().Str("component", "archive").Logger(),
	}
}

// Len returns the number of connectors.
func (p *Publisher) Len() int { return len(p.connectors) }

// Publish stores the file at path under assessmentID in every connector.
// All connectors are attempted; their errors are joined.
func (p *Publisher) Publish(ctx context.Context, assessmentID, path string) error {
	if len(p.connectors) == 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	name := filepath.Base(path)

	var errs []error
	for _, conn := range p.connectors {
		start := time.Now()
		attempts := 0
		err := retry.Do(ctx, p.retry, func(ctx context.Context) error {
			attempts++
			return conn.Store(ctx, assessmentID, name, data)
		})

		logger := p.logger.With().
			Str("connector", conn.Name()).
			Str("assessment_id", assessmentID).
			Int("attempts", attempts).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Logger()
		if err != nil {
			logger.Error().Err(err).Msg("failed to archive report")
			errs = append(errs, fmt.Errorf("%s: %w", conn.Name(), err))
			continue
		}
		logger.Info().Int("bytes", len(data)).Msg("archived report")
	}
	return errors.Join(errs...)
}
