// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package archive copies downloaded assessment reports to external stores
// (S3, Azure Blob, SFTP, FTPS).
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
)

// Connector stores one report object in an external target.
type Connector interface {
	Name() string
	// Store writes data as <prefix>/<assessmentID>/<name>.
	Store(ctx context.Context, assessmentID, name string, data []byte) error
}

// Load instantiates the connectors listed in cfg.Targets. A connector that
// fails to initialize is logged and skipped.
func Load(ctx context.Context, cfg config.ArchiveConfig, logger zerolog.Logger) []Connector {
	var instances []Connector
	for _, target := range cfg.Targets {
		target = strings.TrimSpace(strings.ToLower(target))
		if target == "" {
			continue
		}

		var (
			conn Connector
			err  error
		)
		switch target {
		case "s3":
			conn, err = NewS3Connector(ctx, cfg.S3)
		case "azure":
			conn, err = NewAzureBlobConnector(cfg.Azure)
		case "sftp":
			conn, err = NewSFTPConnector(cfg.SFTP)
		case "ftps":
			conn, err = NewFTPSConnector(cfg.FTPS)
		default:
			err = fmt.Errorf("unknown archive target %q", target)
		}
		if err != nil {
			logger.Error().Err(err).Str("connector", target).Msg("failed to init connector")
			continue
		}
		logger.Info().Str("connector", conn.Name()).Msg("initialized connector")
		instances = append(instances, conn)
	}
	return instances
}

// keyFor joins the object key below an optional prefix.
func keyFor(prefix, assessmentID, name string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return path.Join(assessmentID, name)
	}
	return path.Join(prefix, assessmentID, name)
}

// remotePath is keyFor for file servers, where baseDir may be absolute.
func remotePath(baseDir, assessmentID, name string) string {
	parts := []string{}
	if strings.TrimSpace(baseDir) != "" {
		parts = append(parts, strings.TrimSuffix(baseDir, "/"))
	}
	parts = append(parts, assessmentID, name)
	return path.Join(parts...)
}
