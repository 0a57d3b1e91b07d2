// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package archive

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/secsy/goftp"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
)

type ftpsConnector struct {
	config  goftp.Config
	addr    string
	baseDir string
}

// NewFTPSConnector validates cfg; connections are opened per Store.
func NewFTPSConnector(cfg config.FTPSConfig) (Connector, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("archive.ftps.host/user/password required for ftps connector")
	}
	port := cfg.Port
	if port == 0 {
		port = 21
	}
	return &ftpsConnector{
		config: goftp.Config{
			User:     cfg.User,
			Password: cfg.Password,
			TLSConfig: &tls.Config{
				ServerName: cfg.Host,
				MinVersion: tls.VersionTLS12,
			},
			TLSMode:            goftp.TLSExplicit,
			Timeout:            30 * time.Second,
			ConnectionsPerHost: 1,
		},
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		baseDir: cfg.BaseDir,
	}, nil
}

func (f *ftpsConnector) Name() string {
	return "ftps"
}

// Store ignores ctx beyond an upfront check; goftp has no context support
// and bounds each operation with its own timeout.
func (f *ftpsConnector) Store(ctx context.Context, assessmentID, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := goftp.DialConfig(f.config, f.addr)
	if err != nil {
		return fmt.Errorf("ftps dial: %w", err)
	}
	defer client.Close()

	target := remotePath(f.baseDir, assessmentID, name)
	if err := ensureDir(client, path.Dir(target)); err != nil {
		return err
	}
	if err := client.Store(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("ftps store: %w", err)
	}
	return nil
}

type dirMaker interface {
	Mkdir(dir string) (string, error)
}

// ensureDir creates dir one segment at a time. Servers phrase "already
// exists" differently; any such error is ignored.
func ensureDir(client dirMaker, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}
	current := ""
	if strings.HasPrefix(dir, "/") {
		current = "/"
	}
	for _, segment := range strings.Split(dir, "/") {
		if segment == "" {
			continue
		}
		current = path.Join(current, segment)
		if _, err := client.Mkdir(current); err != nil {
			if !strings.Contains(strings.ToLower(err.Error()), "exists") {
				return fmt.Errorf("ftps mkdir %s: %w", current, err)
			}
		}
	}
	return nil
}
