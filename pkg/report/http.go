// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/version"
)

// HTTPFetcher downloads reports with the Go HTTP client.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client means http.DefaultClient.
func NewHTTPFetcher(client *http.Client, timeout time.Duration, logger zerolog.Logger) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client:  client,
		timeout: timeout,
		logger:  logger.With().Str("component", "report").Logger(),
	}
}

// Fetch implements Fetcher. The report is written to a temporary file in the
// destination directory and renamed into place once complete.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	f.logger.Info().Str("url", req.URL).Str("destination", req.Destination).Msg("Downloading report")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: HTTP %d: %s", ErrFetchFailed, resp.StatusCode, snippet)
	}

	written, err := writeAtomic(req.Destination, resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	f.logger.Info().Str("destination", req.Destination).Int64("bytes", written).Msg("Downloaded report")
	return nil
}

func writeAtomic(dest string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return n, fmt.Errorf("rename report: %w", err)
	}
	return n, nil
}
