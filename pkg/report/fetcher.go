// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package report retrieves finished assessment reports.
package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrFetchFailed is returned when a report could not be retrieved.
var ErrFetchFailed = errors.New("report fetch failed")

// Request describes one report download.
type Request struct {
	AssessmentID string
	URL          string // Absolute download URL
	Destination  string // Local file path to write
	AccessToken  string
}

// Fetcher retrieves report bytes into Request.Destination. It blocks until
// the download completes and does not retry.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) error
}

// FileName returns the local report file name for an assessment.
func FileName(assessmentID, format string) string {
	return fmt.Sprintf("report-%s-%s.json", assessmentID, format)
}

// Kind selects a Fetcher implementation.
type Kind string

const (
	KindHTTP Kind = "http"
	KindCurl Kind = "curl"
)

// Options configures New.
type Options struct {
	Kind       Kind
	HTTPClient *http.Client  // KindHTTP
	Timeout    time.Duration // per download; 0 = no limit
	CurlPath   string        // KindCurl; defaults to "curl"
	Logger     zerolog.Logger
}

// New returns the Fetcher selected by opts.Kind.
func New(opts Options) (Fetcher, error) {
	switch opts.Kind {
	case KindHTTP, "":
		return NewHTTPFetcher(opts.HTTPClient, opts.Timeout, opts.Logger), nil
	case KindCurl:
		f := NewCommandFetcher(opts.CurlPath, opts.Logger)
		f.maxTime = opts.Timeout
		return f, nil
	default:
		return nil, fmt.Errorf("unknown report fetcher %q", opts.Kind)
	}
}
