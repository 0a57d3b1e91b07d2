// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package zscan

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/stringutil"
)

var (
	// ErrNoRefreshToken is returned by Refresh when no refresh token is held.
	// No request is sent in that case.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrMalformedResponse is returned when a 2xx response body cannot be
	// decoded or lacks a required field.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNotReady is returned by CheckStatus when the server answers 404,
	// meaning the assessment for the build does not exist yet.
	ErrNotReady = errors.New("assessment not ready")

	// ErrTransport marks failures where no HTTP response was received
	// (connection refused, timeout, cancelled context, unreadable file).
	ErrTransport = errors.New("transport failure")
)

// maxErrorBody caps, in runes, the response body kept on a StatusError.
const maxErrorBody = 1024

// StatusError is returned when the server answers with an unexpected
// HTTP status code.
type StatusError struct {
	Op         string // "login", "upload", "status", ...
	StatusCode int
	Body       string // Response body, truncated
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is reports a 404 on the status operation as ErrNotReady.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotReady && e.Op == opStatus && e.StatusCode == http.StatusNotFound
}

// StatusCode extracts the HTTP status code from err, or 0 if err carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func newStatusError(op string, code int, body []byte) *StatusError {
	return &StatusError{Op: op, StatusCode: code, Body: stringutil.Ellipsis(string(body), maxErrorBody)}
}

func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}

func malformed(op string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, op, fmt.Sprintf(format, args...))
}
