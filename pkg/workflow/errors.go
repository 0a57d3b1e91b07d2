// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package workflow

import "errors"

// Run-level errors end the whole batch.
var (
	// ErrInvalidDirectory is returned when the working directory is missing
	// or not a directory.
	ErrInvalidDirectory = errors.New("invalid working directory")

	// ErrInvalidPattern is returned for a malformed file pattern.
	ErrInvalidPattern = errors.New("invalid file pattern")

	// ErrTooManyFiles is returned when the pattern matches more files than
	// the configured cap. No network call is made in that case.
	ErrTooManyFiles = errors.New("pattern matched too many files")

	// ErrLoginFailed is returned when the initial login fails.
	ErrLoginFailed = errors.New("login failed")
)

// File-level errors are recorded on a FileResult; the batch continues.
var (
	// ErrEmptyAssessmentID is recorded when polling ended without an
	// assessment id; no report fetch is attempted.
	ErrEmptyAssessmentID = errors.New("no assessment id to download")

	// ErrPollTimeout is returned by the poller when the assessment did not
	// finish within the poll timeout.
	ErrPollTimeout = errors.New("timed out waiting for assessment")

	// ErrMissingBuildID is recorded when the upload response had no build id.
	ErrMissingBuildID = errors.New("upload response has no build id")

	// ErrTeamNotFound is returned when neither the configured team nor the
	// default team exists.
	ErrTeamNotFound = errors.New("team not found")

	// ErrMissingAppID is returned when an app without a team also has no
	// app id to assign.
	ErrMissingAppID = errors.New("upload response has no app id")
)
