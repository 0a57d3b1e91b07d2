// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package workflow

import "fmt"

// Stage names the step a file reached.
type Stage string

const (
	StageUpload   Stage = "upload"
	StageTeam     Stage = "team"
	StagePoll     Stage = "poll"
	StageFetch    Stage = "fetch"
	StageUploaded Stage = "uploaded" // no error, report not requested; not counted as a success
	StageDone     Stage = "done"
	StageSkipped  Stage = "skipped"
)

// Batch messages.
const (
	MessageNoFiles     = "No files matched the provided pattern."
	MessageLoginFailed = "Error logging in to Zimperium server."
	messageUploadedFmt = "Successfully uploaded %d binaries for analysis."
)

// UploadedMessage is the final message for a completed batch.
func UploadedMessage(n int) string {
	return fmt.Sprintf(messageUploadedFmt, n)
}

// FileResult is the outcome of one file. Err is nil on success; otherwise
// Stage is the step that failed.
type FileResult struct {
	Path         string
	AppID        string
	BuildID      string
	AssessmentID string
	ReportPath   string
	Stage        Stage
	Err          error
}

// Succeeded reports whether the file made it through every step.
func (r FileResult) Succeeded() bool { return r.Err == nil }

func (r FileResult) fail(stage Stage, err error) FileResult {
	r.Stage = stage
	r.Err = err
	return r
}

// BatchResult summarizes a run. SuccessCount counts files whose report was
// downloaded.
type BatchResult struct {
	RunID        string
	Success      bool
	SuccessCount int
	Message      string
	Files        []FileResult
}

// Failed returns the results of files that did not succeed.
func (b BatchResult) Failed() []FileResult {
	var failed []FileResult
	for _, f := range b.Files {
		if !f.Succeeded() {
			failed = append(failed, f)
		}
	}
	return failed
}
