// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package zscan

import (
	"net/url"
	"strings"
)

// API paths relative to the configured server URL.
const (
	loginPath          = "/api/auth/v1/api_keys/login"
	refreshPath        = "/api/auth/v1/api_keys/access"
	uploadPath         = "/api/zdev-upload/public/v1/uploads/build"
	statusPath         = "/api/zdev-app/public/v1/assessments/status"
	teamsPath          = "/api/auth/public/v1/teams"
	appsPath           = "/api/zdev-app/public/v1/apps"
	assessmentsPath    = "/api/zdev-app/public/v1/assessments"
	assignUploadSuffix = "/upload"
)

// Endpoints builds absolute URLs for every API operation.
type Endpoints struct {
	base string
}

// NewEndpoints normalizes baseURL (whitespace and trailing slashes removed).
func NewEndpoints(baseURL string) Endpoints {
	return Endpoints{base: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// Base returns the normalized server URL.
func (e Endpoints) Base() string { return e.base }

func (e Endpoints) Login() string   { return e.base + loginPath }
func (e Endpoints) Refresh() string { return e.base + refreshPath }
func (e Endpoints) Upload() string  { return e.base + uploadPath }
func (e Endpoints) Teams() string   { return e.base + teamsPath }

// Status returns the assessment status URL for a build.
func (e Endpoints) Status(buildID string) string {
	return e.base + statusPath + "?buildId=" + url.QueryEscape(buildID)
}

// AssignTeam returns the URL used to complete an upload by assigning its app to a team.
func (e Endpoints) AssignTeam(appID string) string {
	return e.base + appsPath + "/" + url.PathEscape(appID) + assignUploadSuffix
}

// Report returns the download URL for an assessment report in the given format.
func (e Endpoints) Report(assessmentID, format string) string {
	return e.base + assessmentsPath + "/" + url.PathEscape(assessmentID) + "/" + url.PathEscape(format)
}
