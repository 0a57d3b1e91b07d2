// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package zscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Client performs the authenticated API operations. Each call attaches the
// token held by its TokenSource at call time; the client never refreshes
// tokens or retries on its own.
type Client struct {
	endpoints Endpoints
	http      *http.Client
	tokens    TokenSource
	logger    zerolog.Logger
}

// NewClient creates a Client. tokens is typically the run's *Session.
func NewClient(endpoints Endpoints, httpClient *http.Client, tokens TokenSource, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoints: endpoints,
		http:      httpClient,
		tokens:    tokens,
		logger:    logger.With().Str("component", "client").Logger(),
	}
}

// Upload sends the binary at path as a multipart build upload and decodes
// the returned identifiers.
func (c *Client) Upload(ctx context.Context, path string, meta UploadMetadata) (UploadOutcome, error) {
	url := c.endpoints.Upload()
	c.logger.Info().Str("file", path).Str("url", url).Msg("Uploading binary")

	req, err := c.newUploadRequest(ctx, url, path, meta)
	if err != nil {
		return UploadOutcome{}, transportError(opUpload, err)
	}

	start := time.Now()
	resp, err := do(c.http, req)
	if err != nil {
		return UploadOutcome{}, transportError(opUpload, err)
	}
	if !resp.ok() {
		return UploadOutcome{}, newStatusError(opUpload, resp.StatusCode, resp.Body)
	}

	c.logger.Info().
		Str("file", path).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Successfully uploaded binary")

	var out UploadOutcome
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return UploadOutcome{}, malformed(opUpload, "decode upload response: %v", err)
	}
	return out, nil
}

// newUploadRequest builds a streaming multipart request with a known
// Content-Length, so the binary is never held in memory.
func (c *Client) newUploadRequest(ctx context.Context, url, path string, meta UploadMetadata) (*http.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"ciToolId", meta.CIToolID},
		{"ciToolName", meta.CIToolName},
		{"branchName", meta.BranchName},
		{"buildNumber", meta.BuildNumber},
	}
	for _, field := range fields {
		if err := mw.WriteField(field[0], field[1]); err != nil {
			f.Close()
			return nil, err
		}
	}
	if _, err := mw.CreateFormFile("buildFile", filepath.Base(path)); err != nil {
		f.Close()
		return nil, err
	}
	head := append([]byte(nil), buf.Bytes()...)

	buf.Reset()
	if err := mw.Close(); err != nil {
		f.Close()
		return nil, err
	}
	tail := append([]byte(nil), buf.Bytes()...)

	body := io.MultiReader(bytes.NewReader(head), f, bytes.NewReader(tail))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, readCloser{Reader: body, Closer: f})
	if err != nil {
		f.Close()
		return nil, err
	}
	req.ContentLength = int64(len(head)) + info.Size() + int64(len(tail))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	setBearer(req, c.tokens.AccessToken())
	return req, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// ListTeams returns the teams visible to the authenticated client.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	req, err := newJSONRequest(ctx, http.MethodGet, c.endpoints.Teams(), nil)
	if err != nil {
		return nil, transportError(opTeams, err)
	}
	setBearer(req, c.tokens.AccessToken())

	start := time.Now()
	resp, err := do(c.http, req)
	if err != nil {
		return nil, transportError(opTeams, err)
	}
	if !resp.ok() {
		return nil, newStatusError(opTeams, resp.StatusCode, resp.Body)
	}

	var page teamPage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, malformed(opTeams, "decode teams: %v", err)
	}
	if page.Content == nil {
		return nil, malformed(opTeams, "content array missing")
	}

	teams := make([]Team, 0, len(*page.Content))
	for _, t := range *page.Content {
		teams = append(teams, Team{ID: t.ID.String(), Name: t.Name})
	}

	c.logger.Info().
		Int("teams", len(teams)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Received list of teams")
	return teams, nil
}

// AssignAppToTeam completes an upload by attaching the application to a team.
func (c *Client) AssignAppToTeam(ctx context.Context, appID, teamID string) error {
	req, err := newJSONRequest(ctx, http.MethodPut, c.endpoints.AssignTeam(appID), assignRequest{TeamID: teamID})
	if err != nil {
		return transportError(opAssign, err)
	}
	setBearer(req, c.tokens.AccessToken())

	resp, err := do(c.http, req)
	if err != nil {
		return transportError(opAssign, err)
	}
	if !resp.ok() {
		return newStatusError(opAssign, resp.StatusCode, resp.Body)
	}

	c.logger.Info().Str("app_id", appID).Str("team_id", teamID).Msg("Successfully assigned application to team")
	return nil
}

// CheckStatus fetches the assessment status for a build. A 404 answer is
// reported as an error matching ErrNotReady.
func (c *Client) CheckStatus(ctx context.Context, buildID string) (AssessmentStatus, error) {
	req, err := newJSONRequest(ctx, http.MethodGet, c.endpoints.Status(buildID), nil)
	if err != nil {
		return AssessmentStatus{}, transportError(opStatus, err)
	}
	setBearer(req, c.tokens.AccessToken())

	resp, err := do(c.http, req)
	if err != nil {
		return AssessmentStatus{}, transportError(opStatus, err)
	}
	if !resp.ok() {
		return AssessmentStatus{}, newStatusError(opStatus, resp.StatusCode, resp.Body)
	}

	var wire statusWire
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return AssessmentStatus{}, malformed(opStatus, "decode status: %v", err)
	}
	if wire.Metadata == nil || wire.Metadata.Analysis == nil {
		return AssessmentStatus{}, malformed(opStatus, "zdevMetadata.analysis missing")
	}

	analysis := *wire.Metadata.Analysis
	return AssessmentStatus{
		ID:       wire.ID,
		State:    ParseAnalysisState(analysis),
		Analysis: analysis,
	}, nil
}
