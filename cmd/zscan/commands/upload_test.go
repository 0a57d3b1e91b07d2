// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Zimperium/zscan-plugin-gocd/cmd/zscan/internal/format"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/report"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
)

// fakeZScan answers the API calls of one upload run.
type fakeZScan struct {
	mu        sync.Mutex
	paths     []string
	loginCode int
	reportTok string
}

func (f *fakeZScan) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	switch r.URL.Path {
	case "/api/auth/v1/api_keys/login":
		if f.loginCode != 0 {
			w.WriteHeader(f.loginCode)
			return
		}
		_, _ = w.Write([]byte(`{"accessToken":"access-1","refreshToken":"refresh-1"}`))
	case "/api/auth/v1/api_keys/access":
		_, _ = w.Write([]byte(`{"accessToken":"access-2","refreshToken":"refresh-2"}`))
	case "/api/zdev-upload/public/v1/uploads/build":
		_, _ = w.Write([]byte(`{"zdevAppId":"app-1","teamId":"team-1","buildId":"build-1"}`))
	case "/api/zdev-app/public/v1/assessments/status":
		_, _ = w.Write([]byte(`{"id":"A1","zdevMetadata":{"analysis":"Done"}}`))
	case "/api/zdev-app/public/v1/assessments/A1/json":
		f.mu.Lock()
		f.reportTok = r.Header.Get("Authorization")
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"findings":[]}`))
	default:
		http.NotFound(w, r)
	}
}

func setupRun(t *testing.T) (*fakeZScan, *httptest.Server, string) {
	t.Helper()
	t.Setenv("BRANCH_NAME", "")
	t.Setenv("BUILD_NUMBER", "")
	t.Setenv("ZSCAN_TIMING_SETTLE_DELAY", "1ms")
	t.Setenv("ZSCAN_TIMING_POLL_INTERVAL", "1ms")

	api := &fakeZScan{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.apk"), []byte("apk"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("txt"), 0o600))
	return api, srv, dir
}

func uploadArgs(srvURL, dir string, extra ...string) []string {
	args := []string{
		"upload",
		"--server-url", srvURL + "/",
		"--client-id", "id",
		"--client-secret", "secret",
		"--dir", dir,
		"--pattern", "*.apk",
		"--output", "json",
	}
	return append(args, extra...)
}

func TestUploadDownloadsReport(t *testing.T) {
	api, srv, dir := setupRun(t)

	out, _, err := execute(t, uploadArgs(srv.URL, dir)...)
	require.NoError(t, err)

	var view format.BatchView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.True(t, view.Success)
	require.Equal(t, 1, view.SuccessCount)
	require.Equal(t, workflow.UploadedMessage(1), view.Message)
	require.Len(t, view.Files, 1)
	require.Equal(t, string(workflow.StageDone), view.Files[0].Stage)
	require.Equal(t, "A1", view.Files[0].AssessmentID)

	data, err := os.ReadFile(filepath.Join(dir, "report-A1-json.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"findings":[]}`, string(data))
	require.Equal(t, "Bearer access-2", api.reportTok)

	// Team already set by the upload, so no team lookup happens.
	require.NotContains(t, api.paths, "GET /api/auth/public/v1/teams")
}

func TestUploadNoWait(t *testing.T) {
	api, srv, dir := setupRun(t)

	out, _, err := execute(t, uploadArgs(srv.URL, dir, "--no-wait")...)
	require.NoError(t, err)

	var view format.BatchView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, 0, view.SuccessCount)
	require.Equal(t, 0, view.FailedCount)
	require.Equal(t, string(workflow.StageUploaded), view.Files[0].Stage)
	require.NotContains(t, api.paths, "GET /api/zdev-app/public/v1/assessments/status")

	_, err = os.Stat(filepath.Join(dir, "report-A1-json.json"))
	require.True(t, os.IsNotExist(err))
}

func TestUploadNoMatches(t *testing.T) {
	api, srv, dir := setupRun(t)

	out, _, err := execute(t, uploadArgs(srv.URL, dir, "--pattern", "*.ipa")...)
	require.NoError(t, err)
	require.Contains(t, out, workflow.MessageNoFiles)
	require.Empty(t, api.paths, "no login without files")
}

func TestUploadLoginFailure(t *testing.T) {
	api, srv, dir := setupRun(t)
	api.loginCode = http.StatusUnauthorized

	out, _, err := execute(t, uploadArgs(srv.URL, dir)...)
	require.ErrorIs(t, err, workflow.ErrLoginFailed)
	require.Equal(t, ExitFailure, ExitCode(err))
	require.Contains(t, out, workflow.MessageLoginFailed)
}

func TestUploadInvalidConfig(t *testing.T) {
	_, _, dir := setupRun(t)

	_, _, err := execute(t, "upload", "--dir", dir, "--pattern", "*.apk")
	require.Error(t, err)
	require.Equal(t, ExitUsage, ExitCode(err))
}

func TestUploadMissingDirectory(t *testing.T) {
	_, srv, dir := setupRun(t)

	_, _, err := execute(t, uploadArgs(srv.URL, filepath.Join(dir, "missing"))...)
	require.ErrorIs(t, err, workflow.ErrInvalidDirectory)
	require.Equal(t, ExitUsage, ExitCode(err))
}

func TestFetcherOptionsFromConfig(t *testing.T) {
	t.Setenv("ZSCAN_REPORT_FETCHER", "curl")
	t.Setenv("ZSCAN_REPORT_TIMEOUT", "2m")
	t.Setenv("ZSCAN_REPORT_CURL_PATH", "/usr/local/bin/curl")

	mgr := config.NewManager()
	require.NoError(t, mgr.Load(nil, ""))

	client := &http.Client{}
	opts := fetcherOptions(mgr.Get(), client, zerolog.Nop())
	require.Equal(t, report.KindCurl, opts.Kind)
	require.Equal(t, 2*time.Minute, opts.Timeout)
	require.Equal(t, "/usr/local/bin/curl", opts.CurlPath)
	require.Same(t, client, opts.HTTPClient)
}
