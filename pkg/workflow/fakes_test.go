// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/report"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/zscan"
)

// fakeClock advances virtual time on Sleep.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	// onSleep runs after time advances, e.g. to cancel a context.
	onSleep func(total time.Duration)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	total := c.elapsedLocked()
	hook := c.onSleep
	c.mu.Unlock()

	if hook != nil {
		hook(total)
	}
	return ctx.Err()
}

func (c *fakeClock) elapsedLocked() time.Duration {
	var total time.Duration
	for _, d := range c.sleeps {
		total += d
	}
	return total
}

func (c *fakeClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsedLocked()
}

type fakeAuth struct {
	loginErr   error
	refreshErr error
	logins     int
	refreshes  int
	token      string
}

func (a *fakeAuth) Login(context.Context, string, string) error {
	a.logins++
	if a.loginErr != nil {
		return a.loginErr
	}
	a.token = "access-0"
	return nil
}

func (a *fakeAuth) Refresh(context.Context) error {
	a.refreshes++
	if a.refreshErr != nil {
		return a.refreshErr
	}
	a.token = fmt.Sprintf("access-%d", a.refreshes)
	return nil
}

func (a *fakeAuth) AccessToken() string { return a.token }

// fakeService answers per file base name.
type fakeService struct {
	mu sync.Mutex

	uploadErr map[string]error
	outcome   map[string]zscan.UploadOutcome
	teams     []zscan.Team
	teamsErr  error
	assignErr error

	// statuses are returned in order per build id; the last one repeats.
	statuses  map[string][]statusReply
	statusHit map[string]int

	uploads  []string
	assigned map[string]string
	calls    []string
}

type statusReply struct {
	status zscan.AssessmentStatus
	err    error
}

func newFakeService() *fakeService {
	return &fakeService{
		uploadErr: map[string]error{},
		outcome:   map[string]zscan.UploadOutcome{},
		statuses:  map[string][]statusReply{},
		statusHit: map[string]int{},
		assigned:  map[string]string{},
	}
}

func (s *fakeService) Upload(_ context.Context, path string, _ zscan.UploadMetadata) (zscan.UploadOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := filepath.Base(path)
	s.calls = append(s.calls, "upload:"+name)
	s.uploads = append(s.uploads, name)
	if err := s.uploadErr[name]; err != nil {
		return zscan.UploadOutcome{}, err
	}
	if out, ok := s.outcome[name]; ok {
		return out, nil
	}
	return zscan.UploadOutcome{
		AppID:   zscan.NewID("app-" + name),
		TeamID:  zscan.NewID("team-1"),
		BuildID: zscan.NewID("build-" + name),
	}, nil
}

func (s *fakeService) ListTeams(context.Context) ([]zscan.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "teams")
	return s.teams, s.teamsErr
}

func (s *fakeService) AssignAppToTeam(_ context.Context, appID, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "assign:"+appID)
	if s.assignErr != nil {
		return s.assignErr
	}
	s.assigned[appID] = teamID
	return nil
}

func (s *fakeService) CheckStatus(_ context.Context, buildID string) (zscan.AssessmentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "status:"+buildID)

	replies, ok := s.statuses[buildID]
	if !ok {
		return done("assess-" + buildID), nil
	}
	i := s.statusHit[buildID]
	if i >= len(replies) {
		i = len(replies) - 1
	}
	s.statusHit[buildID]++
	return replies[i].status, replies[i].err
}

func done(id string) zscan.AssessmentStatus {
	return zscan.AssessmentStatus{ID: zscan.NewID(id), State: zscan.AnalysisDone, Analysis: "Done"}
}

func pending() zscan.AssessmentStatus {
	return zscan.AssessmentStatus{State: zscan.AnalysisPending, Analysis: "InProgress"}
}

type fakeFetcher struct {
	mu       sync.Mutex
	err      error
	requests []report.Request
}

func (f *fakeFetcher) Fetch(_ context.Context, req report.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.Destination, []byte(`{"report":"`+req.AssessmentID+`"}`), 0o600)
}

type fakeArchiver struct {
	err       error
	published []string
}

func (a *fakeArchiver) Publish(_ context.Context, assessmentID, _ string) error {
	a.published = append(a.published, assessmentID)
	return a.err
}

type harness struct {
	dir     string
	clock   *fakeClock
	auth    *fakeAuth
	service *fakeService
	fetcher *fakeFetcher
}

func newHarness(t *testing.T, files ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("binary "+name), 0o600))
	}
	return &harness{
		dir:     dir,
		clock:   newFakeClock(),
		auth:    &fakeAuth{},
		service: newFakeService(),
		fetcher: &fakeFetcher{},
	}
}

func (h *harness) settings(pattern string) Settings {
	return Settings{
		Dir:           h.dir,
		Pattern:       pattern,
		ClientID:      "client",
		ClientSecret:  "secret",
		TeamName:      "Mobile",
		WaitForReport: true,
		ReportFormat:  "json",
	}
}

func (h *harness) orchestrator(s Settings, opts ...Option) *Orchestrator {
	opts = append([]Option{WithClock(h.clock), WithLogger(zerolog.Nop())}, opts...)
	return New(s, h.auth, h.service, h.fetcher, zscan.NewEndpoints("https://zscan.example.com"), opts...)
}

var errBoom = errors.New("boom")
