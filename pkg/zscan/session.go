// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package zscan

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const (
	opLogin   = "login"
	opRefresh = "refresh"
	opUpload  = "upload"
	opTeams   = "list teams"
	opAssign  = "assign team"
	opStatus  = "status"
)

// TokenSource provides the bearer token attached to authenticated calls.
type TokenSource interface {
	AccessToken() string
}

// Session owns the access/refresh token pair of one run. Tokens change only
// through Login and Refresh, and always as a pair.
//
// A Session is not safe for concurrent use; the workflow drives it from a
// single goroutine.
type Session struct {
	endpoints    Endpoints
	http         *http.Client
	logger       zerolog.Logger
	accessToken  string
	refreshToken string
}

// NewSession creates a Session with no tokens.
func NewSession(endpoints Endpoints, httpClient *http.Client, logger zerolog.Logger) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Session{
		endpoints: endpoints,
		http:      httpClient,
		logger:    logger.With().Str("component", "auth").Logger(),
	}
}

// AccessToken returns the current access token ("" before login).
func (s *Session) AccessToken() string { return s.accessToken }

// Authenticated reports whether a token pair is held.
func (s *Session) Authenticated() bool { return s.accessToken != "" && s.refreshToken != "" }

// Login exchanges client credentials for a token pair. On any failure the
// session keeps whatever tokens it held before.
func (s *Session) Login(ctx context.Context, clientID, clientSecret string) error {
	url := s.endpoints.Login()
	s.logger.Info().Str("url", url).Msg("Sending login request")

	err := s.exchange(ctx, opLogin, url, loginRequest{ClientID: clientID, Secret: clientSecret})
	if err != nil {
		s.logger.Error().Err(err).Msg("Login unsuccessful")
		return err
	}

	s.logger.Info().Msg("Login successful")
	return nil
}

// Refresh trades the current refresh token for a new token pair. Without a
// refresh token it fails with ErrNoRefreshToken and sends nothing. A failed
// refresh leaves both tokens untouched; callers may keep using the old
// access token.
func (s *Session) Refresh(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	s.logger.Info().Msg("Refreshing access token")

	err := s.exchange(ctx, opRefresh, s.endpoints.Refresh(), refreshRequest{RefreshToken: s.refreshToken})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Unable to refresh token")
		return err
	}

	s.logger.Debug().Msg("Access token refreshed")
	return nil
}

// exchange posts payload to url and adopts the returned token pair.
func (s *Session) exchange(ctx context.Context, op, url string, payload any) error {
	req, err := newJSONRequest(ctx, http.MethodPost, url, payload)
	if err != nil {
		return transportError(op, err)
	}

	resp, err := do(s.http, req)
	if err != nil {
		return transportError(op, err)
	}
	if !resp.ok() {
		return newStatusError(op, resp.StatusCode, resp.Body)
	}

	var pair tokenPair
	if err := json.Unmarshal(resp.Body, &pair); err != nil {
		return malformed(op, "decode tokens: %v", err)
	}
	if pair.AccessToken == nil || *pair.AccessToken == "" {
		return malformed(op, "accessToken missing")
	}
	if pair.RefreshToken == nil || *pair.RefreshToken == "" {
		return malformed(op, "refreshToken missing")
	}

	s.accessToken, s.refreshToken = *pair.AccessToken, *pair.RefreshToken
	return nil
}
