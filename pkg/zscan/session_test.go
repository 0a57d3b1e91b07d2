// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package zscan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, handler http.HandlerFunc) (*Session, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSession(NewEndpoints(server.URL), server.Client(), zerolog.Nop()), server
}

func TestSession_Login(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantAccess  string
		wantRefresh string
	}{
		{
			name:        "both tokens present",
			status:      http.StatusOK,
			body:        `{"accessToken":"a1","refreshToken":"r1"}`,
			wantAccess:  "a1",
			wantRefresh: "r1",
		},
		{
			name:    "refresh token missing",
			status:  http.StatusOK,
			body:    `{"accessToken":"a1"}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "access token null",
			status:  http.StatusOK,
			body:    `{"accessToken":null,"refreshToken":"r1"}`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":"bad credentials"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, loginPath, r.URL.Path)

				var req loginRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				require.Equal(t, "id", req.ClientID)
				require.Equal(t, "secret", req.Secret)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := s.Login(context.Background(), "id", "secret")
			switch {
			case tt.status != http.StatusOK:
				require.Error(t, err)
				require.Equal(t, tt.status, StatusCode(err))
				require.False(t, s.Authenticated())
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, s.accessToken)
				require.Empty(t, s.refreshToken)
			default:
				require.NoError(t, err)
				require.Equal(t, tt.wantAccess, s.AccessToken())
				require.Equal(t, tt.wantRefresh, s.refreshToken)
				require.True(t, s.Authenticated())
			}
		})
	}
}

func TestSession_Login_TransportFailure(t *testing.T) {
	s, server := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	err := s.Login(context.Background(), "id", "secret")
	require.ErrorIs(t, err, ErrTransport)
	require.False(t, s.Authenticated())
}

func TestSession_Refresh_WithoutRefreshTokenSendsNothing(t *testing.T) {
	var calls atomic.Int32
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	err := s.Refresh(context.Background())
	require.ErrorIs(t, err, ErrNoRefreshToken)
	require.Zero(t, calls.Load())
}

func TestSession_Refresh_ReplacesBothTokens(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case loginPath:
			_, _ = w.Write([]byte(`{"accessToken":"a1","refreshToken":"r1"}`))
		case refreshPath:
			var req refreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "r1", req.RefreshToken)
			require.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"accessToken":"a2","refreshToken":"r2"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, s.Login(context.Background(), "id", "secret"))
	require.NoError(t, s.Refresh(context.Background()))
	require.Equal(t, "a2", s.AccessToken())
	require.Equal(t, "r2", s.refreshToken)
}

func TestSession_Refresh_FailureKeepsTokens(t *testing.T) {
	refreshReplies := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"missing refresh token", http.StatusOK, `{"accessToken":"a2"}`},
		{"malformed body", http.StatusOK, `not-json`},
	}

	for _, reply := range refreshReplies {
		t.Run(reply.name, func(t *testing.T) {
			s, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == loginPath {
					_, _ = w.Write([]byte(`{"accessToken":"a1","refreshToken":"r1"}`))
					return
				}
				w.WriteHeader(reply.status)
				_, _ = w.Write([]byte(reply.body))
			})

			require.NoError(t, s.Login(context.Background(), "id", "secret"))
			beforeAccess, beforeRefresh := s.accessToken, s.refreshToken

			require.Error(t, s.Refresh(context.Background()))
			require.Equal(t, beforeAccess, s.accessToken)
			require.Equal(t, beforeRefresh, s.refreshToken)
		})
	}
}
