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
	"net"
	"net/http"
	"time"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/version"
)

// maxResponseBody bounds how much of an API response is read into memory.
const maxResponseBody = 8 << 20

// NewHTTPClient returns an HTTP client with the dial and response-header
// timeouts used for all API calls. No overall timeout is set so that large
// uploads are not cut off; callers bound requests through their context.
func NewHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = readTimeout

	return &http.Client{Transport: transport}
}

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	Body       []byte
}

func (r response) ok() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// do sends req and reads the whole body. A nil error means a response was
// received, whatever its status code.
func do(client *http.Client, req *http.Request) (response, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return response{}, fmt.Errorf("read response body: %w", err)
	}
	return response{StatusCode: resp.StatusCode, Body: body}, nil
}

func newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func setBearer(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}
