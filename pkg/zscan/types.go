// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package zscan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// ID is an optional identifier from an API response. The server sends ids
// as JSON strings, numbers or null; a null or absent field yields an ID
// that is not present.
type ID struct {
	value   string
	present bool
}

// NewID returns a present ID holding v.
func NewID(v string) ID { return ID{value: v, present: true} }

// Present reports whether the field carried a non-null value.
func (id ID) Present() bool { return id.present }

// Empty reports whether the id is absent or the empty string.
func (id ID) Empty() bool { return !id.present || id.value == "" }

// String returns the value, or "" for an absent id.
func (id ID) String() string { return id.value }

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*id = ID{}
		return nil
	}

	switch raw.(type) {
	case map[string]any, []any:
		return fmt.Errorf("id must be a scalar, got %s", string(data))
	}

	v, err := cast.ToStringE(raw)
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = NewID(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.present {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UploadOutcome holds the identifiers returned for an uploaded build.
// An empty TeamID means the application still has to be assigned to a team.
type UploadOutcome struct {
	AppID   ID `json:"zdevAppId"`
	TeamID  ID `json:"teamId"`
	BuildID ID `json:"buildId"`
}

// Team is an organizational team as listed by the server.
type Team struct {
	ID   string
	Name string
}

type teamWire struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type teamPage struct {
	Content *[]teamWire `json:"content"`
}

// AnalysisState is the coarse state of an assessment.
type AnalysisState int

const (
	AnalysisOther AnalysisState = iota
	AnalysisPending
	AnalysisDone
)

// ParseAnalysisState maps the server's analysis string to an AnalysisState.
func ParseAnalysisState(s string) AnalysisState {
	switch s {
	case "Done":
		return AnalysisDone
	case "Pending", "InProgress", "In Progress", "Queued":
		return AnalysisPending
	default:
		return AnalysisOther
	}
}

func (s AnalysisState) String() string {
	switch s {
	case AnalysisDone:
		return "Done"
	case AnalysisPending:
		return "Pending"
	default:
		return "Other"
	}
}

// AssessmentStatus is one answer of the status endpoint.
type AssessmentStatus struct {
	ID       ID
	State    AnalysisState
	Analysis string // Raw analysis value as sent by the server
}

type statusWire struct {
	ID       ID `json:"id"`
	Metadata *struct {
		Analysis *string `json:"analysis"`
	} `json:"zdevMetadata"`
}

type tokenPair struct {
	AccessToken  *string `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
}

type loginRequest struct {
	ClientID string `json:"clientId"`
	Secret   string `json:"secret"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type assignRequest struct {
	TeamID string `json:"teamId"`
}

// UploadMetadata is sent alongside each uploaded binary.
type UploadMetadata struct {
	CIToolID    string
	CIToolName  string
	BranchName  string
	BuildNumber string
}
