// Package model holds the JSON wire types shared by the API server and its clients.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInvalidURL is returned when the request url is missing, empty or not a string.
var ErrInvalidURL = errors.New("invalid url")

// AnalyzeRequest is the body of POST /api/analyze.
//
// Only URL drives scoring. The remaining fields are sent by some client
// revisions and are kept raw, so any JSON value in them decodes.
type AnalyzeRequest struct {
	URL            json.RawMessage `json:"url" swaggertype:"string" example:"https://jobs.example.com/postings/123"`
	Mode           json.RawMessage `json:"mode,omitempty" swaggertype:"string" example:"quick"`
	JobDescription json.RawMessage `json:"jobDescription,omitempty" swaggertype:"string"`
	PostingDate    json.RawMessage `json:"postingDate,omitempty" swaggertype:"string" example:"2026-09-01"`
	AccessCode     json.RawMessage `json:"accessCode,omitempty" swaggertype:"string"`
}

// NewAnalyzeRequest builds a request for url.
func NewAnalyzeRequest(url string) AnalyzeRequest {
	raw, _ := json.Marshal(url)
	return AnalyzeRequest{URL: raw}
}

// TargetURL returns the url field as a string. It fails with ErrInvalidURL when
// the field is absent, null, not a JSON string, or empty.
func (r AnalyzeRequest) TargetURL() (string, error) {
	raw := bytes.TrimSpace(r.URL)
	if len(raw) == 0 || raw[0] != '"' {
		return "", ErrInvalidURL
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", ErrInvalidURL
	}
	if s == "" {
		return "", ErrInvalidURL
	}
	return s, nil
}

// Signal is one checklist item shown to the user. Delay is UI pacing in
// milliseconds and carries no analytical meaning.
type Signal struct {
	Result bool   `json:"result"`
	Delay  int    `json:"delay" example:"1000"`
	Info   string `json:"info,omitempty" example:"12 days old"`
}

// Signals groups the three named signals of an analysis.
type Signals struct {
	Stale      Signal `json:"stale"`
	Weak       Signal `json:"weak"`
	Inactivity Signal `json:"inactivity"`
}

// AnalyzeResponse is the success body of POST /api/analyze.
type AnalyzeResponse struct {
	Score   int     `json:"score" example:"85"`
	Signals Signals `json:"signals"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	OK bool `json:"ok" example:"true"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid URL"`
}
