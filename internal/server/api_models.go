package server

import (
	"github.com/trusted-tools/ghostjobs/internal/model"
	"github.com/trusted-tools/ghostjobs/internal/reveal"
)

// Analyze stream event types sent over /ws/analyze.
const (
	EventStarted  = "started"
	EventSignal   = "signal"
	EventComplete = "complete"
	EventError    = "error"
)

// AnalyzeEvent is one message of the /ws/analyze stream.
type AnalyzeEvent struct {
	Type   string        `json:"type" example:"signal"`
	URL    string        `json:"url,omitempty" example:"https://jobs.example.com/postings/123"`
	Title  string        `json:"title,omitempty" example:"Senior Backend Engineer"`
	Name   string        `json:"name,omitempty" example:"stale"`
	Signal *model.Signal `json:"signal,omitempty"`
	Score  *int          `json:"score,omitempty" example:"85"`
	Label  string        `json:"label,omitempty" example:"Likely Active"`
	Error  string        `json:"error,omitempty"`

	// State is the reveal state after this event was applied.
	State *reveal.State `json:"state,omitempty"`
}
