// Package reveal drives the staged presentation of an analysis result.
//
// A result is revealed one signal at a time, each at the delay the server
// attached to it, followed by the score once every signal has landed. The
// whole reveal is a single State value advanced by an ordered event list.
package reveal

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/model"
)

// CompletionPadding separates the last signal from the score reveal.
const CompletionPadding = 300 * time.Millisecond

// ErrNotRunning is returned when an event arrives outside a running reveal.
var ErrNotRunning = errors.New("reveal: not running")

// Status is the lifecycle of one analysis in the client.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
)

// SignalStatus tracks whether a signal has been revealed.
type SignalStatus string

const (
	SignalPending  SignalStatus = "pending"
	SignalComplete SignalStatus = "complete"
)

// Signal names, matching the JSON keys of model.Signals.
const (
	SignalStale      = "stale"
	SignalWeak       = "weak"
	SignalInactivity = "inactivity"
)

// SignalNames lists signals in display order.
var SignalNames = []string{SignalStale, SignalWeak, SignalInactivity}

// EventKind distinguishes signal reveals from the final score reveal.
type EventKind string

const (
	EventSignal   EventKind = "signal"
	EventComplete EventKind = "complete"
)

// Event is one scheduled step, At after the reveal starts.
type Event struct {
	At     time.Duration
	Kind   EventKind
	Name   string
	Signal *model.Signal
	Score  *int
}

// Schedule orders the reveal of resp: one event per signal at its delay, then
// the score at the largest delay plus CompletionPadding. Signals sharing a
// delay keep display order.
func Schedule(resp model.AnalyzeResponse) []Event {
	byName := map[string]model.Signal{
		SignalStale:      resp.Signals.Stale,
		SignalWeak:       resp.Signals.Weak,
		SignalInactivity: resp.Signals.Inactivity,
	}

	events := make([]Event, 0, len(SignalNames)+1)
	var last time.Duration
	for _, name := range SignalNames {
		sig := byName[name]
		at := time.Duration(sig.Delay) * time.Millisecond
		if at < 0 {
			at = 0
		}
		if at > last {
			last = at
		}
		events = append(events, Event{At: at, Kind: EventSignal, Name: name, Signal: &sig})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	score := resp.Score
	events = append(events, Event{At: last + CompletionPadding, Kind: EventComplete, Score: &score})
	return events
}

// State is the whole client-visible reveal state.
type State struct {
	Status  Status                  `json:"status"`
	Score   *int                    `json:"score"`
	Signals map[string]SignalStatus `json:"signals"`
}

// Machine is the idle → running → complete state machine. It is not safe for
// concurrent use; Play delivers events from a single goroutine.
type Machine struct {
	state State
}

// NewMachine returns a machine in the idle state.
func NewMachine() *Machine {
	m := &Machine{}
	m.Reset()
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	out := State{Status: m.state.Status, Signals: make(map[string]SignalStatus, len(m.state.Signals))}
	if m.state.Score != nil {
		s := *m.state.Score
		out.Score = &s
	}
	for k, v := range m.state.Signals {
		out.Signals[k] = v
	}
	return out
}

// Reset returns to idle with every signal pending and no score.
func (m *Machine) Reset() {
	m.state = State{Status: StatusIdle, Signals: pendingSignals()}
}

// Start begins a new reveal. A running reveal cannot be restarted.
func (m *Machine) Start() error {
	if m.state.Status == StatusRunning {
		return errors.New("reveal: already running")
	}
	m.state = State{Status: StatusRunning, Signals: pendingSignals()}
	return nil
}

// Apply advances the machine by one scheduled event.
func (m *Machine) Apply(ev Event) error {
	if m.state.Status != StatusRunning {
		return ErrNotRunning
	}
	switch ev.Kind {
	case EventSignal:
		if _, ok := m.state.Signals[ev.Name]; !ok {
			return errors.New("reveal: unknown signal " + ev.Name)
		}
		m.state.Signals[ev.Name] = SignalComplete
	case EventComplete:
		if ev.Score != nil {
			s := *ev.Score
			m.state.Score = &s
		}
		m.state.Status = StatusComplete
	default:
		return errors.New("reveal: unknown event kind " + string(ev.Kind))
	}
	return nil
}

// Fail ends a running reveal without a score, as when the request errors.
func (m *Machine) Fail() {
	m.state.Status = StatusComplete
	m.state.Score = nil
}

func pendingSignals() map[string]SignalStatus {
	out := make(map[string]SignalStatus, len(SignalNames))
	for _, name := range SignalNames {
		out[name] = SignalPending
	}
	return out
}

// Play calls fn for each event at its offset from the moment Play is called.
// Events must be ordered by At. It returns ctx.Err() if cancelled before the
// last event, or the first error fn returns.
func Play(ctx context.Context, events []Event, fn func(Event) error) error {
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for _, ev := range events {
		if wait := ev.At - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}
