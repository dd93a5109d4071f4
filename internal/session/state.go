// Package session holds the two interactive flows over the catalog: the
// randomized timed training loop and the single-question detail view.
package session

import (
	"time"

	"github.com/abhisek/quantiz/internal/api"
)

// State is the phase of a training session.
type State int

const (
	StateIdle      State = iota // No session
	StateRunning                // Serving a question, timer ticking
	StateExhausted              // Nothing left to serve; restartable
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// NoticeKind classifies the last message shown for a flow.
type NoticeKind int

const (
	NoticeNone    NoticeKind = iota
	NoticeInfo               // Informational, e.g. "already solved"
	NoticeWarning            // Degraded, e.g. saved but refresh failed
	NoticeError              // The action failed
)

// Notice is the last informational or error message of a flow.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool { return n.Kind == NoticeNone || n.Text == "" }

func info(text string) Notice    { return Notice{Kind: NoticeInfo, Text: text} }
func warning(text string) Notice { return Notice{Kind: NoticeWarning, Text: text} }
func failure(err error) Notice   { return Notice{Kind: NoticeError, Text: api.Message(err)} }

// Messages shown by both flows.
const (
	MsgAlreadySolved = "already solved"
	MsgNoQuestions   = "no questions"
	MsgAllSolved     = "all questions solved"
)

// TrainingSnapshot is a read-only copy of the training state.
type TrainingSnapshot struct {
	// State is the current phase.
	State State

	// Current is the question being served (nil unless running).
	Current *api.Question

	// StartedAt is when Current was first served.
	StartedAt time.Time

	// Elapsed is whole seconds since StartedAt as of the last tick.
	Elapsed int

	// Reveal holds the hint/solution/answer visibility for Current.
	Reveal Reveal

	// Notice is the last message for the session.
	Notice Notice

	// Submitting is true while a mark for Current is in flight.
	Submitting bool

	// SessionID identifies the session, regenerated on every Start.
	SessionID string

	// Served counts questions served in this session.
	Served int

	// SolvedInSession counts successful solved marks in this session.
	SolvedInSession int
}

// DetailSnapshot is a read-only copy of the detail flow state.
type DetailSnapshot struct {
	Current    *api.Question
	OpenedAt   time.Time
	Elapsed    int
	Reveal     Reveal
	Notice     Notice
	Submitting bool
}
