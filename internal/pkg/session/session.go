package session

import (
	"ssvp/internal/pkg/wire"
)

// DefaultThreshold is the minimum accepted wait_seconds when none is
// configured.
const DefaultThreshold = 5.0

// Outcome is the verdict for one validated record.
type Outcome int

const (
	Accepted Outcome = iota
	RejectedSequence
	RejectedTimeout
)

// Code maps the outcome onto its wire response code.
func (o Outcome) Code() wire.Code {
	switch o {
	case RejectedSequence:
		return wire.CodeOutOfOrder
	case RejectedTimeout:
		return wire.CodeTimeout
	}
	return wire.CodeOK
}

func (o Outcome) Err() error {
	switch o {
	case RejectedSequence:
		return ErrOutOfOrder
	case RejectedTimeout:
		return ErrBelowThreshold
	}
	return nil
}

// Rejected reports whether the outcome terminates the session.
func (o Outcome) Rejected() bool {
	return o != Accepted
}

// State is the validation state of one session. It is owned by exactly one
// session handler and never shared, so it needs no locking.
type State struct {
	threshold  float64
	lastStepID uint64
	started    bool
}

func NewState(threshold float64) *State {
	return &State{threshold: threshold}
}

// Validate checks a record against the session state. The first record
// establishes the step baseline and is exempt from the sequence check; the
// wait threshold applies to every record. When a record violates both
// invariants the sequence error wins. An accepted record advances the
// baseline; a rejected record leaves the state untouched.
func (s *State) Validate(rec wire.Record) Outcome {
	if s.started && rec.StepID != s.lastStepID+1 {
		return RejectedSequence
	}
	if rec.WaitSeconds < s.threshold {
		return RejectedTimeout
	}
	s.lastStepID = rec.StepID
	s.started = true
	return Accepted
}

func (s *State) LastStepID() uint64 {
	return s.lastStepID
}

func (s *State) Started() bool {
	return s.started
}
