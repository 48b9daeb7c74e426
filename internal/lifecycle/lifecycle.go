// Package lifecycle tracks the run states shared by the capture and playback
// tools: Start, PortOpen, Working, then Done or Error, always followed by
// Cleanup and Exit. Runs are never resumed; each invocation starts a new
// Tracker.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/banshee-data/hexlink/internal/monitoring"
)

// ErrInvalidTransition is returned when a transition is not permitted from
// the current state.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is a run state.
type State int

const (
	Start State = iota
	PortOpen
	Working
	Done
	Error
	Cleanup
	Exit
)

var stateNames = [...]string{
	Start:    "START",
	PortOpen: "PORT_OPEN",
	Working:  "WORKING",
	Done:     "DONE",
	Error:    "ERROR",
	Cleanup:  "CLEANUP",
	Exit:     "EXIT",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether s ends the working part of a run.
func (s State) Terminal() bool { return s == Done || s == Error }

var transitions = map[State][]State{
	Start:    {PortOpen, Error},
	PortOpen: {Working, Error},
	Working:  {Done, Error},
	Done:     {Cleanup},
	Error:    {Cleanup},
	Cleanup:  {Exit},
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Tracker records the states a single run passes through.
type Tracker struct {
	name    string
	state   State
	history []State
}

// NewTracker returns a Tracker in the Start state. name prefixes log lines.
func NewTracker(name string) *Tracker {
	return &Tracker{name: name, state: Start, history: []State{Start}}
}

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// History returns a copy of every state entered, in order.
func (t *Tracker) History() []State {
	return append([]State(nil), t.history...)
}

// To moves the tracker to next.
func (t *Tracker) To(next State) error {
	if !CanTransition(t.state, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.state, next)
	}
	monitoring.Logf("%s: %s -> %s", t.name, t.state, next)
	t.state = next
	t.history = append(t.history, next)
	return nil
}

// Fail moves the tracker to Error from any state that allows it. It is a
// no-op once the run has already reached a terminal state.
func (t *Tracker) Fail() {
	if t.state.Terminal() || t.state == Cleanup || t.state == Exit {
		return
	}
	_ = t.To(Error)
}

// BeginCleanup moves the tracker into Cleanup, marking the run as failed
// first if it never reached Done or Error. Calling it again is a no-op.
func (t *Tracker) BeginCleanup() {
	if !t.state.Terminal() {
		t.Fail()
	}
	if t.state.Terminal() {
		_ = t.To(Cleanup)
	}
}

// Finish drives the tracker through Cleanup to Exit.
func (t *Tracker) Finish() {
	t.BeginCleanup()
	if t.state == Cleanup {
		_ = t.To(Exit)
	}
}
