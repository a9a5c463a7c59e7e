// Package session runs review sessions: a fixed batch of due items presented in turn
// until each was answered correctly once.
package session

import (
	"errors"
	"fmt"
	"maps"
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseLoading Phase = iota
	// PhaseReady presents the first item of the queue before any answer.
	PhaseReady
	// PhasePresenting presents an item after at least one answer.
	PhasePresenting
	PhaseCompleted
	PhaseEmpty
)

var phaseNames = [...]string{
	PhaseLoading:    "loading",
	PhaseReady:      "ready",
	PhasePresenting: "presenting",
	PhaseCompleted:  "completed",
	PhaseEmpty:      "empty",
}

func (p Phase) String() string {
	if p >= PhaseLoading && p <= PhaseEmpty {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if p < PhaseLoading || p > PhaseEmpty {
		return nil, fmt.Errorf("invalid phase: %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("invalid phase: %q", text)
}

// IsTerminal reports whether no more answers are accepted.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseEmpty
}

var (
	// ErrSessionFinished is returned when answering a completed or empty session.
	ErrSessionFinished = errors.New("session is finished")
	// ErrInvalidTransition is returned for an event the current phase does not accept.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Event is an input of Transition.
type Event interface {
	event()
}

// Loaded carries the study status ids of the due items, in presentation order.
type Loaded struct {
	IDs []int64
}

// Answered carries the answer to the current item.
type Answered struct {
	IsCorrect bool
}

func (Loaded) event()   {}
func (Answered) event() {}

// State is an immutable snapshot of a session. Transition returns a new State
// and never modifies its input.
type State struct {
	Phase Phase
	// Queue is fixed once the state leaves PhaseLoading.
	Queue         []int64
	Correct       map[int64]bool
	CurrentIndex  int
	AnsweredCount int
}

// NewState returns the initial state.
func NewState() State {
	return State{Phase: PhaseLoading}
}

// Current returns the id presented now.
func (s State) Current() (int64, bool) {
	if s.Phase != PhaseReady && s.Phase != PhasePresenting {
		return 0, false
	}
	return s.Queue[s.CurrentIndex], true
}

// CorrectCount returns how many queued items were answered correctly.
func (s State) CorrectCount() int {
	n := 0
	for _, id := range s.Queue {
		if s.Correct[id] {
			n++
		}
	}
	return n
}

// Transition applies event to state.
func Transition(state State, event Event) (State, error) {
	switch e := event.(type) {
	case Loaded:
		return load(state, e)
	case Answered:
		return answer(state, e)
	default:
		return state, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, event)
	}
}

func load(state State, e Loaded) (State, error) {
	if state.Phase != PhaseLoading {
		return state, fmt.Errorf("%w: load in phase %s", ErrInvalidTransition, state.Phase)
	}

	queue := make([]int64, 0, len(e.IDs))
	seen := make(map[int64]bool, len(e.IDs))
	for _, id := range e.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, id)
	}
	if len(queue) == 0 {
		return State{Phase: PhaseEmpty}, nil
	}
	return State{
		Phase:   PhaseReady,
		Queue:   queue,
		Correct: make(map[int64]bool, len(queue)),
	}, nil
}

// answer flags the current item and moves to the next item not answered correctly,
// scanning forward and wrapping around. A failed item comes back only after the others.
func answer(state State, e Answered) (State, error) {
	switch {
	case state.Phase.IsTerminal():
		return state, ErrSessionFinished
	case state.Phase == PhaseLoading:
		return state, fmt.Errorf("%w: answer before items are loaded", ErrInvalidTransition)
	}

	next := state
	next.Correct = maps.Clone(state.Correct)
	next.Correct[state.Queue[state.CurrentIndex]] = e.IsCorrect
	next.AnsweredCount++

	n := len(state.Queue)
	for step := 1; step <= n; step++ {
		index := (state.CurrentIndex + step) % n
		if !next.Correct[state.Queue[index]] {
			next.Phase = PhasePresenting
			next.CurrentIndex = index
			return next, nil
		}
	}
	next.Phase = PhaseCompleted
	return next, nil
}
