package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTransition(t *testing.T, state State, event Event) State {
	t.Helper()
	next, err := Transition(state, event)
	require.NoError(t, err)
	return next
}

func TestTransition_Loaded(t *testing.T) {
	tests := []struct {
		name      string
		ids       []int64
		wantPhase Phase
		wantQueue []int64
	}{
		{
			name:      "no due items",
			ids:       nil,
			wantPhase: PhaseEmpty,
		},
		{
			name:      "due items keep their order",
			ids:       []int64{3, 1, 2},
			wantPhase: PhaseReady,
			wantQueue: []int64{3, 1, 2},
		},
		{
			name:      "duplicates are dropped",
			ids:       []int64{3, 1, 3},
			wantPhase: PhaseReady,
			wantQueue: []int64{3, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustTransition(t, NewState(), Loaded{IDs: tt.ids})
			assert.Equal(t, tt.wantPhase, got.Phase)
			assert.Equal(t, len(tt.wantQueue), len(got.Queue))
			if tt.wantQueue != nil {
				assert.Equal(t, tt.wantQueue, got.Queue)
				id, ok := got.Current()
				require.True(t, ok)
				assert.Equal(t, tt.wantQueue[0], id)
			}
		})
	}

	t.Run("loading twice is rejected", func(t *testing.T) {
		ready := mustTransition(t, NewState(), Loaded{IDs: []int64{1}})
		_, err := Transition(ready, Loaded{IDs: []int64{2}})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestTransition_Answered(t *testing.T) {
	t.Run("wrong, correct, correct leaves the first item pending", func(t *testing.T) {
		state := mustTransition(t, NewState(), Loaded{IDs: []int64{10, 20, 30}})
		state = mustTransition(t, state, Answered{IsCorrect: false})
		state = mustTransition(t, state, Answered{IsCorrect: true})
		state = mustTransition(t, state, Answered{IsCorrect: true})

		assert.Equal(t, PhasePresenting, state.Phase)
		id, ok := state.Current()
		require.True(t, ok)
		assert.Equal(t, int64(10), id)
		assert.Equal(t, 2, state.CorrectCount())

		state = mustTransition(t, state, Answered{IsCorrect: true})
		assert.Equal(t, PhaseCompleted, state.Phase)
		assert.Equal(t, 4, state.AnsweredCount)
		_, ok = state.Current()
		assert.False(t, ok)
	})

	t.Run("failed item comes back after the others", func(t *testing.T) {
		state := mustTransition(t, NewState(), Loaded{IDs: []int64{1, 2, 3}})
		state = mustTransition(t, state, Answered{IsCorrect: true})  // 1
		state = mustTransition(t, state, Answered{IsCorrect: false}) // 2

		id, _ := state.Current()
		assert.Equal(t, int64(3), id)
		state = mustTransition(t, state, Answered{IsCorrect: true}) // 3
		id, _ = state.Current()
		assert.Equal(t, int64(2), id)
	})

	t.Run("single failed item is presented again", func(t *testing.T) {
		state := mustTransition(t, NewState(), Loaded{IDs: []int64{7}})
		state = mustTransition(t, state, Answered{IsCorrect: false})
		id, ok := state.Current()
		require.True(t, ok)
		assert.Equal(t, int64(7), id)
		assert.Equal(t, PhasePresenting, state.Phase)
	})

	t.Run("queue membership never changes", func(t *testing.T) {
		state := mustTransition(t, NewState(), Loaded{IDs: []int64{1, 2}})
		queue := state.Queue
		for _, correct := range []bool{false, false, true, false, true} {
			state = mustTransition(t, state, Answered{IsCorrect: correct})
			assert.Equal(t, queue, state.Queue)
		}
	})

	t.Run("input state is not modified", func(t *testing.T) {
		ready := mustTransition(t, NewState(), Loaded{IDs: []int64{1, 2}})
		next := mustTransition(t, ready, Answered{IsCorrect: true})
		assert.Empty(t, ready.Correct)
		assert.Equal(t, 0, ready.AnsweredCount)
		assert.True(t, next.Correct[1])
	})

	t.Run("answering a finished session", func(t *testing.T) {
		empty := mustTransition(t, NewState(), Loaded{})
		_, err := Transition(empty, Answered{IsCorrect: true})
		assert.ErrorIs(t, err, ErrSessionFinished)

		completed := mustTransition(t, NewState(), Loaded{IDs: []int64{1}})
		completed = mustTransition(t, completed, Answered{IsCorrect: true})
		_, err = Transition(completed, Answered{IsCorrect: true})
		assert.ErrorIs(t, err, ErrSessionFinished)
	})

	t.Run("answering before loading", func(t *testing.T) {
		_, err := Transition(NewState(), Answered{IsCorrect: true})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestTransition_AlwaysCompletes(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	state := mustTransition(t, NewState(), Loaded{IDs: ids})

	// Each item fails a few times before it is answered correctly.
	failures := map[int64]int{1: 3, 2: 0, 3: 1, 4: 5, 5: 2, 6: 0, 7: 4, 8: 1}
	maxAnswers := len(ids)
	for _, n := range failures {
		maxAnswers += n
	}

	answers := 0
	for state.Phase != PhaseCompleted {
		require.LessOrEqual(t, answers, maxAnswers, "session did not complete")
		id, ok := state.Current()
		require.True(t, ok)
		correct := failures[id] == 0
		if !correct {
			failures[id]--
		}
		state = mustTransition(t, state, Answered{IsCorrect: correct})
		answers++
	}
	assert.Equal(t, maxAnswers, answers)
	assert.Equal(t, len(ids), state.CorrectCount())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "presenting", PhasePresenting.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
	text, err := PhaseCompleted.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "completed", string(text))
	assert.True(t, PhaseEmpty.IsTerminal())
	assert.False(t, PhaseReady.IsTerminal())
}
