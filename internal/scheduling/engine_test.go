package scheduling

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBoxLevel(t *testing.T) {
	for level := MinBoxLevel; level <= MaxBoxLevel; level++ {
		t.Run(fmt.Sprintf("correct from level %d", level), func(t *testing.T) {
			got := NextBoxLevel(level, true)
			assert.Equal(t, min(level+1, MaxBoxLevel), got)
			assert.LessOrEqual(t, got, MaxBoxLevel)
		})
		t.Run(fmt.Sprintf("wrong from level %d", level), func(t *testing.T) {
			assert.Equal(t, 1, NextBoxLevel(level, false))
		})
	}

	t.Run("out of range input is clamped", func(t *testing.T) {
		assert.Equal(t, MaxBoxLevel, NextBoxLevel(42, true))
		assert.Equal(t, 1, NextBoxLevel(-3, true))
	})
}

func TestNextBoxLevel_SixCorrectAnswersReachTop(t *testing.T) {
	level := 0
	for range 6 {
		level = NextBoxLevel(level, true)
	}
	assert.Equal(t, MaxBoxLevel, level)
}

func TestIsDue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name           string
		boxLevel       int
		nextReviewDate *time.Time
		want           bool
	}{
		{name: "box 0 is always due", boxLevel: 0, nextReviewDate: &future, want: true},
		{name: "no date is due", boxLevel: 3, nextReviewDate: nil, want: true},
		{name: "past date is due", boxLevel: 3, nextReviewDate: &past, want: true},
		{name: "exactly now is due", boxLevel: 3, nextReviewDate: &now, want: true},
		{name: "future date is not due", boxLevel: 3, nextReviewDate: &future, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(tt.boxLevel, tt.nextReviewDate, now))
		})
	}
}

func TestDefaultTables(t *testing.T) {
	tables := DefaultTables()
	for _, trainingType := range TrainingTypes() {
		table, ok := tables[trainingType]
		require.True(t, ok, trainingType.String())
		assert.NoError(t, table.Validate(), trainingType.String())
	}
	assert.Equal(t, 32*day, tables[Vocabulary].Interval(6))
	assert.Equal(t, 60*day, tables[Sentence].Interval(6))
	assert.Equal(t, time.Duration(0), tables[Vocabulary].Interval(0))
}

func TestIntervalTableFromDays(t *testing.T) {
	tests := []struct {
		name    string
		days    []int
		wantErr bool
	}{
		{name: "valid", days: []int{1, 2, 3, 4, 5, 6}},
		{name: "too short", days: []int{1, 2, 3}, wantErr: true},
		{name: "not increasing", days: []int{1, 2, 2, 4, 5, 6}, wantErr: true},
		{name: "zero interval", days: []int{0, 2, 3, 4, 5, 6}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := IntervalTableFromDays(tt.days)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("overrides one table", func(t *testing.T) {
		engine, err := NewEngine(map[string][]int{"Listening": {2, 4, 6, 8, 10, 12}})
		require.NoError(t, err)
		assert.Equal(t, 12*day, engine.Table(Listening).Interval(6))
		assert.Equal(t, 32*day, engine.Table(Vocabulary).Interval(6))
	})

	t.Run("unknown training type", func(t *testing.T) {
		_, err := NewEngine(map[string][]int{"reading": {1, 2, 3, 4, 5, 6}})
		assert.ErrorContains(t, err, "invalid training type")
	})

	t.Run("invalid table", func(t *testing.T) {
		_, err := NewEngine(map[string][]int{"sentence": {6, 5, 4, 3, 2, 1}})
		assert.Error(t, err)
	})
}

func TestEngine_Transition(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	engine, err := NewEngine(nil)
	require.NoError(t, err)

	tests := []struct {
		name         string
		trainingType TrainingType
		current      int
		isCorrect    bool
		wantAfter    int
		wantDue      time.Time
	}{
		{
			name:         "new item answered correctly",
			trainingType: Vocabulary,
			current:      0,
			isCorrect:    true,
			wantAfter:    1,
			wantDue:      now.Add(day),
		},
		{
			name:         "level 4 answered wrong resets to 1",
			trainingType: Vocabulary,
			current:      4,
			isCorrect:    false,
			wantAfter:    1,
			wantDue:      now.Add(day),
		},
		{
			name:         "level 6 answered correctly stays and is rescheduled",
			trainingType: Vocabulary,
			current:      6,
			isCorrect:    true,
			wantAfter:    6,
			wantDue:      now.Add(32 * day),
		},
		{
			name:         "sentence uses its own table",
			trainingType: Sentence,
			current:      1,
			isCorrect:    true,
			wantAfter:    2,
			wantDue:      now.Add(3 * day),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Transition(tt.trainingType, tt.current, tt.isCorrect, now)
			assert.Equal(t, tt.current, got.BeforeBoxLevel)
			assert.Equal(t, tt.wantAfter, got.AfterBoxLevel)
			require.NotNil(t, got.NextReviewDate)
			assert.Equal(t, tt.wantDue, *got.NextReviewDate)
		})
	}

	t.Run("level 0 has no due date", func(t *testing.T) {
		assert.True(t, engine.NextDueDate(Vocabulary, 0, now).IsZero())
	})
}

func TestTrainingType(t *testing.T) {
	assert.Equal(t, TrainingType(1), Vocabulary)
	assert.Equal(t, TrainingType(4), Listening)
	assert.Equal(t, "translation", Translation.String())
	assert.Equal(t, "TrainingType(9)", TrainingType(9).String())

	got, err := ParseTrainingType(" Sentence ")
	require.NoError(t, err)
	assert.Equal(t, Sentence, got)

	data, err := json.Marshal(struct {
		Type TrainingType `json:"type"`
	}{Type: Listening})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"listening"}`, string(data))

	var decoded struct {
		Type TrainingType `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"vocabulary"}`), &decoded))
	assert.Equal(t, Vocabulary, decoded.Type)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"reading"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"type":1}`), &decoded))
	_, err = json.Marshal(TrainingType(0))
	assert.Error(t, err)
}
