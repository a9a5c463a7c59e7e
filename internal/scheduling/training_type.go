package scheduling

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// TrainingType is the kind of exercise an item is scheduled for.
// Each type evolves its own box level and uses its own interval table.
type TrainingType int

const (
	Vocabulary  TrainingType = iota + 1 // word to meaning
	Sentence                            // example sentence comprehension
	Translation                         // produce the word from a translation
	Listening                           // recognise the word by ear
)

var (
	trainingTypeNames = [...]string{
		Vocabulary:  "vocabulary",
		Sentence:    "sentence",
		Translation: "translation",
		Listening:   "listening",
	}
	trainingTypeByName = map[string]TrainingType{
		"vocabulary":  Vocabulary,
		"sentence":    Sentence,
		"translation": Translation,
		"listening":   Listening,
	}
)

var (
	_ fmt.Stringer             = TrainingType(0)
	_ json.Marshaler           = TrainingType(0)
	_ json.Unmarshaler         = (*TrainingType)(nil)
	_ encoding.TextMarshaler   = TrainingType(0)
	_ encoding.TextUnmarshaler = (*TrainingType)(nil)
)

// TrainingTypes returns every training type in declaration order.
func TrainingTypes() []TrainingType {
	return []TrainingType{Vocabulary, Sentence, Translation, Listening}
}

// ParseTrainingType parses a training type name case-insensitively.
func ParseTrainingType(name string) (TrainingType, error) {
	t, ok := trainingTypeByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid training type: %q", name)
	}
	return t, nil
}

// IsValid reports whether t is one of the declared training types.
func (t TrainingType) IsValid() bool {
	return t >= Vocabulary && t <= Listening
}

func (t TrainingType) String() string {
	if t.IsValid() {
		return trainingTypeNames[t]
	}
	return fmt.Sprintf("TrainingType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t TrainingType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid training type: %d", int(t))
	}
	return []byte(trainingTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TrainingType) UnmarshalText(text []byte) error {
	v, err := ParseTrainingType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalJSON implements json.Marshaler. TrainingType serializes as a JSON string.
func (t TrainingType) MarshalJSON() ([]byte, error) {
	text, err := t.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (t *TrainingType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid training type: %s", data)
	}
	return t.UnmarshalText([]byte(s))
}
