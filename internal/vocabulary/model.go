// Package vocabulary provides the read-only vocabulary reference data and level membership.
package vocabulary

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Item is a vocabulary entry shown to the learner.
type Item struct {
	ID           int64      `db:"id" json:"id" yaml:"id"`
	Text         string     `db:"text" json:"text" yaml:"text"`
	PartOfSpeech string     `db:"part_of_speech" json:"part_of_speech" yaml:"part_of_speech"`
	Meanings     StringList `db:"meanings" json:"meanings" yaml:"meanings"`
	Examples     StringList `db:"examples" json:"examples" yaml:"examples"`
	Synonyms     StringList `db:"synonyms" json:"synonyms" yaml:"synonyms"`
	Notes        string     `db:"notes" json:"notes" yaml:"notes"`
	CreatedAt    time.Time  `db:"created_at" json:"-" yaml:"-"`
	UpdatedAt    time.Time  `db:"updated_at" json:"-" yaml:"-"`
}

// Level is a curated collection of vocabulary items.
type Level struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// StringList is a list of strings stored as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(StringList) > %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("json.Unmarshal(StringList) > %w", err)
	}
	*l = values
	return nil
}
