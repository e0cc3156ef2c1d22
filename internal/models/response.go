package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnswerValue is the value recorded for one question: either a single text
// value (free text or one option id) or a set of option ids. The wire shape is
// a bare JSON string or a JSON string array, matching the per-type rule in
// Question.ValidateAnswer.
type AnswerValue struct {
	single  string
	multi   []string
	isMulti bool
}

// TextAnswer builds a single-value answer (free text, email, or one option id).
func TextAnswer(s string) AnswerValue {
	return AnswerValue{single: s}
}

// OptionAnswer builds a single-selection answer from an option id.
func OptionAnswer(id uuid.UUID) AnswerValue {
	return AnswerValue{single: id.String()}
}

// OptionsAnswer builds a selection-set answer from option ids, preserving order.
func OptionsAnswer(ids ...uuid.UUID) AnswerValue {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return AnswerValue{multi: out, isMulti: true}
}

// IsMulti reports whether the value is a selection set.
func (v AnswerValue) IsMulti() bool { return v.isMulti }

// IsEmpty reports whether the value carries no answer.
func (v AnswerValue) IsEmpty() bool {
	if v.isMulti {
		return len(v.multi) == 0
	}
	return v.single == ""
}

// Text returns the single value. Empty for selection sets.
func (v AnswerValue) Text() string {
	if v.isMulti {
		return ""
	}
	return v.single
}

// Selections returns a copy of the selection set. Nil for single values.
func (v AnswerValue) Selections() []string {
	if !v.isMulti {
		return nil
	}
	out := make([]string, len(v.multi))
	copy(out, v.multi)
	return out
}

// Contains reports whether the selection set contains the given option id.
func (v AnswerValue) Contains(optionID string) bool {
	for _, s := range v.multi {
		if s == optionID {
			return true
		}
	}
	return false
}

// WithToggled returns the value with optionID added to, or removed from, the
// selection set. Toggling the same id twice returns the original set.
func (v AnswerValue) WithToggled(optionID string) AnswerValue {
	out := make([]string, 0, len(v.multi)+1)
	removed := false
	for _, s := range v.multi {
		if s == optionID {
			removed = true
			continue
		}
		out = append(out, s)
	}
	if !removed {
		out = append(out, optionID)
	}
	return AnswerValue{multi: out, isMulti: true}
}

// MarshalJSON writes a bare string for single values and a string array for
// selection sets.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.isMulti {
		if v.multi == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.multi)
	}
	return json.Marshal(v.single)
}

// UnmarshalJSON accepts either a string or a string array.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = AnswerValue{single: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*v = AnswerValue{multi: list, isMulti: true}
	return nil
}

// AnswerSet maps question id (string form) to the recorded answer value.
type AnswerSet map[string]AnswerValue

// Clone returns a copy of the set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Response is one respondent's complete answer set for a form. Immutable after
// creation; removed only as a cascade side effect of deleting the form.
type Response struct {
	ID           uuid.UUID  `json:"id"`
	FormID       uuid.UUID  `json:"form_id"`
	Answers      AnswerSet  `json:"answers"`
	RespondentID *uuid.UUID `json:"respondent_id,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
}

// RespondentInfo carries display fields resolved from the respondent identity
// when the owner lists responses.
type RespondentInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ResponseWithRespondent is a response joined with respondent display fields.
type ResponseWithRespondent struct {
	Response
	Respondent *RespondentInfo `json:"respondent,omitempty"`
}
