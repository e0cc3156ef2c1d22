package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// QuestionType determines the answer shape a question accepts.
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multipleChoice"
	QuestionCheckbox       QuestionType = "checkbox"
	QuestionEmail          QuestionType = "email"
)

// HasOptions reports whether questions of this type carry an option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionMultipleChoice || t == QuestionCheckbox
}

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionMultipleChoice, QuestionCheckbox, QuestionEmail:
		return true
	}
	return false
}

// Option is one selectable choice of a multiple-choice or checkbox question.
// Order within the question's option list is display and selection order.
type Option struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// Question is one prompt within a form. Options is non-nil exactly when the
// type carries options (multipleChoice, checkbox), possibly empty.
type Question struct {
	ID       uuid.UUID    `json:"id"`
	Type     QuestionType `json:"type"`
	Title    string       `json:"title"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options,omitempty"`
}

// Option returns the option with the given id.
func (q *Question) Option(id uuid.UUID) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// ValidateAnswer reports whether the value's shape matches the question type:
// text and email take a single text value, multipleChoice a single selection,
// checkbox a selection set. Option ids are not checked against the question's
// option list; membership is left to the presentation layer.
func (q *Question) ValidateAnswer(v AnswerValue) bool {
	switch q.Type {
	case QuestionText, QuestionEmail, QuestionMultipleChoice:
		return !v.IsMulti()
	case QuestionCheckbox:
		return v.IsMulti()
	}
	return false
}

// Form is a named collection of ordered questions owned by one creator.
// Questions order is the authored display order. CreatorID is immutable after
// creation.
type Form struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatorID   uuid.UUID  `json:"creator_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var (
	ErrTitleRequired  = errors.New("form title is required")
	ErrBadQuestion    = errors.New("invalid question")
	ErrOptionMismatch = errors.New("options present on a type that does not carry options")
)

// Validate checks the form invariants: non-empty title, known question types,
// and the options-iff-choice-type rule.
func (f *Form) Validate() error {
	if f.Title == "" {
		return ErrTitleRequired
	}
	for i := range f.Questions {
		q := &f.Questions[i]
		if !q.Type.Valid() {
			return ErrBadQuestion
		}
		if q.Type.HasOptions() != (q.Options != nil) {
			return ErrOptionMismatch
		}
	}
	return nil
}

// Question returns the question with the given id.
func (f *Form) Question(id uuid.UUID) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Clone returns a deep copy of the form, safe to mutate independently.
func (f *Form) Clone() Form {
	out := *f
	if f.Questions != nil {
		out.Questions = make([]Question, len(f.Questions))
		for i, q := range f.Questions {
			cq := q
			if q.Options != nil {
				cq.Options = make([]Option, len(q.Options))
				copy(cq.Options, q.Options)
			}
			out.Questions[i] = cq
		}
	}
	return out
}
