package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/formforge/backend/internal/models"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	// ErrNoOptions is returned when adding options to a question whose type
	// does not carry an option list.
	ErrNoOptions = errors.New("question type does not carry options")
)

// Builder edits an in-progress copy of a form's title, description, and
// question list. Edits are keyed by stable question/option ids; the positional
// variants resolve an index to an id at call time, so a removal never makes a
// previously obtained id stale. Nothing is persisted until Save.
type Builder struct {
	form models.Form
}

// NewBuilder starts an editing session over a deep copy of the form.
func NewBuilder(form models.Form) *Builder {
	return &Builder{form: form.Clone()}
}

// SetTitle sets the draft title.
func (b *Builder) SetTitle(title string) { b.form.Title = title }

// SetDescription sets the draft description.
func (b *Builder) SetDescription(description string) { b.form.Description = description }

// AddQuestion appends a new question of the given type with an empty title,
// not required, and an empty option list when the type carries options.
func (b *Builder) AddQuestion(t models.QuestionType) (uuid.UUID, error) {
	if !t.Valid() {
		return uuid.Nil, fmt.Errorf("unknown question type %q", t)
	}
	q := models.Question{ID: uuid.New(), Type: t}
	if t.HasOptions() {
		q.Options = []models.Option{}
	}
	b.form.Questions = append(b.form.Questions, q)
	return q.ID, nil
}

// QuestionPatch holds the fields UpdateQuestion merges into a question. Nil
// fields are left unchanged.
type QuestionPatch struct {
	Title    *string
	Required *bool
}

// UpdateQuestion merges the patch into the question with the given id.
func (b *Builder) UpdateQuestion(id uuid.UUID, patch QuestionPatch) error {
	q := b.question(id)
	if q == nil {
		return ErrQuestionNotFound
	}
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Required != nil {
		q.Required = *patch.Required
	}
	return nil
}

// RemoveQuestion removes the question with the given id.
func (b *Builder) RemoveQuestion(id uuid.UUID) error {
	for i := range b.form.Questions {
		if b.form.Questions[i].ID == id {
			b.form.Questions = append(b.form.Questions[:i], b.form.Questions[i+1:]...)
			return nil
		}
	}
	return ErrQuestionNotFound
}

// AddOption appends a fresh empty-text option to the question and returns the
// option id. Fails with ErrNoOptions for text and email questions.
func (b *Builder) AddOption(questionID uuid.UUID) (uuid.UUID, error) {
	q := b.question(questionID)
	if q == nil {
		return uuid.Nil, ErrQuestionNotFound
	}
	if !q.Type.HasOptions() {
		return uuid.Nil, ErrNoOptions
	}
	o := models.Option{ID: uuid.New()}
	q.Options = append(q.Options, o)
	return o.ID, nil
}

// SetOptionText updates the text of one option.
func (b *Builder) SetOptionText(questionID, optionID uuid.UUID, text string) error {
	q := b.question(questionID)
	if q == nil {
		return ErrQuestionNotFound
	}
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			q.Options[i].Text = text
			return nil
		}
	}
	return ErrOptionNotFound
}

// QuestionAt returns a copy of the question at the given position.
func (b *Builder) QuestionAt(index int) (models.Question, error) {
	if index < 0 || index >= len(b.form.Questions) {
		return models.Question{}, ErrQuestionNotFound
	}
	q := b.form.Questions[index]
	return q, nil
}

// UpdateQuestionAt is the positional convenience over UpdateQuestion.
func (b *Builder) UpdateQuestionAt(index int, patch QuestionPatch) error {
	q, err := b.QuestionAt(index)
	if err != nil {
		return err
	}
	return b.UpdateQuestion(q.ID, patch)
}

// SetOptionTextAt is the positional convenience over SetOptionText.
func (b *Builder) SetOptionTextAt(questionIndex, optionIndex int, text string) error {
	q, err := b.QuestionAt(questionIndex)
	if err != nil {
		return err
	}
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return ErrOptionNotFound
	}
	return b.SetOptionText(q.ID, q.Options[optionIndex].ID, text)
}

// RemoveQuestionAt is the positional convenience over RemoveQuestion.
func (b *Builder) RemoveQuestionAt(index int) error {
	q, err := b.QuestionAt(index)
	if err != nil {
		return err
	}
	return b.RemoveQuestion(q.ID)
}

// Form returns a copy of the current draft.
func (b *Builder) Form() models.Form {
	return b.form.Clone()
}

// Save validates the draft and hands the full replacement value to the store.
// Unchanged fields are carried forward explicitly; UpdateForm replaces, it
// does not merge.
func (b *Builder) Save(ctx context.Context, store *Store) error {
	if err := b.form.Validate(); err != nil {
		return err
	}
	return store.UpdateForm(ctx, b.form.Clone())
}

func (b *Builder) question(id uuid.UUID) *models.Question {
	for i := range b.form.Questions {
		if b.form.Questions[i].ID == id {
			return &b.form.Questions[i]
		}
	}
	return nil
}
