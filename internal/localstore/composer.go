package localstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/formforge/backend/internal/models"
)

// Composer accumulates a respondent's in-progress answers for one form.
// Required-question enforcement sits with the presentation layer (see
// MissingRequired); Submit records whatever has been composed. The server-side
// submit endpoint re-checks required questions independently, since a client
// guard alone is bypassable.
type Composer struct {
	form    models.Form
	answers models.AnswerSet
}

// NewComposer starts a response session for the form.
func NewComposer(form models.Form) *Composer {
	return &Composer{form: form.Clone(), answers: models.AnswerSet{}}
}

// SetText records the literal text for a text or email question. No
// normalization or format validation is applied.
func (c *Composer) SetText(questionID uuid.UUID, text string) {
	c.answers[questionID.String()] = models.TextAnswer(text)
}

// SelectOption records a single selection, replacing any prior one.
func (c *Composer) SelectOption(questionID, optionID uuid.UUID) {
	c.answers[questionID.String()] = models.OptionAnswer(optionID)
}

// ToggleOption adds the option id to the question's selection set, or removes
// it if already present. Other members of the set are preserved.
func (c *Composer) ToggleOption(questionID, optionID uuid.UUID) {
	key := questionID.String()
	c.answers[key] = c.answers[key].WithToggled(optionID.String())
}

// Answers returns a snapshot of the composed answer set.
func (c *Composer) Answers() models.AnswerSet {
	return c.answers.Clone()
}

// MissingRequired lists the required questions that have no non-empty answer
// yet. The presentation layer blocks submission while this is non-empty.
func (c *Composer) MissingRequired() []uuid.UUID {
	var missing []uuid.UUID
	for _, q := range c.form.Questions {
		if !q.Required {
			continue
		}
		v, ok := c.answers[q.ID.String()]
		if !ok || v.IsEmpty() {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// Submit hands the composed answers to the store and returns the response id.
func (c *Composer) Submit(ctx context.Context, store *Store) (uuid.UUID, error) {
	return store.AddResponse(ctx, c.form.ID, c.answers)
}
