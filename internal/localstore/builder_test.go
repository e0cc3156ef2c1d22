package localstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/backend/internal/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestBuilderEditsDraftNotOriginal(t *testing.T) {
	f := models.Form{ID: uuid.New(), Title: "Original"}
	b := NewBuilder(f)
	b.SetTitle("Edited")

	assert.Equal(t, "Original", f.Title)
	assert.Equal(t, "Edited", b.Form().Title)
}

func TestBuilderAddQuestion(t *testing.T) {
	b := NewBuilder(models.Form{ID: uuid.New(), Title: "Survey"})

	qid, err := b.AddQuestion(models.QuestionCheckbox)
	require.NoError(t, err)

	draft := b.Form()
	require.Len(t, draft.Questions, 1)
	q := draft.Questions[0]
	assert.Equal(t, qid, q.ID)
	assert.Equal(t, models.QuestionCheckbox, q.Type)
	assert.False(t, q.Required)
	assert.NotNil(t, q.Options)
	assert.Empty(t, q.Options)

	_, err = b.AddQuestion(models.QuestionType("date"))
	assert.Error(t, err)
}

func TestBuilderUpdateQuestionMergesPatch(t *testing.T) {
	b := NewBuilder(models.Form{ID: uuid.New(), Title: "Survey"})
	qid, err := b.AddQuestion(models.QuestionText)
	require.NoError(t, err)

	require.NoError(t, b.UpdateQuestion(qid, QuestionPatch{Title: strPtr("Name")}))
	require.NoError(t, b.UpdateQuestion(qid, QuestionPatch{Required: boolPtr(true)}))

	q := b.Form().Questions[0]
	assert.Equal(t, "Name", q.Title)
	assert.True(t, q.Required)

	assert.ErrorIs(t, b.UpdateQuestion(uuid.New(), QuestionPatch{}), ErrQuestionNotFound)
}

func TestBuilderOptions(t *testing.T) {
	b := NewBuilder(models.Form{ID: uuid.New(), Title: "Survey"})
	choice, err := b.AddQuestion(models.QuestionMultipleChoice)
	require.NoError(t, err)
	text, err := b.AddQuestion(models.QuestionText)
	require.NoError(t, err)

	oid, err := b.AddOption(choice)
	require.NoError(t, err)
	require.NoError(t, b.SetOptionText(choice, oid, "Red"))

	draft := b.Form()
	q, ok := draft.Question(choice)
	require.True(t, ok)
	require.Len(t, q.Options, 1)
	assert.Equal(t, "Red", q.Options[0].Text)

	_, err = b.AddOption(text)
	assert.ErrorIs(t, err, ErrNoOptions)
	assert.ErrorIs(t, b.SetOptionText(choice, uuid.New(), "x"), ErrOptionNotFound)

	require.NoError(t, b.SetOptionTextAt(0, 0, "Crimson"))
	draft = b.Form()
	q, _ = draft.Question(choice)
	assert.Equal(t, "Crimson", q.Options[0].Text)
	assert.ErrorIs(t, b.SetOptionTextAt(0, 9, "x"), ErrOptionNotFound)
}

func TestBuilderPositionalEdits(t *testing.T) {
	b := NewBuilder(models.Form{ID: uuid.New(), Title: "Survey"})
	first, err := b.AddQuestion(models.QuestionText)
	require.NoError(t, err)
	second, err := b.AddQuestion(models.QuestionText)
	require.NoError(t, err)

	require.NoError(t, b.UpdateQuestionAt(1, QuestionPatch{Title: strPtr("Second")}))
	require.NoError(t, b.RemoveQuestionAt(0))

	draft := b.Form()
	require.Len(t, draft.Questions, 1)
	assert.Equal(t, second, draft.Questions[0].ID)
	assert.Equal(t, "Second", draft.Questions[0].Title)

	// Ids taken before a removal stay valid; positions do not.
	assert.ErrorIs(t, b.RemoveQuestion(first), ErrQuestionNotFound)
	assert.ErrorIs(t, b.RemoveQuestionAt(5), ErrQuestionNotFound)
}

func TestBuilderSavePersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	id, err := s.CreateForm(ctx, "Survey", "")
	require.NoError(t, err)
	f, _ := s.GetForm(id)

	b := NewBuilder(f)
	b.SetTitle("Updated Survey")
	qid, err := b.AddQuestion(models.QuestionText)
	require.NoError(t, err)
	require.NoError(t, b.UpdateQuestion(qid, QuestionPatch{Title: strPtr("Name"), Required: boolPtr(true)}))
	require.NoError(t, b.Save(ctx, s))

	saved, ok := s.GetForm(id)
	require.True(t, ok)
	assert.Equal(t, "Updated Survey", saved.Title)
	require.Len(t, saved.Questions, 1)
	assert.True(t, saved.Questions[0].Required)
}

func TestBuilderSaveRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	id, err := s.CreateForm(ctx, "Survey", "")
	require.NoError(t, err)
	f, _ := s.GetForm(id)

	b := NewBuilder(f)
	b.SetTitle("")
	assert.ErrorIs(t, b.Save(ctx, s), models.ErrTitleRequired)

	// Store copy untouched after a failed save.
	saved, _ := s.GetForm(id)
	assert.Equal(t, "Survey", saved.Title)
}
