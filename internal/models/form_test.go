package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionTypeHasOptions(t *testing.T) {
	assert.False(t, QuestionText.HasOptions())
	assert.False(t, QuestionEmail.HasOptions())
	assert.True(t, QuestionMultipleChoice.HasOptions())
	assert.True(t, QuestionCheckbox.HasOptions())
}

func TestValidateAnswer(t *testing.T) {
	single := TextAnswer("hello")
	multi := OptionsAnswer(uuid.New())

	tests := []struct {
		name string
		qt   QuestionType
		v    AnswerValue
		want bool
	}{
		{"text accepts single", QuestionText, single, true},
		{"text rejects set", QuestionText, multi, false},
		{"email accepts single", QuestionEmail, single, true},
		{"email rejects set", QuestionEmail, multi, false},
		{"multipleChoice accepts single", QuestionMultipleChoice, single, true},
		{"multipleChoice rejects set", QuestionMultipleChoice, multi, false},
		{"checkbox accepts set", QuestionCheckbox, multi, true},
		{"checkbox rejects single", QuestionCheckbox, single, false},
		{"unknown type rejects everything", QuestionType("date"), single, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{ID: uuid.New(), Type: tt.qt}
			assert.Equal(t, tt.want, q.ValidateAnswer(tt.v))
		})
	}
}

func TestFormValidate(t *testing.T) {
	choice := Question{ID: uuid.New(), Type: QuestionMultipleChoice, Title: "Pick one", Options: []Option{}}
	text := Question{ID: uuid.New(), Type: QuestionText, Title: "Name"}

	t.Run("valid", func(t *testing.T) {
		f := Form{Title: "Survey", Questions: []Question{choice, text}}
		require.NoError(t, f.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		f := Form{Questions: []Question{text}}
		assert.ErrorIs(t, f.Validate(), ErrTitleRequired)
	})

	t.Run("unknown question type", func(t *testing.T) {
		f := Form{Title: "Survey", Questions: []Question{{ID: uuid.New(), Type: "date"}}}
		assert.ErrorIs(t, f.Validate(), ErrBadQuestion)
	})

	t.Run("text question with options", func(t *testing.T) {
		bad := text
		bad.Options = []Option{{ID: uuid.New(), Text: "x"}}
		f := Form{Title: "Survey", Questions: []Question{bad}}
		assert.ErrorIs(t, f.Validate(), ErrOptionMismatch)
	})

	t.Run("choice question without option list", func(t *testing.T) {
		bad := Question{ID: uuid.New(), Type: QuestionCheckbox, Title: "Pick many"}
		f := Form{Title: "Survey", Questions: []Question{bad}}
		assert.ErrorIs(t, f.Validate(), ErrOptionMismatch)
	})
}

func TestFormClone(t *testing.T) {
	optID := uuid.New()
	f := Form{
		ID:    uuid.New(),
		Title: "Survey",
		Questions: []Question{
			{ID: uuid.New(), Type: QuestionCheckbox, Title: "Pick", Options: []Option{{ID: optID, Text: "A"}}},
		},
	}

	clone := f.Clone()
	clone.Questions[0].Title = "Changed"
	clone.Questions[0].Options[0].Text = "B"

	assert.Equal(t, "Pick", f.Questions[0].Title)
	assert.Equal(t, "A", f.Questions[0].Options[0].Text)
}
