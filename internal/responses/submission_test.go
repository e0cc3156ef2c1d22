package responses

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/formforge/backend/internal/models"
)

func submissionForm() *models.Form {
	return &models.Form{
		ID:    uuid.New(),
		Title: "Survey",
		Questions: []models.Question{
			{ID: uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"), Type: models.QuestionText, Title: "Name", Required: true},
			{ID: uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"), Type: models.QuestionCheckbox, Title: "Colors", Options: []models.Option{
				{ID: uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc"), Text: "Red"},
			}},
			{ID: uuid.MustParse("dddddddd-dddd-dddd-dddd-dddddddddddd"), Type: models.QuestionEmail, Title: "Email"},
		},
	}
}

func TestCheckSubmission(t *testing.T) {
	f := submissionForm()
	name := f.Questions[0].ID.String()
	colors := f.Questions[1].ID.String()

	tests := []struct {
		name    string
		answers models.AnswerSet
		wantErr bool
	}{
		{
			name:    "required answered",
			answers: models.AnswerSet{name: models.TextAnswer("Alice")},
			wantErr: false,
		},
		{
			name:    "required missing",
			answers: models.AnswerSet{},
			wantErr: true,
		},
		{
			name:    "required present but empty",
			answers: models.AnswerSet{name: models.TextAnswer("")},
			wantErr: true,
		},
		{
			name: "checkbox takes a set",
			answers: models.AnswerSet{
				name:   models.TextAnswer("Alice"),
				colors: models.OptionsAnswer(f.Questions[1].Options[0].ID),
			},
			wantErr: false,
		},
		{
			name: "checkbox rejects a single value",
			answers: models.AnswerSet{
				name:   models.TextAnswer("Alice"),
				colors: models.TextAnswer("Red"),
			},
			wantErr: true,
		},
		{
			name: "text rejects a set",
			answers: models.AnswerSet{
				name: models.OptionsAnswer(uuid.New()),
			},
			wantErr: true,
		},
		{
			name: "unknown option id passes, membership is not checked",
			answers: models.AnswerSet{
				name:   models.TextAnswer("Alice"),
				colors: models.OptionsAnswer(uuid.New()),
			},
			wantErr: false,
		},
		{
			name: "answers keyed by unknown questions pass through",
			answers: models.AnswerSet{
				name:        models.TextAnswer("Alice"),
				"not-a-qid": models.TextAnswer("ignored"),
			},
			wantErr: false,
		},
		{
			name: "optional email left blank",
			answers: models.AnswerSet{
				name: models.TextAnswer("Alice"),
			},
			wantErr: false,
		},
		{
			name: "email takes any literal text, no format check",
			answers: models.AnswerSet{
				name: models.TextAnswer("Alice"),
				f.Questions[2].ID.String(): models.TextAnswer("not-an-email"),
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSubmission(f, tt.answers)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
