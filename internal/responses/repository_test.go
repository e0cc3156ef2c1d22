package responses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/backend/internal/models"
)

func TestRepositoryCreate(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	formID := uuid.New()
	respondent := uuid.New()
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO responses`).
		WithArgs(formID, []byte(`{"q1":"Alice"}`), &respondent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "submitted_at"}).AddRow(id, now))

	repo := NewRepository(mock)
	resp := &models.Response{
		FormID:       formID,
		Answers:      models.AnswerSet{"q1": models.TextAnswer("Alice")},
		RespondentID: &respondent,
	}
	require.NoError(t, repo.Create(ctx, resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, now, resp.SubmittedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByFormResolvesRespondent(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	formID := uuid.New()
	respondent := uuid.New()
	now := time.Now()
	cols := []string{"id", "form_id", "answers", "respondent_id", "submitted_at", "name", "email"}

	mock.ExpectQuery(`SELECT r.id, r.form_id, r.answers`).
		WithArgs(formID).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(uuid.New(), formID, []byte(`{"q1":"Alice"}`), &respondent, now, "Alice", "alice@example.com").
			AddRow(uuid.New(), formID, []byte(`{"q1":["a","b"]}`), (*uuid.UUID)(nil), now, "", ""))

	repo := NewRepository(mock)
	list, err := repo.ListByForm(ctx, formID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NotNil(t, list[0].Respondent)
	assert.Equal(t, "Alice", list[0].Respondent.Name)
	assert.Equal(t, "Alice", list[0].Answers["q1"].Text())

	// Anonymous submissions carry no respondent block.
	assert.Nil(t, list[1].Respondent)
	assert.Equal(t, []string{"a", "b"}, list[1].Answers["q1"].Selections())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCountByForm(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	formID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(formID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewRepository(mock)
	n, err := repo.CountByForm(ctx, formID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
