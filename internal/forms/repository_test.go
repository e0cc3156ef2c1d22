package forms

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

	creator := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	mock.ExpectQuery(`INSERT INTO forms`).
		WithArgs("Survey", "About you", []byte("[]"), creator).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, now, now))

	repo := NewRepository(mock)
	f := &models.Form{Title: "Survey", Description: "About you", CreatorID: creator}
	require.NoError(t, repo.Create(ctx, f))

	assert.Equal(t, id, f.ID)
	assert.Equal(t, now, f.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDOwnerScoped(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	owner := uuid.New()
	stranger := uuid.New()
	now := time.Now()

	questions := []byte(`[{"id":"22222222-2222-2222-2222-222222222222","type":"text","title":"Name","required":true}]`)

	mock.ExpectQuery(`SELECT id, title, description, questions, creator_id, created_at, updated_at`).
		WithArgs(id, owner).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "questions", "creator_id", "created_at", "updated_at"}).
			AddRow(id, "Survey", "", questions, owner, now, now))

	repo := NewRepository(mock)
	f, err := repo.GetByID(ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, "Survey", f.Title)
	require.Len(t, f.Questions, 1)
	assert.Equal(t, models.QuestionText, f.Questions[0].Type)

	// A non-owner's lookup matches no row and is indistinguishable from a
	// missing form.
	mock.ExpectQuery(`SELECT id, title, description, questions, creator_id, created_at, updated_at`).
		WithArgs(id, stranger).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(ctx, id, stranger)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateMissReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	caller := uuid.New()

	mock.ExpectQuery(`UPDATE forms SET`).
		WithArgs("Survey", "", []byte("[]"), id, caller).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRepository(mock)
	err = repo.Update(ctx, &models.Form{ID: id, Title: "Survey"}, caller)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteCascadesInOneTransaction(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	owner := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM responses WHERE form_id IN`).
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM forms WHERE id`).
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	repo := NewRepository(mock)
	require.NoError(t, repo.Delete(ctx, id, owner))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteMissRollsBack(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	stranger := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM responses WHERE form_id IN`).
		WithArgs(id, stranger).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM forms WHERE id`).
		WithArgs(id, stranger).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	repo := NewRepository(mock)
	assert.ErrorIs(t, repo.Delete(ctx, id, stranger), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListByCreatorEmpty(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	creator := uuid.New()
	mock.ExpectQuery(`SELECT id, title, description, questions, creator_id, created_at, updated_at`).
		WithArgs(creator).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "questions", "creator_id", "created_at", "updated_at"}))

	repo := NewRepository(mock)
	list, err := repo.ListByCreator(ctx, creator)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}
