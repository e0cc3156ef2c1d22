package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/formforge/backend/internal/models"
)

// ErrNotFound is returned when a form does not exist or the caller is not its
// creator. The two cases are deliberately indistinguishable: owner-scoped
// statements match on (id, creator_id) in a single lookup, so a non-owner
// learns nothing about the form's existence.
var ErrNotFound = errors.New("form not found")

type formsPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository handles form persistence.
type Repository struct {
	pool formsPool
}

// NewRepository creates a form repository.
func NewRepository(pool formsPool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new form owned by f.CreatorID.
func (r *Repository) Create(ctx context.Context, f *models.Form) error {
	questions, err := marshalQuestions(f.Questions)
	if err != nil {
		return err
	}
	const q = `INSERT INTO forms (id, title, description, questions, creator_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, f.Title, f.Description, questions, f.CreatorID).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// GetByID returns the form only when the caller is its creator.
func (r *Repository) GetByID(ctx context.Context, id, creatorID uuid.UUID) (*models.Form, error) {
	const q = `SELECT id, title, description, questions, creator_id, created_at, updated_at
		FROM forms WHERE id = $1 AND creator_id = $2`
	return r.scanForm(r.pool.QueryRow(ctx, q, id, creatorID))
}

// GetPublic returns the form regardless of ownership, for the respondent-facing
// view and submission path.
func (r *Repository) GetPublic(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	const q = `SELECT id, title, description, questions, creator_id, created_at, updated_at
		FROM forms WHERE id = $1`
	return r.scanForm(r.pool.QueryRow(ctx, q, id))
}

// ListByCreator returns all forms owned by the caller, oldest first.
func (r *Repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Form, error) {
	const q = `SELECT id, title, description, questions, creator_id, created_at, updated_at
		FROM forms WHERE creator_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Form
	for rows.Next() {
		var f models.Form
		var questions []byte
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &questions, &f.CreatorID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalQuestions(questions, &f.Questions); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// Update replaces the stored form document in full, owner-scoped. Unspecified
// fields are not preserved; callers carry unchanged fields forward themselves.
func (r *Repository) Update(ctx context.Context, f *models.Form, creatorID uuid.UUID) error {
	questions, err := marshalQuestions(f.Questions)
	if err != nil {
		return err
	}
	const q = `UPDATE forms SET title = $1, description = $2, questions = $3, updated_at = NOW()
		WHERE id = $4 AND creator_id = $5
		RETURNING creator_id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, q, f.Title, f.Description, questions, f.ID, creatorID).
		Scan(&f.CreatorID, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes the form and all responses referencing it in one transaction,
// owner-scoped. The response cascade is scoped through the same (id, creator)
// match, so a non-owner's delete touches nothing.
func (r *Repository) Delete(ctx context.Context, id, creatorID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const cascade = `DELETE FROM responses WHERE form_id IN
		(SELECT id FROM forms WHERE id = $1 AND creator_id = $2)`
	if _, err := tx.Exec(ctx, cascade, id, creatorID); err != nil {
		return fmt.Errorf("cascade responses: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM forms WHERE id = $1 AND creator_id = $2`, id, creatorID)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *Repository) scanForm(row pgx.Row) (*models.Form, error) {
	var f models.Form
	var questions []byte
	err := row.Scan(&f.ID, &f.Title, &f.Description, &questions, &f.CreatorID, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalQuestions(questions, &f.Questions); err != nil {
		return nil, err
	}
	return &f, nil
}

func marshalQuestions(qs []models.Question) ([]byte, error) {
	if qs == nil {
		qs = []models.Question{}
	}
	data, err := json.Marshal(qs)
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	return data, nil
}

func unmarshalQuestions(data []byte, qs *[]models.Question) error {
	if len(data) == 0 {
		*qs = []models.Question{}
		return nil
	}
	if err := json.Unmarshal(data, qs); err != nil {
		return fmt.Errorf("unmarshal questions: %w", err)
	}
	return nil
}
