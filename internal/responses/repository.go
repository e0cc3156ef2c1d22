package responses

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/formforge/backend/internal/models"
)

type responsesPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles response persistence. Responses are append-only: they are
// never updated, and are removed only by the form-delete cascade in the forms
// repository.
type Repository struct {
	pool responsesPool
}

// NewRepository creates a response repository.
func NewRepository(pool responsesPool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new response.
func (r *Repository) Create(ctx context.Context, resp *models.Response) error {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	const q = `INSERT INTO responses (id, form_id, answers, respondent_id)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, submitted_at`
	return r.pool.QueryRow(ctx, q, resp.FormID, answers, resp.RespondentID).
		Scan(&resp.ID, &resp.SubmittedAt)
}

// ListByForm returns all responses for the form in submission order, each with
// the respondent's display name and email resolved when an identity was
// recorded. Ownership of the form is checked by the caller.
func (r *Repository) ListByForm(ctx context.Context, formID uuid.UUID) ([]models.ResponseWithRespondent, error) {
	const q = `SELECT r.id, r.form_id, r.answers, r.respondent_id, r.submitted_at,
		COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM responses r
		LEFT JOIN users u ON u.id = r.respondent_id
		WHERE r.form_id = $1 ORDER BY r.submitted_at`
	rows, err := r.pool.Query(ctx, q, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ResponseWithRespondent
	for rows.Next() {
		var item models.ResponseWithRespondent
		var answers []byte
		var name, email string
		if err := rows.Scan(&item.ID, &item.FormID, &answers, &item.RespondentID, &item.SubmittedAt, &name, &email); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &item.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		if item.RespondentID != nil {
			item.Respondent = &models.RespondentInfo{Name: name, Email: email}
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// CountByForm returns the number of responses recorded for the form.
func (r *Repository) CountByForm(ctx context.Context, formID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM responses WHERE form_id = $1`, formID).Scan(&n)
	return n, err
}
