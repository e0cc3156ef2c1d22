package exports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formforge/backend/internal/models"
)

// ErrNotFound is returned when an export does not exist or the caller does not
// own the form it belongs to (same conflation as the forms repository).
var ErrNotFound = errors.New("export not found")

// Repository handles export persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an exports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a pending export.
func (r *Repository) Create(ctx context.Context, e *models.Export) error {
	const q = `INSERT INTO exports (id, form_id, requested_by, status)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	e.Status = models.ExportStatusPending
	return r.pool.QueryRow(ctx, q, e.FormID, e.RequestedBy, e.Status).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an export by id, unscoped. Worker use only.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Export, error) {
	const q = `SELECT id, form_id, requested_by, status, COALESCE(object_key,''), COALESCE(error,''), created_at, updated_at
		FROM exports WHERE id = $1`
	return r.scan(r.pool.QueryRow(ctx, q, id))
}

// GetOwned returns an export only when the caller owns its form.
func (r *Repository) GetOwned(ctx context.Context, id, callerID uuid.UUID) (*models.Export, error) {
	const q = `SELECT e.id, e.form_id, e.requested_by, e.status, COALESCE(e.object_key,''), COALESCE(e.error,''), e.created_at, e.updated_at
		FROM exports e JOIN forms f ON f.id = e.form_id
		WHERE e.id = $1 AND f.creator_id = $2`
	return r.scan(r.pool.QueryRow(ctx, q, id, callerID))
}

// ListByForm returns all exports for a form, newest first.
func (r *Repository) ListByForm(ctx context.Context, formID uuid.UUID) ([]models.Export, error) {
	const q = `SELECT id, form_id, requested_by, status, COALESCE(object_key,''), COALESCE(error,''), created_at, updated_at
		FROM exports WHERE form_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Export
	for rows.Next() {
		var e models.Export
		if err := rows.Scan(&e.ID, &e.FormID, &e.RequestedBy, &e.Status, &e.ObjectKey, &e.Error, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Delete removes an export row. Ownership is checked by the caller via GetOwned.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exports WHERE id = $1`, id)
	return err
}

// MarkProcessing moves a pending export to processing.
func (r *Repository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE exports SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, models.ExportStatusProcessing, id)
	return err
}

// MarkCompleted records the uploaded object key and completes the export.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, objectKey string) error {
	const q = `UPDATE exports SET status = $1, object_key = $2, error = NULL, updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, models.ExportStatusCompleted, objectKey, id)
	return err
}

// MarkFailed records the failure reason.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	const q = `UPDATE exports SET status = $1, error = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, models.ExportStatusFailed, reason, id)
	return err
}

func (r *Repository) scan(row pgx.Row) (*models.Export, error) {
	var e models.Export
	err := row.Scan(&e.ID, &e.FormID, &e.RequestedBy, &e.Status, &e.ObjectKey, &e.Error, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
