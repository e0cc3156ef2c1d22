package models

import (
	"time"

	"github.com/google/uuid"
)

// Export lifecycle.
const (
	ExportStatusPending    = "pending"
	ExportStatusProcessing = "processing"
	ExportStatusCompleted  = "completed"
	ExportStatusFailed     = "failed"
)

// Export is a CSV export of a form's responses (rendered by the worker and
// uploaded to S3).
type Export struct {
	ID          uuid.UUID `json:"id"`
	FormID      uuid.UUID `json:"form_id"`
	RequestedBy uuid.UUID `json:"requested_by"`
	Status      string    `json:"status"`
	ObjectKey   string    `json:"object_key,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
