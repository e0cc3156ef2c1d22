package localstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formforge/backend/internal/models"
)

// Store holds the current user's forms and collected responses. Every mutation
// rewrites the affected collection in the underlying Storage before returning,
// so the durable copy is never behind the in-memory one. A single mutex
// serializes mutations; callers share one Store per process.
type Store struct {
	mu      sync.Mutex
	storage Storage
	logger  *zap.Logger

	forms     []models.Form
	responses []models.Response

	nowFunc func() time.Time
}

// Open loads both collections from storage. A missing or malformed record is
// treated as an empty collection, not an error.
func Open(ctx context.Context, storage Storage, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{storage: storage, logger: logger, nowFunc: time.Now}

	if data, err := storage.Read(ctx, RecordForms); err != nil {
		return nil, err
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.forms); err != nil {
			logger.Warn("malformed forms record, starting empty", zap.Error(err))
			s.forms = nil
		}
	}
	if data, err := storage.Read(ctx, RecordResponses); err != nil {
		return nil, err
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &s.responses); err != nil {
			logger.Warn("malformed responses record, starting empty", zap.Error(err))
			s.responses = nil
		}
	}
	return s, nil
}

func (s *Store) withClock(now func() time.Time) {
	if now != nil {
		s.nowFunc = now
	}
}

// CreateForm appends a new form with an empty question list and returns its id.
func (s *Store) CreateForm(ctx context.Context, title, description string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	form := models.Form{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Questions:   []models.Question{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.forms = append(s.forms, form)
	if err := s.persistForms(ctx); err != nil {
		return uuid.Nil, err
	}
	return form.ID, nil
}

// UpdateForm replaces the stored form with a matching id in place; the form's
// position in the collection is unchanged. Replace semantics: the given value
// overwrites the stored one entirely. No-op if no form matches.
func (s *Store) UpdateForm(ctx context.Context, form models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.forms {
		if s.forms[i].ID == form.ID {
			form.UpdatedAt = s.nowFunc()
			s.forms[i] = form.Clone()
			return s.persistForms(ctx)
		}
	}
	return nil
}

// DeleteForm removes the form with the matching id. Cascading the form's
// responses is the server layer's concern; local responses are kept.
func (s *Store) DeleteForm(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.forms[:0]
	for _, f := range s.forms {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	s.forms = kept
	return s.persistForms(ctx)
}

// AddResponse records a new response for the form and returns its id.
func (s *Store) AddResponse(ctx context.Context, formID uuid.UUID, answers models.AnswerSet) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := models.Response{
		ID:          uuid.New(),
		FormID:      formID,
		Answers:     answers.Clone(),
		SubmittedAt: s.nowFunc(),
	}
	s.responses = append(s.responses, resp)
	if err := s.persistResponses(ctx); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

// GetForm returns a copy of the form with the given id.
func (s *Store) GetForm(id uuid.UUID) (models.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.forms {
		if s.forms[i].ID == id {
			return s.forms[i].Clone(), true
		}
	}
	return models.Form{}, false
}

// Forms returns copies of all forms in creation order.
func (s *Store) Forms() []models.Form {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Form, len(s.forms))
	for i := range s.forms {
		out[i] = s.forms[i].Clone()
	}
	return out
}

// GetResponses returns copies of all responses for the form in insertion
// order. Answer sets are cloned; stored responses are immutable.
func (s *Store) GetResponses(formID uuid.UUID) []models.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Response
	for _, r := range s.responses {
		if r.FormID == formID {
			rc := r
			rc.Answers = r.Answers.Clone()
			out = append(out, rc)
		}
	}
	return out
}

// Flush rewrites both collections to storage. Used at shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistForms(ctx); err != nil {
		return err
	}
	return s.persistResponses(ctx)
}

func (s *Store) persistForms(ctx context.Context) error {
	data, err := json.Marshal(s.forms)
	if err != nil {
		return err
	}
	return s.storage.Write(ctx, RecordForms, data)
}

func (s *Store) persistResponses(ctx context.Context) error {
	data, err := json.Marshal(s.responses)
	if err != nil {
		return err
	}
	return s.storage.Write(ctx, RecordResponses, data)
}
