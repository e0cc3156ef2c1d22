package worker

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/formforge/backend/internal/exports"
	"github.com/formforge/backend/internal/forms"
	"github.com/formforge/backend/internal/models"
	"github.com/formforge/backend/internal/responses"
	"github.com/formforge/backend/pkg/queue"
	"github.com/formforge/backend/pkg/storage"
)

// ExportProcessor consumes export jobs, renders a form's responses to CSV and
// uploads the file to S3.
type ExportProcessor struct {
	queue        *queue.Queue
	exportRepo   *exports.Repository
	formRepo     *forms.Repository
	responseRepo *responses.Repository
	s3           *storage.S3
	logger       *zap.Logger
}

// NewExportProcessor creates an export processor.
func NewExportProcessor(q *queue.Queue, exportRepo *exports.Repository, formRepo *forms.Repository, responseRepo *responses.Repository, s3 *storage.S3, logger *zap.Logger) *ExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportProcessor{
		queue:        q,
		exportRepo:   exportRepo,
		formRepo:     formRepo,
		responseRepo: responseRepo,
		s3:           s3,
		logger:       logger,
	}
}

// Run consumes jobs until ctx is cancelled. Failed jobs are retried with
// backoff and land in the DLQ after queue.MaxRetries attempts.
func (p *ExportProcessor) Run(ctx context.Context) {
	p.logger.Info("export worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("export worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.process(ctx, job); err != nil {
			p.logger.Error("export job failed", zap.Error(err), zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
			if rErr := p.queue.Retry(ctx, job); rErr != nil {
				p.logger.Error("retry failed", zap.Error(rErr), zap.String("job_id", job.ID))
			}
		}
	}
}

func (p *ExportProcessor) process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeResponseExport {
		p.logger.Warn("skipping unknown job type", zap.String("type", string(job.Type)), zap.String("job_id", job.ID))
		return nil
	}
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		p.logger.Warn("invalid export payload, dropping job", zap.Error(err), zap.String("job_id", job.ID))
		return nil
	}

	exp, err := p.exportRepo.GetByID(ctx, payload.ExportID)
	if err != nil {
		return fmt.Errorf("load export: %w", err)
	}
	if exp.Status == models.ExportStatusCompleted {
		return nil
	}
	if err := p.exportRepo.MarkProcessing(ctx, exp.ID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	f, err := p.formRepo.GetPublic(ctx, payload.FormID)
	if err != nil {
		_ = p.exportRepo.MarkFailed(ctx, exp.ID, "form no longer exists")
		return fmt.Errorf("load form: %w", err)
	}
	list, err := p.responseRepo.ListByForm(ctx, payload.FormID)
	if err != nil {
		return fmt.Errorf("load responses: %w", err)
	}

	buf, err := RenderCSV(f, list)
	if err != nil {
		_ = p.exportRepo.MarkFailed(ctx, exp.ID, "render failed")
		return fmt.Errorf("render csv: %w", err)
	}

	key := storage.ExportKey(f.ID.String(), exp.ID.String())
	if _, err := p.s3.Upload(ctx, p.s3.ExportsBucket(), key, "text/csv", buf); err != nil {
		return fmt.Errorf("upload csv: %w", err)
	}
	if err := p.exportRepo.MarkCompleted(ctx, exp.ID, key); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	p.logger.Info("export completed",
		zap.String("export_id", exp.ID.String()),
		zap.String("form_id", f.ID.String()),
		zap.Int("responses", len(list)))
	return nil
}

// RenderCSV writes one row per response. Columns are the submission timestamp,
// the respondent's name and email, then one column per question in the form's
// current question order. Checkbox selections are resolved to option text and
// joined with "; ". Answers to questions no longer on the form are omitted.
func RenderCSV(f *models.Form, list []models.ResponseWithRespondent) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"submitted_at", "respondent_name", "respondent_email"}
	for _, q := range f.Questions {
		header = append(header, q.Title)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range list {
		row := make([]string, 0, len(header))
		row = append(row, r.SubmittedAt.UTC().Format(time.RFC3339))
		if r.Respondent != nil {
			row = append(row, r.Respondent.Name, r.Respondent.Email)
		} else {
			row = append(row, "", "")
		}
		for _, q := range f.Questions {
			row = append(row, renderAnswer(q, r.Answers[q.ID.String()]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return &buf, w.Error()
}

func renderAnswer(q models.Question, v models.AnswerValue) string {
	if v.IsEmpty() {
		return ""
	}
	if !v.IsMulti() {
		if q.Type.HasOptions() {
			return optionText(q, v.Text())
		}
		return v.Text()
	}
	parts := make([]string, 0, len(v.Selections()))
	for _, id := range v.Selections() {
		parts = append(parts, optionText(q, id))
	}
	return strings.Join(parts, "; ")
}

// optionText falls back to the raw id for selections that no longer match an
// option, which happens when the form was edited after submission.
func optionText(q models.Question, id string) string {
	for _, opt := range q.Options {
		if opt.ID.String() == id {
			return opt.Text
		}
	}
	return id
}
