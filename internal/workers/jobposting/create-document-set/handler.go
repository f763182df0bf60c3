// internal/workers/jobposting/create-document-set/handler.go
package createdocumentset

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"jobposting-workers/internal/common/errors"
	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/metrics"
	"jobposting-workers/internal/common/observability"
	"jobposting-workers/internal/common/validation"
	"jobposting-workers/internal/jobposting"
	"jobposting-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-document-set"
)

var ErrInvalidSubmission = stderrors.New("INVALID_SUBMISSION")

// AuditRecorder stores one row per attempt. *jobposting.AuditStore satisfies it.
type AuditRecorder interface {
	Record(ctx context.Context, e jobposting.AuditEntry) error
}

// Indexer makes provisioned document sets searchable. *jobposting.Catalog satisfies it.
type Indexer interface {
	Index(ctx context.Context, requestID string, ds *models.DocumentSet) error
}

type Handler struct {
	config      *Config
	provisioner *jobposting.Provisioner
	audit       AuditRecorder
	catalog     Indexer
	errHandler  *errors.ErrorHandler
	obs         *observability.Observability
	logger      logger.Logger
	newID       func() uuid.UUID
}

// NewHandler wires the provisioning worker. audit and catalog may be nil.
func NewHandler(config *Config, provisioner *jobposting.Provisioner, audit AuditRecorder, catalog Indexer, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		provisioner: provisioner,
		audit:       audit,
		catalog:     catalog,
		errHandler:  errors.NewErrorHandler(log),
		obs:         obs,
		logger:      log,
		newID:       uuid.New,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	started := time.Now()
	defer metrics.TrackActive(TaskType)()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, started, errors.NewInvalidInputError(err.Error()), &Output{FormResponse: models.FormStatusFailed})
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, started, h.toStandardError(ctx, input, output, err), output)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveJob(TaskType, started, "")
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(started))
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	return &input, nil
}

// Execute validates the submission and provisions its document set. The
// returned output is always non-nil so the caller can report formResponse
// and requestId on failure too.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{
		FormResponse: models.FormStatusFailed,
		RequestID:    h.newID().String(),
	}

	if result := validation.ValidateSubmission(input); !result.Valid {
		return output, fmt.Errorf("%w: %s", ErrInvalidSubmission, result.Summary())
	}

	sub := input.Submission()
	if sub.Title == "" {
		sub.Title = h.provisioner.Title(&sub)
	}
	output.Title = sub.Title

	ds, err := h.provisioner.CreateDocumentSet(ctx, sub)
	output.FormResponse = jobposting.StatusFromError(err)
	if ds != nil {
		output.DocumentSetPath = ds.Path
		output.DocumentSetURL = ds.URL
		output.CopiedFiles = ds.CopiedFiles
	}

	h.recordAudit(ctx, output, sub, err)
	if err != nil {
		return output, err
	}

	if h.catalog != nil {
		if cerr := h.catalog.Index(ctx, output.RequestID, ds); cerr != nil {
			h.logger.Warn("catalog index failed", map[string]interface{}{
				"requestId": output.RequestID,
				"error":     cerr.Error(),
			})
		}
	}

	h.logger.Info("document set created", map[string]interface{}{
		"requestId": output.RequestID,
		"path":      output.DocumentSetPath,
	})
	return output, nil
}

func (h *Handler) recordAudit(ctx context.Context, output *Output, sub models.Submission, provisionErr error) {
	if h.audit == nil {
		return
	}

	entry := jobposting.AuditEntry{
		RequestID:       uuid.MustParse(output.RequestID),
		Title:           sub.Title,
		Department:      sub.Department,
		Division:        sub.Division,
		DocumentSetPath: output.DocumentSetPath,
		Status:          string(output.FormResponse),
		RequestedBy:     sub.RequestedBy,
		CopiedFiles:     len(output.CopiedFiles),
		CreatedAt:       time.Now().UTC(),
	}
	if provisionErr != nil {
		entry.ErrorCode = errorCode(provisionErr)
	}

	if err := h.audit.Record(ctx, entry); err != nil {
		h.logger.Warn("audit record failed", map[string]interface{}{
			"requestId": output.RequestID,
			"error":     err.Error(),
		})
	}
}

// toStandardError maps a provisioning failure to its BPMN error code.
func (h *Handler) toStandardError(ctx context.Context, input *Input, output *Output, err error) *errors.StandardError {
	var stdErr *errors.StandardError
	switch {
	case stderrors.Is(err, ErrInvalidSubmission):
		stdErr = errors.NewInvalidSubmissionError(err.Error())
	case stderrors.Is(err, jobposting.ErrDuplicateName):
		path, perr := h.provisioner.FormatDocumentSetPath(ctx, input.Department, output.Title)
		if perr != nil {
			path = output.Title
		}
		stdErr = errors.NewDuplicateNameError(path)
	case stderrors.Is(err, jobposting.ErrContentTypeNotFound):
		stdErr = errors.NewContentTypeNotFoundError(input.Department)
	case stderrors.Is(err, jobposting.ErrFolderCreateFailed):
		stdErr = errors.NewFolderCreateFailedError(err)
	case stderrors.Is(err, jobposting.ErrMetadataUpdateFailed):
		stdErr = errors.NewMetadataUpdateFailedError(err)
	case stderrors.Is(err, jobposting.ErrTemplateCopyFailed):
		stdErr = errors.NewTemplateCopyFailedError(err)
	default:
		stdErr = errors.NewSharePointRequestFailedError("create document set", err)
	}
	return stdErr
}

func errorCode(err error) string {
	for _, sentinel := range []error{
		ErrInvalidSubmission,
		jobposting.ErrDuplicateName,
		jobposting.ErrContentTypeNotFound,
		jobposting.ErrFolderCreateFailed,
		jobposting.ErrMetadataUpdateFailed,
		jobposting.ErrTemplateCopyFailed,
	} {
		if stderrors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return string(errors.ErrCodeSharePointRequestFailed)
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, started time.Time, stdErr *errors.StandardError, output *Output) {
	metrics.ObserveJob(TaskType, started, string(stdErr.Code))
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(started))

	extra := map[string]interface{}{"formResponse": string(output.FormResponse)}
	if output.RequestID != "" {
		extra["requestId"] = output.RequestID
	}
	if output.Title != "" {
		extra["title"] = output.Title
	}
	if output.DocumentSetURL != "" {
		extra["documentSetUrl"] = output.DocumentSetURL
	}
	h.errHandler.HandleJobError(ctx, client, job, stdErr, extra)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
