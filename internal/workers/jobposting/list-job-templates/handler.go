// internal/workers/jobposting/list-job-templates/handler.go
package listjobtemplates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobposting-workers/internal/common/errors"
	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/metrics"
	"jobposting-workers/internal/common/observability"
	"jobposting-workers/internal/jobposting"
	"jobposting-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "list-job-templates"
)

type Handler struct {
	config     *Config
	templates  *jobposting.TemplateLocator
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
	logger     logger.Logger
}

func NewHandler(config *Config, templates *jobposting.TemplateLocator, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		templates:  templates,
		errHandler: errors.NewErrorHandler(log),
		obs:        obs,
		logger:     log,
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
		h.fail(ctx, client, job, started, errors.NewInvalidInputError(err.Error()))
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, started, errors.NewSharePointRequestFailedError("list templates", err))
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

// Execute lists the canonical templates and, for a part-time posting in a
// department with an extra template set, the files a requester may add.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	canonical, err := h.templates.ListCanonicalTemplates(ctx)
	if err != nil {
		return nil, err
	}

	output := &Output{
		TemplateFiles:      canonical,
		TemplateFilesFound: len(canonical) > 0,
		ExtraTemplateFiles: []models.TemplateFile{},
	}
	if !output.TemplateFilesFound {
		h.logger.Warn("no canonical templates found", nil)
	}

	if input.Department == "" || !input.PartTimePosition {
		return output, nil
	}

	hasExtra, err := h.templates.HasExtraTemplateSet(ctx, input.Department)
	if err != nil {
		return nil, err
	}
	if !hasExtra {
		return output, nil
	}

	name, folderURL, err := h.templates.ExtraTemplateFolder(ctx, input.Department)
	if err != nil {
		return nil, err
	}
	extra, err := h.templates.ListExtraTemplates(ctx, input.Department)
	if err != nil {
		return nil, err
	}

	output.ShowExtraFilePicker = true
	output.ExtraTemplateDocSetName = name
	output.ExtraTemplateFolderURL = folderURL
	output.ExtraTemplateFiles = extra
	return output, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, started time.Time, stdErr *errors.StandardError) {
	metrics.ObserveJob(TaskType, started, string(stdErr.Code))
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(started))
	h.errHandler.HandleJobError(ctx, client, job, stdErr, nil)
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
