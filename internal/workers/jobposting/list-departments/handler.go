// internal/workers/jobposting/list-departments/handler.go
package listdepartments

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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "list-departments"
)

type Handler struct {
	config     *Config
	access     *jobposting.AccessResolver
	taxonomy   *jobposting.TaxonomyLoader
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
	logger     logger.Logger
}

func NewHandler(config *Config, access *jobposting.AccessResolver, taxonomy *jobposting.TaxonomyLoader, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		access:     access,
		taxonomy:   taxonomy,
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
		h.fail(ctx, client, job, started, errors.NewSharePointRequestFailedError("list departments", err))
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveJob(TaskType, started, "")
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(started))
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if job.Variables == "" {
		return &input, nil
	}
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	return &input, nil
}

// Execute lists the libraries the principal can add to and their divisions.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	libraries, err := h.access.ListAccessibleLibraries(ctx, input.Principal)
	if err != nil {
		return nil, err
	}

	departments, err := h.taxonomy.LoadDepartments(ctx, libraries)
	if err != nil {
		return nil, err
	}

	output := &Output{
		Departments:         departments,
		DepartmentLibraries: make([]string, 0, len(departments)),
		Divisions:           jobposting.MergeDivisions(departments),
		DefaultDivisions:    []string{},
	}
	for _, d := range departments {
		output.DepartmentLibraries = append(output.DepartmentLibraries, d.Name)
	}

	selected := input.Department
	if selected == "" && len(departments) == 1 {
		selected = departments[0].Name
	}
	if selected != "" {
		if divisions, ok := jobposting.DivisionsFor(departments, selected); ok {
			output.DefaultDepartment = selected
			output.DefaultDivisions = divisions
			if len(divisions) > 0 {
				output.DefaultDivision = divisions[0]
			}
		}
	}

	h.logger.Debug("departments resolved", map[string]interface{}{
		"libraries":   len(libraries),
		"departments": len(departments),
		"divisions":   len(output.Divisions),
	})
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
