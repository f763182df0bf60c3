// internal/workers/jobposting/send-job-posting-notification/handler.go
package sendjobpostingnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"jobposting-workers/internal/common/errors"
	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/metrics"
	"jobposting-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-job-posting-notification"
)

// EmailSender is satisfied by *aws.Mailer.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject, text, html string) (string, error)
}

// EventPublisher is satisfied by *aws.EventPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) (string, error)
}

type Handler struct {
	config     *Config
	mailer     EmailSender
	publisher  EventPublisher
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
	logger     logger.Logger
}

// NewHandler wires the notification worker. A nil mailer or publisher
// disables that channel.
func NewHandler(config *Config, mailer EmailSender, publisher EventPublisher, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		mailer:     mailer,
		publisher:  publisher,
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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, started, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, started, errors.Normalize(err))
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveJob(TaskType, started, "")
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(started))
}

// Execute emails the requester the link to the new document set and
// publishes the created event. Either channel failing fails the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	now := time.Now().UTC()
	output := &Output{SentAt: now.Format(time.RFC3339)}

	if h.config.EmailEnabled && h.mailer != nil && input.RequestedBy != "" {
		subject, text, htmlBody := renderEmail(input)
		id, err := h.mailer.Send(ctx, []string{input.RequestedBy}, subject, text, htmlBody)
		if err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		output.Notified = true
		output.MessageID = id
	} else {
		h.logger.Debug("email skipped", map[string]interface{}{"requestId": input.RequestID})
	}

	if h.config.EventEnabled && h.publisher != nil {
		event := Event{
			EventID:         uuid.New().String(),
			RequestID:       input.RequestID,
			Title:           input.Title,
			Department:      input.Department,
			Division:        input.Division,
			DocumentSetPath: input.DocumentSetPath,
			DocumentSetURL:  input.DocumentSetURL,
			RequestedBy:     input.RequestedBy,
			OccurredAt:      output.SentAt,
		}
		if _, err := h.publisher.Publish(ctx, EventTypeCreated, event); err != nil {
			return nil, errors.NewNotificationSendFailedError("event", err)
		}
		output.EventID = event.EventID
	}

	return output, nil
}

func renderEmail(input *Input) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("Job posting created: %s", input.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "Your Job Posting folder has successfully been created!\n\n")
	fmt.Fprintf(&b, "Title: %s\nDepartment: %s\nDivision: %s\n\n", input.Title, input.Department, input.Division)
	fmt.Fprintf(&b, "NEXT STEP: work on the Requisition and Job Posting at %s\n", input.DocumentSetURL)
	text = b.String()

	htmlBody = fmt.Sprintf(
		`<p>Your Job Posting folder has successfully been created!</p>`+
			`<p><b>NEXT STEP: </b><a href="%s">Click Here to work on the Requisition and Job Posting.</a></p>`,
		html.EscapeString(input.DocumentSetURL))
	return subject, text, htmlBody
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, started time.Time, stdErr *errors.StandardError) {
	metrics.ObserveJob(TaskType, started, string(stdErr.Code))
	h.obs.RecordJob(ctx, TaskType, "failed", time.Since(started))
	h.errHandler.HandleJobError(ctx, client, job, stdErr, map[string]interface{}{"notified": false})
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
