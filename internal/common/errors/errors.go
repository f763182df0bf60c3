// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation
	ErrCodeInvalidSubmission ErrorCode = "INVALID_SUBMISSION"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"

	// Preconditions, raised before any mutation
	ErrCodeContentTypeNotFound ErrorCode = "CONTENT_TYPE_NOT_FOUND"
	ErrCodeDuplicateName       ErrorCode = "DUPLICATE_NAME"

	// Mutations, raised after partial state may exist
	ErrCodeFolderCreateFailed   ErrorCode = "FOLDER_CREATE_FAILED"
	ErrCodeMetadataUpdateFailed ErrorCode = "METADATA_UPDATE_FAILED"
	ErrCodeTemplateCopyFailed   ErrorCode = "TEMPLATE_COPY_FAILED"

	// Enumeration / transport
	ErrCodeSharePointRequestFailed ErrorCode = "SHAREPOINT_REQUEST_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Category       string                 `json:"category"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables set on the process when the error is thrown.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":     e.Code,
		"errorMessage":  e.Message,
		"errorDetails":  e.Details,
		"errorCategory": e.Category,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidSubmissionError reports a submission that failed field validation.
func NewInvalidSubmissionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSubmission,
		Message:   "Job posting submission is invalid",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports job variables that could not be parsed.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job variables could not be parsed",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func NewContentTypeNotFoundError(library string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContentTypeNotFound,
		Message:   "Cannot resolve document set content type",
		Details:   fmt.Sprintf("library: %s", library),
		Timestamp: time.Now().UTC(),
	}
}

func NewDuplicateNameError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateName,
		Message:   "A document set with this name already exists",
		Details:   fmt.Sprintf("path: %s", path),
		Timestamp: time.Now().UTC(),
	}
}

func NewFolderCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFolderCreateFailed,
		Message:   "Document set folder could not be created",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

func NewMetadataUpdateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMetadataUpdateFailed,
		Message:   "Document set metadata could not be updated",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

func NewTemplateCopyFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateCopyFailed,
		Message:   "Template copy failed",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// NewSharePointRequestFailedError wraps transport and unexpected status failures.
func NewSharePointRequestFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSharePointRequestFailed,
		Message:   fmt.Sprintf("SharePoint request '%s' failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Failed to send %s notification", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError is the fallback for errors without a code.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidSubmission:       "INVALID_SUBMISSION",
	ErrCodeInvalidInput:            "INVALID_SUBMISSION",
	ErrCodeContentTypeNotFound:     "CONTENT_TYPE_NOT_FOUND",
	ErrCodeDuplicateName:           "DUPLICATE_NAME",
	ErrCodeFolderCreateFailed:      "FOLDER_CREATE_FAILED",
	ErrCodeMetadataUpdateFailed:    "METADATA_UPDATE_FAILED",
	ErrCodeTemplateCopyFailed:      "TEMPLATE_COPY_FAILED",
	ErrCodeSharePointRequestFailed: "SHAREPOINT_REQUEST_FAILED",
	ErrCodeNotificationSendFailed:  "NOTIFICATION_SEND_FAILED",
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Category:       GetErrorCategory(stdErr.Code),
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsPrecondition reports whether the error aborted before any remote mutation.
func IsPrecondition(code ErrorCode) bool {
	return GetErrorCategory(code) == "PRECONDITION" || GetErrorCategory(code) == "VALIDATION"
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DUPLICATE") || strings.Contains(codeStr, "CONTENT_TYPE"):
		return "PRECONDITION"
	case strings.HasSuffix(codeStr, "CREATE_FAILED") || strings.HasSuffix(codeStr, "UPDATE_FAILED") || strings.Contains(codeStr, "COPY"):
		return "MUTATION"
	case strings.Contains(codeStr, "SHAREPOINT"):
		return "ENUMERATION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
