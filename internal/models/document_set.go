// internal/models/document_set.go
package models

import "time"

// ApprovalStatusNew is the only approval state this system sets.
const ApprovalStatusNew = "New"

// FormStatus is the user-facing outcome of a submission.
type FormStatus string

const (
	FormStatusNew           FormStatus = "New"
	FormStatusSuccess       FormStatus = "Success"
	FormStatusFailed        FormStatus = "Failed"
	FormStatusDuplicateName FormStatus = "DuplicateName"
)

// Submission is the validated request consumed once by the provisioning workflow.
type Submission struct {
	Department       string         `json:"department"`
	Division         string         `json:"division"`
	JobTitle         string         `json:"jobTitle"`
	Title            string         `json:"title,omitempty"`
	PartTimePosition bool           `json:"partTimePosition"`
	TemplateFiles    []TemplateFile `json:"templateFiles,omitempty"`
	RequestedBy      string         `json:"requestedBy,omitempty"`
}

// HasExtraFiles reports whether the requester selected extra template files.
func (s *Submission) HasExtraFiles() bool {
	return len(s.TemplateFiles) > 0
}

// DocumentSet describes a provisioned document set.
type DocumentSet struct {
	Title            string    `json:"title"`
	Department       string    `json:"department"`
	Division         string    `json:"division"`
	Path             string    `json:"path"`
	URL              string    `json:"url"`
	ContentTypeID    string    `json:"contentTypeId"`
	ItemID           int       `json:"itemId"`
	PartTimePosition bool      `json:"partTimePosition"`
	ApprovalStatus   string    `json:"approvalStatus"`
	CopiedFiles      []string  `json:"copiedFiles"`
	CreatedAt        time.Time `json:"createdAt"`
}
