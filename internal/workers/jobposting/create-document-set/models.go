// internal/workers/jobposting/create-document-set/models.go
package createdocumentset

import "jobposting-workers/internal/models"

// Input is the submitted form. Title may be supplied by the process; it is
// computed from jobTitle, division and today's date otherwise.
type Input struct {
	Department       string                `json:"department"`
	Division         string                `json:"division"`
	JobTitle         string                `json:"jobTitle"`
	Title            string                `json:"title,omitempty"`
	PartTimePosition bool                  `json:"partTimePosition"`
	TemplateFiles    []models.TemplateFile `json:"templateFiles,omitempty"`
	RequestedBy      string                `json:"requestedBy,omitempty"`
}

func (in *Input) Submission() models.Submission {
	return models.Submission{
		Department:       in.Department,
		Division:         in.Division,
		JobTitle:         in.JobTitle,
		Title:            in.Title,
		PartTimePosition: in.PartTimePosition,
		TemplateFiles:    in.TemplateFiles,
		RequestedBy:      in.RequestedBy,
	}
}

type Output struct {
	FormResponse    models.FormStatus `json:"formResponse"`
	Title           string            `json:"title"`
	DocumentSetPath string            `json:"documentSetPath,omitempty"`
	DocumentSetURL  string            `json:"documentSetUrl,omitempty"`
	CopiedFiles     []string          `json:"copiedFiles,omitempty"`
	RequestID       string            `json:"requestId"`
}
