// internal/workers/jobposting/list-job-templates/models.go
package listjobtemplates

import "jobposting-workers/internal/models"

type Input struct {
	Department       string `json:"department"`
	// PartTimePosition gates the extra file picker; only part-time postings get one.
	PartTimePosition bool   `json:"partTimePosition"`
}

type Output struct {
	TemplateFiles           []models.TemplateFile `json:"templateFiles"`
	TemplateFilesFound      bool                  `json:"templateFilesFound"`
	ShowExtraFilePicker     bool                  `json:"showExtraFilePicker"`
	ExtraTemplateDocSetName string                `json:"extraTemplateDocSetName,omitempty"`
	ExtraTemplateFolderURL  string                `json:"extraTemplateFolderUrl,omitempty"`
	ExtraTemplateFiles      []models.TemplateFile `json:"extraTemplateFiles"`
}
