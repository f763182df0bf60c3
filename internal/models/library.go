// internal/models/library.go
package models

// DocumentSetContentTypePrefix is the reserved id prefix shared by all
// document set content types.
const DocumentSetContentTypePrefix = "0x0120"

// Department is a department library the caller can write to, with the
// allowed values of its Division choice field.
type Department struct {
	Name      string   `json:"name"`
	Divisions []string `json:"divisions"`
}

// ContentType is one content type attached to a library.
type ContentType struct {
	Name     string `json:"Name"`
	Group    string `json:"Group"`
	StringID string `json:"StringId"`
}

// TemplateFile is a file under the canonical template folder or a
// per-department extra template folder.
type TemplateFile struct {
	FileName          string `json:"fileName"`
	ServerRelativeURL string `json:"serverRelativeUrl,omitempty"`
	FileAbsoluteURL   string `json:"fileAbsoluteUrl,omitempty"`
}
