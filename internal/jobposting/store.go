// Package jobposting resolves departments, divisions and templates, and
// provisions job posting document sets in department libraries.
package jobposting

import (
	"context"
	"errors"

	"jobposting-workers/internal/common/sharepoint"
	"jobposting-workers/internal/models"
)

// Store is the document-container store the package runs against.
// *sharepoint.Client satisfies it.
type Store interface {
	CanAddItems(ctx context.Context, library, principal string) (bool, error)
	LibraryRootPath(ctx context.Context, library string) (string, error)
	ContentTypes(ctx context.Context, library string) ([]models.ContentType, error)
	FieldChoices(ctx context.Context, library, field string) ([]string, error)
	FolderExists(ctx context.Context, path string) (bool, error)
	CreateFolder(ctx context.Context, path string) error
	FolderItemID(ctx context.Context, path string) (int, error)
	UpdateItemFields(ctx context.Context, library string, id int, fields map[string]interface{}) error
	ListFiles(ctx context.Context, path string) ([]models.TemplateFile, error)
	CopyFile(ctx context.Context, source, destination string) error
	AbsoluteURL(serverRelativePath string) string
}

var _ Store = (*sharepoint.Client)(nil)

// isEnumerationGap reports errors that mean "this item is not there for us":
// a missing library, field or folder, or one the principal cannot see.
func isEnumerationGap(err error) bool {
	return errors.Is(err, sharepoint.ErrNotFound) || errors.Is(err, sharepoint.ErrAccessDenied)
}
