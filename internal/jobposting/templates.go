package jobposting

import (
	"context"
	"fmt"

	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/sharepoint"
	"jobposting-workers/internal/models"
)

// TemplateLocator finds template files in the central template library.
type TemplateLocator struct {
	store   Store
	library string
	folder  string
	suffix  string
	logger  logger.Logger
}

// NewTemplateLocator looks for canonical templates in library/folder and for
// per-department extra templates directly under library.
func NewTemplateLocator(store Store, library, folder, suffix string, log logger.Logger) *TemplateLocator {
	return &TemplateLocator{
		store:   store,
		library: library,
		folder:  folder,
		suffix:  suffix,
		logger:  log.WithFields(map[string]interface{}{"component": "template-locator"}),
	}
}

// ListCanonicalTemplates lists files directly in the canonical template
// folder. A missing library or folder yields an empty list.
func (l *TemplateLocator) ListCanonicalTemplates(ctx context.Context) ([]models.TemplateFile, error) {
	root, err := l.store.LibraryRootPath(ctx, l.library)
	if err != nil {
		if isEnumerationGap(err) {
			l.logger.Warn("template library not found", map[string]interface{}{"library": l.library})
			return []models.TemplateFile{}, nil
		}
		return nil, fmt.Errorf("resolve template library root: %w", err)
	}

	return l.listFolder(ctx, sharepoint.JoinPath(root, l.folder))
}

// HasExtraTemplateSet reports whether a folder named after the department,
// minus the library suffix, exists under the template library root.
func (l *TemplateLocator) HasExtraTemplateSet(ctx context.Context, department string) (bool, error) {
	name := ExtraTemplateSetName(department, l.suffix)
	if name == "" {
		return false, nil
	}

	root, err := l.store.LibraryRootPath(ctx, l.library)
	if err != nil {
		if isEnumerationGap(err) {
			return false, nil
		}
		return false, fmt.Errorf("resolve template library root: %w", err)
	}

	exists, err := l.store.FolderExists(ctx, DocumentSetPath(root, name))
	if err != nil {
		return false, fmt.Errorf("check extra template folder %s: %w", name, err)
	}
	return exists, nil
}

// ExtraTemplateFolder returns the extra template set name of department and
// the browser URL of its folder.
func (l *TemplateLocator) ExtraTemplateFolder(ctx context.Context, department string) (name, folderURL string, err error) {
	name = ExtraTemplateSetName(department, l.suffix)
	root, err := l.store.LibraryRootPath(ctx, l.library)
	if err != nil {
		return "", "", fmt.Errorf("resolve template library root: %w", err)
	}
	return name, l.store.AbsoluteURL(DocumentSetPath(root, name)), nil
}

// ListExtraTemplates lists the files a requester can pick for department.
// A missing folder yields an empty list.
func (l *TemplateLocator) ListExtraTemplates(ctx context.Context, department string) ([]models.TemplateFile, error) {
	name := ExtraTemplateSetName(department, l.suffix)
	if name == "" {
		return []models.TemplateFile{}, nil
	}

	root, err := l.store.LibraryRootPath(ctx, l.library)
	if err != nil {
		if isEnumerationGap(err) {
			return []models.TemplateFile{}, nil
		}
		return nil, fmt.Errorf("resolve template library root: %w", err)
	}
	return l.listFolder(ctx, DocumentSetPath(root, name))
}

func (l *TemplateLocator) listFolder(ctx context.Context, path string) ([]models.TemplateFile, error) {
	files, err := l.store.ListFiles(ctx, path)
	if err != nil {
		if isEnumerationGap(err) {
			l.logger.Warn("template folder not found", map[string]interface{}{"path": path})
			return []models.TemplateFile{}, nil
		}
		return nil, fmt.Errorf("list templates in %s: %w", path, err)
	}
	if files == nil {
		files = []models.TemplateFile{}
	}
	return files, nil
}
