package jobposting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/metrics"
	"jobposting-workers/internal/common/observability"
	"jobposting-workers/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ProvisionerConfig holds the rules that pick content types and templates.
type ProvisionerConfig struct {
	ContentTypeGroups []string
	RequisitionMarker string
	CopyConcurrency   int
}

// Provisioner creates job posting document sets.
//
// Steps run in order and each depends on the previous one. Nothing is
// rolled back: a failure after folder creation leaves the folder (and
// possibly its metadata) in place.
type Provisioner struct {
	store     Store
	templates *TemplateLocator
	cfg       ProvisionerConfig
	logger    logger.Logger
	now       func() time.Time
}

func NewProvisioner(store Store, templates *TemplateLocator, cfg ProvisionerConfig, log logger.Logger) *Provisioner {
	if cfg.CopyConcurrency <= 0 {
		cfg.CopyConcurrency = 1
	}
	return &Provisioner{
		store:     store,
		templates: templates,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "provisioner"}),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for titles.
func (p *Provisioner) WithClock(now func() time.Time) *Provisioner {
	p.now = now
	return p
}

// Title computes the document set title of a submission for today.
func (p *Provisioner) Title(sub *models.Submission) string {
	return FormatTitle(sub.JobTitle, sub.Division, p.now())
}

// FormatDocumentSetPath resolves the department root and appends title.
func (p *Provisioner) FormatDocumentSetPath(ctx context.Context, department, title string) (string, error) {
	root, err := p.store.LibraryRootPath(ctx, department)
	if err != nil {
		return "", fmt.Errorf("resolve root of %s: %w", department, err)
	}
	return DocumentSetPath(root, title), nil
}

// CreateDocumentSet provisions the document set for sub. sub.Title is
// computed when empty.
func (p *Provisioner) CreateDocumentSet(ctx context.Context, sub models.Submission) (*models.DocumentSet, error) {
	if sub.Title == "" {
		sub.Title = p.Title(&sub)
	}

	ctx, span := observability.StartSpan(ctx, "jobposting.create-document-set",
		attribute.String("department", sub.Department),
		attribute.String("title", sub.Title))
	ds, err := p.createDocumentSet(ctx, sub)
	observability.EndSpan(span, err)

	metrics.DocumentSetsProvisioned.WithLabelValues(string(StatusFromError(err))).Inc()
	return ds, err
}

func (p *Provisioner) createDocumentSet(ctx context.Context, sub models.Submission) (*models.DocumentSet, error) {
	log := p.logger.WithFields(map[string]interface{}{"department": sub.Department, "title": sub.Title})

	// 1. destination
	root, err := p.store.LibraryRootPath(ctx, sub.Department)
	if err != nil {
		return nil, fmt.Errorf("resolve root of %s: %w", sub.Department, err)
	}
	dest := DocumentSetPath(root, sub.Title)

	ds := &models.DocumentSet{
		Title:            sub.Title,
		Department:       sub.Department,
		Division:         sub.Division,
		Path:             dest,
		URL:              DocumentSetURL(p.store.AbsoluteURL(root), sub.Title),
		PartTimePosition: sub.PartTimePosition,
		ApprovalStatus:   models.ApprovalStatusNew,
		CreatedAt:        p.now().UTC(),
	}

	// 2. content type
	err = p.step(ctx, "resolve-content-type", func(ctx context.Context) error {
		id, err := p.resolveContentType(ctx, sub.Department)
		ds.ContentTypeID = id
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. duplicate check; the remote store offers no lock, so a concurrent
	// submission with the same title can still pass this check
	err = p.step(ctx, "check-duplicate", func(ctx context.Context) error {
		exists, err := p.store.FolderExists(ctx, dest)
		if err != nil {
			return fmt.Errorf("check %s: %w", dest, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrDuplicateName, dest)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 4. folder
	err = p.step(ctx, "create-folder", func(ctx context.Context) error {
		if err := p.store.CreateFolder(ctx, dest); err != nil {
			return fmt.Errorf("%w: %w", ErrFolderCreateFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("document set folder created", map[string]interface{}{"path": dest})

	// 5. metadata
	err = p.step(ctx, "update-metadata", func(ctx context.Context) error {
		id, err := p.store.FolderItemID(ctx, dest)
		if err != nil {
			return fmt.Errorf("%w: fetch item id: %w", ErrMetadataUpdateFailed, err)
		}
		ds.ItemID = id

		fields := map[string]interface{}{
			"ContentTypeId":    ds.ContentTypeID,
			"PartTimePosition": sub.PartTimePosition,
			"Division":         sub.Division,
			"ApprovalStatus":   models.ApprovalStatusNew,
		}
		if err := p.store.UpdateItemFields(ctx, sub.Department, id, fields); err != nil {
			return fmt.Errorf("%w: %w", ErrMetadataUpdateFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 6. templates
	err = p.step(ctx, "copy-templates", func(ctx context.Context) error {
		copied, err := p.copyTemplates(ctx, log, sub, dest)
		ds.CopiedFiles = copied
		return err
	})
	if err != nil {
		return ds, err
	}

	log.Info("document set provisioned", map[string]interface{}{
		"path":        dest,
		"itemId":      ds.ItemID,
		"copiedFiles": len(ds.CopiedFiles),
	})
	return ds, nil
}

func (p *Provisioner) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "jobposting."+name)
	err := fn(ctx)
	observability.EndSpan(span, err)
	return err
}

// resolveContentType returns the id of the first document set content type
// of library whose group is one of the configured groups.
func (p *Provisioner) resolveContentType(ctx context.Context, library string) (string, error) {
	cts, err := p.store.ContentTypes(ctx, library)
	if err != nil {
		return "", fmt.Errorf("list content types of %s: %w", library, err)
	}

	for _, ct := range cts {
		if !strings.HasPrefix(ct.StringID, models.DocumentSetContentTypePrefix) {
			continue
		}
		for _, group := range p.cfg.ContentTypeGroups {
			if ct.Group == group {
				return ct.StringID, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrContentTypeNotFound, library)
}

type copyJob struct {
	source   string
	fileName string
	origin   string
}

// SelectTemplates applies the copy rule: with extra files selected only
// canonical files whose name contains marker are kept, otherwise all are.
func SelectTemplates(canonical []models.TemplateFile, hasExtraFiles bool, marker string) []models.TemplateFile {
	if !hasExtraFiles {
		return canonical
	}
	selected := make([]models.TemplateFile, 0, len(canonical))
	for _, f := range canonical {
		if strings.Contains(f.FileName, marker) {
			selected = append(selected, f)
		}
	}
	return selected
}

func (p *Provisioner) copyTemplates(ctx context.Context, log logger.Logger, sub models.Submission, dest string) ([]string, error) {
	canonical, err := p.templates.ListCanonicalTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateCopyFailed, err)
	}

	var jobs []copyJob
	for _, f := range SelectTemplates(canonical, sub.HasExtraFiles(), p.cfg.RequisitionMarker) {
		src := f.ServerRelativeURL
		if src == "" {
			src = f.FileAbsoluteURL
		}
		jobs = append(jobs, copyJob{source: src, fileName: f.FileName, origin: "canonical"})
	}
	for _, f := range sub.TemplateFiles {
		jobs = append(jobs, copyJob{source: f.FileAbsoluteURL, fileName: f.FileName, origin: "extra"})
	}

	var (
		mu       sync.Mutex
		copied   []string
		failures []error
	)

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.CopyConcurrency)
	for _, job := range jobs {
		g.Go(func() error {
			target := DocumentSetPath(dest, job.fileName)
			err := p.store.CopyFile(ctx, job.source, target)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.TemplateCopies.WithLabelValues(job.origin, "failed").Inc()
				log.Error("template copy failed", map[string]interface{}{
					"source": job.source,
					"target": target,
					"error":  err.Error(),
				})
				failures = append(failures, fmt.Errorf("%s: %w", job.fileName, err))
				return nil
			}
			metrics.TemplateCopies.WithLabelValues(job.origin, "copied").Inc()
			copied = append(copied, job.fileName)
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return copied, fmt.Errorf("%w: %d of %d copies failed: %w", ErrTemplateCopyFailed, len(failures), len(jobs), errors.Join(failures...))
	}
	return copied, nil
}
