package jobposting

import (
	"context"
	"errors"
	"testing"

	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/sharepoint"
	"jobposting-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const templateRoot = "/sites/hr/JobPostingTemplates"

func newLocator(store Store) *TemplateLocator {
	return NewTemplateLocator(store, "JobPostingTemplates", "Master Templates", " - Job Files", logger.NewNoOpLogger())
}

// ==========================
// Canonical templates
// ==========================

func TestTemplateLocator_ListCanonicalTemplates(t *testing.T) {
	files := []models.TemplateFile{
		{FileName: "Job Ad.docx", ServerRelativeURL: templateRoot + "/Master Templates/Job Ad.docx"},
		{FileName: "Requisition Form.docx", ServerRelativeURL: templateRoot + "/Master Templates/Requisition Form.docx"},
	}

	store := new(MockStore)
	store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return(templateRoot, nil)
	store.On("ListFiles", mock.Anything, templateRoot+"/Master Templates").Return(files, nil)

	got, err := newLocator(store).ListCanonicalTemplates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, files, got)
	store.AssertExpectations(t)
}

func TestTemplateLocator_MissingFolderIsEmpty(t *testing.T) {
	store := new(MockStore)
	store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return(templateRoot, nil)
	store.On("ListFiles", mock.Anything, templateRoot+"/Master Templates").
		Return(nil, &sharepoint.RequestError{StatusCode: 404, Body: "System.IO.FileNotFoundException"})

	got, err := newLocator(store).ListCanonicalTemplates(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTemplateLocator_MissingLibraryIsEmpty(t *testing.T) {
	store := new(MockStore)
	store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").
		Return("", &sharepoint.RequestError{StatusCode: 404})

	got, err := newLocator(store).ListCanonicalTemplates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	store.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything)
}

func TestTemplateLocator_PropagatesTransportErrors(t *testing.T) {
	store := new(MockStore)
	store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return(templateRoot, nil)
	store.On("ListFiles", mock.Anything, templateRoot+"/Master Templates").Return(nil, errors.New("connection reset"))

	_, err := newLocator(store).ListCanonicalTemplates(context.Background())
	assert.Error(t, err)
}

func TestTemplateLocator_UnauthorizedIsNotEmpty(t *testing.T) {
	unauthorized := &sharepoint.RequestError{Operation: "root folder", StatusCode: 401, Body: "Invalid JWT token"}

	t.Run("library root", func(t *testing.T) {
		store := new(MockStore)
		store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return("", unauthorized)

		_, err := newLocator(store).ListCanonicalTemplates(context.Background())
		assert.ErrorIs(t, err, unauthorized)
		store.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything)
	})

	t.Run("folder listing", func(t *testing.T) {
		store := new(MockStore)
		store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return(templateRoot, nil)
		store.On("ListFiles", mock.Anything, templateRoot+"/Master Templates").Return(nil, unauthorized)

		_, err := newLocator(store).ListCanonicalTemplates(context.Background())
		assert.ErrorIs(t, err, unauthorized)
	})
}

// ==========================
// Extra template sets
// ==========================

func TestTemplateLocator_HasExtraTemplateSet(t *testing.T) {
	store := new(MockStore)
	store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return(templateRoot, nil)
	store.On("FolderExists", mock.Anything, templateRoot+"/Finance").Return(true, nil)
	store.On("FolderExists", mock.Anything, templateRoot+"/IT").Return(false, nil)

	locator := newLocator(store)
	ctx := context.Background()

	ok, err := locator.HasExtraTemplateSet(ctx, "Finance - Job Files")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locator.HasExtraTemplateSet(ctx, "IT - Job Files")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = locator.HasExtraTemplateSet(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTemplateLocator_ExtraTemplateFolder(t *testing.T) {
	store := new(MockStore)
	store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return(templateRoot, nil)

	name, folderURL, err := newLocator(store).ExtraTemplateFolder(context.Background(), "Finance - Job Files")
	require.NoError(t, err)
	assert.Equal(t, "Finance", name)
	assert.Equal(t, "https://contoso.sharepoint.com"+templateRoot+"/Finance", folderURL)
}

func TestTemplateLocator_ListExtraTemplates(t *testing.T) {
	offer := models.TemplateFile{FileName: "Offer Letter.docx", ServerRelativeURL: templateRoot + "/Finance/Offer Letter.docx"}

	store := new(MockStore)
	store.On("LibraryRootPath", mock.Anything, "JobPostingTemplates").Return(templateRoot, nil)
	store.On("ListFiles", mock.Anything, templateRoot+"/Finance").Return([]models.TemplateFile{offer}, nil)
	store.On("ListFiles", mock.Anything, templateRoot+"/IT").Return(nil, &sharepoint.RequestError{StatusCode: 404})

	locator := newLocator(store)
	ctx := context.Background()

	got, err := locator.ListExtraTemplates(ctx, "Finance - Job Files")
	require.NoError(t, err)
	assert.Equal(t, []models.TemplateFile{offer}, got)

	got, err = locator.ListExtraTemplates(ctx, "IT - Job Files")
	require.NoError(t, err)
	assert.Empty(t, got)
}
