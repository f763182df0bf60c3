package jobposting

import (
	"context"

	"jobposting-workers/internal/models"

	"github.com/stretchr/testify/mock"
)

// ==========================
// Mock Store Implementation
// ==========================

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CanAddItems(ctx context.Context, library, principal string) (bool, error) {
	args := m.Called(ctx, library, principal)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) LibraryRootPath(ctx context.Context, library string) (string, error) {
	args := m.Called(ctx, library)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ContentTypes(ctx context.Context, library string) ([]models.ContentType, error) {
	args := m.Called(ctx, library)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContentType), args.Error(1)
}

func (m *MockStore) FieldChoices(ctx context.Context, library, field string) ([]string, error) {
	args := m.Called(ctx, library, field)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) FolderExists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateFolder(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockStore) FolderItemID(ctx context.Context, path string) (int, error) {
	args := m.Called(ctx, path)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) UpdateItemFields(ctx context.Context, library string, id int, fields map[string]interface{}) error {
	return m.Called(ctx, library, id, fields).Error(0)
}

func (m *MockStore) ListFiles(ctx context.Context, path string) ([]models.TemplateFile, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TemplateFile), args.Error(1)
}

func (m *MockStore) CopyFile(ctx context.Context, source, destination string) error {
	return m.Called(ctx, source, destination).Error(0)
}

func (m *MockStore) AbsoluteURL(serverRelativePath string) string {
	return "https://contoso.sharepoint.com" + serverRelativePath
}
