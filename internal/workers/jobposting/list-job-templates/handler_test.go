// internal/workers/jobposting/list-job-templates/handler_test.go
package listjobtemplates

import (
	"context"
	"testing"
	"time"

	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/sharepoint"
	"jobposting-workers/internal/common/sharepoint/sharepointtest"
	"jobposting-workers/internal/jobposting"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const templateRoot = "/sites/hr/JobPostingTemplates"

func createTestSite(t *testing.T) *sharepointtest.Server {
	t.Helper()
	srv := sharepointtest.NewServer()
	t.Cleanup(srv.Close)

	srv.AddLibrary(sharepointtest.Library{Title: "JobPostingTemplates"})
	srv.AddFolder(templateRoot + "/Master Templates")
	srv.AddFile(templateRoot + "/Master Templates/Job Ad.docx")
	srv.AddFile(templateRoot + "/Master Templates/Requisition Form.docx")
	srv.AddFolder(templateRoot + "/Finance")
	srv.AddFile(templateRoot + "/Finance/Offer Letter.docx")
	return srv
}

func createTestHandler(t *testing.T, srv *sharepointtest.Server) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	client, err := sharepoint.NewClient(srv.SiteURL(), srv.Client(), 5*time.Second, log)
	require.NoError(t, err)

	locator := jobposting.NewTemplateLocator(client, "JobPostingTemplates", "Master Templates", " - Job Files", log)
	return NewHandler(&Config{Timeout: 10 * time.Second}, locator, nil, log)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		department     string
		partTime       bool
		wantPicker     bool
		wantExtraName  string
		wantExtraFiles []string
	}{
		{"no department", "", true, false, "", nil},
		{"part-time with extra set", "Finance - Job Files", true, true, "Finance", []string{"Offer Letter.docx"}},
		{"full-time with extra set", "Finance - Job Files", false, false, "", nil},
		{"part-time without extra set", "IT - Job Files", true, false, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := createTestSite(t)
			handler := createTestHandler(t, srv)

			output, err := handler.Execute(context.Background(), &Input{Department: tt.department, PartTimePosition: tt.partTime})
			require.NoError(t, err)

			assert.True(t, output.TemplateFilesFound)
			require.Len(t, output.TemplateFiles, 2)
			assert.Equal(t, "Job Ad.docx", output.TemplateFiles[0].FileName)

			assert.Equal(t, tt.wantPicker, output.ShowExtraFilePicker)
			assert.Equal(t, tt.wantExtraName, output.ExtraTemplateDocSetName)

			var names []string
			for _, f := range output.ExtraTemplateFiles {
				names = append(names, f.FileName)
			}
			assert.Equal(t, tt.wantExtraFiles, names)
			assert.NotNil(t, output.ExtraTemplateFiles)
		})
	}
}

func TestHandler_Execute_ExtraFolderURL(t *testing.T) {
	srv := createTestSite(t)
	handler := createTestHandler(t, srv)

	output, err := handler.Execute(context.Background(), &Input{Department: "Finance - Job Files", PartTimePosition: true})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+templateRoot+"/Finance", output.ExtraTemplateFolderURL)
	assert.Equal(t, srv.URL+templateRoot+"/Finance/Offer%20Letter.docx", output.ExtraTemplateFiles[0].FileAbsoluteURL)
}

func TestHandler_Execute_MissingCanonicalFolder(t *testing.T) {
	srv := sharepointtest.NewServer()
	defer srv.Close()
	srv.AddLibrary(sharepointtest.Library{Title: "JobPostingTemplates"})
	handler := createTestHandler(t, srv)

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.False(t, output.TemplateFilesFound)
	assert.Empty(t, output.TemplateFiles)
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := &Handler{}

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"department":"Finance - Job Files","partTimePosition":true}`}}
	input, err := handler.parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, "Finance - Job Files", input.Department)
	assert.True(t, input.PartTimePosition)

	job = entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `not json`}}
	_, err = handler.parseInput(job)
	assert.Error(t, err)
}
