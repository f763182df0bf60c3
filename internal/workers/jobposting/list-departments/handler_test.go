// internal/workers/jobposting/list-departments/handler_test.go
package listdepartments

import (
	"context"
	"testing"
	"time"

	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/sharepoint"
	"jobposting-workers/internal/common/sharepoint/sharepointtest"
	"jobposting-workers/internal/jobposting"
	"jobposting-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testLibraries = []string{"Finance - Job Files", "Legal - Job Files", "IT - Job Files", "JobPostingTemplates"}

func createTestHandler(t *testing.T, srv *sharepointtest.Server, libraries []string) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	client, err := sharepoint.NewClient(srv.SiteURL(), srv.Client(), 5*time.Second, log)
	require.NoError(t, err)

	access := jobposting.NewAccessResolver(client, libraries, "JobPostingTemplates", log)
	taxonomy := jobposting.NewTaxonomyLoader(client, "Division", nil, log)
	return NewHandler(&Config{Timeout: 10 * time.Second}, access, taxonomy, nil, log)
}

func createTestSite(t *testing.T) *sharepointtest.Server {
	t.Helper()
	srv := sharepointtest.NewServer()
	t.Cleanup(srv.Close)

	srv.AddLibrary(sharepointtest.Library{
		Title:    "Finance - Job Files",
		Writable: true,
		Choices:  map[string][]string{"Division": {"Payroll", "Benefits"}},
	})
	srv.AddLibrary(sharepointtest.Library{
		Title:   "Legal - Job Files",
		Choices: map[string][]string{"Division": {"Contracts"}},
	})
	srv.AddLibrary(sharepointtest.Library{
		Title:    "IT - Job Files",
		Writable: true,
		Choices:  map[string][]string{"Division": {"Benefits", "Help Desk"}},
	})
	srv.AddLibrary(sharepointtest.Library{Title: "JobPostingTemplates", Writable: true})
	return srv
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	srv := createTestSite(t)
	handler := createTestHandler(t, srv, testLibraries)

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Finance - Job Files", "IT - Job Files"}, output.DepartmentLibraries)
	assert.Equal(t, []models.Department{
		{Name: "Finance - Job Files", Divisions: []string{"Payroll", "Benefits"}},
		{Name: "IT - Job Files", Divisions: []string{"Benefits", "Help Desk"}},
	}, output.Departments)
	assert.Equal(t, []string{"Payroll", "Benefits", "Help Desk"}, output.Divisions)
	assert.Empty(t, output.DefaultDepartment)
	assert.Equal(t, []string{}, output.DefaultDivisions)
	assert.Empty(t, output.DefaultDivision)
}

func TestHandler_Execute_SelectedDepartment(t *testing.T) {
	srv := createTestSite(t)
	handler := createTestHandler(t, srv, testLibraries)

	output, err := handler.Execute(context.Background(), &Input{Department: "IT - Job Files"})
	require.NoError(t, err)

	assert.Equal(t, "IT - Job Files", output.DefaultDepartment)
	assert.Equal(t, []string{"Benefits", "Help Desk"}, output.DefaultDivisions)
	assert.Equal(t, "Benefits", output.DefaultDivision)
	// the merged list survives a selection
	assert.Equal(t, []string{"Payroll", "Benefits", "Help Desk"}, output.Divisions)
}

func TestHandler_Execute_SingleDepartmentIsDefault(t *testing.T) {
	srv := createTestSite(t)
	handler := createTestHandler(t, srv, []string{"Finance - Job Files", "Legal - Job Files"})

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, "Finance - Job Files", output.DefaultDepartment)
	assert.Equal(t, []string{"Payroll", "Benefits"}, output.DefaultDivisions)
	assert.Equal(t, "Payroll", output.DefaultDivision)
}

func TestHandler_Execute_UnknownSelectionFallsBackToAll(t *testing.T) {
	srv := createTestSite(t)
	handler := createTestHandler(t, srv, testLibraries)

	output, err := handler.Execute(context.Background(), &Input{Department: "Legal - Job Files"})
	require.NoError(t, err)

	assert.Empty(t, output.DefaultDepartment)
	assert.Empty(t, output.DefaultDivisions)
	assert.Equal(t, []string{"Payroll", "Benefits", "Help Desk"}, output.Divisions)
}

func TestHandler_Execute_NothingAccessible(t *testing.T) {
	srv := createTestSite(t)
	handler := createTestHandler(t, srv, []string{"Legal - Job Files", "Missing - Job Files"})

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Empty(t, output.Departments)
	assert.NotNil(t, output.DepartmentLibraries)
	assert.Equal(t, []string{}, output.Divisions)
}

func TestHandler_Execute_LibraryWithoutDivisionField(t *testing.T) {
	srv := createTestSite(t)
	srv.AddLibrary(sharepointtest.Library{Title: "Facilities - Job Files", Writable: true})
	handler := createTestHandler(t, srv, []string{"Facilities - Job Files", "IT - Job Files"})

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, []string{"IT - Job Files"}, output.DepartmentLibraries)
	assert.Equal(t, "IT - Job Files", output.DefaultDepartment)
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := &Handler{}

	tests := []struct {
		name      string
		variables string
		want      *Input
		wantErr   bool
	}{
		{"empty variables", "", &Input{}, false},
		{"principal and department", `{"principal":"i:0#.f|membership|pat@contoso.com","department":"IT - Job Files"}`,
			&Input{Principal: "i:0#.f|membership|pat@contoso.com", Department: "IT - Job Files"}, false},
		{"unrelated variables are ignored", `{"other":1}`, &Input{}, false},
		{"malformed", `{"principal":`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: tt.variables}}
			got, err := handler.parseInput(job)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
