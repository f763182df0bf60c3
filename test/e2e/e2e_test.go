// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/sharepoint"
	"jobposting-workers/internal/common/sharepoint/sharepointtest"
	"jobposting-workers/internal/jobposting"
	"jobposting-workers/internal/models"

	cds "jobposting-workers/internal/workers/jobposting/create-document-set"
	ld "jobposting-workers/internal/workers/jobposting/list-departments"
	ljt "jobposting-workers/internal/workers/jobposting/list-job-templates"
	sjn "jobposting-workers/internal/workers/jobposting/send-job-posting-notification"
)

const (
	financeLibrary = "Finance - Job Files"
	financeRoot    = "/sites/hr/Finance"
	templateRoot   = "/sites/hr/JobPostingTemplates"
)

var fixedNow = time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, to []string, subject, text, html string) (string, error) {
	args := m.Called(ctx, to, subject, text, html)
	return args.String(0), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, eventType string, payload interface{}) (string, error) {
	args := m.Called(ctx, eventType, payload)
	return args.String(0), args.Error(1)
}

type mockIndexer struct{ mock.Mock }

func (m *mockIndexer) Index(ctx context.Context, requestID string, ds *models.DocumentSet) error {
	return m.Called(ctx, requestID, ds).Error(0)
}

// environment wires every worker against one fake site, an in-memory
// Redis and a mocked audit database.
type environment struct {
	srv       *sharepointtest.Server
	redis     *miniredis.Miniredis
	sqlMock   sqlmock.Sqlmock
	catalog   *mockIndexer
	mailer    *mockMailer
	publisher *mockPublisher

	departments *ld.Handler
	templates   *ljt.Handler
	create      *cds.Handler
	notify      *sjn.Handler
}

func newEnvironment(t *testing.T) *environment {
	t.Helper()
	log := logger.NewTestLogger(t)

	srv := sharepointtest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddLibrary(sharepointtest.Library{
		Title:    financeLibrary,
		RootPath: financeRoot,
		Writable: true,
		ContentTypes: []models.ContentType{
			{Name: "Document", Group: "Document Content Types", StringID: "0x0101"},
			{Name: "Job Posting", Group: "Job Posting", StringID: "0x0120D52000AB"},
		},
		Choices: map[string][]string{"Division": {"Payroll", "Benefits"}},
	})
	srv.AddLibrary(sharepointtest.Library{Title: "Legal - Job Files"})
	srv.AddLibrary(sharepointtest.Library{Title: "JobPostingTemplates"})
	srv.AddFolder(templateRoot + "/Master Templates")
	srv.AddFile(templateRoot + "/Master Templates/Job Ad.docx")
	srv.AddFile(templateRoot + "/Master Templates/Requisition Form.docx")
	srv.AddFolder(templateRoot + "/Finance")
	srv.AddFile(templateRoot + "/Finance/Offer Letter.docx")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client, err := sharepoint.NewClient(srv.SiteURL(), srv.Client(), 5*time.Second, log)
	require.NoError(t, err)

	libraries := []string{financeLibrary, "Legal - Job Files", "Archived - Job Files"}
	access := jobposting.NewAccessResolver(client, libraries, "JobPostingTemplates", log)
	taxonomy := jobposting.NewTaxonomyLoader(client, "Division", jobposting.NewRedisDivisionCache(rdb, 5*time.Minute), log)
	locator := jobposting.NewTemplateLocator(client, "JobPostingTemplates", "Master Templates", " - Job Files", log)
	provisioner := jobposting.NewProvisioner(client, locator, jobposting.ProvisionerConfig{
		ContentTypeGroups: []string{"Custom Content Types", "Job Posting"},
		RequisitionMarker: "Requisition",
		CopyConcurrency:   2,
	}, log).WithClock(func() time.Time { return fixedNow })

	env := &environment{
		srv:       srv,
		redis:     mr,
		sqlMock:   sqlMock,
		catalog:   new(mockIndexer),
		mailer:    new(mockMailer),
		publisher: new(mockPublisher),
	}
	env.departments = ld.NewHandler(ld.LoadConfig(), access, taxonomy, nil, log)
	env.templates = ljt.NewHandler(ljt.LoadConfig(), locator, nil, log)
	env.create = cds.NewHandler(cds.LoadConfig(), provisioner, jobposting.NewAuditStore(db), env.catalog, nil, log)
	env.notify = sjn.NewHandler(sjn.LoadConfig(), env.mailer, env.publisher, nil, log)
	return env
}

func (env *environment) expectAudit(title, path, status string, copied int) {
	env.sqlMock.ExpectExec("INSERT INTO job_posting_requests").
		WithArgs(
			sqlmock.AnyArg(),
			title,
			financeLibrary,
			"Payroll",
			sqlmock.AnyArg(),
			status,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			copied,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

// TestJobPostingFlow walks the form from department selection through
// provisioning and notification.
func TestJobPostingFlow(t *testing.T) {
	env := newEnvironment(t)
	ctx := context.Background()

	// 1. departments and divisions
	deps, err := env.departments.Execute(ctx, &ld.Input{})
	require.NoError(t, err)
	assert.Equal(t, []string{financeLibrary}, deps.DepartmentLibraries)
	assert.Equal(t, financeLibrary, deps.DefaultDepartment)
	assert.Equal(t, []string{"Payroll", "Benefits"}, deps.Divisions)
	assert.Equal(t, []string{"Payroll", "Benefits"}, deps.DefaultDivisions)
	assert.Equal(t, "Payroll", deps.DefaultDivision)
	assert.True(t, env.redis.Exists("jobposting:divisions:"+financeLibrary))

	// 2. templates for the chosen department
	tpl, err := env.templates.Execute(ctx, &ljt.Input{Department: deps.DefaultDepartment, PartTimePosition: true})
	require.NoError(t, err)
	assert.True(t, tpl.TemplateFilesFound)
	assert.Len(t, tpl.TemplateFiles, 2)
	assert.True(t, tpl.ShowExtraFilePicker)
	assert.Equal(t, "Finance", tpl.ExtraTemplateDocSetName)
	require.Len(t, tpl.ExtraTemplateFiles, 1)
	assert.Equal(t, "Offer Letter.docx", tpl.ExtraTemplateFiles[0].FileName)

	// 3. provisioning with the extra file selected
	title := "Clerk - Payroll - 2024-01-05"
	path := financeRoot + "/" + title
	env.expectAudit(title, path, "Success", 2)
	env.catalog.On("Index", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*models.DocumentSet")).Return(nil)

	created, err := env.create.Execute(ctx, &cds.Input{
		Department:       deps.DefaultDepartment,
		Division:         deps.DefaultDivision,
		JobTitle:         "Clerk",
		PartTimePosition: true,
		TemplateFiles:    tpl.ExtraTemplateFiles,
		RequestedBy:      "pat@contoso.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.FormStatusSuccess, created.FormResponse)
	assert.Equal(t, title, created.Title)
	assert.Equal(t, path, created.DocumentSetPath)
	assert.ElementsMatch(t, []string{"Requisition Form.docx", "Offer Letter.docx"}, created.CopiedFiles)
	assert.NotEmpty(t, created.RequestID)

	assert.True(t, env.srv.HasFolder(path))
	assert.Equal(t, []string{"Offer Letter.docx", "Requisition Form.docx"}, env.srv.FilesIn(path))
	fields := env.srv.ItemFields(path)
	assert.Equal(t, "0x0120D52000AB", fields["ContentTypeId"])
	assert.Equal(t, "Payroll", fields["Division"])
	assert.Equal(t, "New", fields["ApprovalStatus"])

	// 4. notification
	env.mailer.On("Send", mock.Anything, []string{"pat@contoso.com"}, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return("msg-1", nil)
	env.publisher.On("Publish", mock.Anything, sjn.EventTypeCreated, mock.Anything).Return("evt-1", nil)

	notified, err := env.notify.Execute(ctx, &sjn.Input{
		RequestID:       created.RequestID,
		Title:           created.Title,
		Department:      deps.DefaultDepartment,
		Division:        deps.DefaultDivision,
		DocumentSetPath: created.DocumentSetPath,
		DocumentSetURL:  created.DocumentSetURL,
		RequestedBy:     "pat@contoso.com",
	})
	require.NoError(t, err)
	assert.True(t, notified.Notified)
	assert.Equal(t, "msg-1", notified.MessageID)
	assert.Equal(t, "evt-1", notified.EventID)

	env.catalog.AssertExpectations(t)
	env.mailer.AssertExpectations(t)
	env.publisher.AssertExpectations(t)
	assert.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestJobPostingFlow_DuplicateSubmission(t *testing.T) {
	env := newEnvironment(t)
	ctx := context.Background()

	title := "Clerk - Payroll - 2024-01-05"
	path := financeRoot + "/" + title
	input := &cds.Input{
		Department:  financeLibrary,
		Division:    "Payroll",
		JobTitle:    "Clerk",
		RequestedBy: "pat@contoso.com",
	}

	env.expectAudit(title, path, "Success", 2)
	env.catalog.On("Index", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	first, err := env.create.Execute(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, models.FormStatusSuccess, first.FormResponse)
	assert.ElementsMatch(t, []string{"Job Ad.docx", "Requisition Form.docx"}, first.CopiedFiles)

	callsBefore := len(env.srv.Calls())
	env.expectAudit(title, "", "DuplicateName", 0)
	second, err := env.create.Execute(ctx, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, jobposting.ErrDuplicateName)
	assert.Equal(t, models.FormStatusDuplicateName, second.FormResponse)
	assert.Len(t, env.srv.Calls(), callsBefore, "duplicate must not mutate the site")

	env.catalog.AssertNumberOfCalls(t, "Index", 1)
	assert.NoError(t, env.sqlMock.ExpectationsWereMet())
}

func TestJobPostingFlow_DivisionsServedFromCache(t *testing.T) {
	env := newEnvironment(t)
	ctx := context.Background()

	_, err := env.departments.Execute(ctx, &ld.Input{Department: financeLibrary})
	require.NoError(t, err)

	// the cached value wins over the site until it expires
	require.NoError(t, env.redis.Set("jobposting:divisions:"+financeLibrary, `["Treasury"]`))
	out, err := env.departments.Execute(ctx, &ld.Input{Department: financeLibrary})
	require.NoError(t, err)
	assert.Equal(t, []string{"Treasury"}, out.Divisions)
	assert.Equal(t, []string{"Treasury"}, out.DefaultDivisions)
	assert.Equal(t, "Treasury", out.DefaultDivision)
}
