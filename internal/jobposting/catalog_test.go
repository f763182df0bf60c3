package jobposting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"jobposting-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	status int
	req    *http.Request
	body   []byte
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.req = req
	if req.Body != nil {
		rt.body, _ = io.ReadAll(req.Body)
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: rt.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(`{"result":"created"}`)),
	}, nil
}

func newTestCatalog(t *testing.T, status int) (*Catalog, *recordingTransport) {
	t.Helper()
	rt := &recordingTransport{status: status}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Transport: rt,
	})
	require.NoError(t, err)
	return NewCatalog(es, "job-postings"), rt
}

func TestCatalog_Index(t *testing.T) {
	catalog, rt := newTestCatalog(t, http.StatusCreated)

	err := catalog.Index(context.Background(), "req-1", &models.DocumentSet{
		Title:          "Clerk - Payroll - 2024-01-05",
		Department:     "Finance - Job Files",
		Division:       "Payroll",
		Path:           "/sites/hr/Finance/Clerk - Payroll - 2024-01-05",
		ContentTypeID:  "0x0120D52000AB",
		ApprovalStatus: "New",
		CopiedFiles:    []string{"Job Ad.docx"},
		CreatedAt:      time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NotNil(t, rt.req)
	assert.Equal(t, http.MethodPut, rt.req.Method)
	assert.Equal(t, "/job-postings/_doc/req-1", rt.req.URL.Path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(rt.body, &doc))
	assert.Equal(t, "req-1", doc["requestId"])
	assert.Equal(t, "Payroll", doc["division"])
	assert.Equal(t, "2024-01-05T09:30:00Z", doc["createdAt"])
}

func TestCatalog_IndexErrorResponse(t *testing.T) {
	catalog, _ := newTestCatalog(t, http.StatusBadRequest)

	err := catalog.Index(context.Background(), "req-1", &models.DocumentSet{})
	assert.ErrorContains(t, err, "index document set")
}
