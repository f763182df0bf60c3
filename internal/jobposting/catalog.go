package jobposting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"jobposting-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Catalog indexes provisioned document sets for search.
type Catalog struct {
	es    *elasticsearch.Client
	index string
}

func NewCatalog(es *elasticsearch.Client, index string) *Catalog {
	return &Catalog{es: es, index: index}
}

type catalogDocument struct {
	RequestID        string   `json:"requestId"`
	Title            string   `json:"title"`
	Department       string   `json:"department"`
	Division         string   `json:"division"`
	Path             string   `json:"path"`
	URL              string   `json:"url"`
	ContentTypeID    string   `json:"contentTypeId"`
	PartTimePosition bool     `json:"partTimePosition"`
	ApprovalStatus   string   `json:"approvalStatus"`
	CopiedFiles      []string `json:"copiedFiles"`
	CreatedAt        string   `json:"createdAt"`
}

// Index upserts ds under requestID.
func (c *Catalog) Index(ctx context.Context, requestID string, ds *models.DocumentSet) error {
	doc := catalogDocument{
		RequestID:        requestID,
		Title:            ds.Title,
		Department:       ds.Department,
		Division:         ds.Division,
		Path:             ds.Path,
		URL:              ds.URL,
		ContentTypeID:    ds.ContentTypeID,
		PartTimePosition: ds.PartTimePosition,
		ApprovalStatus:   ds.ApprovalStatus,
		CopiedFiles:      ds.CopiedFiles,
		CreatedAt:        ds.CreatedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal catalog document: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(body),
		c.es.Index.WithDocumentID(requestID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index document set: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index document set: %s: %s", res.Status(), string(msg))
	}
	return nil
}
