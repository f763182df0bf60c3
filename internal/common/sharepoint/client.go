// internal/common/sharepoint/client.go
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpclient "jobposting-workers/internal/common/http"
	"jobposting-workers/internal/common/logger"
	"jobposting-workers/internal/common/metrics"
	"jobposting-workers/internal/models"
)

// permissionAddListItems is SP.PermissionKind.addListItems.
const permissionAddListItems = 2

var (
	ErrNotFound     = errors.New("sharepoint: not found")
	ErrAccessDenied = errors.New("sharepoint: access denied")
)

// RequestError is a non-2xx answer from the REST API.
type RequestError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("sharepoint %s failed (status %d): %s", e.Operation, e.StatusCode, truncate(e.Body, 512))
}

// Is maps HTTP status to the package sentinels so callers can use errors.Is.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		if e.StatusCode == http.StatusNotFound {
			return true
		}
		// missing fields and folders surface as 400/500 with a CLR exception name
		return strings.Contains(e.Body, "does not exist") ||
			strings.Contains(e.Body, "System.IO.FileNotFoundException") ||
			strings.Contains(e.Body, "System.IO.DirectoryNotFoundException")
	case ErrAccessDenied:
		// 401 means our own token was rejected, not that the item is hidden
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// Client calls the SharePoint REST API of one site.
type Client struct {
	siteURL    string
	origin     string
	sitePath   string
	httpClient *httpclient.Client
	logger     logger.Logger
}

// NewClient builds a client for siteURL. base carries authentication
// (see auth.NewHTTPClient); timeout bounds every request.
func NewClient(siteURL string, base *http.Client, timeout time.Duration, log logger.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(siteURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid site url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("site url must be absolute: %q", siteURL)
	}

	return &Client{
		siteURL:    u.String(),
		origin:     u.Scheme + "://" + u.Host,
		sitePath:   u.Path,
		httpClient: httpclient.NewClient(base, timeout),
		logger:     log.WithFields(map[string]interface{}{"component": "sharepoint"}),
	}, nil
}

// SiteURL returns the absolute site URL without a trailing slash.
func (c *Client) SiteURL() string {
	return c.siteURL
}

// AbsoluteURL turns a server-relative path into a browser URL.
func (c *Client) AbsoluteURL(serverRelativePath string) string {
	u, err := url.Parse(c.origin)
	if err != nil {
		return c.origin + serverRelativePath
	}
	u.Path = serverRelativePath
	return u.String()
}

// ServerRelativePath converts an absolute URL on this tenant to a
// server-relative path. Paths that are already server-relative pass through.
func (c *Client) ServerRelativePath(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "/") {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid file url %q: %w", rawURL, err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("file url %q has no path", rawURL)
	}
	return u.Path, nil
}

// ==========================
// Lists
// ==========================

// CanAddItems reports whether principal may add items to library. An empty
// principal checks the calling identity.
func (c *Client) CanAddItems(ctx context.Context, library, principal string) (bool, error) {
	endpoint := fmt.Sprintf("lists/getbytitle(%s)/EffectiveBasePermissions", literal(library))
	if principal != "" {
		endpoint = fmt.Sprintf("lists/getbytitle(%s)/getusereffectivepermissions(@u)?@u=%s",
			literal(library), url.QueryEscape(odataString(principal)))
	}

	var perms basePermissions
	if err := c.get(ctx, "permissions", endpoint, &perms); err != nil {
		return false, err
	}
	return perms.has(permissionAddListItems), nil
}

// LibraryRootPath returns the server-relative root folder of library.
func (c *Client) LibraryRootPath(ctx context.Context, library string) (string, error) {
	var out struct {
		ServerRelativeURL string `json:"ServerRelativeUrl"`
	}
	endpoint := fmt.Sprintf("lists/getbytitle(%s)/RootFolder?$select=ServerRelativeUrl", literal(library))
	if err := c.get(ctx, "library-root", endpoint, &out); err != nil {
		return "", err
	}
	return out.ServerRelativeURL, nil
}

func (c *Client) ContentTypes(ctx context.Context, library string) ([]models.ContentType, error) {
	var out struct {
		Value []models.ContentType `json:"value"`
	}
	endpoint := fmt.Sprintf("lists/getbytitle(%s)/ContentTypes?$select=Name,Group,StringId", literal(library))
	if err := c.get(ctx, "content-types", endpoint, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// FieldChoices returns the allowed values of a choice field in list order.
func (c *Client) FieldChoices(ctx context.Context, library, field string) ([]string, error) {
	var out struct {
		Choices []string `json:"Choices"`
	}
	endpoint := fmt.Sprintf("lists/getbytitle(%s)/fields/getbyinternalnameortitle(%s)?$select=Choices",
		literal(library), literal(field))
	if err := c.get(ctx, "field-choices", endpoint, &out); err != nil {
		return nil, err
	}
	return out.Choices, nil
}

// UpdateItemFields merges fields into list item id.
func (c *Client) UpdateItemFields(ctx context.Context, library string, id int, fields map[string]interface{}) error {
	endpoint := fmt.Sprintf("lists/getbytitle(%s)/items(%d)", literal(library), id)
	headers := map[string]string{
		"X-HTTP-Method": "MERGE",
		"IF-MATCH":      "*",
	}
	return c.send(ctx, "update-item", http.MethodPost, endpoint, fields, headers, nil)
}

// ==========================
// Folders and files
// ==========================

func (c *Client) FolderExists(ctx context.Context, path string) (bool, error) {
	var out struct {
		Value bool `json:"value"`
	}
	endpoint := fmt.Sprintf("GetFolderByServerRelativePath(decodedurl=%s)/Exists", literal(path))
	if err := c.get(ctx, "folder-exists", endpoint, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return out.Value, nil
}

// CreateFolder creates the folder at path. overwrite=false makes the call fail
// when the folder already exists on stores that enforce it.
func (c *Client) CreateFolder(ctx context.Context, path string) error {
	endpoint := fmt.Sprintf("folders/addUsingPath(decodedurl=%s,overwrite=false)", literal(path))
	return c.send(ctx, "create-folder", http.MethodPost, endpoint, nil, nil, nil)
}

// FolderItemID returns the list item id backing the folder at path.
func (c *Client) FolderItemID(ctx context.Context, path string) (int, error) {
	var out struct {
		ID int `json:"Id"`
	}
	endpoint := fmt.Sprintf("GetFolderByServerRelativePath(decodedurl=%s)/ListItemAllFields?$select=Id", literal(path))
	if err := c.get(ctx, "folder-item", endpoint, &out); err != nil {
		return 0, err
	}
	if out.ID == 0 {
		return 0, fmt.Errorf("folder %s has no list item", path)
	}
	return out.ID, nil
}

// ListFiles lists files directly under the folder at path.
func (c *Client) ListFiles(ctx context.Context, path string) ([]models.TemplateFile, error) {
	var out struct {
		Value []struct {
			Name              string `json:"Name"`
			ServerRelativeURL string `json:"ServerRelativeUrl"`
		} `json:"value"`
	}
	endpoint := fmt.Sprintf("GetFolderByServerRelativePath(decodedurl=%s)/Files?$select=Name,ServerRelativeUrl", literal(path))
	if err := c.get(ctx, "list-files", endpoint, &out); err != nil {
		return nil, err
	}

	files := make([]models.TemplateFile, 0, len(out.Value))
	for _, f := range out.Value {
		files = append(files, models.TemplateFile{
			FileName:          f.Name,
			ServerRelativeURL: f.ServerRelativeURL,
			FileAbsoluteURL:   c.AbsoluteURL(f.ServerRelativeURL),
		})
	}
	return files, nil
}

// CopyFile copies source (absolute or server-relative) to the server-relative
// destination without overwriting.
func (c *Client) CopyFile(ctx context.Context, source, destination string) error {
	src, err := c.ServerRelativePath(source)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("GetFileByServerRelativePath(decodedurl=%s)/copyToUsingPath(decodedurl=%s,bOverWrite=false)",
		literal(src), literal(destination))
	return c.send(ctx, "copy-file", http.MethodPost, endpoint, nil, nil, nil)
}

// ==========================
// Transport
// ==========================

func (c *Client) get(ctx context.Context, op, endpoint string, out interface{}) error {
	return c.send(ctx, op, http.MethodGet, endpoint, nil, nil, out)
}

func (c *Client) send(ctx context.Context, op, method, endpoint string, body interface{}, headers map[string]string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.siteURL+"/_api/web/"+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SharePointRequestDuration.WithLabelValues(op, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("failed to execute %s request: %w", op, err)
	}
	defer resp.Body.Close()
	metrics.SharePointRequestDuration.WithLabelValues(op, statusClass(resp.StatusCode)).Observe(time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	c.logger.Debug("sharepoint request", map[string]interface{}{
		"operation":  op,
		"method":     method,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Operation: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// basePermissions is SP.BasePermissions. High and Low arrive as strings in
// JSON light responses and as numbers from some proxies.
type basePermissions struct {
	High flexUint64 `json:"High"`
	Low  flexUint64 `json:"Low"`
}

func (p basePermissions) has(kind uint) bool {
	if kind == 0 {
		return true
	}
	bit := kind - 1
	if bit < 32 {
		return uint64(p.Low)&(1<<bit) != 0
	}
	return uint64(p.High)&(1<<(bit-32)) != 0
}

type flexUint64 uint64

func (f *flexUint64) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid permission mask %q: %w", s, err)
	}
	*f = flexUint64(v)
	return nil
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
