// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

const odataAccept = "application/json;odata=nometadata"

type Client struct {
	httpClient *http.Client
}

// NewClient wraps base (nil means a fresh client) with the given timeout and
// OData JSON defaults on every request.
func NewClient(base *http.Client, timeout time.Duration) *Client {
	if base == nil {
		base = &http.Client{}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &odataTransport{next: transport},
			Jar:       base.Jar,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req.WithContext(ctx))
}

type odataTransport struct {
	next http.RoundTripper
}

func (t *odataTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept") == "" || (req.Body != nil && req.Header.Get("Content-Type") == "") {
		req = req.Clone(req.Context())
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", odataAccept)
		}
		if req.Body != nil && req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", odataAccept)
		}
	}
	return t.next.RoundTrip(req)
}
