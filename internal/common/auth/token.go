// internal/common/auth/token.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"jobposting-workers/internal/common/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// NewTokenSource returns a cached client-credentials token source for the
// SharePoint app registration. Tokens are refreshed shortly before expiry.
func NewTokenSource(ctx context.Context, cfg config.SharePointConfig) (oauth2.TokenSource, error) {
	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("sharepoint.token_url is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("sharepoint client credentials are not configured")
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       scopesFor(cfg),
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	return oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx)), nil
}

// NewHTTPClient returns an *http.Client that attaches bearer tokens from ts.
// A nil ts yields an unauthenticated client, used against local fakes.
func NewHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	if ts == nil {
		return &http.Client{}
	}
	return oauth2.NewClient(ctx, ts)
}

// scopesFor defaults to the site's ".default" scope, which is what the
// Microsoft identity platform expects for app-only SharePoint access.
func scopesFor(cfg config.SharePointConfig) []string {
	if len(cfg.Scopes) > 0 {
		return cfg.Scopes
	}
	siteURL := cfg.SiteURL
	if i := strings.Index(siteURL, "://"); i >= 0 {
		rest := siteURL[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			siteURL = siteURL[:i+3+j]
		}
	}
	return []string{strings.TrimSuffix(siteURL, "/") + "/.default"}
}
