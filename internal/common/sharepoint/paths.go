// internal/common/sharepoint/paths.go
package sharepoint

import (
	"net/url"
	"strings"
)

// odataString quotes s as an OData string literal.
func odataString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// literal quotes s and escapes it for use inside a URL path. Slashes are
// kept so server-relative paths stay readable in logs and proxies.
func literal(s string) string {
	return strings.ReplaceAll(url.PathEscape(odataString(s)), "%2F", "/")
}

// JoinPath joins server-relative path segments with single slashes.
func JoinPath(root string, segments ...string) string {
	out := strings.TrimSuffix(root, "/")
	for _, s := range segments {
		out += "/" + strings.Trim(s, "/")
	}
	return out
}
