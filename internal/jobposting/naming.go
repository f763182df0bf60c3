package jobposting

import (
	"net/url"
	"strings"
	"time"
)

const titleDateLayout = "2006-01-02"

// FormatTitle builds "{jobTitle} - {division} - {YYYY-MM-DD}" using the UTC
// date of now. Existence checks compare this string byte for byte.
func FormatTitle(jobTitle, division string, now time.Time) string {
	return jobTitle + " - " + division + " - " + now.UTC().Format(titleDateLayout)
}

// DocumentSetPath is root + "/" + title.
func DocumentSetPath(root, title string) string {
	return root + "/" + title
}

// DocumentSetURL is the browser link to a document set: the absolute library
// root followed by the percent-encoded title.
func DocumentSetURL(absoluteRoot, title string) string {
	return strings.TrimSuffix(absoluteRoot, "/") + "/" + url.PathEscape(title)
}

// ExtraTemplateSetName strips suffix from the end of a department library
// name, e.g. "Finance - Job Files" -> "Finance".
func ExtraTemplateSetName(department, suffix string) string {
	return strings.TrimSuffix(department, suffix)
}
