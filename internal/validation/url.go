// Package validation checks externally supplied references before they are
// stored. Event images may be either an absolute http(s) URL or a path under
// the server's own /uploads/ directory.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

type URLError struct {
	Field   string
	Message string
	URL     string
}

func (e URLError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ImageRef validates an event image reference. Empty is allowed; events
// without an image fall back to a placeholder on the frontend.
func ImageRef(ref, field string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "/uploads/") {
		if strings.Contains(ref, "..") {
			return URLError{Field: field, Message: "upload path must not traverse directories", URL: ref}
		}
		return nil
	}
	return AbsoluteURL(ref, field)
}

// AbsoluteURL validates that a string is a well formed http or https URL
// with a host.
func AbsoluteURL(raw, field string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return URLError{Field: field, Message: "invalid URL format", URL: raw}
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return URLError{Field: field, Message: "URL scheme must be http or https", URL: raw}
	}
	if parsed.Host == "" {
		return URLError{Field: field, Message: "URL must include a host", URL: raw}
	}
	return nil
}
