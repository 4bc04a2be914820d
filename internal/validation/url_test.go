package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"empty", "", false},
		{"uploaded file", "/uploads/01J8ZK3.jpg", false},
		{"external https", "https://cdn.example.com/poster.jpg", false},
		{"external http", "http://example.com/poster.jpg", false},
		{"traversal in upload path", "/uploads/../etc/passwd", true},
		{"relative path outside uploads", "images/poster.jpg", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"missing host", "https:///poster.jpg", true},
		{"whitespace only", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ImageRef(tt.ref, "image")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestURLErrorNamesField(t *testing.T) {
	err := AbsoluteURL("ftp://example.com/file", "image")
	require.Error(t, err)

	var urlErr URLError
	require.ErrorAs(t, err, &urlErr)
	assert.Equal(t, "image", urlErr.Field)
	assert.Contains(t, urlErr.Error(), "ftp://example.com/file")
}
