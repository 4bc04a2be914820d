// Package events provides the content-listing domain: collaborator-owned
// events with public, verification-gated read paths.
package events

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("event not found")

// PageSize is the fixed page length for paginated listings.
const PageSize = 10

type Event struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Image         string     `json:"image,omitempty"`
	Location      string     `json:"location"`
	Date          *time.Time `json:"date,omitempty"`
	Category      string     `json:"category"`
	Accessibility string     `json:"accessibility,omitempty"`
	GroupSize     int        `json:"group_size,omitempty"`
	Ages          string     `json:"ages,omitempty"`
	Modality      string     `json:"modality,omitempty"`
	Price         int        `json:"price"`
	Content       string     `json:"content,omitempty"`
	Slug          string     `json:"slug"`
	Verified      bool       `json:"verified"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Filters struct {
	// Name filters by case-insensitive substring match on the event name.
	Name string
	// City filters by case-insensitive substring match on the location.
	City string
	// Category filters by case-insensitive substring match.
	Category string
	// OwnerID restricts to events owned by one account.
	OwnerID *uuid.UUID
	// VerifiedOnly hides events still pending review. All public read
	// paths set it.
	VerifiedOnly bool
}

type Pagination struct {
	Page int
}

func (p Pagination) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return PageSize * (page - 1)
}

// FormatCategory turns a URL category segment into its display form:
// hyphens become spaces, and the accent-stripped "educacion" maps back to
// its canonical spelling.
func FormatCategory(segment string) string {
	if segment == "educacion" {
		return "Educación"
	}
	return strings.ReplaceAll(segment, "-", " ")
}

// Slugify builds the canonical "city/category/name" slug: accents stripped,
// non-alphanumerics dropped, whitespace collapsed to hyphens, lowercased.
func Slugify(location, category, name string) string {
	return slugSegment(location) + "/" + slugSegment(category) + "/" + slugSegment(name)
}

func slugSegment(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		r = stripAccent(r)
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		case unicode.IsSpace(r) && !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func stripAccent(r rune) rune {
	switch r {
	case 'á', 'à', 'ä', 'â', 'Á', 'À', 'Ä', 'Â':
		return 'a'
	case 'é', 'è', 'ë', 'ê', 'É', 'È', 'Ë', 'Ê':
		return 'e'
	case 'í', 'ì', 'ï', 'î', 'Í', 'Ì', 'Ï', 'Î':
		return 'i'
	case 'ó', 'ò', 'ö', 'ô', 'Ó', 'Ò', 'Ö', 'Ô':
		return 'o'
	case 'ú', 'ù', 'ü', 'û', 'Ú', 'Ù', 'Ü', 'Û':
		return 'u'
	case 'ñ', 'Ñ':
		return 'n'
	}
	return r
}
