// Package metadata looks up game metadata in the RAWG catalogue and turns it
// into drafts for the collection. Lookups are best effort: failures produce
// empty results or nil details, never errors.
package metadata

import (
	"context"

	"github.com/and161185/gamevault/internal/model"
)

// MinQueryLen is the shortest query that reaches the remote API.
const MinQueryLen = 3

// Result is one search hit.
type Result struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	CoverURL    string   `json:"cover_url"`
	ReleaseDate string   `json:"release_date,omitempty"` // YYYY-MM-DD as reported
	ReleaseYear int      `json:"release_year,omitempty"` // 0 when unknown
	Platforms   []string `json:"platforms"`
	Rating      float64  `json:"rating"`
	Slug        string   `json:"slug"`
}

// Details is a prefilled draft for one catalogue entry.
type Details struct {
	ID                 string          `json:"id"`
	Draft              model.GameDraft `json:"draft"`
	AvailablePlatforms []string        `json:"available_platforms"`
}

// Lookup is the metadata collaborator.
type Lookup interface {
	// Search returns up to a handful of hits; empty on short queries or any failure.
	Search(ctx context.Context, query string) []Result
	// GetDetails returns a prefilled draft, or nil on any failure.
	GetDetails(ctx context.Context, id int) *Details
}
