// Package metadata maintains the staleness-bounded local cache of
// externally-sourced movie records and the reconciliation flow that merges
// cache hits with freshly fetched misses.
package metadata

import (
	"time"
)

// DefaultMaxAge is the staleness window: records refreshed within it are
// FRESH, older ones are STALE. Stale records are still served; staleness
// only decides whether a background refresh is scheduled.
const DefaultMaxAge = 7 * 24 * time.Hour

// Movie is the locally cached snapshot of a movie's descriptive fields.
// The external catalog provider owns this data; at most one record exists
// per TMDB id.
type Movie struct {
	TMDBID      int64
	Title       string
	Year        *int
	Director    *string
	DirectorID  *int64
	Genres      []string
	PosterPath  *string
	Adult       bool
	RefreshedAt time.Time
}

// FreshAt reports whether the record is within the staleness window at the
// given instant.
func (m *Movie) FreshAt(now time.Time, maxAge time.Duration) bool {
	return now.Sub(m.RefreshedAt) < maxAge
}
