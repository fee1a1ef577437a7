// Package collection manages per-user movie collections: the rated
// library, the watchlist, and the four-slot profile showcase.
package collection

import (
	"time"
)

// Showcase positions are fixed display slots on a user's profile.
const (
	MinPosition = 1
	MaxPosition = 4
)

// LibraryEntry is a movie a user has rated. One entry per (user, movie).
type LibraryEntry struct {
	ID        int64
	UserID    int64
	TMDBID    int64
	Rating    int // 0-10 inclusive
	WatchedAt time.Time
	UpdatedAt time.Time
}

// WatchlistEntry is a movie a user intends to watch. Independent of the
// library: a movie may be rated, watchlisted, both, or neither.
type WatchlistEntry struct {
	UserID  int64
	TMDBID  int64
	AddedAt time.Time
}

// ShowcaseSlot is one of the four profile display positions. It references
// a library entry, so only rated movies can be showcased.
type ShowcaseSlot struct {
	UserID    int64
	Position  int
	TMDBID    int64
	Rating    int
	UpdatedAt time.Time
}

// ValidRating reports whether r is an acceptable rating.
func ValidRating(r int) bool {
	return r >= 0 && r <= 10
}

// ValidPosition reports whether p is an acceptable showcase position.
func ValidPosition(p int) bool {
	return p >= MinPosition && p <= MaxPosition
}
