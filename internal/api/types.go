package api

import (
	"time"

	"github.com/reelkeep/reelkeep/internal/collection"
	"github.com/reelkeep/reelkeep/internal/metadata"
)

// Requests

type addLibraryRequest struct {
	TMDBID int64 `json:"tmdb_id"`
	Rating int   `json:"rating"`
}

type updateRatingRequest struct {
	Rating int `json:"rating"`
}

type addWatchlistRequest struct {
	TMDBID int64 `json:"tmdb_id"`
}

type setShowcaseRequest struct {
	TMDBID int64 `json:"tmdb_id"`
}

type resolveRequest struct {
	TMDBIDs []int64 `json:"tmdb_ids"`
}

type upsertMovieRequest struct {
	TMDBID     int64    `json:"tmdb_id"`
	Title      string   `json:"title"`
	Year       *int     `json:"year,omitempty"`
	Director   *string  `json:"director,omitempty"`
	DirectorID *int64   `json:"director_id,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	PosterPath *string  `json:"poster_path,omitempty"`
	Adult      bool     `json:"adult"`
}

// Responses

type libraryEntryResponse struct {
	TMDBID    int64     `json:"tmdb_id"`
	Rating    int       `json:"rating"`
	WatchedAt time.Time `json:"watched_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listLibraryResponse struct {
	Items  []libraryEntryResponse `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

type watchlistEntryResponse struct {
	TMDBID  int64     `json:"tmdb_id"`
	AddedAt time.Time `json:"added_at"`
}

type watchlistCheckResponse struct {
	TMDBID      int64 `json:"tmdb_id"`
	InWatchlist bool  `json:"in_watchlist"`
}

type showcaseSlotResponse struct {
	Position  int       `json:"position"`
	TMDBID    int64     `json:"tmdb_id"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

type movieResponse struct {
	TMDBID      int64     `json:"tmdb_id"`
	Title       string    `json:"title"`
	Year        *int      `json:"year,omitempty"`
	Director    *string   `json:"director,omitempty"`
	DirectorID  *int64    `json:"director_id,omitempty"`
	Genres      []string  `json:"genres"`
	PosterPath  *string   `json:"poster_path,omitempty"`
	Adult       bool      `json:"adult"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

type resolvedResponse struct {
	TMDBID      int64          `json:"tmdb_id"`
	Placeholder bool           `json:"placeholder"`
	Movie       *movieResponse `json:"movie,omitempty"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func libraryEntryToResponse(e *collection.LibraryEntry) libraryEntryResponse {
	return libraryEntryResponse{
		TMDBID:    e.TMDBID,
		Rating:    e.Rating,
		WatchedAt: e.WatchedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func watchlistEntryToResponse(e *collection.WatchlistEntry) watchlistEntryResponse {
	return watchlistEntryResponse{TMDBID: e.TMDBID, AddedAt: e.AddedAt}
}

func showcaseSlotToResponse(s *collection.ShowcaseSlot) showcaseSlotResponse {
	return showcaseSlotResponse{
		Position:  s.Position,
		TMDBID:    s.TMDBID,
		Rating:    s.Rating,
		UpdatedAt: s.UpdatedAt,
	}
}

func movieToResponse(m *metadata.Movie) *movieResponse {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return &movieResponse{
		TMDBID:      m.TMDBID,
		Title:       m.Title,
		Year:        m.Year,
		Director:    m.Director,
		DirectorID:  m.DirectorID,
		Genres:      genres,
		PosterPath:  m.PosterPath,
		Adult:       m.Adult,
		RefreshedAt: m.RefreshedAt,
	}
}

func resolvedToResponse(r metadata.Resolved) resolvedResponse {
	resp := resolvedResponse{TMDBID: r.TMDBID, Placeholder: r.Placeholder}
	if r.Movie != nil {
		resp.Movie = movieToResponse(r.Movie)
	}
	return resp
}
