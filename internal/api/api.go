// Package api implements the REST boundary over the collection and
// metadata services. Handlers map 1:1 onto service methods; all domain
// rules live below this layer.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reelkeep/reelkeep/internal/collection"
	"github.com/reelkeep/reelkeep/internal/metadata"
)

// Server is the REST API server.
type Server struct {
	collections *collection.Store
	movies      *metadata.Service
	log         *slog.Logger
}

// New creates a new API server.
func New(collections *collection.Store, movies *metadata.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{collections: collections, movies: movies, log: log}
}

// Routes builds the router. User-scoped routes require the trusted
// X-User-ID header set by the fronting auth proxy.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Route("/library", func(r chi.Router) {
				r.Get("/", s.listLibrary)
				r.Post("/", s.addToLibrary)
				r.Delete("/", s.resetLibrary)
				r.Put("/{tmdbID}", s.updateRating)
				r.Delete("/{tmdbID}", s.removeFromLibrary)
			})

			r.Route("/watchlist", func(r chi.Router) {
				r.Get("/", s.listWatchlist)
				r.Post("/", s.addToWatchlist)
				r.Get("/{tmdbID}", s.checkWatchlist)
				r.Delete("/{tmdbID}", s.removeFromWatchlist)
			})

			r.Route("/showcase", func(r chi.Router) {
				r.Get("/", s.getShowcase)
				r.Put("/{position}", s.setShowcasePosition)
				r.Delete("/{position}", s.clearShowcasePosition)
			})
		})

		r.Route("/movies", func(r chi.Router) {
			r.Post("/", s.upsertMovie)
			r.Post("/resolve", s.resolveMovies)
			r.Get("/search", s.searchMovies)
			r.Get("/{tmdbID}", s.getMovie)
		})

		r.Post("/cache/prune", s.pruneCache)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeDomainError maps service sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collection.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "INVALID_RATING", err.Error())
	case errors.Is(err, collection.ErrInvalidPosition):
		writeError(w, http.StatusBadRequest, "INVALID_POSITION", err.Error())
	case errors.Is(err, collection.ErrNotInLibrary):
		writeError(w, http.StatusNotFound, "NOT_IN_LIBRARY", err.Error())
	case errors.Is(err, collection.ErrNotFound), errors.Is(err, metadata.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, collection.ErrAlreadyInWatchlist), errors.Is(err, collection.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, collection.ErrConstraint):
		writeError(w, http.StatusBadRequest, "CONSTRAINT", err.Error())
	case errors.Is(err, metadata.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Library

func (s *Server) listLibrary(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	entries, total, err := s.collections.GetLibrary(userID(r), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := listLibraryResponse{
		Items:  make([]libraryEntryResponse, len(entries)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i, e := range entries {
		resp.Items[i] = libraryEntryToResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) addToLibrary(w http.ResponseWriter, r *http.Request) {
	var req addLibraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.TMDBID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "tmdb_id must be positive")
		return
	}

	entry, err := s.collections.AddToLibrary(userID(r), req.TMDBID, req.Rating)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, libraryEntryToResponse(entry))
}

func (s *Server) updateRating(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := pathID(r, "tmdbID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid tmdb id")
		return
	}

	var req updateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	entry, err := s.collections.UpdateRating(userID(r), tmdbID, req.Rating)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, libraryEntryToResponse(entry))
}

func (s *Server) removeFromLibrary(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := pathID(r, "tmdbID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid tmdb id")
		return
	}

	if err := s.collections.RemoveFromLibrary(userID(r), tmdbID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resetLibrary(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.collections.ResetLibrary(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: deleted})
}

// Watchlist

func (s *Server) listWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.collections.GetWatchlist(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]watchlistEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = watchlistEntryToResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req addWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.TMDBID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "tmdb_id must be positive")
		return
	}

	entry, err := s.collections.AddToWatchlist(userID(r), req.TMDBID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, watchlistEntryToResponse(entry))
}

func (s *Server) checkWatchlist(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := pathID(r, "tmdbID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid tmdb id")
		return
	}

	in, err := s.collections.InWatchlist(userID(r), tmdbID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, watchlistCheckResponse{TMDBID: tmdbID, InWatchlist: in})
}

func (s *Server) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := pathID(r, "tmdbID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid tmdb id")
		return
	}

	if err := s.collections.RemoveFromWatchlist(userID(r), tmdbID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Showcase

func (s *Server) getShowcase(w http.ResponseWriter, r *http.Request) {
	slots, err := s.collections.GetShowcase(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]showcaseSlotResponse, len(slots))
	for i, slot := range slots {
		resp[i] = showcaseSlotToResponse(slot)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) setShowcasePosition(w http.ResponseWriter, r *http.Request) {
	position, err := pathID(r, "position")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_POSITION", "invalid position")
		return
	}

	var req setShowcaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	if err := s.collections.SetShowcasePosition(userID(r), int(position), req.TMDBID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearShowcasePosition(w http.ResponseWriter, r *http.Request) {
	position, err := pathID(r, "position")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_POSITION", "invalid position")
		return
	}

	if err := s.collections.ClearShowcasePosition(userID(r), int(position)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Movies

func (s *Server) getMovie(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := pathID(r, "tmdbID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid tmdb id")
		return
	}

	movie, err := s.movies.Lookup(r.Context(), tmdbID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movieToResponse(movie))
}

func (s *Server) resolveMovies(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	resolved, err := s.movies.Resolve(r.Context(), req.TMDBIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]resolvedResponse, len(resolved))
	for i, res := range resolved {
		resp[i] = resolvedToResponse(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) upsertMovie(w http.ResponseWriter, r *http.Request) {
	var req upsertMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.TMDBID <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "tmdb_id must be positive")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "INVALID_TITLE", "title is required")
		return
	}

	movie := &metadata.Movie{
		TMDBID:     req.TMDBID,
		Title:      req.Title,
		Year:       req.Year,
		Director:   req.Director,
		DirectorID: req.DirectorID,
		Genres:     req.Genres,
		PosterPath: req.PosterPath,
		Adult:      req.Adult,
	}
	if err := s.movies.Upsert(r.Context(), movie); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movieToResponse(movie))
}

func (s *Server) searchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "q parameter is required")
		return
	}
	limit := queryInt(r, "limit", 0)

	movies, err := s.movies.Search(r.Context(), query, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]*movieResponse, len(movies))
	for i, m := range movies {
		resp[i] = movieToResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) pruneCache(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.movies.PurgeStale(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: deleted})
}
