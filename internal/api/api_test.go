package api

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/reelkeep/reelkeep/internal/collection"
	"github.com/reelkeep/reelkeep/internal/metadata"
	"github.com/reelkeep/reelkeep/internal/migrations"
)

func setupTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err, "enable foreign keys")
	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err, "apply schema")

	movies := metadata.NewService(metadata.NewCache(db), nil, slog.New(slog.DiscardHandler))
	srv := New(collection.NewStore(db), movies, slog.New(slog.DiscardHandler))
	return srv, srv.Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return doRequestAs(t, h, method, path, body, "1")
}

func doRequestAs(t *testing.T, h http.Handler, method, path, body, user string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequestAs(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "request id header")
}

func TestRequireUser(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequestAs(t, h, http.MethodGet, "/api/v1/library", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing header")

	w = doRequestAs(t, h, http.MethodGet, "/api/v1/library", "", "abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "non-numeric header")

	w = doRequestAs(t, h, http.MethodGet, "/api/v1/library", "", "0")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "non-positive id")
}

func TestLibraryFlow(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/library", `{"tmdb_id":550,"rating":9}`)
	require.Equal(t, http.StatusCreated, w.Code, "response body: %s", w.Body.String())

	var entry libraryEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, int64(550), entry.TMDBID)
	assert.Equal(t, 9, entry.Rating)

	// Re-adding updates the rating, single entry.
	w = doRequest(t, h, http.MethodPost, "/api/v1/library", `{"tmdb_id":550,"rating":7}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/v1/library", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list listLibraryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 7, list.Items[0].Rating)

	w = doRequest(t, h, http.MethodPut, "/api/v1/library/550", `{"rating":10}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, 10, entry.Rating)

	w = doRequest(t, h, http.MethodDelete, "/api/v1/library/550", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, h, http.MethodDelete, "/api/v1/library/550", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "second remove")
}

func TestAddToLibrary_InvalidRating(t *testing.T) {
	_, h := setupTestServer(t)

	for _, body := range []string{
		`{"tmdb_id":550,"rating":11}`,
		`{"tmdb_id":550,"rating":-1}`,
	} {
		w := doRequest(t, h, http.MethodPost, "/api/v1/library", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}

	w := doRequest(t, h, http.MethodPost, "/api/v1/library", `{"rating":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing tmdb_id")
}

func TestUpdateRating_NotInLibrary(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, http.MethodPut, "/api/v1/library/999", `{"rating":5}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetLibrary(t *testing.T) {
	_, h := setupTestServer(t)

	for _, body := range []string{
		`{"tmdb_id":550,"rating":9}`,
		`{"tmdb_id":551,"rating":6}`,
	} {
		w := doRequest(t, h, http.MethodPost, "/api/v1/library", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, h, http.MethodDelete, "/api/v1/library", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp deletedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Deleted)

	w = doRequest(t, h, http.MethodGet, "/api/v1/library", "")
	var list listLibraryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Items)
}

func TestLibrary_UserIsolation(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequestAs(t, h, http.MethodPost, "/api/v1/library", `{"tmdb_id":550,"rating":9}`, "1")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequestAs(t, h, http.MethodGet, "/api/v1/library", "", "2")
	require.Equal(t, http.StatusOK, w.Code)

	var list listLibraryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Items, "user 2 sees user 1's library")
}

func TestWatchlistFlow(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/watchlist", `{"tmdb_id":603}`)
	require.Equal(t, http.StatusCreated, w.Code, "response body: %s", w.Body.String())

	w = doRequest(t, h, http.MethodPost, "/api/v1/watchlist", `{"tmdb_id":603}`)
	assert.Equal(t, http.StatusConflict, w.Code, "duplicate add")

	w = doRequest(t, h, http.MethodGet, "/api/v1/watchlist/603", "")
	require.Equal(t, http.StatusOK, w.Code)
	var check watchlistCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &check))
	assert.True(t, check.InWatchlist)

	w = doRequest(t, h, http.MethodGet, "/api/v1/watchlist", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []watchlistEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	// Removal is idempotent.
	w = doRequest(t, h, http.MethodDelete, "/api/v1/watchlist/603", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(t, h, http.MethodDelete, "/api/v1/watchlist/603", "")
	assert.Equal(t, http.StatusNoContent, w.Code, "second remove")

	w = doRequest(t, h, http.MethodGet, "/api/v1/watchlist/603", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &check))
	assert.False(t, check.InWatchlist)
}

func TestShowcaseFlow(t *testing.T) {
	_, h := setupTestServer(t)

	for _, body := range []string{
		`{"tmdb_id":550,"rating":9}`,
		`{"tmdb_id":551,"rating":6}`,
	} {
		w := doRequest(t, h, http.MethodPost, "/api/v1/library", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, h, http.MethodPut, "/api/v1/showcase/1", `{"tmdb_id":550}`)
	assert.Equal(t, http.StatusNoContent, w.Code, "response body: %s", w.Body.String())

	w = doRequest(t, h, http.MethodPut, "/api/v1/showcase/2", `{"tmdb_id":551}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Moving a movie clears its old slot.
	w = doRequest(t, h, http.MethodPut, "/api/v1/showcase/3", `{"tmdb_id":550}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/v1/showcase", "")
	require.Equal(t, http.StatusOK, w.Code)
	var slots []showcaseSlotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	require.Len(t, slots, 2)
	assert.Equal(t, 2, slots[0].Position)
	assert.Equal(t, int64(551), slots[0].TMDBID)
	assert.Equal(t, 3, slots[1].Position)
	assert.Equal(t, int64(550), slots[1].TMDBID)

	w = doRequest(t, h, http.MethodDelete, "/api/v1/showcase/3", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(t, h, http.MethodDelete, "/api/v1/showcase/3", "")
	assert.Equal(t, http.StatusNoContent, w.Code, "clear is idempotent")
}

func TestSetShowcase_Errors(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, http.MethodPut, "/api/v1/showcase/1", `{"tmdb_id":550}`)
	assert.Equal(t, http.StatusNotFound, w.Code, "unrated movie")

	w = doRequest(t, h, http.MethodPut, "/api/v1/showcase/5", `{"tmdb_id":550}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "position out of range")

	w = doRequest(t, h, http.MethodDelete, "/api/v1/showcase/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "clear out of range")
}

func TestMovieUpsertAndGet(t *testing.T) {
	_, h := setupTestServer(t)

	body := `{"tmdb_id":550,"title":"Fight Club","year":1999,"director":"David Fincher","genres":["Drama"]}`
	w := doRequest(t, h, http.MethodPost, "/api/v1/movies", body)
	require.Equal(t, http.StatusOK, w.Code, "response body: %s", w.Body.String())

	w = doRequest(t, h, http.MethodGet, "/api/v1/movies/550", "")
	require.Equal(t, http.StatusOK, w.Code)

	var movie movieResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movie))
	assert.Equal(t, "Fight Club", movie.Title)
	require.NotNil(t, movie.Year)
	assert.Equal(t, 1999, *movie.Year)
	assert.False(t, movie.RefreshedAt.IsZero())

	w = doRequest(t, h, http.MethodGet, "/api/v1/movies/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMovieUpsert_Invalid(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/movies", `{"title":"No ID"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing tmdb_id")

	w = doRequest(t, h, http.MethodPost, "/api/v1/movies", `{"tmdb_id":550}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing title")
}

func TestResolveMovies(t *testing.T) {
	srv, h := setupTestServer(t)
	t.Cleanup(srv.movies.Drain)

	w := doRequest(t, h, http.MethodPost, "/api/v1/movies", `{"tmdb_id":550,"title":"Fight Club"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// No gateway configured: the uncached id degrades to a placeholder.
	w = doRequest(t, h, http.MethodPost, "/api/v1/movies/resolve", `{"tmdb_ids":[550,999]}`)
	require.Equal(t, http.StatusOK, w.Code, "response body: %s", w.Body.String())

	var resolved []resolvedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	require.Len(t, resolved, 2)
	assert.False(t, resolved[0].Placeholder)
	require.NotNil(t, resolved[0].Movie)
	assert.Equal(t, "Fight Club", resolved[0].Movie.Title)
	assert.True(t, resolved[1].Placeholder)
	assert.Nil(t, resolved[1].Movie)
}

func TestSearchMovies(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/movies", `{"tmdb_id":550,"title":"Fight Club"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/v1/movies/search?q=fight+club", "")
	require.Equal(t, http.StatusOK, w.Code)

	var movies []movieResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Fight Club", movies[0].Title)

	w = doRequest(t, h, http.MethodGet, "/api/v1/movies/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing query")
}

func TestPruneCache(t *testing.T) {
	_, h := setupTestServer(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/cache/prune", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp deletedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Deleted, "fresh cache has nothing to prune")
}
