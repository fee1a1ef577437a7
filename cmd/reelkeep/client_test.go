package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Library(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/library").
		ExpectGET().
		ExpectUser("7").
		RespondJSON(ListLibraryResponse{
			Items: []LibraryEntryResponse{
				{TMDBID: 550, Rating: 9, WatchedAt: time.Now()},
				{TMDBID: 603, Rating: 8, WatchedAt: time.Now()},
			},
			Total: 2,
			Limit: 50,
		}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 7)
	resp, err := client.Library(50, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, int64(550), resp.Items[0].TMDBID)
	assert.Equal(t, 9, resp.Items[0].Rating)
}

func TestClient_AddToLibrary(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/library").
		ExpectPOST().
		RespondJSON(LibraryEntryResponse{TMDBID: 550, Rating: 9}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	entry, err := client.AddToLibrary(550, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(550), entry.TMDBID)
	assert.Equal(t, 9, entry.Rating)
}

func TestClient_AddToLibrary_InvalidRating(t *testing.T) {
	srv := newMockServer(t).
		RespondError(http.StatusBadRequest, `{"error":"rating must be between 0 and 10","code":"INVALID_RATING"}`).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	_, err := client.AddToLibrary(550, 11)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "INVALID_RATING")
}

func TestClient_UpdateRating(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/library/550").
		ExpectPUT().
		RespondJSON(LibraryEntryResponse{TMDBID: 550, Rating: 10}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	entry, err := client.UpdateRating(550, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Rating)
}

func TestClient_RemoveFromLibrary(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/library/550").
		ExpectDELETE().
		RespondStatus(http.StatusNoContent).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	require.NoError(t, client.RemoveFromLibrary(550))
}

func TestClient_ResetLibrary(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/library").
		ExpectDELETE().
		RespondJSON(DeletedResponse{Deleted: 12}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	resp, err := client.ResetLibrary()
	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.Deleted)
}

func TestClient_Watchlist(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/watchlist").
		ExpectGET().
		RespondJSON([]WatchlistEntryResponse{{TMDBID: 603}}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	entries, err := client.Watchlist()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(603), entries[0].TMDBID)
}

func TestClient_AddToWatchlist_Duplicate(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/watchlist").
		ExpectPOST().
		RespondError(http.StatusConflict, `{"error":"movie already in watchlist","code":"DUPLICATE"}`).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	_, err := client.AddToWatchlist(603)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestClient_CheckWatchlist(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/watchlist/603").
		ExpectGET().
		RespondJSON(WatchlistCheckResponse{TMDBID: 603, InWatchlist: true}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	resp, err := client.CheckWatchlist(603)
	require.NoError(t, err)
	assert.True(t, resp.InWatchlist)
}

func TestClient_SetShowcase(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/showcase/2").
		ExpectPUT().
		RespondStatus(http.StatusNoContent).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	require.NoError(t, client.SetShowcase(2, 550))
}

func TestClient_Showcase(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/showcase").
		ExpectGET().
		RespondJSON([]ShowcaseSlotResponse{
			{Position: 1, TMDBID: 550, Rating: 9},
			{Position: 3, TMDBID: 603, Rating: 8},
		}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	slots, err := client.Showcase()
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 1, slots[0].Position)
	assert.Equal(t, 3, slots[1].Position)
}

func TestClient_Movie(t *testing.T) {
	year := 1999
	srv := newMockServer(t).
		ExpectPath("/api/v1/movies/550").
		ExpectGET().
		RespondJSON(MovieResponse{TMDBID: 550, Title: "Fight Club", Year: &year}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	movie, err := client.Movie(550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", movie.Title)
	require.NotNil(t, movie.Year)
	assert.Equal(t, 1999, *movie.Year)
}

func TestClient_Resolve(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/movies/resolve").
		ExpectPOST().
		RespondJSON([]ResolvedResponse{
			{TMDBID: 550, Movie: &MovieResponse{TMDBID: 550, Title: "Fight Club"}},
			{TMDBID: 999, Placeholder: true},
		}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	resolved, err := client.Resolve([]int64{550, 999})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.False(t, resolved[0].Placeholder)
	assert.True(t, resolved[1].Placeholder)
}

func TestClient_PruneCache(t *testing.T) {
	srv := newMockServer(t).
		ExpectPath("/api/v1/cache/prune").
		ExpectPOST().
		RespondJSON(DeletedResponse{Deleted: 3}).
		Build()
	defer srv.Close()

	client := NewClient(srv.URL, 1)
	resp, err := client.PruneCache()
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Deleted)
}

func TestClient_ServerDown(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 1)
	_, err := client.Library(50, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}
