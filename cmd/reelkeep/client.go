package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client wraps HTTP calls to the reelkeep server.
type Client struct {
	baseURL    string
	userID     int64
	httpClient *http.Client
}

// NewClient creates a new reelkeep API client acting as the given user.
func NewClient(serverURL string, userID int64) *Client {
	return &Client{
		baseURL: serverURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", strconv.FormatInt(c.userID, 10))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body, result any) error {
	return c.do(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string, result any) error {
	return c.do(http.MethodDelete, path, nil, result)
}

// API response types (mirror server types)

type LibraryEntryResponse struct {
	TMDBID    int64     `json:"tmdb_id"`
	Rating    int       `json:"rating"`
	WatchedAt time.Time `json:"watched_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListLibraryResponse struct {
	Items  []LibraryEntryResponse `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

type WatchlistEntryResponse struct {
	TMDBID  int64     `json:"tmdb_id"`
	AddedAt time.Time `json:"added_at"`
}

type WatchlistCheckResponse struct {
	TMDBID      int64 `json:"tmdb_id"`
	InWatchlist bool  `json:"in_watchlist"`
}

type ShowcaseSlotResponse struct {
	Position  int       `json:"position"`
	TMDBID    int64     `json:"tmdb_id"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MovieResponse struct {
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

type ResolvedResponse struct {
	TMDBID      int64          `json:"tmdb_id"`
	Placeholder bool           `json:"placeholder"`
	Movie       *MovieResponse `json:"movie,omitempty"`
}

type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// Library

func (c *Client) Library(limit, offset int) (*ListLibraryResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp ListLibraryResponse
	if err := c.get("/api/v1/library?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddToLibrary(tmdbID int64, rating int) (*LibraryEntryResponse, error) {
	body := map[string]any{"tmdb_id": tmdbID, "rating": rating}
	var resp LibraryEntryResponse
	if err := c.post("/api/v1/library", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateRating(tmdbID int64, rating int) (*LibraryEntryResponse, error) {
	body := map[string]any{"rating": rating}
	var resp LibraryEntryResponse
	if err := c.put(fmt.Sprintf("/api/v1/library/%d", tmdbID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RemoveFromLibrary(tmdbID int64) error {
	return c.delete(fmt.Sprintf("/api/v1/library/%d", tmdbID), nil)
}

func (c *Client) ResetLibrary() (*DeletedResponse, error) {
	var resp DeletedResponse
	if err := c.delete("/api/v1/library", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Watchlist

func (c *Client) Watchlist() ([]WatchlistEntryResponse, error) {
	var resp []WatchlistEntryResponse
	if err := c.get("/api/v1/watchlist", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) AddToWatchlist(tmdbID int64) (*WatchlistEntryResponse, error) {
	body := map[string]any{"tmdb_id": tmdbID}
	var resp WatchlistEntryResponse
	if err := c.post("/api/v1/watchlist", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CheckWatchlist(tmdbID int64) (*WatchlistCheckResponse, error) {
	var resp WatchlistCheckResponse
	if err := c.get(fmt.Sprintf("/api/v1/watchlist/%d", tmdbID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RemoveFromWatchlist(tmdbID int64) error {
	return c.delete(fmt.Sprintf("/api/v1/watchlist/%d", tmdbID), nil)
}

// Showcase

func (c *Client) Showcase() ([]ShowcaseSlotResponse, error) {
	var resp []ShowcaseSlotResponse
	if err := c.get("/api/v1/showcase", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SetShowcase(position int, tmdbID int64) error {
	body := map[string]any{"tmdb_id": tmdbID}
	return c.put(fmt.Sprintf("/api/v1/showcase/%d", position), body, nil)
}

func (c *Client) ClearShowcase(position int) error {
	return c.delete(fmt.Sprintf("/api/v1/showcase/%d", position), nil)
}

// Movies

func (c *Client) Movie(tmdbID int64) (*MovieResponse, error) {
	var resp MovieResponse
	if err := c.get(fmt.Sprintf("/api/v1/movies/%d", tmdbID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Resolve(tmdbIDs []int64) ([]ResolvedResponse, error) {
	body := map[string]any{"tmdb_ids": tmdbIDs}
	var resp []ResolvedResponse
	if err := c.post("/api/v1/movies/resolve", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SearchMovies(query string, limit int) ([]MovieResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp []MovieResponse
	if err := c.get("/api/v1/movies/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) PruneCache() (*DeletedResponse, error) {
	var resp DeletedResponse
	if err := c.post("/api/v1/cache/prune", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
