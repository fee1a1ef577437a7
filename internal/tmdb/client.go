package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.themoviedb.org"

// TMDB allows ~50 req/s per key; stay well under it.
const defaultRateLimit = rate.Limit(20)

const defaultFanout = 8

// ErrNotFound is returned when a movie doesn't exist in TMDB.
var ErrNotFound = errors.New("movie not found")

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	fanout     int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the upstream request rate and burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithFanout bounds the parallelism of GetMovies.
func WithFanout(n int) Option {
	return func(c *Client) {
		c.fanout = n
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(defaultRateLimit, int(defaultRateLimit)),
		fanout:  defaultFanout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMovie fetches movie metadata by TMDB ID, including credits so the
// director can be extracted.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	url := fmt.Sprintf("%s/3/movie/%d?api_key=%s&append_to_response=credits", c.baseURL, tmdbID, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	var movie Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &movie, nil
}

// Result is the outcome of one fetch within GetMovies.
type Result struct {
	Movie *Movie
	Err   error
}

// GetMovies fetches several movies in parallel with bounded fan-out. Each
// id is isolated: a timeout or error for one id is recorded in its Result
// and never cancels sibling fetches.
func (c *Client) GetMovies(ctx context.Context, tmdbIDs []int64) map[int64]Result {
	results := make(map[int64]Result, len(tmdbIDs))
	if len(tmdbIDs) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.fanout)

	for _, id := range tmdbIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			movie, err := c.GetMovie(ctx, id)
			mu.Lock()
			results[id] = Result{Movie: movie, Err: err}
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}
