package metadata

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reelkeep/reelkeep/internal/tmdb"
)

const (
	defaultFetchLimit = 8
	persistTimeout    = 15 * time.Second
)

// Gateway fetches authoritative metadata from the upstream catalog
// provider. Called only for ids the cache cannot serve.
type Gateway interface {
	GetMovie(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
}

// Resolved is one movie in a reconciled page. Placeholder is set when the
// movie was neither cached nor fetchable; the page renders it with unknown
// metadata instead of failing.
type Resolved struct {
	TMDBID      int64
	Movie       *Movie
	Placeholder bool
}

// Service owns the reconciliation flow between the cache and the catalog
// gateway: bulk lookups, parallel miss fetching, fire-and-forget
// persistence, and background refresh of stale records.
type Service struct {
	cache      *Cache
	gateway    Gateway
	log        *slog.Logger
	metrics    *Metrics
	maxAge     time.Duration
	fetchLimit int

	// background tracks fire-and-forget persistence so shutdown (and tests)
	// can drain it; request paths never wait on it.
	background sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithMaxAge overrides the staleness window.
func WithMaxAge(maxAge time.Duration) Option {
	return func(s *Service) {
		s.maxAge = maxAge
	}
}

// WithFetchLimit bounds the parallel gateway fan-out.
func WithFetchLimit(n int) Option {
	return func(s *Service) {
		s.fetchLimit = n
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a metadata service. The gateway may be nil, in which
// case misses degrade to placeholders without an upstream call.
func NewService(cache *Cache, gateway Gateway, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		cache:      cache,
		gateway:    gateway,
		log:        log,
		maxAge:     DefaultMaxAge,
		fetchLimit: defaultFetchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s
}

// Lookup returns the cached record for one movie regardless of freshness.
// Never blocks on the network.
func (s *Service) Lookup(ctx context.Context, tmdbID int64) (*Movie, error) {
	return s.cache.Get(ctx, tmdbID)
}

// Upsert stores one record in the cache.
func (s *Service) Upsert(ctx context.Context, m *Movie) error {
	if err := s.cache.Upsert(ctx, m); err != nil {
		return err
	}
	s.metrics.upserts.Inc()
	return nil
}

// PurgeStale removes records older than the staleness window at call time.
func (s *Service) PurgeStale(ctx context.Context) (int64, error) {
	removed, err := s.cache.Prune(ctx, s.maxAge)
	if err != nil {
		return 0, err
	}
	s.metrics.pruned.Add(float64(removed))
	s.log.Info("cache pruned", "removed", removed, "max_age", s.maxAge)
	return removed, nil
}

// Resolve reconciles a display set of ids against the cache. Cached records
// are used even when stale (stale hits additionally schedule a background
// refresh); misses are fetched from the gateway in a bounded parallel
// fan-out where each id is isolated - one failed fetch never cancels or
// fails siblings, it just renders as a placeholder. Freshly fetched records
// are persisted without the caller waiting. Output preserves the caller's
// id ordering with duplicates collapsed to first occurrence.
func (s *Service) Resolve(ctx context.Context, tmdbIDs []int64) ([]Resolved, error) {
	order := dedupe(tmdbIDs)
	if len(order) == 0 {
		return nil, nil
	}

	hits, misses, err := s.cache.GetMany(ctx, order)
	if err != nil {
		return nil, err
	}
	s.metrics.cacheHits.Add(float64(len(hits)))
	s.metrics.cacheMisses.Add(float64(len(misses)))

	fetched := s.fetchMisses(ctx, misses)

	if len(fetched) > 0 {
		records := make([]*Movie, 0, len(fetched))
		for _, m := range fetched {
			records = append(records, m)
		}
		s.persistAsync(records)
	}

	now := time.Now()
	for id, m := range hits {
		if !m.FreshAt(now, s.maxAge) {
			s.metrics.staleHits.Inc()
			s.refreshAsync(id)
		}
	}

	out := make([]Resolved, 0, len(order))
	for _, id := range order {
		switch {
		case hits[id] != nil:
			out = append(out, Resolved{TMDBID: id, Movie: hits[id]})
		case fetched[id] != nil:
			out = append(out, Resolved{TMDBID: id, Movie: fetched[id]})
		default:
			out = append(out, Resolved{TMDBID: id, Placeholder: true})
		}
	}
	return out, nil
}

// fetchMisses fans out to the gateway with bounded parallelism. Errors are
// recorded per id, never returned, so the group never cancels.
func (s *Service) fetchMisses(ctx context.Context, misses []int64) map[int64]*Movie {
	fetched := make(map[int64]*Movie, len(misses))
	if len(misses) == 0 || s.gateway == nil {
		return fetched
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.fetchLimit)

	for _, id := range misses {
		g.Go(func() error {
			start := time.Now()
			movie, err := s.gateway.GetMovie(ctx, id)
			if err != nil {
				s.metrics.fetchFailures.Inc()
				s.log.Warn("gateway fetch failed",
					"tmdb_id", id,
					"error", err,
					"duration_ms", time.Since(start).Milliseconds(),
				)
				return nil
			}
			mu.Lock()
			fetched[id] = fromGatewayMovie(movie)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return fetched
}

// persistAsync hands records to the cache without the caller waiting.
// Failures are logged and dropped; the read path already succeeded
// independently of this write.
func (s *Service) persistAsync(records []*Movie) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		for _, m := range records {
			if err := s.cache.Upsert(ctx, m); err != nil {
				s.metrics.upsertFailures.Inc()
				s.log.Warn("background upsert failed", "tmdb_id", m.TMDBID, "error", err)
				continue
			}
			s.metrics.upserts.Inc()
		}
	}()
}

// refreshAsync re-fetches one stale record in the background.
func (s *Service) refreshAsync(tmdbID int64) {
	if s.gateway == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		movie, err := s.gateway.GetMovie(ctx, tmdbID)
		if err != nil {
			s.metrics.fetchFailures.Inc()
			s.log.Warn("background refresh failed", "tmdb_id", tmdbID, "error", err)
			return
		}
		if err := s.cache.Upsert(ctx, fromGatewayMovie(movie)); err != nil {
			s.metrics.upsertFailures.Inc()
			s.log.Warn("background upsert failed", "tmdb_id", tmdbID, "error", err)
			return
		}
		s.metrics.upserts.Inc()
	}()
}

// Drain blocks until in-flight background persistence finishes. Called on
// shutdown; request paths never use it.
func (s *Service) Drain() {
	s.background.Wait()
}

// fromGatewayMovie converts an upstream record to the cached shape.
func fromGatewayMovie(m *tmdb.Movie) *Movie {
	out := &Movie{
		TMDBID: m.ID,
		Title:  m.Title,
		Adult:  m.Adult,
	}
	if year := m.Year(); year != 0 {
		out.Year = &year
	}
	if m.PosterPath != "" {
		p := m.PosterPath
		out.PosterPath = &p
	}
	if name, id, ok := m.Director(); ok {
		out.Director = &name
		out.DirectorID = &id
	}
	for _, g := range m.Genres {
		out.Genres = append(out.Genres, g.Name)
	}
	return out
}
