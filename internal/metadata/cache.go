package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cache provides SQLite-backed storage for movie metadata. It is the only
// writer to the movie_cache table. Reads never touch the network and return
// records regardless of freshness; the fresh-vs-stale distinction is the
// caller's concern.
type Cache struct {
	db *sql.DB
}

// NewCache creates a new movie metadata cache.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

const movieColumns = "tmdb_id, title, year, director, director_id, genres, poster_path, adult, refreshed_at"

func scanMovie(scan func(...any) error) (*Movie, error) {
	m := &Movie{}
	var genres string
	if err := scan(&m.TMDBID, &m.Title, &m.Year, &m.Director, &m.DirectorID, &genres, &m.PosterPath, &m.Adult, &m.RefreshedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
		return nil, fmt.Errorf("decode genres for %d: %w", m.TMDBID, err)
	}
	return m, nil
}

// Get retrieves the cached record for one movie.
// Returns ErrNotFound if the movie has never been cached.
func (c *Cache) Get(ctx context.Context, tmdbID int64) (*Movie, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movie_cache WHERE tmdb_id = ?", tmdbID,
	)
	m, err := scanMovie(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", tmdbID, mapStorageError(err))
	}
	return m, nil
}

// GetMany partitions ids into cached hits and misses with a single query.
// Input may contain duplicates; the output is de-duplicated and misses keep
// first-seen order.
func (c *Cache) GetMany(ctx context.Context, tmdbIDs []int64) (map[int64]*Movie, []int64, error) {
	unique := dedupe(tmdbIDs)
	if len(unique) == 0 {
		return map[int64]*Movie{}, nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(unique)), ",")
	args := make([]any, len(unique))
	for i, id := range unique {
		args[i] = id
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM movie_cache WHERE tmdb_id IN ("+placeholders+")", args...,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("bulk get: %w", mapStorageError(err))
	}
	defer func() { _ = rows.Close() }()

	hits := make(map[int64]*Movie, len(unique))
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, nil, fmt.Errorf("scan movie: %w", err)
		}
		hits[m.TMDBID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate movies: %w", mapStorageError(err))
	}

	var misses []int64
	for _, id := range unique {
		if _, ok := hits[id]; !ok {
			misses = append(misses, id)
		}
	}
	return hits, misses, nil
}

// Upsert stores a record, overwriting every field of any existing record
// for the same id and resetting RefreshedAt to now. Idempotent; concurrent
// upserts of the same id are last-writer-wins, which is safe because
// upstream data is effectively immutable between refresh windows.
func (c *Cache) Upsert(ctx context.Context, m *Movie) error {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	encoded, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("encode genres for %d: %w", m.TMDBID, err)
	}

	now := time.Now()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO movie_cache (tmdb_id, title, year, director, director_id, genres, poster_path, adult, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tmdb_id) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			director = excluded.director,
			director_id = excluded.director_id,
			genres = excluded.genres,
			poster_path = excluded.poster_path,
			adult = excluded.adult,
			refreshed_at = excluded.refreshed_at`,
		m.TMDBID, m.Title, m.Year, m.Director, m.DirectorID, string(encoded), m.PosterPath, m.Adult, now,
	)
	if err != nil {
		return fmt.Errorf("upsert movie %d: %w", m.TMDBID, mapStorageError(err))
	}
	m.RefreshedAt = now
	return nil
}

// Prune deletes records whose refresh timestamp is older than maxAge at
// call time. Returns the number removed. A single DELETE statement, so it
// is safe to run concurrently with lookups and upserts.
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM movie_cache WHERE refreshed_at < ?", time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", mapStorageError(err))
	}
	return result.RowsAffected()
}

// List returns every cached record. The cache is bounded by pruning, so a
// full scan stays small; used by the local title search.
func (c *Cache) List(ctx context.Context) ([]*Movie, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+movieColumns+" FROM movie_cache ORDER BY tmdb_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", mapStorageError(err))
	}
	defer func() { _ = rows.Close() }()

	var results []*Movie
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache: %w", mapStorageError(err))
	}
	return results, nil
}

// dedupe removes duplicate ids preserving first-seen order.
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var out []int64
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
