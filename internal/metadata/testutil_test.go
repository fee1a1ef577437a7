package metadata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the cache schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE movie_cache (
			tmdb_id      INTEGER PRIMARY KEY,
			title        TEXT NOT NULL,
			year         INTEGER,
			director     TEXT,
			director_id  INTEGER,
			genres       TEXT NOT NULL DEFAULT '[]',
			poster_path  TEXT,
			adult        INTEGER NOT NULL DEFAULT 0,
			refreshed_at DATETIME NOT NULL
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE INDEX idx_movie_cache_refreshed_at ON movie_cache(refreshed_at)`)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

// backdate rewrites a record's refresh timestamp, e.g. to make it stale.
func backdate(t *testing.T, db *sql.DB, tmdbID int64, refreshedAt time.Time) {
	t.Helper()
	_, err := db.Exec("UPDATE movie_cache SET refreshed_at = ? WHERE tmdb_id = ?", refreshedAt, tmdbID)
	require.NoError(t, err)
}
