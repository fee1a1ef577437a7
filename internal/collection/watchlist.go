package collection

import (
	"errors"
	"fmt"
	"time"
)

// AddToWatchlist adds a movie to the user's watchlist. This is a strict
// uniqueness check, not an upsert: adding a movie already on the list
// returns ErrAlreadyInWatchlist.
func (s *Store) AddToWatchlist(userID, tmdbID int64) (*WatchlistEntry, error) {
	now := time.Now()
	_, err := s.db.Exec(
		"INSERT INTO user_watchlist (user_id, tmdb_id, added_at) VALUES (?, ?, ?)",
		userID, tmdbID, now,
	)
	if err != nil {
		mapped := mapSQLiteError(err)
		if errors.Is(mapped, ErrDuplicate) {
			return nil, ErrAlreadyInWatchlist
		}
		return nil, fmt.Errorf("add to watchlist %d/%d: %w", userID, tmdbID, mapped)
	}
	return &WatchlistEntry{UserID: userID, TMDBID: tmdbID, AddedAt: now}, nil
}

// RemoveFromWatchlist removes a movie from the user's watchlist.
// This operation is idempotent - removing an absent movie is a no-op.
func (s *Store) RemoveFromWatchlist(userID, tmdbID int64) error {
	_, err := s.db.Exec(
		"DELETE FROM user_watchlist WHERE user_id = ? AND tmdb_id = ?",
		userID, tmdbID,
	)
	if err != nil {
		return fmt.Errorf("remove from watchlist %d/%d: %w", userID, tmdbID, mapSQLiteError(err))
	}
	return nil
}

// InWatchlist reports whether the movie is on the user's watchlist.
func (s *Store) InWatchlist(userID, tmdbID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM user_watchlist WHERE user_id = ? AND tmdb_id = ?",
		userID, tmdbID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check watchlist %d/%d: %w", userID, tmdbID, err)
	}
	return count > 0, nil
}

// GetWatchlist returns the user's watchlist, most recently added first.
func (s *Store) GetWatchlist(userID int64) ([]*WatchlistEntry, error) {
	rows, err := s.db.Query(`
		SELECT user_id, tmdb_id, added_at
		FROM user_watchlist WHERE user_id = ?
		ORDER BY added_at DESC, tmdb_id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*WatchlistEntry
	for rows.Next() {
		e := &WatchlistEntry{}
		if err := rows.Scan(&e.UserID, &e.TMDBID, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}

	return results, nil
}
