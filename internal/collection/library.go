package collection

import (
	"errors"
	"fmt"
	"time"
)

func getLibraryEntry(q querier, userID, tmdbID int64) (*LibraryEntry, error) {
	e := &LibraryEntry{}
	err := q.QueryRow(`
		SELECT id, user_id, tmdb_id, rating, watched_at, updated_at
		FROM user_movies WHERE user_id = ? AND tmdb_id = ?`, userID, tmdbID,
	).Scan(&e.ID, &e.UserID, &e.TMDBID, &e.Rating, &e.WatchedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get library entry %d/%d: %w", userID, tmdbID, mapSQLiteError(err))
	}
	return e, nil
}

// GetLibraryEntry retrieves a single library entry.
// Returns ErrNotFound if the user hasn't rated the movie.
func (s *Store) GetLibraryEntry(userID, tmdbID int64) (*LibraryEntry, error) {
	return getLibraryEntry(s.db, userID, tmdbID)
}

// GetLibraryEntry retrieves a single library entry within a transaction.
func (t *Tx) GetLibraryEntry(userID, tmdbID int64) (*LibraryEntry, error) {
	return getLibraryEntry(t.tx, userID, tmdbID)
}

// AddToLibrary rates a movie, creating the library entry or overwriting the
// existing rating. Re-rating through this path is a supported user action,
// so an existing entry updates in place rather than erroring. WatchedAt is
// set on first insert only.
// Returns ErrInvalidRating if rating is outside 0-10.
func (s *Store) AddToLibrary(userID, tmdbID int64, rating int) (*LibraryEntry, error) {
	if !ValidRating(rating) {
		return nil, ErrInvalidRating
	}
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO user_movies (user_id, tmdb_id, rating, watched_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, tmdb_id) DO UPDATE SET
			rating = excluded.rating,
			updated_at = excluded.updated_at`,
		userID, tmdbID, rating, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("add to library %d/%d: %w", userID, tmdbID, mapSQLiteError(err))
	}
	return getLibraryEntry(s.db, userID, tmdbID)
}

// UpdateRating changes the rating of an existing library entry.
// Unlike AddToLibrary it requires the entry to exist; returns ErrNotFound
// otherwise. Returns ErrInvalidRating if rating is outside 0-10.
func (s *Store) UpdateRating(userID, tmdbID int64, rating int) (*LibraryEntry, error) {
	if !ValidRating(rating) {
		return nil, ErrInvalidRating
	}
	result, err := s.db.Exec(`
		UPDATE user_movies SET rating = ?, updated_at = ?
		WHERE user_id = ? AND tmdb_id = ?`,
		rating, time.Now(), userID, tmdbID,
	)
	if err != nil {
		return nil, fmt.Errorf("update rating %d/%d: %w", userID, tmdbID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("update rating %d/%d: %w", userID, tmdbID, ErrNotFound)
	}
	return getLibraryEntry(s.db, userID, tmdbID)
}

// RemoveFromLibrary deletes a library entry. Any showcase slot referencing
// the entry is cleared in the same transaction: a showcased movie cannot
// survive removal from the library.
// Returns ErrNotFound if the user hasn't rated the movie.
func (s *Store) RemoveFromLibrary(userID, tmdbID int64) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := tx.GetLibraryEntry(userID, tmdbID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.tx.Exec(
		"DELETE FROM user_profile_showcase WHERE user_id = ? AND user_movie_id = ?",
		userID, entry.ID,
	); err != nil {
		return fmt.Errorf("clear showcase for entry %d: %w", entry.ID, mapSQLiteError(err))
	}

	if _, err := tx.tx.Exec(
		"DELETE FROM user_movies WHERE id = ?", entry.ID,
	); err != nil {
		return fmt.Errorf("delete library entry %d: %w", entry.ID, mapSQLiteError(err))
	}

	return tx.Commit()
}

// ResetLibrary deletes every library entry for the user, clearing the
// showcase along the way. Returns the number of entries removed.
func (s *Store) ResetLibrary(userID int64) (int64, error) {
	tx, err := s.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.tx.Exec(
		"DELETE FROM user_profile_showcase WHERE user_id = ?", userID,
	); err != nil {
		return 0, fmt.Errorf("clear showcase for user %d: %w", userID, mapSQLiteError(err))
	}

	result, err := tx.tx.Exec("DELETE FROM user_movies WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("reset library for user %d: %w", userID, mapSQLiteError(err))
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

func listLibrary(q querier, userID int64, limit, offset int) ([]*LibraryEntry, int, error) {
	var total int
	if err := q.QueryRow(
		"SELECT COUNT(*) FROM user_movies WHERE user_id = ?", userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count library: %w", err)
	}

	query := `
		SELECT id, user_id, tmdb_id, rating, watched_at, updated_at
		FROM user_movies WHERE user_id = ?
		ORDER BY watched_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := q.Query(query, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list library: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*LibraryEntry
	for rows.Next() {
		e := &LibraryEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.TMDBID, &e.Rating, &e.WatchedAt, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan library entry: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate library: %w", err)
	}

	return results, total, nil
}

// GetLibrary returns the user's rated movies, most recently watched first.
// Returns (entries, totalCount, error). A limit of 0 returns everything.
func (s *Store) GetLibrary(userID int64, limit, offset int) ([]*LibraryEntry, int, error) {
	return listLibrary(s.db, userID, limit, offset)
}

// GetLibrary returns the user's rated movies within a transaction.
func (t *Tx) GetLibrary(userID int64, limit, offset int) ([]*LibraryEntry, int, error) {
	return listLibrary(t.tx, userID, limit, offset)
}
