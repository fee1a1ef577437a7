package collection

import (
	"errors"
	"fmt"
	"time"
)

// SetShowcasePosition places a rated movie at one of the four profile
// positions. Two invariants hold after every call: a movie occupies at most
// one position, and a position holds at most one movie. The repair steps
// (clear the movie's old slot, overwrite the target slot) and the final
// write run as one transaction, so a failure partway leaves the showcase in
// its prior state.
// Returns ErrInvalidPosition for positions outside 1-4 and ErrNotInLibrary
// when the user hasn't rated the movie.
func (s *Store) SetShowcasePosition(userID int64, position int, tmdbID int64) error {
	if !ValidPosition(position) {
		return ErrInvalidPosition
	}

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	entry, err := tx.GetLibraryEntry(userID, tmdbID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotInLibrary
		}
		return err
	}

	// Clear the movie's current slot if it sits somewhere else.
	if _, err := tx.tx.Exec(`
		DELETE FROM user_profile_showcase
		WHERE user_id = ? AND user_movie_id = ? AND position != ?`,
		userID, entry.ID, position,
	); err != nil {
		return fmt.Errorf("clear old showcase slot: %w", mapSQLiteError(err))
	}

	// Take the target slot, evicting any current occupant.
	if _, err := tx.tx.Exec(`
		INSERT INTO user_profile_showcase (user_id, position, user_movie_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, position) DO UPDATE SET
			user_movie_id = excluded.user_movie_id,
			updated_at = excluded.updated_at`,
		userID, position, entry.ID, time.Now(),
	); err != nil {
		return fmt.Errorf("set showcase position %d: %w", position, mapSQLiteError(err))
	}

	return tx.Commit()
}

// ClearShowcasePosition empties a showcase position.
// This operation is idempotent - clearing an empty position is a no-op.
// Returns ErrInvalidPosition for positions outside 1-4.
func (s *Store) ClearShowcasePosition(userID int64, position int) error {
	if !ValidPosition(position) {
		return ErrInvalidPosition
	}
	_, err := s.db.Exec(
		"DELETE FROM user_profile_showcase WHERE user_id = ? AND position = ?",
		userID, position,
	)
	if err != nil {
		return fmt.Errorf("clear showcase position %d: %w", position, mapSQLiteError(err))
	}
	return nil
}

// GetShowcase returns the user's occupied showcase slots ordered by
// position. Empty positions are simply absent.
func (s *Store) GetShowcase(userID int64) ([]*ShowcaseSlot, error) {
	rows, err := s.db.Query(`
		SELECT ups.user_id, ups.position, um.tmdb_id, um.rating, ups.updated_at
		FROM user_profile_showcase ups
		JOIN user_movies um ON ups.user_movie_id = um.id
		WHERE ups.user_id = ?
		ORDER BY ups.position`, userID)
	if err != nil {
		return nil, fmt.Errorf("list showcase: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*ShowcaseSlot
	for rows.Next() {
		slot := &ShowcaseSlot{}
		if err := rows.Scan(&slot.UserID, &slot.Position, &slot.TMDBID, &slot.Rating, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan showcase slot: %w", err)
		}
		results = append(results, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate showcase: %w", err)
	}

	return results, nil
}
