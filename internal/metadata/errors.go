package metadata

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the movie has no cached record.
	ErrNotFound = errors.New("movie not cached")

	// ErrUnavailable indicates a store-layer failure. Transient: the caller
	// may retry the whole operation; this package never retries itself.
	ErrUnavailable = errors.New("storage unavailable")
)

// mapStorageError converts driver errors to package sentinels.
func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
