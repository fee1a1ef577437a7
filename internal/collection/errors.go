package collection

import "errors"

var (
	// ErrNotFound indicates the requested entry doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRating indicates a rating outside the 0-10 range.
	ErrInvalidRating = errors.New("rating must be between 0 and 10")

	// ErrInvalidPosition indicates a showcase position outside 1-4.
	ErrInvalidPosition = errors.New("position must be between 1 and 4")

	// ErrNotInLibrary indicates a showcase write for a movie the user
	// hasn't rated.
	ErrNotInLibrary = errors.New("movie not in library")

	// ErrAlreadyInWatchlist indicates a duplicate watchlist add.
	ErrAlreadyInWatchlist = errors.New("movie already in watchlist")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a foreign key or check constraint violation.
	ErrConstraint = errors.New("constraint violation")
)
