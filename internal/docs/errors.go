package docs

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates the caller supplied malformed document data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrIndexUnavailable indicates the search index write or read failed.
	ErrIndexUnavailable = errors.New("search index unavailable")
)
