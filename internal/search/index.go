// Package search provides the full-text index over document text.
// Only (id, text) projections live here; PostgreSQL stays the source of truth.
package search

import (
	"context"
	"errors"
)

// Entry is the indexed projection of a document.
type Entry struct {
	ID   int64
	Text string
}

// ErrUnavailable marks index operations that failed because the index
// could not be reached.
var ErrUnavailable = errors.New("search index unavailable")

// Index defines the operations the document service needs from a text index.
type Index interface {
	// EnsureIndex creates the index schema if it does not exist yet.
	EnsureIndex(ctx context.Context) error
	// IndexDocument writes or overwrites the entry for one document.
	IndexDocument(ctx context.Context, entry Entry) error
	// IndexMany writes entries in bulk and returns how many failed.
	IndexMany(ctx context.Context, entries []Entry) (failed int, err error)
	// Search returns ids of documents whose text matches the query,
	// best matches first, at most limit of them.
	Search(ctx context.Context, query string, limit int) ([]int64, error)
	// Delete removes the entry for a document id.
	Delete(ctx context.Context, id int64) error
	// Ping checks index connectivity.
	Ping(ctx context.Context) error
	// Close releases the underlying connection.
	Close()
}
