package docs

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	// Create inserts one document and returns its assigned id.
	Create(ctx context.Context, doc Document) (int64, error)
	// CreateMany inserts documents atomically and returns their assigned ids.
	CreateMany(ctx context.Context, docs []Document) ([]int64, error)
	// GetByID returns a document by id, ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (Document, error)
	// GetByIDs returns the documents with the given ids ordered newest-first.
	// Ids that do not resolve are silently absent from the result.
	GetByIDs(ctx context.Context, ids []int64, limit int) ([]Document, error)
	// Delete removes a document by id, ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}
