package docs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]Document
}

var _ Repo = (*MemoryRepo)(nil)

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[int64]Document)}
}

// Create stores a document under the next sequence id.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(doc), nil
}

// CreateMany stores all documents.
func (r *MemoryRepo) CreateMany(ctx context.Context, documents []Document) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(documents))
	for _, doc := range documents {
		ids = append(ids, r.insertLocked(doc))
	}
	return ids, nil
}

func (r *MemoryRepo) insertLocked(doc Document) int64 {
	r.nextID++
	doc.ID = r.nextID
	if doc.Rubrics == nil {
		doc.Rubrics = []string{}
	}
	r.data[doc.ID] = doc
	return doc.ID
}

// GetByID returns a document by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// GetByIDs returns existing documents for the given ids, newest first.
func (r *MemoryRepo) GetByIDs(ctx context.Context, ids []int64, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := r.data[id]; ok {
			out = append(out, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.After(out[j].CreatedDate)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a document by id.
func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}
