package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// MemoryIndex is an in-memory implementation of Index used when no search
// address is configured, and by tests.
type MemoryIndex struct {
	mu   sync.RWMutex
	data map[int64]string
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex constructs a MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{data: make(map[int64]string)}
}

// EnsureIndex is a no-op for the memory index.
func (x *MemoryIndex) EnsureIndex(ctx context.Context) error {
	return ctx.Err()
}

// IndexDocument stores/overwrites the entry for an id.
func (x *MemoryIndex) IndexDocument(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.data[entry.ID] = entry.Text
	return nil
}

// IndexMany stores all entries.
func (x *MemoryIndex) IndexMany(ctx context.Context, entries []Entry) (int, error) {
	if err := ctx.Err(); err != nil {
		return len(entries), err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, entry := range entries {
		x.data[entry.ID] = entry.Text
	}
	return 0, nil
}

// Search matches documents containing every token of the query, newest ids first.
func (x *MemoryIndex) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	x.mu.RLock()
	var ids []int64
	for id, text := range x.data {
		if matches(tokenize(text), terms) {
			ids = append(ids, id)
		}
	}
	x.mu.RUnlock()

	// Ids are sequence-assigned, so descending id approximates recency.
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Delete removes the entry for an id.
func (x *MemoryIndex) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.data, id)
	return nil
}

// Ping always succeeds.
func (x *MemoryIndex) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (x *MemoryIndex) Close() {}

// Len reports how many entries the index holds.
func (x *MemoryIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.data)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func matches(tokens, terms []string) bool {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	for _, term := range terms {
		if _, ok := set[term]; !ok {
			return false
		}
	}
	return true
}
