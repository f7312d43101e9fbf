package docs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docstore-backend/internal/search"
	"docstore-backend/internal/shared/metrics"
	"docstore-backend/internal/shared/telemetry"
)

// DefaultSearchLimit caps how many documents a search returns.
const DefaultSearchLimit = 20

// Service contains business logic for documents: it owns the dual write to
// the relational store and the search index.
type Service struct {
	Repo  Repo
	Index search.Index
}

// ImportResult reports the outcome of a bulk create.
type ImportResult struct {
	Created       int
	IndexFailures int
}

// Create persists one document and indexes (id, text) synchronously.
// If indexing fails the relational row is removed again, so the caller
// never observes a document that exists but cannot be found by search.
func (s *Service) Create(ctx context.Context, in CreateDocument) (Document, error) {
	doc, err := normalize(in)
	if err != nil {
		return Document{}, err
	}

	id, err := s.Repo.Create(ctx, doc)
	if err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	doc.ID = id
	metrics.IncDocumentsCreated(1)

	if err := s.Index.IndexDocument(ctx, search.Entry{ID: doc.ID, Text: doc.Text}); err != nil {
		metrics.IncIndexFailures(1)
		if delErr := s.Repo.Delete(ctx, doc.ID); delErr != nil {
			telemetry.Error("docs.compensating_delete_failed", map[string]any{
				"document_id": doc.ID,
				"error":       delErr.Error(),
			})
		}
		return Document{}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	metrics.IncDocumentsIndexed(1)

	return doc, nil
}

// CreateMany persists documents in one transaction and bulk-indexes them.
// Indexing failures are counted and reported rather than rolled back: the
// rows stay durable and can be re-indexed later.
func (s *Service) CreateMany(ctx context.Context, in []CreateDocument) (ImportResult, error) {
	if len(in) == 0 {
		return ImportResult{}, nil
	}

	documents := make([]Document, 0, len(in))
	for _, item := range in {
		doc, err := normalize(item)
		if err != nil {
			return ImportResult{}, err
		}
		documents = append(documents, doc)
	}

	ids, err := s.Repo.CreateMany(ctx, documents)
	if err != nil {
		return ImportResult{}, fmt.Errorf("create documents: %w", err)
	}
	metrics.IncDocumentsCreated(len(ids))

	entries := make([]search.Entry, len(ids))
	for i, id := range ids {
		entries[i] = search.Entry{ID: id, Text: documents[i].Text}
	}
	failed, err := s.Index.IndexMany(ctx, entries)
	if err != nil {
		metrics.IncIndexFailures(failed)
		return ImportResult{Created: len(ids), IndexFailures: failed}, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if failed > 0 {
		metrics.IncIndexFailures(failed)
		telemetry.Warn("docs.bulk_index_partial", map[string]any{
			"created": len(ids),
			"failed":  failed,
		})
	}
	metrics.IncDocumentsIndexed(len(ids) - failed)

	return ImportResult{Created: len(ids), IndexFailures: failed}, nil
}

// Get returns the full document for an id.
func (s *Service) Get(ctx context.Context, id int64) (Document, error) {
	return s.Repo.GetByID(ctx, id)
}

// Search queries the index for ids and hydrates full records from the
// relational store, newest first. Index hits that no longer resolve to a
// row are skipped.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	if strings.TrimSpace(query) == "" {
		return []Document{}, nil
	}
	if limit < 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}
	metrics.IncSearches()
	start := time.Now()
	defer func() {
		metrics.ObserveSearchDuration(time.Since(start).Seconds())
	}()

	ids, err := s.Index.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}

	documents, err := s.Repo.GetByIDs(ctx, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("hydrate documents: %w", err)
	}
	if len(documents) < len(ids) {
		telemetry.Warn("docs.stale_index_hits", map[string]any{
			"hits":     len(ids),
			"resolved": len(documents),
		})
	}
	return documents, nil
}

// Delete removes a document from the index first, then from the relational
// store, so a deleted document can never surface in a later search.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.Index.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return s.Repo.Delete(ctx, id)
}

func normalize(in CreateDocument) (Document, error) {
	if strings.TrimSpace(in.Text) == "" {
		return Document{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	rubrics := in.Rubrics
	if rubrics == nil {
		rubrics = []string{}
	}
	createdDate := in.CreatedDate
	if createdDate.IsZero() {
		createdDate = time.Now().UTC()
	}
	return Document{
		Rubrics:     rubrics,
		Text:        in.Text,
		CreatedDate: createdDate,
	}, nil
}
