package docs

import (
	"context"
	"errors"
	"testing"
	"time"

	"docstore-backend/internal/search"
)

func newTestService() (*Service, *MemoryRepo, *search.MemoryIndex) {
	repo := NewMemoryRepo()
	index := search.NewMemoryIndex()
	return &Service{Repo: repo, Index: index}, repo, index
}

func TestServiceCreateThenSearchFindsDocument(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateDocument{
		Rubrics: []string{"news"},
		Text:    "market update",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if doc.CreatedDate.IsZero() {
		t.Fatal("expected stamped created date")
	}

	results, err := svc.Search(ctx, "market", DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != doc.ID {
		t.Fatalf("results = %+v, want the created document", results)
	}
	if results[0].Text != "market update" {
		t.Fatalf("text = %q", results[0].Text)
	}
}

func TestServiceCreateRejectsEmptyText(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateDocument{Text: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestServiceCreateDefaultsEmptyRubrics(t *testing.T) {
	svc, _, _ := newTestService()

	doc, err := svc.Create(context.Background(), CreateDocument{Text: "no labels"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Rubrics == nil || len(doc.Rubrics) != 0 {
		t.Fatalf("rubrics = %#v, want empty slice", doc.Rubrics)
	}

	stored, err := svc.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Rubrics == nil || len(stored.Rubrics) != 0 {
		t.Fatalf("stored rubrics = %#v, want empty slice", stored.Rubrics)
	}
}

func TestServiceCreatePreservesSubmittedFields(t *testing.T) {
	svc, _, _ := newTestService()
	createdDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	doc, err := svc.Create(context.Background(), CreateDocument{
		Rubrics:     []string{"a", "b"},
		Text:        "exact text",
		CreatedDate: createdDate,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := svc.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Text != "exact text" {
		t.Fatalf("text = %q", stored.Text)
	}
	if len(stored.Rubrics) != 2 || stored.Rubrics[0] != "a" || stored.Rubrics[1] != "b" {
		t.Fatalf("rubrics = %v", stored.Rubrics)
	}
	if !stored.CreatedDate.Equal(createdDate) {
		t.Fatalf("createdDate = %v, want %v", stored.CreatedDate, createdDate)
	}
}

type failingIndex struct {
	search.MemoryIndex
}

func (f *failingIndex) IndexDocument(ctx context.Context, entry search.Entry) error {
	return errors.New("connection refused")
}

func TestServiceCreateCompensatesOnIndexFailure(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Index: &failingIndex{}}
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateDocument{Text: "doomed"})
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Fatalf("err = %v, want ErrIndexUnavailable", err)
	}

	// The relational row must not survive a failed index write.
	if _, err := repo.GetByID(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("row survived failed index write: %v", err)
	}
}

func TestServiceSearchNoMatchesReturnsEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateDocument{Text: "something else"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	results, err := svc.Search(ctx, "absent", DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want empty", results)
	}
}

func TestServiceSearchSkipsStaleIndexHits(t *testing.T) {
	svc, _, index := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateDocument{Text: "market update"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Orphaned index entry pointing at a row that does not exist.
	if err := index.IndexDocument(ctx, search.Entry{ID: doc.ID + 100, Text: "market ghost"}); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	results, err := svc.Search(ctx, "market", DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != doc.ID {
		t.Fatalf("results = %+v, want only the real document", results)
	}
}

func TestServiceDeleteRemovesFromBothStores(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Create(ctx, CreateDocument{Text: "short lived"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected row gone, got %v", err)
	}
	results, err := svc.Search(ctx, "lived", DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want empty after delete", results)
	}
}

func TestServiceDeleteMissingDocument(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Delete(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestServiceCreateManyIndexesEverything(t *testing.T) {
	svc, _, index := newTestService()
	ctx := context.Background()

	result, err := svc.CreateMany(ctx, []CreateDocument{
		{Rubrics: []string{"news"}, Text: "first story"},
		{Rubrics: []string{"sport"}, Text: "second story"},
	})
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if result.Created != 2 || result.IndexFailures != 0 {
		t.Fatalf("result = %+v", result)
	}
	if index.Len() != 2 {
		t.Fatalf("index entries = %d, want 2", index.Len())
	}

	results, err := svc.Search(ctx, "story", DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2", results)
	}
}

func TestServiceSearchClampsLimit(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(ctx, CreateDocument{Text: "common term"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	results, err := svc.Search(ctx, "common", 100)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != DefaultSearchLimit {
		t.Fatalf("len = %d, want %d", len(results), DefaultSearchLimit)
	}
}
