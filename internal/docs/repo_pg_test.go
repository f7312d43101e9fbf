package docs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateReturnsAssignedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	createdDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs([]byte(`["news"]`), "market update", createdDate).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	id, err := repo.Create(context.Background(), Document{
		Rubrics:     []string{"news"},
		Text:        "market update",
		CreatedDate: createdDate,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 17 {
		t.Fatalf("id = %d, want 17", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateNilRubricsStoredAsEmptyList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	createdDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs([]byte(`[]`), "no rubrics", createdDate).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	if _, err := repo.Create(context.Background(), Document{
		Text:        "no rubrics",
		CreatedDate: createdDate,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateManyRunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	createdDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs([]byte(`["a"]`), "first", createdDate).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs([]byte(`["b"]`), "second", createdDate).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	ids, err := repo.CreateMany(context.Background(), []Document{
		{Rubrics: []string{"a"}, Text: "first", CreatedDate: createdDate},
		{Rubrics: []string{"b"}, Text: "second", CreatedDate: createdDate},
	})
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids = %v, want [1 2]", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansRubrics(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	createdDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, rubrics, text, created_date FROM documents").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "rubrics", "text", "created_date"}).
			AddRow(int64(5), []byte(`["news","finance"]`), "market update", createdDate))

	doc, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.ID != 5 || doc.Text != "market update" {
		t.Fatalf("doc = %+v", doc)
	}
	if len(doc.Rubrics) != 2 || doc.Rubrics[0] != "news" || doc.Rubrics[1] != "finance" {
		t.Fatalf("rubrics = %v", doc.Rubrics)
	}
	if !doc.CreatedDate.Equal(createdDate) {
		t.Fatalf("createdDate = %v", doc.CreatedDate)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, rubrics, text, created_date FROM documents").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rubrics", "text", "created_date"}))

	if _, err := repo.GetByID(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoGetByIDsOrdersAndLimits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, rubrics, text, created_date\s+FROM documents\s+WHERE id IN`).
		WithArgs(int64(1), int64(2), 20).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "rubrics", "text", "created_date"}).
			AddRow(int64(2), []byte(`[]`), "newer", newer).
			AddRow(int64(1), []byte(`[]`), "older", older))

	documents, err := repo.GetByIDs(context.Background(), []int64{1, 2}, 20)
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(documents) != 2 || documents[0].ID != 2 || documents[1].ID != 1 {
		t.Fatalf("documents = %+v", documents)
	}
}

func TestPGRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("DELETE FROM documents").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
