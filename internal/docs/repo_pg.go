package docs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var _ Repo = (*PGRepo)(nil)

// Create inserts a new document and returns the sequence-assigned id.
func (r *PGRepo) Create(ctx context.Context, doc Document) (int64, error) {
	const query = `
INSERT INTO documents (rubrics, text, created_date)
VALUES ($1, $2, $3)
RETURNING id`

	rubrics, err := marshalRubrics(doc.Rubrics)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := r.DB.QueryRowContext(ctx, query, rubrics, doc.Text, doc.CreatedDate).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateMany inserts documents in a single transaction.
func (r *PGRepo) CreateMany(ctx context.Context, documents []Document) ([]int64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO documents (rubrics, text, created_date)
VALUES ($1, $2, $3)
RETURNING id`

	ids := make([]int64, 0, len(documents))
	for _, doc := range documents {
		rubrics, err := marshalRubrics(doc.Rubrics)
		if err != nil {
			return nil, err
		}
		var id int64
		if err := tx.QueryRowContext(ctx, query, rubrics, doc.Text, doc.CreatedDate).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetByID fetches a document by id.
func (r *PGRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	const query = `
SELECT id, rubrics, text, created_date
FROM documents
WHERE id = $1`

	var doc Document
	var rubricsRaw []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&doc.ID, &rubricsRaw, &doc.Text, &doc.CreatedDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if err := unmarshalRubrics(rubricsRaw, &doc.Rubrics); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// GetByIDs fetches the documents with the given ids ordered newest-first.
func (r *PGRepo) GetByIDs(ctx context.Context, ids []int64, limit int) ([]Document, error) {
	if len(ids) == 0 {
		return []Document{}, nil
	}
	if limit <= 0 {
		limit = len(ids)
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
SELECT id, rubrics, text, created_date
FROM documents
WHERE id IN (%s)
ORDER BY created_date DESC
LIMIT $%d`, strings.Join(placeholders, ", "), len(ids)+1)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0, len(ids))
	for rows.Next() {
		var doc Document
		var rubricsRaw []byte
		if err := rows.Scan(&doc.ID, &rubricsRaw, &doc.Text, &doc.CreatedDate); err != nil {
			return nil, err
		}
		if err := unmarshalRubrics(rubricsRaw, &doc.Rubrics); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes a document by id.
func (r *PGRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM documents WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalRubrics(rubrics []string) ([]byte, error) {
	if rubrics == nil {
		rubrics = []string{}
	}
	data, err := json.Marshal(rubrics)
	if err != nil {
		return nil, fmt.Errorf("marshal rubrics: %w", err)
	}
	return data, nil
}

func unmarshalRubrics(raw []byte, into *[]string) error {
	if len(raw) == 0 {
		*into = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("unmarshal rubrics: %w", err)
	}
	if *into == nil {
		*into = []string{}
	}
	return nil
}
