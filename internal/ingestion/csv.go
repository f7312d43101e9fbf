package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"docstore-backend/internal/docs"
)

// dateLayouts are the timestamp formats accepted in the created_date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCSV reads document rows from CSV data. The header row must name the
// columns rubrics, text and created_date; column order does not matter.
func ParseCSV(r io.Reader, separator rune) ([]docs.CreateDocument, error) {
	reader := csv.NewReader(r)
	reader.Comma = separator
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var out []docs.CreateDocument
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rubrics, err := parseRubrics(record[cols.rubrics])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		createdDate, err := parseDate(record[cols.createdDate])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		out = append(out, docs.CreateDocument{
			Rubrics:     rubrics,
			Text:        record[cols.text],
			CreatedDate: createdDate,
		})
	}
	return out, nil
}

type columnIndexes struct {
	rubrics     int
	text        int
	createdDate int
}

func mapColumns(header []string) (columnIndexes, error) {
	cols := columnIndexes{rubrics: -1, text: -1, createdDate: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "rubrics":
			cols.rubrics = i
		case "text":
			cols.text = i
		case "created_date":
			cols.createdDate = i
		}
	}
	if cols.rubrics < 0 || cols.text < 0 || cols.createdDate < 0 {
		return cols, fmt.Errorf("header must contain rubrics, text and created_date columns, got %v", header)
	}
	return cols, nil
}

// parseRubrics reads a JSON list of labels. Source files commonly use
// single-quoted Python-style lists, so those are normalized first.
func parseRubrics(cell string) ([]string, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "[]" {
		return []string{}, nil
	}
	normalized := cell
	if !strings.Contains(cell, `"`) {
		normalized = strings.ReplaceAll(cell, "'", `"`)
	}
	var rubrics []string
	if err := json.Unmarshal([]byte(normalized), &rubrics); err != nil {
		return nil, fmt.Errorf("parse rubrics %q: %w", cell, err)
	}
	return rubrics, nil
}

func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse created_date %q: unsupported format", cell)
}
