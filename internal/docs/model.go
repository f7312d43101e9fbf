package docs

import "time"

// Document is the authoritative record stored in the relational store.
type Document struct {
	ID          int64
	Rubrics     []string
	Text        string
	CreatedDate time.Time
}

// CreateDocument carries the fields a caller supplies to create a document.
// A zero CreatedDate means the service stamps the current time.
type CreateDocument struct {
	Rubrics     []string
	Text        string
	CreatedDate time.Time
}
