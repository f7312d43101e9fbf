package docs

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Rubrics     []string   `json:"rubrics"`
	Text        string     `json:"text"`
	CreatedDate *time.Time `json:"createdDate,omitempty"`
}

// Validate checks the request body.
func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required.Error("text is required")),
	)
}

func (r CreateDocumentRequest) toCreate() CreateDocument {
	in := CreateDocument{
		Rubrics: r.Rubrics,
		Text:    r.Text,
	}
	if r.CreatedDate != nil {
		in.CreatedDate = r.CreatedDate.UTC()
	}
	return in
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID          int64     `json:"id"`
	Rubrics     []string  `json:"rubrics"`
	Text        string    `json:"text"`
	CreatedDate time.Time `json:"createdDate"`
}

func toResponse(doc Document) DocumentResponse {
	rubrics := doc.Rubrics
	if rubrics == nil {
		rubrics = []string{}
	}
	return DocumentResponse{
		ID:          doc.ID,
		Rubrics:     rubrics,
		Text:        doc.Text,
		CreatedDate: doc.CreatedDate,
	}
}
