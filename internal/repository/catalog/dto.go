package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/catalogix/askdex/internal/domain"
)

// storedImage is the persisted JSON shape of a catalog image.
type storedImage struct {
	Path      string    `json:"path"`
	Page      int       `json:"page,omitempty"`
	OCRText   string    `json:"ocr_text,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// storedDocument is the persisted JSON shape of a catalog document,
// written by the offline ingestion pipeline.
type storedDocument struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Category  string        `json:"category,omitempty"`
	Page      int           `json:"page,omitempty"`
	Images    []storedImage `json:"images,omitempty"`
	Embedding []float32     `json:"embedding,omitempty"`
}

// MarshalDocument serializes a document into the persisted JSON shape.
// Used by ingestion tooling; retrieval only ever reads.
func MarshalDocument(doc domain.Document) ([]byte, error) {
	sd := storedDocument{
		ID:        doc.ID,
		Text:      doc.Text,
		Category:  doc.Category,
		Page:      doc.Page,
		Embedding: doc.Embedding,
	}
	for _, img := range doc.Images {
		sd.Images = append(sd.Images, storedImage{
			Path:      img.Path,
			Page:      img.Page,
			OCRText:   img.OCRText,
			Embedding: img.Embedding,
		})
	}
	return json.Marshal(sd)
}

func unmarshalDocument(data []byte) (domain.Document, error) {
	var sd storedDocument
	if err := json.Unmarshal(data, &sd); err != nil {
		return domain.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}

	doc := domain.Document{
		ID:        sd.ID,
		Text:      sd.Text,
		Category:  sd.Category,
		Page:      sd.Page,
		Embedding: sd.Embedding,
	}
	for _, img := range sd.Images {
		doc.Images = append(doc.Images, domain.ImageRef{
			Path:      img.Path,
			Page:      img.Page,
			OCRText:   img.OCRText,
			Embedding: img.Embedding,
		})
	}
	return doc, nil
}
