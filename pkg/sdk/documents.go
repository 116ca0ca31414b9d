package askdex

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/repository/catalog"
)

// DocumentImage is an image attached to an ingested document. Embedding is
// the image's vector in the cross-modal space; OCRText is matched against
// query entities during cross-modal scoring.
type DocumentImage struct {
	Path      string
	Page      int
	OCRText   string
	Embedding []float32
}

// Document is a catalog unit to ingest. If Embedding is empty the client
// computes it from Text with the configured text embedder. Image embeddings
// cannot be derived from text and must be supplied by the caller; images
// without one are stored but never surface in visual results.
type Document struct {
	ID        string
	Text      string
	Category  string
	Page      int
	Images    []DocumentImage
	Embedding []float32
}

// UpsertDocument stores a document, replacing any existing one with the
// same ID.
func (c *Client) UpsertDocument(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return errors.New("askdex: document id required")
	}
	if doc.Text == "" {
		return errors.New("askdex: document text required")
	}

	embedding := domain.Vector(doc.Embedding)
	if len(embedding) == 0 {
		vec, err := c.textEmb.Embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("askdex: embed document %q: %w", doc.ID, err)
		}
		embedding = vec
	}

	d := domain.Document{
		ID:        doc.ID,
		Text:      doc.Text,
		Category:  doc.Category,
		Page:      doc.Page,
		Embedding: embedding,
	}
	for _, img := range doc.Images {
		d.Images = append(d.Images, domain.ImageRef{
			Path:      img.Path,
			Page:      img.Page,
			OCRText:   img.OCRText,
			Embedding: domain.Vector(img.Embedding),
		})
	}

	data, err := catalog.MarshalDocument(d)
	if err != nil {
		return fmt.Errorf("askdex: marshal document %q: %w", doc.ID, err)
	}
	if err := c.store.JSONSet(ctx, catalog.DocKey(doc.ID), "$", data); err != nil {
		return fmt.Errorf("askdex: store document %q: %w", doc.ID, err)
	}
	return nil
}

// UpsertDocuments stores documents one by one and stops at the first
// failure.
func (c *Client) UpsertDocuments(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		if err := c.UpsertDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
