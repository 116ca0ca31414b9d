package domain

// ImageRef points at a catalog image extracted from a source document.
// Score is assigned during ranking only and is never persisted.
type ImageRef struct {
	Path      string
	Page      int
	OCRText   string
	Embedding Vector // cross-modal space
	Score     float64
}

// Document is a single retrieved catalog unit. Identity is the ID: two
// documents are the same iff their IDs match, regardless of which
// retrieval pass produced them.
type Document struct {
	ID        string
	Text      string
	Category  string
	Page      int
	Images    []ImageRef
	Embedding Vector // text space
}

// HasEmbedding reports whether the document carries a usable text embedding.
func (d Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}
