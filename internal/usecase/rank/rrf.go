package rank

import (
	"sort"

	"github.com/catalogix/askdex/internal/domain"
)

// RRFConstant is the standard Reciprocal Rank Fusion constant
// (Cormack et al. 2009).
const RRFConstant = 60

// FuseRRF merges ranked lists via Reciprocal Rank Fusion:
// score(d) = sum of 1/(k + rank_i(d)) over every list d appears in,
// rank 0-based. A document at moderate rank in several lists can outscore
// a top-ranked document from a single list. Ties break by first encounter
// order across the concatenation; output is truncated to limit.
func FuseRRF(lists [][]domain.Document, k, limit int) []domain.Document {
	type scored struct {
		doc   domain.Document
		score float64
		order int
	}

	merged := make(map[string]*scored)
	var encounter []*scored

	for _, list := range lists {
		for rank, doc := range list {
			s := 1.0 / float64(k+rank)
			if existing, ok := merged[doc.ID]; ok {
				existing.score += s
				continue
			}
			entry := &scored{doc: doc, score: s, order: len(encounter)}
			merged[doc.ID] = entry
			encounter = append(encounter, entry)
		}
	}

	sort.SliceStable(encounter, func(i, j int) bool {
		if encounter[i].score != encounter[j].score {
			return encounter[i].score > encounter[j].score
		}
		return encounter[i].order < encounter[j].order
	})

	if limit > 0 && len(encounter) > limit {
		encounter = encounter[:limit]
	}

	out := make([]domain.Document, len(encounter))
	for i, s := range encounter {
		out[i] = s.doc
	}
	return out
}

// Dedupe concatenates the lists keeping the first-seen occurrence of each
// document ID, preserving encounter order. Idempotent.
func Dedupe(lists ...[]domain.Document) []domain.Document {
	seen := make(map[string]struct{})
	var out []domain.Document
	for _, list := range lists {
		for _, doc := range list {
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			out = append(out, doc)
		}
	}
	return out
}

// RerankByEmbedding re-sorts candidates by cosine similarity of their
// stored text embedding to the query embedding and truncates to topK.
// Documents without a usable embedding are excluded, not rank-zero.
func RerankByEmbedding(queryVec domain.Vector, docs []domain.Document, topK int) []domain.Document {
	type scored struct {
		doc   domain.Document
		score float64
	}

	candidates := make([]scored, 0, len(docs))
	for _, doc := range docs {
		if !doc.HasEmbedding() {
			continue
		}
		candidates = append(candidates, scored{doc: doc, score: domain.Cosine(queryVec, doc.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}

	out := make([]domain.Document, len(candidates))
	for i, c := range candidates {
		out[i] = c.doc
	}
	return out
}
