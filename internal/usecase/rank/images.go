package rank

import (
	"sort"

	"github.com/catalogix/askdex/internal/domain"
)

// ImageScorer scores candidate images against a cross-modal query vector.
// Images below MinScore never reach the output; images whose parent
// document was already retrieved by a text-context pass get the dual-match
// boost, applied once regardless of how many parents matched.
type ImageScorer struct {
	MinScore float64
	Boost    float64
	Limit    int
}

// NewImageScorer creates a scorer with the given cutoff, boost and cap.
func NewImageScorer(minScore, boost float64, limit int) ImageScorer {
	return ImageScorer{MinScore: minScore, Boost: boost, Limit: limit}
}

// Collect gathers scored images from the visual-direct pass and the
// text-context pass, deduplicates by path (first seen wins), sorts by
// descending score and truncates to the cap. Images without an embedding
// are skipped, not errors.
func (s ImageScorer) Collect(queryVec domain.Vector, visualDocs, textDocs []domain.Document) []domain.ImageRef {
	seen := make(map[string]struct{})
	var out []domain.ImageRef

	collect := func(docs []domain.Document, boost float64) {
		for _, doc := range docs {
			for _, img := range doc.Images {
				if img.Path == "" || len(img.Embedding) == 0 {
					continue
				}
				if _, ok := seen[img.Path]; ok {
					continue
				}

				score := domain.Cosine(queryVec, img.Embedding) * boost
				if score < s.MinScore {
					continue
				}

				img.Score = score
				if img.Page == 0 {
					img.Page = doc.Page
				}
				out = append(out, img)
				seen[img.Path] = struct{}{}
			}
		}
	}

	collect(visualDocs, 1.0)
	collect(textDocs, s.Boost)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if s.Limit > 0 && len(out) > s.Limit {
		out = out[:s.Limit]
	}
	return out
}
