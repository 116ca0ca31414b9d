package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/db"
	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/metrics"
)

// Key layout and FT index names for the catalog corpus.
const (
	KeyPrefix    = "askdex:"
	docKeyPrefix = KeyPrefix + "doc:"

	// TextIndexName indexes $.embedding (primary text space).
	TextIndexName = KeyPrefix + "text:idx"
	// ImageIndexName indexes $.images[*].embedding (cross-modal space).
	ImageIndexName = KeyPrefix + "image:idx"
)

// DocKey returns the JSON key a document is stored under.
func DocKey(id string) string {
	return docKeyPrefix + id
}

// defaultFallbackMaxK caps the widened candidate pool on the fallback path.
const defaultFallbackMaxK = 250

// store is the consumer interface for catalog retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo is the resilient search client over the catalog corpus. When the
// index refuses a filter it learns the broken key and transparently falls
// back to a widened unfiltered search with local re-filtering.
type Repo struct {
	store        store
	caps         *CapabilityRegistry
	logger       *zap.Logger
	fallbackMaxK int
}

// New creates a catalog repository. The capability registry is injected so
// independent clients can carry independent learned state.
func New(s store, caps *CapabilityRegistry, logger *zap.Logger) *Repo {
	return &Repo{
		store:        s,
		caps:         caps,
		logger:       logger,
		fallbackMaxK: defaultFallbackMaxK,
	}
}

// WithFallbackMaxK overrides the fallback candidate pool cap.
func (r *Repo) WithFallbackMaxK(k int) *Repo {
	if k > 0 {
		r.fallbackMaxK = k
	}
	return r
}

// BrokenFilters returns the filter keys learned unsupported, for diagnostics.
func (r *Repo) BrokenFilters() []string {
	return r.caps.Snapshot()
}

// Search runs a similarity search in the given space and returns up to topK
// documents ordered by descending similarity. An empty category applies no
// filter. Capability mismatches are absorbed by the fallback path; any other
// backend error is fatal for the call.
func (r *Repo) Search(
	ctx context.Context, space domain.Space, vector domain.Vector, topK int, category string,
) ([]domain.Document, error) {
	index, err := indexForSpace(space)
	if err != nil {
		return nil, err
	}

	filter := db.Filter{}
	if category != "" {
		filter["category"] = category
	}

	if filter.IsEmpty() {
		return r.searchDirect(ctx, index, vector, topK)
	}

	// Skip the guaranteed-failing call for filters already learned broken.
	if r.caps.AnyUnsupported(filter.Keys()) {
		metrics.SearchFallbackTotal.WithLabelValues(string(space), "known_broken").Inc()
		return r.searchFallback(ctx, index, vector, topK, filter)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: index,
		Vector:    vector,
		K:         topK,
		Filter:    filter,
	})
	if err != nil {
		if errors.Is(err, db.ErrFilterUnsupported) {
			r.caps.MarkUnsupported(filter.Keys()...)
			r.logger.Warn("Index rejected filter, learning broken keys and falling back",
				zap.String("space", string(space)),
				zap.Strings("keys", filter.Keys()),
				zap.Error(err),
			)
			metrics.SearchFallbackTotal.WithLabelValues(string(space), "detected").Inc()
			return r.searchFallback(ctx, index, vector, topK, filter)
		}
		return nil, fmt.Errorf("search %s: %w", space, errors.Join(domain.ErrSearchBackend, err))
	}

	return r.hydrate(ctx, sr)
}

func (r *Repo) searchDirect(
	ctx context.Context, index string, vector domain.Vector, topK int,
) ([]domain.Document, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: index,
		Vector:    vector,
		K:         topK,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, errors.Join(domain.ErrSearchBackend, err))
	}
	return r.hydrate(ctx, sr)
}

// searchFallback widens the candidate pool, filters locally against the
// hydrated documents' fields, and truncates to the requested topK.
func (r *Repo) searchFallback(
	ctx context.Context, index string, vector domain.Vector, topK int, filter db.Filter,
) ([]domain.Document, error) {
	k := 3 * topK
	if k < 100 {
		k = 100
	}
	if k > r.fallbackMaxK {
		k = r.fallbackMaxK
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: index,
		Vector:    vector,
		K:         k,
	})
	if err != nil {
		return nil, fmt.Errorf("fallback search %s: %w", index, errors.Join(domain.ErrSearchBackend, err))
	}

	docs, err := r.hydrate(ctx, sr)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Document, 0, topK)
	for _, doc := range docs {
		if matchesFilter(doc, filter) {
			filtered = append(filtered, doc)
			if len(filtered) == topK {
				break
			}
		}
	}
	return filtered, nil
}

// hydrate loads full documents for the search hits, preserving rank order.
// Keys that vanished between search and load are skipped.
func (r *Repo) hydrate(ctx context.Context, sr *db.SearchResult) ([]domain.Document, error) {
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	docs := make([]domain.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		data, err := r.store.JSONGet(ctx, entry.Key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("load document %s: %w", entry.Key, err)
		}
		doc, err := unmarshalDocument(data)
		if err != nil {
			r.logger.Warn("Skipping malformed document", zap.String("key", entry.Key), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// EnsureIndexes creates both FT indexes if absent. Ingestion owns document
// writes; the service only guarantees the indexes exist.
func (r *Repo) EnsureIndexes(ctx context.Context, textDim, imageDim, hnswM, hnswEF int) error {
	textIdx, err := db.NewIndex(TextIndexName).
		Prefix(docKeyPrefix).
		Tag("$.category", "category").
		Text("$.text", "text").
		Numeric("$.page", "page").
		VectorHNSW("$.embedding", "embedding", textDim, hnswM, hnswEF).
		Build()
	if err != nil {
		return fmt.Errorf("build text index: %w", err)
	}

	imageIdx, err := db.NewIndex(ImageIndexName).
		Prefix(docKeyPrefix).
		Tag("$.category", "category").
		VectorHNSW("$.images[*].embedding", "embedding", imageDim, hnswM, hnswEF).
		Build()
	if err != nil {
		return fmt.Errorf("build image index: %w", err)
	}

	for _, def := range []*db.IndexDefinition{textIdx, imageIdx} {
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

func indexForSpace(space domain.Space) (string, error) {
	switch space {
	case domain.SpaceText:
		return TextIndexName, nil
	case domain.SpaceImage:
		return ImageIndexName, nil
	default:
		return "", fmt.Errorf("unknown search space %q", space)
	}
}

// matchesFilter applies the filter predicate locally against document fields.
func matchesFilter(doc domain.Document, filter db.Filter) bool {
	for k, want := range filter {
		if fieldValue(doc, k) != want {
			return false
		}
	}
	return true
}

func fieldValue(doc domain.Document, key string) string {
	switch key {
	case "category":
		return doc.Category
	case "page":
		return strconv.Itoa(doc.Page)
	default:
		return ""
	}
}
