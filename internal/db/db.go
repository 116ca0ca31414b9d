package db

import (
	"context"
	"time"
)

// Filter is a conjunctive field→value predicate applied to tag fields.
type Filter map[string]string

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool { return len(f) == 0 }

// Keys returns the filter's field names.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	return keys
}

// KNNQuery describes a vector similarity search against an FT index.
type KNNQuery struct {
	IndexName string
	Vector    []float32
	K         int
	Filter    Filter
}

// SearchEntry is a single FT.SEARCH hit: the document key and its
// similarity score (cosine distance converted to similarity).
type SearchEntry struct {
	Key   string
	Score float64
}

// SearchResult holds FT.SEARCH hits ordered by descending similarity.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Store is the database facade. Consumers depend on narrow sub-interfaces.
type Store interface {
	Pinger
	JSONStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides KNN search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
