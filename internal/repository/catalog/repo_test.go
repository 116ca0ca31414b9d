package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/db"
	"github.com/catalogix/askdex/internal/domain"
)

// mockStore is a programmable store double recording every KNN query.
type mockStore struct {
	searchFn func(q *db.KNNQuery) (*db.SearchResult, error)
	docs     map[string]storedDocument
	queries  []*db.KNNQuery
	created  []*db.IndexDefinition
	exists   map[string]bool
}

func newMockStore() *mockStore {
	return &mockStore{
		docs:   make(map[string]storedDocument),
		exists: make(map[string]bool),
	}
}

func (m *mockStore) addDoc(key string, doc storedDocument) {
	m.docs[key] = doc
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.queries = append(m.queries, q)
	return m.searchFn(q)
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	doc, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return json.Marshal(doc)
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.exists[def.Name] {
		return db.ErrIndexExists
	}
	m.created = append(m.created, def)
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, name string) (bool, error) {
	return m.exists[name], nil
}

func hits(keys ...string) *db.SearchResult {
	sr := &db.SearchResult{Total: len(keys)}
	for i, k := range keys {
		sr.Entries = append(sr.Entries, db.SearchEntry{Key: k, Score: 1.0 - float64(i)*0.1})
	}
	return sr
}

func seedDocs(store *mockStore, n int, category string) []string {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("askdex:doc:%03d", i)
		store.addDoc(key, storedDocument{
			ID:       fmt.Sprintf("doc-%03d", i),
			Text:     "catalog entry",
			Category: category,
		})
		keys[i] = key
	}
	return keys
}

func TestSearchUnfilteredPassesThrough(t *testing.T) {
	store := newMockStore()
	keys := seedDocs(store, 3, "automotive")
	store.searchFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		if q.Filter != nil && !q.Filter.IsEmpty() {
			t.Errorf("unfiltered search sent filter %v", q.Filter)
		}
		return hits(keys...), nil
	}

	repo := New(store, NewCapabilityRegistry(), zap.NewNop())
	docs, err := repo.Search(context.Background(), domain.SpaceText, domain.Vector{1, 0}, 3, "")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("Search() = %d docs, want 3", len(docs))
	}
	if docs[0].ID != "doc-000" {
		t.Errorf("rank order lost: first doc = %s", docs[0].ID)
	}
	if store.queries[0].IndexName != TextIndexName {
		t.Errorf("IndexName = %s, want %s", store.queries[0].IndexName, TextIndexName)
	}
}

func TestSearchImageSpaceUsesImageIndex(t *testing.T) {
	store := newMockStore()
	store.searchFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{}, nil
	}

	repo := New(store, NewCapabilityRegistry(), zap.NewNop())
	if _, err := repo.Search(context.Background(), domain.SpaceImage, domain.Vector{1}, 5, ""); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if store.queries[0].IndexName != ImageIndexName {
		t.Errorf("IndexName = %s, want %s", store.queries[0].IndexName, ImageIndexName)
	}
}

func TestSearchUnknownSpace(t *testing.T) {
	repo := New(newMockStore(), NewCapabilityRegistry(), zap.NewNop())
	if _, err := repo.Search(context.Background(), domain.Space("audio"), domain.Vector{1}, 5, ""); err == nil {
		t.Fatal("Search() with unknown space should fail")
	}
}

func TestSearchLearnsBrokenFilterAndFallsBack(t *testing.T) {
	store := newMockStore()
	seedDocs(store, 10, "automotive")
	store.searchFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		if q.Filter != nil && !q.Filter.IsEmpty() {
			return nil, fmt.Errorf("%w: Unknown field `category`", db.ErrFilterUnsupported)
		}
		return hits("askdex:doc:000", "askdex:doc:001", "askdex:doc:002"), nil
	}

	caps := NewCapabilityRegistry()
	repo := New(store, caps, zap.NewNop())

	docs, err := repo.Search(context.Background(), domain.SpaceText, domain.Vector{1}, 2, "automotive")
	if err != nil {
		t.Fatalf("Search() should absorb the filter failure: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("Search() = %d docs, want topK 2 after local filtering", len(docs))
	}
	if !caps.IsUnsupported("category") {
		t.Error("category should be learned broken")
	}

	// First call: failed filtered attempt + unfiltered fallback.
	if len(store.queries) != 2 {
		t.Fatalf("first call made %d queries, want 2", len(store.queries))
	}
	if store.queries[1].Filter != nil && !store.queries[1].Filter.IsEmpty() {
		t.Error("fallback query must not carry a filter")
	}

	// Second call skips the doomed filtered attempt entirely.
	store.queries = nil
	if _, err := repo.Search(context.Background(), domain.SpaceText, domain.Vector{1}, 2, "automotive"); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(store.queries) != 1 {
		t.Errorf("known-broken call made %d queries, want 1 (fallback only)", len(store.queries))
	}
}

func TestSearchFallbackWidensCandidatePool(t *testing.T) {
	store := newMockStore()
	seedDocs(store, 10, "automotive")
	store.searchFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		return hits("askdex:doc:000"), nil
	}

	caps := NewCapabilityRegistry()
	caps.MarkUnsupported("category")
	repo := New(store, caps, zap.NewNop())

	tests := []struct {
		topK  int
		wantK int
	}{
		{2, 100},  // floor
		{50, 150}, // 3*topK
		{90, 250}, // cap
	}
	for _, tt := range tests {
		store.queries = nil
		if _, err := repo.Search(context.Background(), domain.SpaceText, domain.Vector{1}, tt.topK, "automotive"); err != nil {
			t.Fatalf("Search(topK=%d) error: %v", tt.topK, err)
		}
		if got := store.queries[0].K; got != tt.wantK {
			t.Errorf("Search(topK=%d) widened K = %d, want %d", tt.topK, got, tt.wantK)
		}
	}
}

func TestSearchFallbackFiltersLocally(t *testing.T) {
	store := newMockStore()
	store.addDoc("askdex:doc:a", storedDocument{ID: "a", Category: "automotive"})
	store.addDoc("askdex:doc:b", storedDocument{ID: "b", Category: "garden"})
	store.addDoc("askdex:doc:c", storedDocument{ID: "c", Category: "automotive"})
	store.searchFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		return hits("askdex:doc:a", "askdex:doc:b", "askdex:doc:c"), nil
	}

	caps := NewCapabilityRegistry()
	caps.MarkUnsupported("category")
	repo := New(store, caps, zap.NewNop())

	docs, err := repo.Search(context.Background(), domain.SpaceText, domain.Vector{1}, 5, "automotive")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "a" || docs[1].ID != "c" {
		t.Errorf("Search() = %v, want [a c] in rank order", docIDs(docs))
	}
}

func TestSearchHardErrorPropagates(t *testing.T) {
	store := newMockStore()
	store.searchFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		return nil, fmt.Errorf("connection refused")
	}

	repo := New(store, NewCapabilityRegistry(), zap.NewNop())
	_, err := repo.Search(context.Background(), domain.SpaceText, domain.Vector{1}, 5, "automotive")
	if err == nil {
		t.Fatal("non-capability backend errors must propagate")
	}
	if !errors.Is(err, domain.ErrSearchBackend) {
		t.Errorf("err = %v, want wrapped domain.ErrSearchBackend", err)
	}
}

func TestHydrateSkipsVanishedAndMalformed(t *testing.T) {
	store := newMockStore()
	store.addDoc("askdex:doc:ok", storedDocument{ID: "ok", Text: "fine"})
	store.searchFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		return hits("askdex:doc:gone", "askdex:doc:ok"), nil
	}

	repo := New(store, NewCapabilityRegistry(), zap.NewNop())
	docs, err := repo.Search(context.Background(), domain.SpaceText, domain.Vector{1}, 5, "")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "ok" {
		t.Errorf("Search() = %v, want [ok]", docIDs(docs))
	}
}

func TestEnsureIndexesCreatesBoth(t *testing.T) {
	store := newMockStore()
	repo := New(store, NewCapabilityRegistry(), zap.NewNop())

	if err := repo.EnsureIndexes(context.Background(), 384, 512, 32, 400); err != nil {
		t.Fatalf("EnsureIndexes() error: %v", err)
	}
	if len(store.created) != 2 {
		t.Fatalf("created %d indexes, want 2", len(store.created))
	}
	if store.created[0].Name != TextIndexName || store.created[1].Name != ImageIndexName {
		t.Errorf("created = [%s %s], want [%s %s]",
			store.created[0].Name, store.created[1].Name, TextIndexName, ImageIndexName)
	}
}

func TestEnsureIndexesIdempotent(t *testing.T) {
	store := newMockStore()
	store.exists[TextIndexName] = true
	store.exists[ImageIndexName] = true

	repo := New(store, NewCapabilityRegistry(), zap.NewNop())
	if err := repo.EnsureIndexes(context.Background(), 384, 512, 32, 400); err != nil {
		t.Fatalf("EnsureIndexes() on existing indexes should succeed: %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("created %d indexes, want 0", len(store.created))
	}
}

func docIDs(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
