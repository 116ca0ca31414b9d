package rank

import (
	"testing"

	"github.com/catalogix/askdex/internal/domain"
)

func docs(ids ...string) []domain.Document {
	out := make([]domain.Document, len(ids))
	for i, id := range ids {
		out[i] = domain.Document{ID: id, Text: "text " + id}
	}
	return out
}

func ids(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func position(docs []domain.Document, id string) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return len(docs)
}

func equalIDs(a []domain.Document, want ...string) bool {
	if len(a) != len(want) {
		return false
	}
	for i, d := range a {
		if d.ID != want[i] {
			return false
		}
	}
	return true
}

func TestFuseRRFSingleListPreservesOrder(t *testing.T) {
	got := FuseRRF([][]domain.Document{docs("a", "b", "c")}, RRFConstant, 10)
	if !equalIDs(got, "a", "b", "c") {
		t.Errorf("FuseRRF() = %v, want [a b c]", ids(got))
	}
}

func TestFuseRRFConsensusOutranksSingleTop(t *testing.T) {
	// "b" sits at rank 1 in both lists: 2/(k+1) > 1/k for k=60,
	// so consensus beats either list's top document.
	lists := [][]domain.Document{
		docs("a", "b", "c"),
		docs("d", "b", "e"),
	}
	got := FuseRRF(lists, RRFConstant, 10)
	if len(got) == 0 || got[0].ID != "b" {
		t.Errorf("FuseRRF() top = %v, want b", ids(got))
	}
}

func TestFuseRRFDuplicateScoresAccumulate(t *testing.T) {
	// "a" leads both lists and must stay first with a combined score.
	lists := [][]domain.Document{
		docs("a", "b"),
		docs("a", "c"),
	}
	got := FuseRRF(lists, RRFConstant, 10)
	if !equalIDs(got, "a", "b", "c") {
		t.Errorf("FuseRRF() = %v, want [a b c]", ids(got))
	}
}

func TestFuseRRFTiesBreakByEncounterOrder(t *testing.T) {
	// "b" and "c" both appear once at rank 1; "b" is encountered first.
	lists := [][]domain.Document{
		docs("a", "b"),
		docs("a", "c"),
	}
	got := FuseRRF(lists, RRFConstant, 10)
	if !equalIDs(got, "a", "b", "c") {
		t.Errorf("FuseRRF() = %v, want b before c on tie", ids(got))
	}
}

func TestFuseRRFTruncatesToLimit(t *testing.T) {
	got := FuseRRF([][]domain.Document{docs("a", "b", "c", "d", "e")}, RRFConstant, 2)
	if !equalIDs(got, "a", "b") {
		t.Errorf("FuseRRF() = %v, want [a b]", ids(got))
	}
}

func TestFuseRRFBetterDuplicateRankNeverDemotes(t *testing.T) {
	// Re-encountering a document at a better rank only adds to its fused
	// score, so its position can improve but never drop.
	base := FuseRRF([][]domain.Document{docs("a", "b", "x")}, RRFConstant, 10)
	boosted := FuseRRF([][]domain.Document{docs("a", "b", "x"), docs("x")}, RRFConstant, 10)

	if position(base, "x") < position(boosted, "x") {
		t.Errorf("x demoted from %d to %d after a rank-1 duplicate",
			position(base, "x"), position(boosted, "x"))
	}
	// 1/(k+2) + 1/k beats a's lone 1/k.
	if len(boosted) == 0 || boosted[0].ID != "x" {
		t.Errorf("FuseRRF() = %v, want x first after the boost", ids(boosted))
	}
}

func TestFuseRRFOutputDrawnFromInputs(t *testing.T) {
	lists := [][]domain.Document{
		docs("a", "b", "c"),
		docs("c", "d"),
		docs("e", "a"),
	}
	got := FuseRRF(lists, RRFConstant, 10)

	union := make(map[string]bool)
	for _, list := range lists {
		for _, d := range list {
			union[d.ID] = true
		}
	}
	seen := make(map[string]bool)
	for _, d := range got {
		if !union[d.ID] {
			t.Errorf("fused output contains %q, absent from every input", d.ID)
		}
		if seen[d.ID] {
			t.Errorf("fused output repeats %q", d.ID)
		}
		seen[d.ID] = true
	}
	if len(got) != len(union) {
		t.Errorf("fused output has %d documents, want all %d distinct inputs", len(got), len(union))
	}
}

func TestFuseRRFEmptyInput(t *testing.T) {
	if got := FuseRRF(nil, RRFConstant, 10); len(got) != 0 {
		t.Errorf("FuseRRF(nil) = %v, want empty", ids(got))
	}
	if got := FuseRRF([][]domain.Document{nil, nil}, RRFConstant, 10); len(got) != 0 {
		t.Errorf("FuseRRF(empty lists) = %v, want empty", ids(got))
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	got := Dedupe(docs("a", "b"), docs("b", "c", "a"), docs("d"))
	if !equalIDs(got, "a", "b", "c", "d") {
		t.Errorf("Dedupe() = %v, want [a b c d]", ids(got))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	once := Dedupe(docs("a", "b"), docs("b", "c"))
	twice := Dedupe(once)
	if !equalIDs(twice, ids(once)...) {
		t.Errorf("Dedupe(Dedupe(x)) = %v, want %v", ids(twice), ids(once))
	}
}

func TestRerankByEmbedding(t *testing.T) {
	query := domain.Vector{1, 0}
	candidates := []domain.Document{
		{ID: "far", Embedding: domain.Vector{0, 1}},
		{ID: "near", Embedding: domain.Vector{1, 0.1}},
		{ID: "exact", Embedding: domain.Vector{1, 0}},
		{ID: "no-embedding"},
	}

	got := RerankByEmbedding(query, candidates, 10)
	if !equalIDs(got, "exact", "near", "far") {
		t.Errorf("RerankByEmbedding() = %v, want [exact near far]", ids(got))
	}
}

func TestRerankByEmbeddingTruncates(t *testing.T) {
	query := domain.Vector{1, 0}
	candidates := []domain.Document{
		{ID: "a", Embedding: domain.Vector{1, 0}},
		{ID: "b", Embedding: domain.Vector{1, 0.5}},
		{ID: "c", Embedding: domain.Vector{0, 1}},
	}

	got := RerankByEmbedding(query, candidates, 2)
	if !equalIDs(got, "a", "b") {
		t.Errorf("RerankByEmbedding() = %v, want [a b]", ids(got))
	}
}
