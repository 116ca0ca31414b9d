package catalog

import (
	"sync"
	"testing"
)

func TestCapabilityRegistryMarkAndQuery(t *testing.T) {
	reg := NewCapabilityRegistry()

	if reg.IsUnsupported("category") {
		t.Fatal("fresh registry should know no broken keys")
	}

	reg.MarkUnsupported("category")

	if !reg.IsUnsupported("category") {
		t.Error("category should be unsupported after marking")
	}
	if reg.IsUnsupported("page") {
		t.Error("page was never marked")
	}
	if !reg.AnyUnsupported([]string{"page", "category"}) {
		t.Error("AnyUnsupported should report true when one key is broken")
	}
	if reg.AnyUnsupported([]string{"page"}) {
		t.Error("AnyUnsupported should report false for healthy keys")
	}
}

func TestCapabilityRegistryIsMonotonic(t *testing.T) {
	reg := NewCapabilityRegistry()
	reg.MarkUnsupported("category")
	reg.MarkUnsupported("category") // re-marking is a no-op

	got := reg.Snapshot()
	if len(got) != 1 || got[0] != "category" {
		t.Errorf("Snapshot() = %v, want [category]", got)
	}
}

func TestCapabilityRegistrySnapshotSorted(t *testing.T) {
	reg := NewCapabilityRegistry()
	reg.MarkUnsupported("page", "category", "brand")

	got := reg.Snapshot()
	want := []string{"brand", "category", "page"}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Snapshot()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCapabilityRegistryConcurrentMarking(t *testing.T) {
	reg := NewCapabilityRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.MarkUnsupported("category")
			_ = reg.IsUnsupported("category")
		}()
	}
	wg.Wait()

	if !reg.IsUnsupported("category") {
		t.Error("category should be unsupported after concurrent marking")
	}
}
