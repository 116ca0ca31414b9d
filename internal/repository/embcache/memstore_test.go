package embcache

import (
	"context"
	"errors"
	"testing"

	"github.com/catalogix/askdex/internal/db"
)

func TestMemStoreGetSet(t *testing.T) {
	s := NewMemStore(0)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrKeyNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q, want v", got)
	}
}

func TestMemStoreEvictsOldestInsertion(t *testing.T) {
	s := NewMemStore(2)
	ctx := context.Background()

	s.Set(ctx, "a", []byte("1"))
	s.Set(ctx, "b", []byte("2"))
	s.Set(ctx, "c", []byte("3"))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("oldest key should be evicted, Get(a) error = %v", err)
	}
	if _, err := s.Get(ctx, "c"); err != nil {
		t.Errorf("newest key should survive, Get(c) error = %v", err)
	}
}

func TestMemStoreOverwriteDoesNotGrow(t *testing.T) {
	s := NewMemStore(2)
	ctx := context.Background()

	s.Set(ctx, "a", []byte("1"))
	s.Set(ctx, "a", []byte("2"))
	s.Set(ctx, "b", []byte("3"))

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after overwrite", s.Len())
	}
	got, _ := s.Get(ctx, "a")
	if string(got) != "2" {
		t.Errorf("Get(a) = %q, want latest value 2", got)
	}
}

func TestMemStoreUnboundedNeverEvicts(t *testing.T) {
	s := NewMemStore(0)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		s.Set(ctx, string(rune('a'+i%26))+string(rune('0'+i/26)), []byte{byte(i)})
	}
	if s.Len() != 100 {
		t.Errorf("Len() = %d, want 100", s.Len())
	}
}
