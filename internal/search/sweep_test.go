package search

import (
	"context"
	"testing"

	"multconst/internal/profile"
)

func TestSweepCoversRange(t *testing.T) {
	e := New(profile.RISC())
	results, err := e.Sweep(context.Background(), 2, 20, 4)
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if len(results) != 19 {
		t.Fatalf("Sweep returned %d results, want 19", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("Sweep result for k=%d: %v", r.K, r.Err)
		}
		if r.Seq.Value() != r.K {
			t.Errorf("Sweep result for k=%d realises %d", r.K, r.Seq.Value())
		}
	}
}

func TestSweepPopulatesSharedCache(t *testing.T) {
	e := New(profile.RISC())
	if _, err := e.Sweep(context.Background(), 2, 10, 0); err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	for k := int64(2); k <= 10; k++ {
		entry, ok := e.Cache.Peek(k)
		if !ok || !entry.Finished {
			t.Errorf("entry(%d) = %+v, ok=%v, want a finished entry after Sweep", entry, ok, k)
		}
	}
}

func TestSweepEmptyRange(t *testing.T) {
	e := New(profile.RISC())
	results, err := e.Sweep(context.Background(), 10, 5, 2)
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if results != nil {
		t.Errorf("Sweep(10, 5) = %v, want nil for an empty range", results)
	}
}
