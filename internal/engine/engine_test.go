package engine

import (
	"context"
	"testing"

	"multconst/internal/cache"
	"multconst/internal/profile"
	"multconst/internal/trace"
)

func TestNewFindBinaryAndCache(t *testing.T) {
	e := New(profile.RISC())

	seq, err := e.Find(51)
	if err != nil {
		t.Fatalf("Find(51) error: %v", err)
	}
	if seq.Value() != 51 {
		t.Errorf("Find(51).Value() = %d, want 51", seq.Value())
	}

	binSeq, err := e.BinarySequence(341)
	if err != nil {
		t.Fatalf("BinarySequence(341) error: %v", err)
	}
	if binSeq.Value() != 341 {
		t.Errorf("BinarySequence(341).Value() = %d, want 341", binSeq.Value())
	}

	entry, ok := e.Cache().Peek(51)
	if !ok || !entry.Finished {
		t.Errorf("Cache().Peek(51) = %+v, ok=%v, want a finished entry", entry, ok)
	}
	if e.Profile() == nil {
		t.Error("Profile() returned nil")
	}
}

func TestNewWithCacheReusesSuppliedCache(t *testing.T) {
	p := profile.RISC()
	c := cache.New(p)
	c.Insert(9, 2, 2, true, nil)

	e := NewWithCache(p, c)
	if e.Cache() != c {
		t.Error("NewWithCache did not adopt the supplied cache")
	}
}

func TestSetTraceNilFallsBackToNop(t *testing.T) {
	e := New(profile.RISC())
	e.SetTrace(nil)
	if _, err := e.Find(7); err != nil {
		t.Fatalf("Find(7) error after SetTrace(nil): %v", err)
	}
}

func TestSweepThroughFacade(t *testing.T) {
	e := New(profile.RISC())
	_ = trace.Nop{}
	results, err := e.Sweep(context.Background(), 2, 12, 2)
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if len(results) != 11 {
		t.Errorf("Sweep returned %d results, want 11", len(results))
	}
}
