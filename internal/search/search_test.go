package search

import (
	"math"
	"testing"

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
	"multconst/internal/seeder"
)

func TestFindRealisesK(t *testing.T) {
	tests := []int64{0, 1, 2, 3, 5, 7, 9, 17, 51, 340, 341, 342, 343, -1, -7, -51}
	e := New(profile.RISC())
	for _, k := range tests {
		seq, err := e.Find(k)
		if err != nil {
			t.Fatalf("Find(%d) error: %v", k, err)
		}
		if got := seq.Value(); got != k {
			t.Errorf("Find(%d).Value() = %d, want %d", k, got, k)
		}
	}
}

func TestFindNeverWorseThanSeed(t *testing.T) {
	e := New(profile.RISC())
	for _, k := range []int64{7, 51, 100, 127, 255, 340, 341, 999} {
		found, err := e.Find(k)
		if err != nil {
			t.Fatalf("Find(%d) error: %v", k, err)
		}
		seed, err := seeder.Seed(e.Profile, cache.New(e.Profile), k)
		if err != nil {
			t.Fatalf("seed(%d) error: %v", k, err)
		}
		if found.Cost() > seed.Cost()+e.Profile.Epsilon {
			t.Errorf("Find(%d).Cost() = %v exceeds the binary-method seed's cost %v", k, found.Cost(), seed.Cost())
		}
	}
}

func TestFindCachesFinishedEntry(t *testing.T) {
	e := New(profile.RISC())
	seq, err := e.Find(51)
	if err != nil {
		t.Fatalf("Find(51) error: %v", err)
	}
	entry, ok := e.Cache.Peek(51)
	if !ok || !entry.Finished {
		t.Fatalf("entry(51) = %+v, ok=%v, want a finished entry", entry, ok)
	}
	if entry.Upper != seq.Cost() {
		t.Errorf("entry(51).Upper = %v, want %v", entry.Upper, seq.Cost())
	}
}

func TestFindCostMonotoneAcrossRepeatedCalls(t *testing.T) {
	e := New(profile.RISC())
	first, err := e.Find(340)
	if err != nil {
		t.Fatalf("Find(340) error: %v", err)
	}
	second, err := e.Find(340)
	if err != nil {
		t.Fatalf("Find(340) (cached) error: %v", err)
	}
	if first.Cost() != second.Cost() {
		t.Errorf("repeated Find(340) disagree on cost: %v vs %v", first.Cost(), second.Cost())
	}
}

func TestFindSignReflection(t *testing.T) {
	e := New(profile.RISC())
	for _, k := range []int64{7, 51, 340, 999} {
		pos, err := e.Find(k)
		if err != nil {
			t.Fatalf("Find(%d) error: %v", k, err)
		}
		neg, err := e.Find(-k)
		if err != nil {
			t.Fatalf("Find(%d) error: %v", -k, err)
		}
		if math.Abs(pos.Cost()-neg.Cost()) > e.Profile.Epsilon+1 {
			t.Errorf("Find(%d).Cost()=%v and Find(%d).Cost()=%v differ by more than a negation's cost", k, pos.Cost(), -k, neg.Cost())
		}
	}
}

func TestFindRegressionLargeNegative(t *testing.T) {
	e := New(profile.RISC())
	const k = -12345678
	seq, err := e.Find(k)
	if err != nil {
		t.Fatalf("Find(%d) error: %v", k, err)
	}
	if seq.Value() != k {
		t.Errorf("Find(%d).Value() = %d, want %d", k, seq.Value(), k)
	}
	pos, err := e.Find(-k)
	if err != nil {
		t.Fatalf("Find(%d) error: %v", -k, err)
	}
	if math.Abs(seq.Cost()-pos.Cost()) > e.Profile.Epsilon+1 {
		t.Errorf("Find(%d).Cost()=%v and Find(%d).Cost()=%v should differ by at most one negation", k, seq.Cost(), -k, pos.Cost())
	}
}

func TestFindUnsupportedNegation(t *testing.T) {
	e := New(profile.NoNegate())
	_, err := e.Find(-3)
	if err == nil {
		t.Fatal("Find(-3) under a profile that cannot negate: want an error")
	}
	mcErr, ok := err.(*mcerrors.Error)
	if !ok || mcErr.Kind != mcerrors.UnsupportedNegation {
		t.Errorf("Find(-3) error = %v, want Kind=UnsupportedNegation", err)
	}
}

func TestFindPowerOfTwoCostsOneShift(t *testing.T) {
	e := New(profile.RISC())
	for _, k := range []int64{2, 4, 8, 16, 1024} {
		seq, err := e.Find(k)
		if err != nil {
			t.Fatalf("Find(%d) error: %v", k, err)
		}
		if seq.Cost() != 1 {
			t.Errorf("Find(%d).Cost() = %v, want 1 (a single shift)", k, seq.Cost())
		}
	}
}

func TestFindAddOnlyMatchesAdditionChainLowerBound(t *testing.T) {
	// Under AddOnly, the only way to reach k > 1 is k-1 applications of
	// r[n] <- r[n] + r[1], so Find(k) must cost exactly k-1.
	e := New(profile.AddOnly())
	for _, k := range []int64{1, 2, 3, 5, 8} {
		seq, err := e.Find(k)
		if err != nil {
			t.Fatalf("Find(%d) error: %v", k, err)
		}
		want := float64(k - 1)
		if seq.Cost() != want {
			t.Errorf("Find(%d).Cost() = %v, want %v", k, seq.Cost(), want)
		}
	}
}

func TestBetterTieBreaksTowardReverseSubtract(t *testing.T) {
	e := New(profile.RISC())
	seq, err := e.Find(-1)
	if err != nil {
		t.Fatalf("Find(-1) error: %v", err)
	}
	if seq.Value() != -1 {
		t.Errorf("Find(-1).Value() = %d, want -1", seq.Value())
	}

	p := e.Profile
	plain := instr.Sequence{p.Shift(3), p.Subtract(instr.OperandFactor)}
	reverse := instr.Sequence{p.Shift(3), p.Subtract(instr.OperandReverseSub1)}
	if !better(reverse, plain, 10, p.Epsilon) {
		t.Error("better(reverse-subtract, plain) = false at equal cost, want true")
	}
	if better(plain, reverse, 10, p.Epsilon) {
		t.Error("better(plain, reverse-subtract) = true at equal cost, want false")
	}
}
