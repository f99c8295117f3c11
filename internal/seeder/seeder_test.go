package seeder

import (
	"math/bits"
	"testing"

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/profile"
)

func TestSeedRealisesK(t *testing.T) {
	p := profile.RISC()
	tests := []int64{0, 1, 2, 3, 5, 7, 9, 51, 340, 341, 342, 343, -1, -7, -51}
	for _, k := range tests {
		c := cache.New(p)
		seq, err := Seed(p, c, k)
		if err != nil {
			t.Fatalf("Seed(%d) error: %v", k, err)
		}
		if got := seq.Value(); got != k {
			t.Errorf("Seed(%d).Value() = %d, want %d", k, got, k)
		}
	}
}

func TestSeedRecordsUnfinishedEntry(t *testing.T) {
	p := profile.RISC()
	c := cache.New(p)
	if _, err := Seed(p, c, 51); err != nil {
		t.Fatalf("Seed(51) error: %v", err)
	}
	e, ok := c.Peek(51)
	if !ok {
		t.Fatal("entry(51) missing after Seed")
	}
	if e.Finished {
		t.Error("entry(51).Finished = true, want false: the seeder never proves optimality")
	}
}

func TestSeedNegativeRequiresNegation(t *testing.T) {
	c := cache.New(profile.NoNegate())
	if _, err := Seed(profile.NoNegate(), c, -5); err == nil {
		t.Error("Seed(-5) under a profile that cannot negate: want an error")
	}
}

func TestSeedConsultsFinishedCache(t *testing.T) {
	p := profile.RISC()
	c := cache.New(p)
	finished := true
	upper := 2.0
	seq17 := instr.Sequence{
		{Op: instr.OpShift, Amount: 4, Cost: 1},
		{Op: instr.OpAdd, Flag: instr.OperandFactor, Cost: 1},
	}
	if err := c.UpdateField(17, cache.FieldUpdate{Upper: &upper, Finished: &finished, Instrs: seq17}); err != nil {
		t.Fatalf("seeding entry(17): %v", err)
	}

	got, err := Seed(p, c, 34)
	if err != nil {
		t.Fatalf("Seed(34) error: %v", err)
	}
	if got.Value() != 34 {
		t.Errorf("Seed(34).Value() = %d, want 34", got.Value())
	}
	if got.Cost() > seq17.Cost()+1 {
		t.Errorf("Seed(34).Cost() = %v, want close to the cached 17-sequence's cost plus one shift", got.Cost())
	}
}

func TestSeedDominatesUpperBoundOnBinaryRepresentation(t *testing.T) {
	// The binary-method seed is never worse than one add/subtract per set
	// bit of k's binary representation, plus one shift per run of zeros;
	// in particular it must never exceed 2*bits.Len per multiplier for
	// the RISC profile's uniform unit costs.
	p := profile.RISC()
	for _, k := range []int64{1, 3, 7, 15, 31, 63, 127, 255, 1023} {
		c := cache.New(p)
		seq, err := Seed(p, c, k)
		if err != nil {
			t.Fatalf("Seed(%d) error: %v", k, err)
		}
		if limit := float64(2 * bits.Len64(uint64(k))); seq.Cost() > limit {
			t.Errorf("Seed(%d).Cost() = %v, want at most 2*bits.Len = %v", k, seq.Cost(), limit)
		}
	}
}
