package profile

import (
	"math"
	"testing"

	"multconst/internal/instr"
)

func TestRISCPredicates(t *testing.T) {
	p := RISC()
	if !p.CanSubtract() {
		t.Error("RISC: CanSubtract() = false, want true")
	}
	if !p.CanNegate() {
		t.Error("RISC: CanNegate() = false, want true")
	}
	if !p.SubtractCanNegate() {
		t.Error("RISC: SubtractCanNegate() = false, want true")
	}
	if !p.HasTrueShift() {
		t.Error("RISC: HasTrueShift() = false, want true")
	}
	if !p.CanZero() {
		t.Error("RISC: CanZero() = false, want true")
	}
}

func TestAddOnlyPredicates(t *testing.T) {
	p := AddOnly()
	if p.CanSubtract() {
		t.Error("AddOnly: CanSubtract() = true, want false")
	}
	if p.CanNegate() {
		t.Error("AddOnly: CanNegate() = true, want false")
	}
	if p.HasTrueShift() {
		t.Error("AddOnly: HasTrueShift() = true, want false")
	}
	if !p.CanZero() {
		t.Error("AddOnly: CanZero() = false, want true (direct zero is costed)")
	}
}

func TestNoNegatePredicates(t *testing.T) {
	p := NoNegate()
	if !p.CanSubtract() {
		t.Error("NoNegate: CanSubtract() = false, want true")
	}
	if p.CanNegate() {
		t.Error("NoNegate: CanNegate() = true, want false")
	}
	if p.SubtractCanNegate() {
		t.Error("NoNegate: SubtractCanNegate() = true, want false (only 2 registers)")
	}
}

func TestCostOfAbsentOpIsInf(t *testing.T) {
	p := AddOnly()
	if got := p.Cost(instr.OpNegate); !math.IsInf(got, 1) {
		t.Errorf("Cost(OpNegate) = %v, want +Inf", got)
	}
}

func TestNegateSequencePrefersDirect(t *testing.T) {
	p := RISC()
	seq, ok := p.NegateSequence()
	if !ok {
		t.Fatal("NegateSequence() ok = false, want true")
	}
	if len(seq) != 1 || seq[0].Op != instr.OpNegate {
		t.Errorf("NegateSequence() = %v, want a single direct negate (direct costs 1, the fallback 2)", seq)
	}
}

func TestNegateSequenceFallsBackToReverseSubtract(t *testing.T) {
	p := &Profile{
		Name:         "no-direct-negate",
		MaxRegisters: 3,
		Costs: map[instr.Op]float64{
			instr.OpSubtract: 1,
			instr.OpZero:     1,
		},
		ShiftCostFn: func(int) float64 { return 1 },
		Epsilon:     1e-6,
	}
	seq, ok := p.NegateSequence()
	if !ok {
		t.Fatal("NegateSequence() ok = false, want true")
	}
	if seq.Value() != -1 {
		t.Errorf("NegateSequence() realises %d against x=1, want -1", seq.Value())
	}
}

func TestNegateSequenceImpossible(t *testing.T) {
	p := NoNegate()
	if _, ok := p.NegateSequence(); ok {
		t.Error("NegateSequence() ok = true for a profile that cannot negate at all")
	}
}

func TestRecostPreservesShape(t *testing.T) {
	p := RISC()
	s := instr.Sequence{{Op: instr.OpShift, Amount: 3}, {Op: instr.OpSubtract, Flag: instr.OperandFactor}}
	recost := p.Recost(s)
	if recost.Cost() != 2 {
		t.Errorf("Recost cost = %v, want 2", recost.Cost())
	}
	if recost.Value() != s.Value() {
		t.Errorf("Recost changed realised value: got %d, want %d", recost.Value(), s.Value())
	}
}
