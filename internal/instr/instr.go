// Package instr defines the instruction algebra: the tagged operation
// record, the value and cost interpreters, and equality over instructions
// and sequences. Text encoding/decoding lives in text.go.
package instr

import (
	"strconv"

	"multconst/internal/mcerrors"
)

// Op tags the kind of operation an Instruction performs.
type Op uint8

const (
	OpNop Op = iota
	OpZero
	OpNegate
	OpShift
	OpAdd
	OpSubtract
)

// String names an Op for diagnostics.
func (o Op) String() string {
	switch o {
	case OpNop:
		return "nop"
	case OpZero:
		return "zero"
	case OpNegate:
		return "negate"
	case OpShift:
		return "shift"
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	default:
		return "op?"
	}
}

// Operand identifies which register(s) an add/subtract reads. Unused for
// every other Op.
type Operand uint8

const (
	OperandNone Operand = iota
	OperandR1               // OP_R1: read r[1]
	OperandFactor           // FACTOR_FLAG: read r[n-1]
	OperandReverseSub1      // REVERSE_SUBTRACT_1: r[1] - r[n]
	OperandReverseSubFactor // REVERSE_SUBTRACT_FACTOR: r[n-1] - r[n]
)

// Instruction is one step of a straight-line sequence. Amount carries the
// shift count when Op == OpShift; Flag carries the operand selector when
// Op == OpAdd or OpSubtract. Cost is cached on the record so a sequence can
// be costed without re-consulting the profile that produced it.
type Instruction struct {
	Op     Op
	Amount int
	Flag   Operand
	Cost   float64
}

// Sequence is an ordered, finite instruction list interpreted from r[1]
// (holding the symbolic input x) forward.
type Sequence []Instruction

// Equal compares two instructions by (op, amount/flag, cost), per the
// instruction algebra's equality contract.
func (i Instruction) Equal(o Instruction) bool {
	return i.Op == o.Op && i.Amount == o.Amount && i.Flag == o.Flag && i.Cost == o.Cost
}

// Equal compares two sequences element-wise.
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Clone returns a defensive copy of the sequence.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// state tracks the value interpreter's two live registers: n is the
// current running multiplier, m is the multiplier held before the most
// recent shift (the "factor register").
type state struct {
	n, m int64
}

// Value simulates the sequence's register transitions and returns the
// realised multiplier: value(seq) such that executing seq against an
// input x produces value(seq)*x.
func (s Sequence) Value() int64 {
	st := state{n: 1, m: 1}
	for _, ins := range s {
		switch ins.Op {
		case OpNop:
			st.n = 1
		case OpZero:
			st.n = 0
			return st.n
		case OpNegate:
			st.n = -st.n
		case OpShift:
			st.m = st.n
			st.n = st.n << uint(ins.Amount)
		case OpAdd:
			switch ins.Flag {
			case OperandR1:
				st.n = st.n + 1
			case OperandFactor:
				st.n = st.n + st.m
			}
		case OpSubtract:
			switch ins.Flag {
			case OperandR1:
				st.n = st.n - 1
			case OperandFactor:
				st.n = st.n - st.m
			case OperandReverseSub1:
				st.n = 1 - st.n
			case OperandReverseSubFactor:
				st.n = st.m - st.n
			}
		}
	}
	return st.n
}

// Cost sums the per-instruction costs cached on the sequence's records.
func (s Sequence) Cost() float64 {
	var total float64
	for _, ins := range s {
		total += ins.Cost
	}
	return total
}

// CheckValue reports whether the sequence realises k.
func CheckValue(k int64, s Sequence) bool {
	return s.Value() == k
}

// CheckCost reports whether the sequence's cached per-instruction costs sum
// to the expected total, within float64 tolerance.
func CheckCost(expected float64, s Sequence) bool {
	const eps = 1e-9
	got := s.Cost()
	diff := got - expected
	if diff < 0 {
		diff = -diff
	}
	return diff <= eps
}

// MaxLiveRegisters returns the largest number of the three fixed roles
// (r[1], r[n], r[n-1]) a sequence's instructions ever reference
// simultaneously. r[1] is live whenever any OperandR1/OperandReverseSub1
// appears; r[n-1] (the factor register) is live whenever any
// OperandFactor/OperandReverseSubFactor appears, in addition to the
// always-live r[n].
func (s Sequence) MaxLiveRegisters() int {
	live := 1 // r[n] is always live
	usesR1 := false
	usesFactor := false
	for _, ins := range s {
		switch ins.Flag {
		case OperandR1, OperandReverseSub1:
			usesR1 = true
		case OperandFactor, OperandReverseSubFactor:
			usesFactor = true
		}
	}
	if usesR1 {
		live++
	}
	if usesFactor {
		live++
	}
	return live
}

// Registers checks that the sequence never needs more than maxRegisters of
// the three fixed roles (r[1], r[n], r[n-1]) live at once, returning an
// InvariantViolation naming the shortfall when it does.
func (s Sequence) Registers(maxRegisters int) error {
	live := s.MaxLiveRegisters()
	if live <= maxRegisters {
		return nil
	}
	return mcerrors.NewInvariantViolation(
		"sequence needs " + strconv.Itoa(live) + " live registers, profile allows " + strconv.Itoa(maxRegisters),
	)
}
