// Package profile describes a CPU cost model: which operations are legal,
// what they cost, and the handful of capability predicates the search
// engine and seeder consult before emitting a rewrite.
package profile

import (
	"math"

	"multconst/internal/instr"
)

// InstructionType distinguishes two-address machines (result overwrites one
// operand) from three-address machines (result, left, right are distinct).
type InstructionType int

const (
	TwoAddress InstructionType = iota
	ThreeAddress
)

// Profile is a value object: two profiles with equal fields behave
// identically in the search and seeder.
type Profile struct {
	Name            string
	InstructionType InstructionType
	MaxRegisters    int
	Costs           map[instr.Op]float64
	ShiftCostFn     func(amount int) float64
	Epsilon         float64
}

// Cost returns the configured cost of op, or +Inf if op is absent from the
// profile (an absent op is treated as unusable).
func (p *Profile) Cost(op instr.Op) float64 {
	if c, ok := p.Costs[op]; ok {
		return c
	}
	return math.Inf(1)
}

// ShiftCost returns the cost of shifting by amount, via the profile's
// shift-cost function, or the flat OpShift cost when no function is set.
func (p *Profile) ShiftCost(amount int) float64 {
	if p.ShiftCostFn == nil {
		return p.Cost(instr.OpShift)
	}
	return p.ShiftCostFn(amount)
}

// CanSubtract reports whether subtract is a usable operation.
func (p *Profile) CanSubtract() bool {
	return !math.IsInf(p.Cost(instr.OpSubtract), 1)
}

// SubtractCanNegate reports whether a reverse subtract can stand in for a
// negation (needs a free register to hold the 1-n / m-n intermediate).
func (p *Profile) SubtractCanNegate() bool {
	return p.CanSubtract() && p.MaxRegisters >= 3
}

// CanNegate reports whether the profile can realise r[n] <- -r[n], either
// directly or by folding it into a reverse subtract.
func (p *Profile) CanNegate() bool {
	return !math.IsInf(p.Cost(instr.OpNegate), 1) || p.SubtractCanNegate()
}

// HasTrueShift reports whether shift is a usable operation (as opposed to a
// profile that only reaches powers of two via repeated add).
func (p *Profile) HasTrueShift() bool {
	return !math.IsInf(p.Cost(instr.OpShift), 1)
}

// CanZero reports whether materialising zero is possible, either directly
// or via negation of zero.
func (p *Profile) CanZero() bool {
	return p.CanNegate() || !math.IsInf(p.Cost(instr.OpZero), 1)
}

// Make builds a fully-costed instruction for (op, amount, flag) under this
// profile.
func (p *Profile) Make(op instr.Op, amount int, flag instr.Operand) instr.Instruction {
	cost := p.Cost(op)
	if op == instr.OpShift {
		cost = p.ShiftCost(amount)
	}
	return instr.Instruction{Op: op, Amount: amount, Flag: flag, Cost: cost}
}

// Recost rebuilds every instruction in s with this profile's costs,
// preserving each instruction's (op, amount, flag). Used after parsing
// compact text, whose instructions carry no cost of their own.
func (p *Profile) Recost(s instr.Sequence) instr.Sequence {
	out := make(instr.Sequence, len(s))
	for i, ins := range s {
		out[i] = p.Make(ins.Op, ins.Amount, ins.Flag)
	}
	return out
}

// Nop, Zero and Negate are convenience constructors for the three
// zero-operand instructions.
func (p *Profile) Nop() instr.Instruction    { return p.Make(instr.OpNop, 0, instr.OperandNone) }
func (p *Profile) Zero() instr.Instruction   { return p.Make(instr.OpZero, 0, instr.OperandNone) }
func (p *Profile) Negate() instr.Instruction { return p.Make(instr.OpNegate, 0, instr.OperandNone) }

// Shift builds a shift instruction of the given amount.
func (p *Profile) Shift(amount int) instr.Instruction {
	return p.Make(instr.OpShift, amount, instr.OperandNone)
}

// Add builds an add instruction reading the given operand.
func (p *Profile) Add(flag instr.Operand) instr.Instruction {
	return p.Make(instr.OpAdd, 0, flag)
}

// Subtract builds a subtract instruction reading the given operand.
func (p *Profile) Subtract(flag instr.Operand) instr.Instruction {
	return p.Make(instr.OpSubtract, 0, flag)
}

// NegateSequence returns the cheapest way this profile can realise r[n] <-
// -r[n]: a direct negate if one is costed, a shift-by-one followed by a
// reverse subtract of the factor register (r[n-1] - 2*r[n-1]) if only the
// fallback is available, or whichever of the two is cheaper when both are.
// Reports false if neither is possible.
func (p *Profile) NegateSequence() (instr.Sequence, bool) {
	haveDirect := !math.IsInf(p.Cost(instr.OpNegate), 1)
	haveFallback := p.SubtractCanNegate()
	if !haveDirect && !haveFallback {
		return nil, false
	}

	var direct, fallback instr.Sequence
	if haveDirect {
		direct = instr.Sequence{p.Negate()}
	}
	if haveFallback {
		fallback = instr.Sequence{p.Shift(1), p.Subtract(instr.OperandReverseSubFactor)}
	}

	switch {
	case haveDirect && haveFallback:
		if direct.Cost() <= fallback.Cost() {
			return direct, true
		}
		return fallback, true
	case haveDirect:
		return direct, true
	default:
		return fallback, true
	}
}

// RISC returns the textbook equal-cost profile used throughout the test
// suite: every op costs 1, shifts cost 1 regardless of amount, three
// registers are available so reverse-subtract can fold a negation.
func RISC() *Profile {
	return &Profile{
		Name:            "risc",
		InstructionType: ThreeAddress,
		MaxRegisters:    3,
		Costs: map[instr.Op]float64{
			instr.OpAdd:      1,
			instr.OpSubtract: 1,
			instr.OpNegate:   1,
			instr.OpShift:    1,
			instr.OpZero:     1,
			instr.OpNop:      0,
		},
		ShiftCostFn: func(int) float64 { return 1 },
		Epsilon:     1e-6,
	}
}

// AddOnly returns a profile with no shift, negate, or subtract — only add,
// zero and nop are legal. Used to validate the engine against addition-chain
// optima.
func AddOnly() *Profile {
	return &Profile{
		Name:            "add-only",
		InstructionType: TwoAddress,
		MaxRegisters:    2,
		Costs: map[instr.Op]float64{
			instr.OpAdd:  1,
			instr.OpZero: 1,
			instr.OpNop:  0,
		},
		ShiftCostFn: func(int) float64 { return math.Inf(1) },
		Epsilon:     1e-6,
	}
}

// NoNegate returns a profile that can shift, add and subtract, but never
// negate and never fold a negation into a reverse subtract — used to
// exercise UnsupportedNegation.
func NoNegate() *Profile {
	return &Profile{
		Name:            "two-address-no-negate",
		InstructionType: TwoAddress,
		MaxRegisters:    2,
		Costs: map[instr.Op]float64{
			instr.OpAdd:      1,
			instr.OpSubtract: 1,
			instr.OpShift:    1,
			instr.OpZero:     1,
			instr.OpNop:      0,
		},
		ShiftCostFn: func(int) float64 { return 1 },
		Epsilon:     1e-6,
	}
}
