package search

import "multconst/internal/instr"

// searchCache adopts an already-known cache entry for n as a candidate,
// letting earlier sibling searches (or the seed itself) short-circuit
// repeat work.
func searchCache(e *Engine, n int64, limit float64) (instr.Sequence, bool) {
	entry, ok := e.Cache.Peek(n)
	if !ok || len(entry.Instrs) == 0 {
		return nil, false
	}
	return entry.Instrs.Clone(), true
}

// searchShortFactors tries small odd factors f = 2^i ± 1 of n, recursing on
// n/f and gluing the result with a shift and an add or subtract against the
// factor register. Per the factor loop: i=1 (f=3) and i=2 (f=5) are tried
// before the general loop, which starts at (i, j) = (3, 8) and doubles j
// (incrementing i) while j-1 <= |n|. The degenerate factors 2^1-1=1 and
// 2^2-1=3 are skipped: they duplicate, at a higher shift cost, factors the
// i=1/i=2 add cases already cover.
func searchShortFactors(e *Engine, n int64, limit float64) (instr.Sequence, bool) {
	var best instr.Sequence

	consider := func(cand instr.Sequence, ok bool) {
		if ok && better(cand, best, limit, e.Profile.Epsilon) {
			best = cand
		}
	}

	consider(addFactorCandidate(e, n, 1, 3))
	consider(addFactorCandidate(e, n, 2, 5))

	abs := n
	if abs < 0 {
		abs = -abs
	}
	for i, j := 3, int64(8); j-1 <= abs; i, j = i+1, j*2 {
		consider(subtractFactorCandidate(e, n, i, j-1))
		consider(addFactorCandidate(e, n, i, j+1))
	}

	return best, best != nil
}

// addFactorCandidate realises n = f*sub (f = 2^shiftAmt + 1) by recursing
// on sub = n/f and gluing shift-then-add-factor. Works for either sign of
// n, since sub inherits n's sign and the add glue is symmetric.
func addFactorCandidate(e *Engine, n int64, shiftAmt int, f int64) (instr.Sequence, bool) {
	if f == 0 || n%f != 0 {
		return nil, false
	}
	sub := n / f
	subSeq, err := e.Find(sub)
	if err != nil || subSeq == nil {
		return nil, false
	}
	cand := subSeq.Clone()
	cand = append(cand, e.Profile.Shift(shiftAmt), e.Profile.Add(instr.OperandFactor))
	return cand, true
}

// subtractFactorCandidate realises n = f*sub (f = 2^shiftAmt - 1) by
// recursing on sub = n/f and gluing shift-then-subtract-factor. For
// negative n it instead recurses on the positive magnitude |n|/f and glues
// with the reverse-subtract-factor flag, folding the sign into the glue
// instruction rather than negating separately afterwards — the same
// instruction count, and it lets the recursion land on the (usually better
// populated) positive side of the cache.
func subtractFactorCandidate(e *Engine, n int64, shiftAmt int, f int64) (instr.Sequence, bool) {
	if f == 0 || n%f != 0 {
		return nil, false
	}
	if n < 0 {
		abs := -n
		sub := abs / f
		subSeq, err := e.Find(sub)
		if err != nil || subSeq == nil {
			return nil, false
		}
		cand := subSeq.Clone()
		cand = append(cand, e.Profile.Shift(shiftAmt), e.Profile.Subtract(instr.OperandReverseSubFactor))
		return cand, true
	}
	sub := n / f
	subSeq, err := e.Find(sub)
	if err != nil || subSeq == nil {
		return nil, false
	}
	cand := subSeq.Clone()
	cand = append(cand, e.Profile.Shift(shiftAmt), e.Profile.Subtract(instr.OperandFactor))
	return cand, true
}

// searchNegate handles n < 0 by finding -n and appending a negation,
// direct or folded, whichever the profile offers.
func searchNegate(e *Engine, n int64, limit float64) (instr.Sequence, bool) {
	if n >= 0 {
		return nil, false
	}
	subSeq, err := e.Find(-n)
	if err != nil || subSeq == nil {
		return nil, false
	}
	negSeq, ok := e.Profile.NegateSequence()
	if !ok {
		return nil, false
	}
	cand := subSeq.Clone()
	cand = append(cand, negSeq...)
	return cand, true
}

// searchNeighborTowardZero computes n's neighbour one step closer to zero
// (n-1 for positive n, n+1 for negative n) and glues it with the
// complementary add/subtract-by-one, on the theory that the neighbour
// closer to zero is more likely to already be cached.
func searchNeighborTowardZero(e *Engine, n int64, limit float64) (instr.Sequence, bool) {
	switch {
	case n > 0:
		return neighborCandidate(e, n-1, e.Profile.Add(instr.OperandR1))
	case n < 0:
		return neighborCandidate(e, n+1, e.Profile.Subtract(instr.OperandR1))
	default:
		return nil, false
	}
}

// searchNeighborAwayFromZero is searchNeighborTowardZero's complement: the
// neighbour one step further from zero. It declines under a profile without
// a true shift, where the neighbour is never stripped to a smaller value and
// recursing on it would not terminate.
func searchNeighborAwayFromZero(e *Engine, n int64, limit float64) (instr.Sequence, bool) {
	if !e.Profile.HasTrueShift() {
		return nil, false
	}
	switch {
	case n > 0:
		return neighborCandidate(e, n+1, e.Profile.Subtract(instr.OperandR1))
	case n < 0:
		return neighborCandidate(e, n-1, e.Profile.Add(instr.OperandR1))
	default:
		return nil, false
	}
}

func neighborCandidate(e *Engine, neighbor int64, glue instr.Instruction) (instr.Sequence, bool) {
	subSeq, err := e.Find(neighbor)
	if err != nil || subSeq == nil {
		return nil, false
	}
	cand := subSeq.Clone()
	cand = append(cand, glue)
	return cand, true
}

// searchNegateSubtractOne offers the reverse-subtract realisation of -1
// (shift to 2, then 1 - n) as an explicit alternative whenever the profile
// can fold a negation into a subtract — harmless when the cache's own -1
// preload already picked the cheapest option, decisive only for a profile
// this engine builds by hand with an unusual cost split between negate and
// subtract.
func searchNegateSubtractOne(e *Engine, n int64, limit float64) (instr.Sequence, bool) {
	if n != -1 {
		return nil, false
	}
	if !e.Profile.SubtractCanNegate() {
		return nil, false
	}
	return instr.Sequence{e.Profile.Shift(1), e.Profile.Subtract(instr.OperandReverseSub1)}, true
}
