// Package search implements the alpha-beta branch-and-bound engine that
// tightens the binary-method seed into a minimum-cost instruction sequence.
// An ordered list of rewrites ("search methods") is tried in sequence at
// every node, each allowed to recurse on a smaller sub-multiplier; the
// optional parallel sweep across many multipliers (sweep.go) shares one
// lock-guarded cache across its workers.
package search

import (
	"math"
	"math/bits"
	"strconv"

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
	"multconst/internal/seeder"
	"multconst/internal/trace"
)

// Method is one ordered step of the search: given the (already
// shift-stripped, signed) multiplier n and the cost budget still available
// below the running best, it either produces a candidate sequence or
// declines.
type Method func(e *Engine, n int64, limit float64) (instr.Sequence, bool)

// Engine bundles a cost profile and its cache with the ordered list of
// search methods tried at every node. The zero value is not usable;
// construct with New.
type Engine struct {
	Profile *profile.Profile
	Cache   *cache.Cache
	Trace   trace.Sink
	Methods []Method
}

// New builds an Engine with the default method ordering: cache consult,
// short-factor decomposition, sign negation, the two distance-one
// neighbours (closer one first), and the k=-1 subtract rewrite.
func New(p *profile.Profile) *Engine {
	return &Engine{
		Profile: p,
		Cache:   cache.New(p),
		Trace:   trace.Nop{},
		Methods: []Method{
			searchCache,
			searchShortFactors,
			searchNegate,
			searchNeighborTowardZero,
			searchNeighborAwayFromZero,
			searchNegateSubtractOne,
		},
	}
}

// NewWithCache is New, but seeded from an already-populated cache (for
// example one just loaded from a store) instead of a fresh preload.
func NewWithCache(p *profile.Profile, c *cache.Cache) *Engine {
	e := New(p)
	e.Cache = c
	return e
}

// Find returns the minimum-cost sequence realising k: a finished cache
// entry if one already exists, otherwise a binary-method seed tightened by
// AlphaBeta.
func (e *Engine) Find(k int64) (instr.Sequence, error) {
	if entry, ok := e.Cache.Peek(k); ok && entry.Finished {
		e.emit(trace.EventCacheHit, k, 0, entry.Upper, "finished", entry.Upper)
		return entry.Instrs, nil
	}

	seed, err := seeder.Seed(e.Profile, e.Cache, k)
	if err != nil {
		return nil, err
	}

	best, err := e.AlphaBeta(k, 0, seed.Cost())
	if err != nil {
		return nil, err
	}
	if best == nil {
		best = seed
	}
	if err := best.Registers(e.Profile.MaxRegisters); err != nil {
		return nil, err
	}

	cost := best.Cost()
	finished := true
	if err := e.Cache.UpdateField(k, cache.FieldUpdate{Upper: &cost, Finished: &finished, Instrs: best}); err != nil {
		return nil, err
	}
	e.Cache.UpdateSequencePartials(best)
	e.emit(trace.EventFinished, k, 0, cost, "find", cost)
	return best, nil
}

// AlphaBeta searches for a sequence realising n that costs no more than
// limit, having already committed lower cost units to whatever glue the
// caller will wrap the result in. It returns nil (not an error) when no
// method produces anything within budget — a bound, not a failure.
func (e *Engine) AlphaBeta(n int64, lower, limit float64) (instr.Sequence, error) {
	if n == 0 {
		entry, _ := e.Cache.Peek(0)
		return entry.Instrs, nil
	}
	if entry, ok := e.Cache.Peek(n); ok && entry.Finished {
		return entry.Instrs, nil
	}

	magnitude := n
	if magnitude < 0 {
		if !e.Profile.CanNegate() {
			e.emit(trace.EventUnsupported, n, lower, limit, "negate", 0)
			return nil, mcerrors.NewUnsupportedNegation(n)
		}
		magnitude = -magnitude
	}

	shiftAmount := 0
	if e.Profile.HasTrueShift() {
		shiftAmount = bits.TrailingZeros64(uint64(magnitude))
	}
	stripped := magnitude >> uint(shiftAmount)

	committed := lower
	var shiftIns instr.Instruction
	if shiftAmount > 0 {
		shiftIns = e.Profile.Shift(shiftAmount)
		committed += shiftIns.Cost
		if committed > limit+e.Profile.Epsilon {
			e.emit(trace.EventCutoff, n, committed, limit, "shift", committed)
			return nil, nil
		}
	}

	signed := stripped
	if n < 0 {
		signed = -stripped
	}

	if stripped <= 1 {
		entry, ok := e.Cache.Peek(signed)
		if !ok {
			return nil, mcerrors.NewInvariantViolation("base case not preloaded: " + strconv.FormatInt(signed, 10))
		}
		seq := entry.Instrs.Clone()
		if shiftAmount > 0 {
			seq = append(seq, shiftIns)
		}
		return seq, nil
	}

	remaining := limit - committed
	var best instr.Sequence
	for _, method := range e.Methods {
		cand, ok := method(e, signed, remaining)
		if !ok {
			continue
		}
		if better(cand, best, remaining, e.Profile.Epsilon) {
			best = cand
		}
	}

	if best == nil {
		lo := committed
		_ = e.Cache.UpdateField(signed, cache.FieldUpdate{Lower: &lo})
		return nil, nil
	}

	e.Cache.UpdateSequencePartials(best)
	finalSeq := best.Clone()
	if shiftAmount > 0 {
		finalSeq = append(finalSeq, shiftIns)
	}
	return finalSeq, nil
}

// better reports whether cand should replace incumbent: cand must fit
// within remaining, and either there is no incumbent yet, cand is strictly
// cheaper, or the two tie within eps and cand is the reverse-subtract
// variant (preferred as the tie-breaking rule for negative multipliers).
func better(cand, incumbent instr.Sequence, remaining, eps float64) bool {
	cost := cand.Cost()
	if cost > remaining+eps {
		return false
	}
	if incumbent == nil {
		return true
	}
	incCost := incumbent.Cost()
	if cost < incCost-eps {
		return true
	}
	if math.Abs(cost-incCost) <= eps {
		return usesReverseSubtract(cand) && !usesReverseSubtract(incumbent)
	}
	return false
}

func usesReverseSubtract(s instr.Sequence) bool {
	if len(s) == 0 {
		return false
	}
	last := s[len(s)-1]
	return last.Op == instr.OpSubtract &&
		(last.Flag == instr.OperandReverseSub1 || last.Flag == instr.OperandReverseSubFactor)
}

func (e *Engine) emit(kind trace.EventKind, n int64, lower, limit float64, method string, cost float64) {
	if e.Trace == nil {
		return
	}
	e.Trace.Emit(trace.Event{Kind: kind, N: n, Lower: lower, Limit: limit, Method: method, Cost: cost})
}
