// Package seeder implements the binary-method constructor: a one-pass,
// non-optimal builder that turns the binary representation of k into a
// feasible instruction sequence, consulting the cache for already-proved
// sub-multipliers along the way.
package seeder

import (
	"math/bits"

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
)

// Seed builds a feasible (not necessarily optimal) sequence for k and
// records it in c under key k with Finished=false. It never proves
// optimality; alpha-beta search (internal/search) is responsible for
// tightening the bound it leaves behind.
func Seed(p *profile.Profile, c *cache.Cache, k int64) (instr.Sequence, error) {
	if k == 0 {
		e, _ := c.Peek(0)
		return e.Instrs, nil
	}

	n := k
	needNegation := false
	if n < 0 {
		needNegation = true
		n = -n
	}
	if needNegation && !p.CanNegate() {
		return nil, mcerrors.NewUnsupportedNegation(k)
	}

	var accum instr.Sequence

	for n > 1 {
		// Cache consultation: a finished entry for the value we are
		// currently trying to reach lets us splice in a proved sequence
		// and stop recoding bits by hand.
		if needNegation {
			if e, ok := c.Peek(-n); ok && e.Finished && len(e.Instrs) > 0 {
				accum = append(accum, reverseCopy(e.Instrs)...)
				needNegation = false
				n = 1
				break
			}
		}
		if e, ok := c.Peek(n); ok && e.Finished && len(e.Instrs) > 0 && !(needNegation && p.SubtractCanNegate()) {
			accum = append(accum, reverseCopy(e.Instrs)...)
			n = 1
			break
		}

		if p.HasTrueShift() {
			if s := bits.TrailingZeros64(uint64(n)); s > 0 {
				accum = append(accum, p.Shift(s))
				n >>= uint(s)
				continue
			}
		}

		// n is odd: decide whether clearing the trailing run of ones is
		// cheaper via a single "round up" (subtract) than peeling it off
		// one bit at a time (add).
		r := trailingOnesRun(n)
		useSubtract := p.CanSubtract() && (r > 2 || (needNegation && p.SubtractCanNegate()))
		if useSubtract {
			if needNegation && p.SubtractCanNegate() {
				accum = append(accum, p.Subtract(instr.OperandReverseSub1))
				needNegation = false
			} else {
				accum = append(accum, p.Subtract(instr.OperandR1))
			}
			n++
		} else {
			accum = append(accum, p.Add(instr.OperandR1))
			n--
		}
	}

	reverseInPlace(accum)
	if needNegation {
		accum = append(accum, p.Negate())
	}

	cost := accum.Cost()
	c.InsertOrUpdate(k, 0, cost, false, accum)
	return accum, nil
}

// trailingOnesRun counts the run of consecutive 1 bits starting at bit 0
// of n (n is assumed odd, so the run is at least 1).
func trailingOnesRun(n int64) int {
	r := 0
	for n&1 == 1 {
		r++
		n >>= 1
	}
	return r
}

// reverseCopy returns a copy of s with instruction order reversed. accum is
// built back-to-front and flipped once by reverseInPlace at the end, so a
// finished sequence spliced in mid-build must already be in that reversed
// order to come out forward after the final flip.
func reverseCopy(s instr.Sequence) instr.Sequence {
	out := make(instr.Sequence, len(s))
	for i, ins := range s {
		out[len(s)-1-i] = ins
	}
	return out
}

func reverseInPlace(s instr.Sequence) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
