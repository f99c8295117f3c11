// Package cache implements the memoisation cache that sits between
// find_sequence and the search engine: a map from multiplier to the best
// proved or provisional bound known for it, plus the controlled
// update/insert operations that keep its invariants intact.
//
// Uses the same sync.RWMutex-guarded map pattern common to this codebase's
// other shared, concurrently-read state.
package cache

import (
	"math"
	"sort"
	"strconv"
	"sync"

	"multconst/internal/instr"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
)

// Entry is the cache's per-key tuple. Lower <= cost(Instrs) <= Upper holds
// whenever Instrs is non-empty; Finished implies Lower == Upper ==
// cost(Instrs) and value(Instrs) == the entry's key.
type Entry struct {
	Lower    float64
	Upper    float64
	Finished bool
	Instrs   instr.Sequence
}

func (e Entry) clone() Entry {
	return Entry{Lower: e.Lower, Upper: e.Upper, Finished: e.Finished, Instrs: e.Instrs.Clone()}
}

// Stats counts lookup outcomes since the last Clear.
type Stats struct {
	HitsExact   int64
	HitsPartial int64
	Misses      int64
}

// Cache is the engine's memoisation table, keyed by signed integer
// multiplier. The zero value is not usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	profile *profile.Profile
	entries map[int64]Entry
	stats   Stats
}

// New builds a cache preloaded with the three base cases: 0 -> [zero],
// 1 -> [nop], and -1 -> the cheapest negation the profile offers.
func New(p *profile.Profile) *Cache {
	c := &Cache{profile: p}
	c.Clear()
	return c
}

// Clear resets the cache to its preloaded state and zeros the statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int64]Entry)
	c.stats = Stats{}

	zeroCost := c.profile.Zero().Cost
	c.entries[0] = Entry{Lower: zeroCost, Upper: zeroCost, Finished: true, Instrs: instr.Sequence{c.profile.Zero()}}
	c.entries[1] = Entry{Lower: 0, Upper: 0, Finished: true, Instrs: instr.Sequence{c.profile.Nop()}}
	if seq, ok := c.profile.NegateSequence(); ok {
		cost := seq.Cost()
		c.entries[-1] = Entry{Lower: cost, Upper: cost, Finished: true, Instrs: seq}
	}
}

// Lookup returns a copy of the entry for n, materialising a default
// unfinished entry (0, +Inf, false, nil) on a true miss. It records
// hit/miss/partial statistics and mutates the map on miss, so it is not
// safe to call lock-free from multiple goroutines without this Cache's own
// locking (which it provides).
func (c *Cache) Lookup(n int64) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[n]
	if !ok {
		e = Entry{Lower: 0, Upper: math.Inf(1), Finished: false, Instrs: nil}
		c.entries[n] = e
		c.stats.Misses++
		return e.clone()
	}
	if e.Finished {
		c.stats.HitsExact++
	} else {
		c.stats.HitsPartial++
	}
	return e.clone()
}

// Peek is like Lookup but never mutates the cache or its statistics —
// used by callers (Each and the dumps built on it, the search, the seeder)
// that must not perturb lookup statistics.
func (c *Cache) Peek(n int64) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[n]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Insert unconditionally sets the entry for n.
func (c *Cache) Insert(n int64, lower, upper float64, finished bool, instrs instr.Sequence) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[n] = Entry{Lower: lower, Upper: upper, Finished: finished, Instrs: instrs.Clone()}
}

// InsertOrUpdate sets the entry for n iff n is absent, or the incoming
// upper bound strictly improves on the cached one, or the bounds tie and
// the cached entry is not yet finished — an incoming tie that carries
// finished=true is allowed to supersede a cached unfinished tie.
func (c *Cache) InsertOrUpdate(n int64, lower, upper float64, finished bool, instrs instr.Sequence) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.entries[n]
	if !ok || existing.Upper > upper || (existing.Upper == upper && !existing.Finished) {
		c.entries[n] = Entry{Lower: lower, Upper: upper, Finished: finished, Instrs: instrs.Clone()}
	}
}

// FieldUpdate describes a partial, monotone update to a cache entry.
// Finished is a pointer so callers can distinguish "not specified" (nil,
// in which case a strict Upper improvement implies Finished=true per
// entry invariant (ii)) from an explicit true/false.
type FieldUpdate struct {
	Lower    *float64
	Upper    *float64
	Finished *bool
	Instrs   instr.Sequence
}

// UpdateField applies a monotone per-field update: Lower only rises,
// Upper only falls (and requires Instrs when it does), and a strict Upper
// improvement with Finished left nil implies Finished becomes true, which
// in turn mirrors Lower up to the new Upper to preserve invariant (ii).
func (c *Cache) UpdateField(n int64, u FieldUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[n]
	if !ok {
		e = Entry{Lower: 0, Upper: math.Inf(1), Finished: false}
	}

	if u.Lower != nil && *u.Lower > e.Lower {
		e.Lower = *u.Lower
	}

	if u.Upper != nil && *u.Upper < e.Upper {
		if u.Instrs == nil {
			return mcerrors.NewInvariantViolation("UpdateField: strict upper improvement without instrs")
		}
		e.Upper = *u.Upper
		e.Instrs = u.Instrs.Clone()
		if u.Finished == nil {
			e.Finished = true
		}
		if e.Finished {
			e.Lower = e.Upper
		}
	}

	if u.Finished != nil {
		e.Finished = *u.Finished
		if e.Finished {
			e.Lower = e.Upper
		}
	}

	c.entries[n] = e
	return nil
}

// UpdateSequencePartials walks the prefixes of a known-good sequence for
// some multiplier, computes each prefix's realised multiplier via the
// value interpreter, and inserts-or-updates a non-finished upper bound for
// each — so a search that stumbled onto a good sequence for k also seeds
// its sub-problems.
func (c *Cache) UpdateSequencePartials(instrs instr.Sequence) {
	var prefixCost float64
	for i := range instrs {
		prefix := instrs[:i+1]
		prefixCost += instrs[i].Cost
		k := prefix.Value()
		c.InsertOrUpdate(k, 0, prefixCost, false, prefix)
	}
}

// Stats returns a copy of the hit/miss counters accumulated since the last
// Clear.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Keys returns every cached multiplier in ascending order.
func (c *Cache) Keys() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]int64, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Each iterates every entry in ascending key order, calling fn with a
// defensive copy of each entry.
func (c *Cache) Each(fn func(k int64, e Entry)) {
	for _, k := range c.Keys() {
		e, ok := c.Peek(k)
		if !ok {
			continue
		}
		fn(k, e)
	}
}

// Check runs the cache entry invariants across all entries and returns an
// *mcerrors.Error (Kind=InvariantViolation) naming every violation found,
// or nil if the cache is consistent.
func (c *Cache) Check() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var broken []string
	for k, e := range c.entries {
		if len(e.Instrs) > 0 {
			cost := e.Instrs.Cost()
			if e.Lower > cost+1e-9 || cost > e.Upper+1e-9 {
				broken = append(broken, entryLabel(k)+": lower/upper do not bracket cost(instrs)")
			}
		}
		if e.Finished {
			if math.Abs(e.Lower-e.Upper) > 1e-9 {
				broken = append(broken, entryLabel(k)+": finished but lower != upper")
			}
			if len(e.Instrs) == 0 || e.Instrs.Value() != k {
				broken = append(broken, entryLabel(k)+": finished but instrs do not realise key")
			}
		}
	}
	if len(broken) == 0 {
		return nil
	}
	return mcerrors.NewInvariantViolation(broken...)
}

// Locked runs fn with the cache's write lock held, passing it the raw
// entry map so external callers (the multi-k sweep in internal/search)
// can perform a sequence of reads/writes atomically. fn must not call back
// into any other Cache method — the map it receives is the only safe way
// in, since this mutex is not re-entrant. fn must not retain the map past
// its call.
func (c *Cache) Locked(fn func(entries map[int64]Entry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.entries)
}

func entryLabel(k int64) string {
	return "entry(" + strconv.FormatInt(k, 10) + ")"
}
