// Package engine is the strength-reduction engine's public face: the
// programmatic API a caller (cmd/multconst, the sweep, tests) drives
// instead of reaching into internal/search and internal/seeder directly.
package engine

import (
	"context"

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/profile"
	"multconst/internal/search"
	"multconst/internal/seeder"
	"multconst/internal/trace"
)

// Engine finds minimum-cost instruction sequences for a fixed cost
// profile, memoising every proved and provisional bound it discovers along
// the way.
type Engine struct {
	search *search.Engine
}

// New builds an Engine over profile p with a freshly preloaded cache.
func New(p *profile.Profile) *Engine {
	return &Engine{search: search.New(p)}
}

// NewWithCache builds an Engine over profile p using an already-populated
// cache, for example one just read back from a store.
func NewWithCache(p *profile.Profile, c *cache.Cache) *Engine {
	return &Engine{search: search.NewWithCache(p, c)}
}

// Sweep runs Find independently for every k in [from, to] across up to
// workers goroutines, sharing this Engine's cache. See search.Engine.Sweep.
func (e *Engine) Sweep(ctx context.Context, from, to int64, workers int) ([]search.SweepResult, error) {
	return e.search.Sweep(ctx, from, to, workers)
}

// Find returns the minimum-cost sequence realising k, searching and
// memoising as needed.
func (e *Engine) Find(k int64) (instr.Sequence, error) {
	return e.search.Find(k)
}

// BinarySequence returns the binary-method seed for k without tightening
// it by search — the same feasible-but-not-necessarily-optimal sequence
// --binary-method requests from the CLI.
func (e *Engine) BinarySequence(k int64) (instr.Sequence, error) {
	return seeder.Seed(e.search.Profile, e.search.Cache, k)
}

// Cache exposes the engine's memoisation table for inspection, dumping,
// or loading.
func (e *Engine) Cache() *cache.Cache {
	return e.search.Cache
}

// Profile returns the cost profile this engine was built with.
func (e *Engine) Profile() *profile.Profile {
	return e.search.Profile
}

// SetTrace installs a trace sink the search reports its steps to. Passing
// nil restores the no-op sink.
func (e *Engine) SetTrace(sink trace.Sink) {
	if sink == nil {
		sink = trace.Nop{}
	}
	e.search.Trace = sink
}
