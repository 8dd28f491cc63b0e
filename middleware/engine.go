// Package middleware implements spec component D: priority-ordered,
// phase-tagged middleware registration, lazy compilation into pre-route /
// post-route / error chains, and execution against an arena-backed
// Context. Built fresh — bolt's own `Middleware func(Handler) Handler`
// wrapping chain (bolt/core/types.go, bolt/core/app.go's Use/addRoute) is
// too simple to express priority/phase/return-code semantics — but the
// registration call shape (append-then-recompile) follows bolt's Use
// idiom, and the concrete built-ins under builtin/ are adapted line-for-
// line from bolt/middleware/*.go.
package middleware

import (
	"sort"
	"sync"
	"time"
)

// Flags is a bitset over the four phases a Registration can participate
// in (spec §3 "Middleware registration" flags field).
type Flags uint8

const (
	FlagPreRoute Flags = 1 << iota
	FlagPostRoute
	FlagError
	FlagAlways // participates in every phase regardless of the other bits
)

func (f Flags) has(phase Flags) bool {
	return f&phase != 0 || f&FlagAlways != 0
}

// Func is the middleware function interface of spec §6: "(middleware_context) → int"
// realized as a typed Result instead of a bare int.
type Func func(*Context) Result

// Registration is spec §3's Middleware registration record.
type Registration struct {
	Func        Func
	Name        string
	Priority    uint32
	Flags       Flags
	ContextSize int

	order int // insertion order, used as the compile-stability tiebreaker
}

// Engine owns the registration list and the three compiled phase chains.
// At most 64 registrations per chain, matching spec §3.
type Engine struct {
	mu      sync.Mutex
	regs    []Registration
	byName  map[string]int // name -> index into regs, for per-route lookup
	nextOrd int

	compiled  bool
	preRoute  []Registration
	postRoute []Registration
	errorCh   []Registration

	stats   map[string]*chainStats
	metrics *engineMetrics
}

// NewEngine constructs an empty, uncompiled Engine.
func NewEngine() *Engine {
	return &Engine{
		byName:  make(map[string]int),
		stats:   make(map[string]*chainStats),
		metrics: newEngineMetrics(),
	}
}

// Register appends a middleware registration. Registration is append-only
// until Compile; any Register call after a prior Compile marks the engine
// uncompiled again so the next Execute recompiles lazily (spec §4.D).
func (e *Engine) Register(r Registration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.regs) >= maxChainLength {
		return // spec's "at most 64 per chain" cap; silently refuse beyond it
	}
	r.order = e.nextOrd
	e.nextOrd++
	e.regs = append(e.regs, r)
	e.byName[r.Name] = len(e.regs) - 1
	e.compiled = false
	if _, ok := e.stats[r.Name]; !ok {
		e.stats[r.Name] = &chainStats{fastest: int64(^uint64(0) >> 1)}
	}
}

// Lookup resolves a registered middleware by name, for route-specific
// middleware chains (spec §3 Route.middleware_chain) where the route only
// stores a MiddlewareRef, not the full Registration.
func (e *Engine) Lookup(name string) (Registration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.byName[name]
	if !ok {
		return Registration{}, false
	}
	return e.regs[idx], true
}

// Compile is idempotent: calling it twice with no intervening Register
// produces identical chains (spec §8 round-trip property). Stable sort by
// priority ascending, then by insertion order for entries sharing a
// priority.
func (e *Engine) Compile() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compileLocked()
}

func (e *Engine) compileLocked() {
	if e.compiled {
		return
	}
	sorted := make([]Registration, len(e.regs))
	copy(sorted, e.regs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].order < sorted[j].order
	})

	e.preRoute = e.preRoute[:0]
	e.postRoute = e.postRoute[:0]
	e.errorCh = e.errorCh[:0]
	for _, r := range sorted {
		if r.Flags.has(FlagPreRoute) {
			e.preRoute = append(e.preRoute, r)
		}
		if r.Flags.has(FlagPostRoute) {
			e.postRoute = append(e.postRoute, r)
		}
		if r.Flags.has(FlagError) {
			e.errorCh = append(e.errorCh, r)
		}
	}
	e.compiled = true
}

// chainStats are the per-middleware execution statistics spec §4.D step 5
// names: total executions, total wall-clock, fastest, slowest. Updated
// with atomic-equivalent discipline: the engine mutex already serializes
// writers, so plain int64 fields suffice (documented rather than adding
// redundant atomics, since every writer already holds e.mu).
type chainStats struct {
	executions int64
	totalNanos int64
	fastest    int64
	slowest    int64
}

func (s *chainStats) record(d time.Duration) {
	n := d.Nanoseconds()
	s.executions++
	s.totalNanos += n
	if n < s.fastest {
		s.fastest = n
	}
	if n > s.slowest {
		s.slowest = n
	}
}

// Execute runs spec §4.D's steps 2-5: global pre-route chain, then
// per-route pre-route chain (Open Question 1, resolved: global runs
// first), then the route handler unless skipped, then post-route
// unconditionally, then records statistics. dispatch is only invoked if
// the chain allows it.
func (e *Engine) Execute(ctx *Context, routeMiddlewares []Registration, dispatch func(*Context) error) {
	e.mu.Lock()
	e.compileLocked()
	pre := append([]Registration(nil), e.preRoute...)
	post := append([]Registration(nil), e.postRoute...)
	errs := append([]Registration(nil), e.errorCh...)
	e.mu.Unlock()

	routePre := phaseSubset(routeMiddlewares, FlagPreRoute)
	routePost := phaseSubset(routeMiddlewares, FlagPostRoute)
	routeErr := phaseSubset(routeMiddlewares, FlagError)

	e.runPhase(ctx, pre)
	if ctx.ShouldContinue && !ctx.fatal {
		e.runPhase(ctx, routePre)
	}

	if !ctx.ShouldSkip && !ctx.fatal && ctx.ShouldContinue {
		if err := dispatch(ctx); err != nil {
			ctx.fatal = true
			if ctx.ErrorMessage == "" {
				ctx.ErrorMessage = err.Error()
			}
			if ctx.ResponseStatus < 400 {
				ctx.ResponseStatus = 500
			}
		}
	}

	// ERROR-flagged middleware (e.g. Recovery) gets a chance to populate a
	// response before post-route runs, whenever pre-route or the handler
	// set the fatal flag. This is not spelled out step-by-step in spec
	// §4.D's execution list but is implied by the ERROR phase existing at
	// all — there would otherwise be no dispatch path that ever runs it.
	if ctx.fatal {
		ctx.fatal = false // let ERROR-flagged middleware run without immediately re-tripping
		e.runPhase(ctx, errs)
		e.runPhase(ctx, routeErr)
	}

	// Post-route always runs, even after skip/stop/error (spec §4.D step 4).
	e.runPhase(ctx, post)
	e.runPhase(ctx, routePost)
}

func phaseSubset(regs []Registration, phase Flags) []Registration {
	out := make([]Registration, 0, len(regs))
	for _, r := range regs {
		if r.Flags.has(phase) {
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) runPhase(ctx *Context, chain []Registration) {
	for i, r := range chain {
		start := time.Now()
		result := r.Func(ctx)
		elapsed := time.Since(start)

		if i < len(ctx.Timing) {
			ctx.Timing[i] = elapsed
		}

		e.mu.Lock()
		e.stats[r.Name].record(elapsed)
		e.mu.Unlock()
		e.metrics.observe(r.Name, elapsed)

		switch result {
		case Continue:
			continue
		case SkipRoute:
			ctx.ShouldSkip = true
			return
		case Stop:
			ctx.ShouldContinue = false
			return
		case Error:
			ctx.fatal = true
			return
		}
	}
}

// Stats returns a snapshot of one middleware's chain statistics, for the
// introspection spec §4.D step 5 implies.
func (e *Engine) Stats(name string) (executions int64, total, fastest, slowest time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.stats[name]
	if !ok || s.executions == 0 {
		return 0, 0, 0, 0
	}
	return s.executions, time.Duration(s.totalNanos), time.Duration(s.fastest), time.Duration(s.slowest)
}
