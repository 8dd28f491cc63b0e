package middleware

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/ember/router"
	"github.com/yourusername/ember/transport/http11"
)

// Pool hands out Context values drawn from the REQUEST arena's allocation
// pattern without Context itself needing to know about package arena:
// since Context's footprint is fixed-size (no internal heap pointers
// besides the request/match borrows and the body slice, both supplied by
// the caller), a sync.Pool of *Context is sufficient to get the same
// "zero allocations on the steady-state path" property bolt/core/context_pool.go
// documents for its own ContextPool.
type Pool struct {
	pool sync.Pool
}

// NewPool constructs an empty Pool.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{New: func() any { return &Context{} }},
	}
}

// Acquire retrieves a Context and initializes it for req/match.
func (p *Pool) Acquire(req *http11.Request, match *router.Match, resolver DependencyResolver) *Context {
	c := p.pool.Get().(*Context)
	c.Reset()
	c.Request = req
	c.RouteMatch = match
	c.resolver = resolver
	c.RequestID = uuid.NewString()
	return c
}

// Release resets and returns ctx to the pool. ctx must not be used
// afterward.
func (p *Pool) Release(ctx *Context) {
	ctx.Reset()
	p.pool.Put(ctx)
}

// Warmup pre-allocates count contexts, matching
// bolt/core/context_pool.go's ContextPool.Warmup.
func (p *Pool) Warmup(count int) {
	ctxs := make([]*Context, count)
	for i := range ctxs {
		ctxs[i] = p.pool.Get().(*Context)
	}
	for _, c := range ctxs {
		p.pool.Put(c)
	}
}
