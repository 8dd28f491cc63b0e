package server

import (
	"strconv"

	"github.com/yourusername/ember/arena"
	"github.com/yourusername/ember/middleware"
	"github.com/yourusername/ember/router"
	"github.com/yourusername/ember/transport/http11"
)

// handleRequest is the http11.Handler serveConn wires into each
// Connection: match the route, run the middleware chain against an
// arena-backed Context, and write the assembled response — the bridge
// between the connection pipeline and the router/middleware components,
// grounded on bolt/core/app.go's handleShockwaveRequest.
func (app *App) handleRequest(req *http11.Request, rw *http11.ResponseWriter) error {
	match := app.router.Match(req.Method(), req.Path())
	routeMW := app.resolveMiddlewareRefs(routeMiddlewareRefs(match))

	ctx := app.pool.Acquire(req, &match, app.config.Resolver)
	ctx.SetResponseWriter(rw)
	defer app.pool.Release(ctx)
	defer app.allocator.Purge(arena.Request)
	defer app.allocator.Purge(arena.Response)

	app.engine.Execute(ctx, routeMW, func(c *middleware.Context) error {
		return app.dispatch(c, match)
	})

	if len(ctx.ResponseBody) == 0 && ctx.ResponseStatus >= 400 {
		app.config.ErrorHandler(ctx)
	}

	app.writeResponse(ctx, rw)
	return nil
}

// dispatch invokes the matched route's handler, or fills in the 404/405
// status_hint the router reported (spec §4.B invariant 3).
func (app *App) dispatch(c *middleware.Context, match router.Match) error {
	switch match.StatusHint {
	case 200:
		return match.Route.Handler(c)
	case 405:
		c.SetStatus(405)
		c.SetHeader("Allow", match.AllowedMethods)
		return nil
	default:
		c.SetStatus(404)
		return nil
	}
}

func routeMiddlewareRefs(match router.Match) []router.MiddlewareRef {
	if match.Route == nil {
		return nil
	}
	return match.Route.MiddlewareChain
}

func (app *App) resolveMiddlewareRefs(refs []router.MiddlewareRef) []middleware.Registration {
	if len(refs) == 0 {
		return nil
	}
	out := make([]middleware.Registration, 0, len(refs))
	for _, ref := range refs {
		if reg, ok := app.engine.Lookup(ref.Name); ok {
			out = append(out, reg)
		}
	}
	return out
}

// writeResponse copies the assembled Context response onto the wire. If
// the handler already wrote directly through ctx.ResponseWriter() (e.g. a
// streaming response via StartStream/WriteChunk/FinishChunked), headers are
// already sent and this is a no-op.
func (app *App) writeResponse(c *middleware.Context, rw *http11.ResponseWriter) {
	if rw.HeaderWritten() {
		return
	}
	for _, h := range c.Headers() {
		rw.Header().Set([]byte(h.Name()), []byte(h.Value()))
	}
	if !rw.Header().Has([]byte("Content-Length")) {
		rw.Header().Set([]byte("Content-Length"), []byte(strconv.Itoa(len(c.ResponseBody))))
	}
	rw.WriteHeader(c.ResponseStatus)
	if len(c.ResponseBody) > 0 {
		rw.Write(c.ResponseBody)
	}
	rw.Flush()
}
