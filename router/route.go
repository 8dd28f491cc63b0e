package router

// Handler is the collaborator interface invoked on a route match (spec
// §6, "handler interface"). It receives an opaque request/response context
// defined at the wiring layer (package server); router itself stays
// agnostic of Context's shape, matching bolt/core/types.go's
// `Handler func(*Context) error` except parameterized so this package has
// no import-cycle back to server.
type Handler func(ctx any) error

// MiddlewareRef names a middleware registration to attach to a specific
// route (spec §3 Route.middleware_chain); resolution against the actual
// middleware.Registration lives in package server, keeping router free of
// a dependency on package middleware.
type MiddlewareRef struct {
	Name     string
	Priority uint32
}

// Route is the distilled spec's Route record (§3): created on
// registration, destroyed on router teardown or explicit RemoveRoute.
type Route struct {
	ID              uint64
	Method          string
	Path            string
	Handler         Handler
	ParamNames      []string
	MiddlewareChain []MiddlewareRef
}

// Match is the result of a trie descent (spec §3 "Route match").
type Match struct {
	Route          *Route
	Params         []Param
	AllowedMethods string
	StatusHint     int // 200, 404, or 405
}

// Param is one (name, value) pair bound during trie descent.
type Param struct {
	Name  string
	Value string
}

// RouteInfo is the introspection-only projection Routes(max) returns.
type RouteInfo struct {
	ID     uint64
	Method string
	Path   string
}
