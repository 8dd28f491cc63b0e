// Package router implements the trie-based router of spec component B:
// registration of `{param}` routes, method+path matching with 404/405
// reporting, and removal. Grounded on bolt/core/router.go's hybrid
// static-map + radix-tree Router, redesigned per spec §9 to hold nodes in
// a flat table addressed by index rather than by pointer.
package router

import (
	"strings"
	"sync"
)

// routeLocation lets RemoveRoute find a route's owning node without
// walking the trie again.
type routeLocation struct {
	nodeIdx int
	method  string
}

// Router is the trie root plus the flat node table and the route index
// spec §4.B names. The zero value is not usable; construct with New.
type Router struct {
	mu         sync.RWMutex
	nodes      []node
	routeIndex map[uint64]routeLocation
	nextID     uint64
	metrics    *metrics
}

// New constructs an empty Router with only the root node (spec's init()).
func New() *Router {
	return &Router{
		nodes:      []node{newNode("")},
		routeIndex: make(map[uint64]routeLocation),
		nextID:     1, // 0 is reserved for "registration failed"
		metrics:    newMetrics(),
	}
}

func (r *Router) appendNode(n node) int {
	r.nodes = append(r.nodes, n)
	return len(r.nodes) - 1
}

// ensureChild returns the index of nodeIdx's child for segment seg,
// creating it if necessary. Param segments reuse the node's existing
// paramChild regardless of whether seg names a different parameter —
// spec §4.B's tie-break rule ii: "the parameter name at a given depth is
// determined by the first route that introduced a parameter at that
// depth; subsequent routes ... must reuse the original name."
func (r *Router) ensureChild(nodeIdx int, seg string) int {
	if name, ok := isParamSegment(seg); ok {
		if r.nodes[nodeIdx].paramChild != -1 {
			return r.nodes[nodeIdx].paramChild
		}
		child := newNode("")
		child.isParam = true
		child.paramName = name
		newIdx := r.appendNode(child)
		r.nodes[nodeIdx].paramChild = newIdx
		if r.nodes[nodeIdx].state == stateEmpty {
			r.nodes[nodeIdx].state = stateHasStaticChildren
		}
		return newIdx
	}

	if r.nodes[nodeIdx].staticChildren == nil {
		r.nodes[nodeIdx].staticChildren = make(map[string]int)
	}
	if idx, ok := r.nodes[nodeIdx].staticChildren[seg]; ok {
		return idx
	}
	newIdx := r.appendNode(newNode(seg))
	r.nodes[nodeIdx].staticChildren[seg] = newIdx
	if r.nodes[nodeIdx].state == stateEmpty {
		r.nodes[nodeIdx].state = stateHasStaticChildren
	}
	return newIdx
}

// AddRoute registers method+path against handler, returning the new
// route's id. If a route already occupies (method, path): with
// overwrite=false the existing handler is kept and ok=false is returned
// (spec §9 Open Question 4, resolved); with overwrite=true the handler is
// replaced silently and a fresh id is issued.
func (r *Router) AddRoute(method, path string, handler Handler, middlewares []MiddlewareRef, overwrite bool) (id uint64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	method = strings.ToUpper(method)
	norm := normalizePath(path)
	segs := splitPath(norm)

	paramNames := make([]string, 0, len(segs))
	for _, seg := range segs {
		if name, ok := isParamSegment(seg); ok {
			paramNames = append(paramNames, name)
		}
	}

	idx := 0
	for _, seg := range segs {
		idx = r.ensureChild(idx, seg)
	}

	n := &r.nodes[idx]
	if existing, exists := n.handlers[method]; exists {
		if !overwrite {
			return existing.ID, false
		}
		newID := r.nextID
		r.nextID++
		route := &Route{ID: newID, Method: method, Path: norm, Handler: handler, ParamNames: paramNames, MiddlewareChain: middlewares}
		n.handlers[method] = route
		delete(r.routeIndex, existing.ID)
		r.routeIndex[newID] = routeLocation{nodeIdx: idx, method: method}
		n.recomputeAllowedMethods()
		return newID, true
	}

	if n.handlers == nil {
		n.handlers = make(map[string]*Route)
	}
	newID := r.nextID
	r.nextID++
	route := &Route{ID: newID, Method: method, Path: norm, Handler: handler, ParamNames: paramNames, MiddlewareChain: middlewares}
	n.handlers[method] = route
	n.methodOrder = append(n.methodOrder, method)
	n.state = stateHasHandlers
	n.recomputeAllowedMethods()
	r.routeIndex[newID] = routeLocation{nodeIdx: idx, method: method}
	return newID, true
}

// descend walks the trie for segs starting at nodeIdx, preferring a
// literal static child and falling back to the node's param child,
// backtracking one parameter binding at a time on dead ends (spec §4.B:
// "if descent fails mid-path, backtrack one parameter binding and keep
// trying alternate branches").
func (r *Router) descend(nodeIdx int, segs []string, params *[]Param) (int, bool) {
	if len(segs) == 0 {
		return nodeIdx, true
	}
	seg, rest := segs[0], segs[1:]
	n := &r.nodes[nodeIdx]

	if n.staticChildren != nil {
		if childIdx, ok := n.staticChildren[seg]; ok {
			if result, ok := r.descend(childIdx, rest, params); ok {
				return result, true
			}
		}
	}

	if n.paramChild != -1 {
		*params = append(*params, Param{Name: r.nodes[n.paramChild].paramName, Value: seg})
		if result, ok := r.descend(n.paramChild, rest, params); ok {
			return result, true
		}
		*params = (*params)[:len(*params)-1]
	}

	return 0, false
}

// Match implements spec §4.B's match algorithm, including the HEAD->GET
// fallback (invariant 7) and 404/405 status_hint reporting with the Allow
// header source (invariant 3).
func (r *Router) Match(method, path string) Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	method = strings.ToUpper(method)
	segs := splitPath(normalizePath(path))

	params := make([]Param, 0, len(segs))
	idx, ok := r.descend(0, segs, &params)
	if !ok {
		r.metrics.matches.WithLabelValues("404").Inc()
		return Match{StatusHint: 404}
	}

	n := &r.nodes[idx]
	if n.state != stateHasHandlers || len(n.handlers) == 0 {
		r.metrics.matches.WithLabelValues("404").Inc()
		return Match{StatusHint: 404}
	}

	route, found := n.handlers[method]
	if !found && method == "HEAD" {
		route, found = n.handlers["GET"]
	}
	if !found {
		r.metrics.matches.WithLabelValues("405").Inc()
		return Match{StatusHint: 405, AllowedMethods: n.allowedMethodsCache}
	}

	r.metrics.matches.WithLabelValues("200").Inc()
	return Match{Route: route, Params: append([]Param{}, params...), StatusHint: 200}
}

// RemoveRoute unlinks id from the route index and nulls the owning node's
// handler slot for that method in the same critical section (spec §9 Open
// Question 3, resolved): no subsequent Match can observe a removed route.
// The trie node itself is left in place, matching spec §4.B's "the trie is
// not rewritten."
func (r *Router) RemoveRoute(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.routeIndex[id]
	if !ok {
		return false
	}
	n := &r.nodes[loc.nodeIdx]
	delete(n.handlers, loc.method)
	for i, m := range n.methodOrder {
		if m == loc.method {
			n.methodOrder = append(n.methodOrder[:i], n.methodOrder[i+1:]...)
			break
		}
	}
	n.recomputeAllowedMethods()
	delete(r.routeIndex, id)
	return true
}

// Routes returns up to max registered routes for introspection (spec's
// get_routes). Order is not specified by spec and is not guaranteed here.
func (r *Router) Routes(max int) []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RouteInfo, 0, max)
	for id, loc := range r.routeIndex {
		if len(out) >= max {
			break
		}
		route := r.nodes[loc.nodeIdx].handlers[loc.method]
		if route == nil {
			continue
		}
		out = append(out, RouteInfo{ID: id, Method: route.Method, Path: route.Path})
	}
	return out
}
