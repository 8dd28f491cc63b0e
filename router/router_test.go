package router

import "testing"

func noopHandler(ctx any) error { return nil }

func TestMatchParamExtraction(t *testing.T) {
	// Scenario 1: GET /users/{user_id} -> GET /users/42 yields 200 and
	// params = [(user_id, "42")].
	r := New()
	r.AddRoute("GET", "/users/{user_id}", noopHandler, nil, true)

	m := r.Match("GET", "/users/42")
	if m.StatusHint != 200 {
		t.Fatalf("StatusHint = %d, want 200", m.StatusHint)
	}
	if len(m.Params) != 1 || m.Params[0].Name != "user_id" || m.Params[0].Value != "42" {
		t.Fatalf("Params = %+v, want [(user_id, 42)]", m.Params)
	}
}

func TestMatchMethodNotAllowed(t *testing.T) {
	// Scenario 2: same registration, POST /users/42 -> 405, Allow: GET, HEAD.
	r := New()
	r.AddRoute("GET", "/users/{user_id}", noopHandler, nil, true)

	m := r.Match("POST", "/users/42")
	if m.StatusHint != 405 {
		t.Fatalf("StatusHint = %d, want 405", m.StatusHint)
	}
	if m.AllowedMethods != "GET, HEAD" {
		t.Fatalf("AllowedMethods = %q, want %q", m.AllowedMethods, "GET, HEAD")
	}
}

func TestStaticBeatsParam(t *testing.T) {
	// Scenario 3: GET /a/{x} and GET /a/b both registered. GET /a/b must
	// match the static route; GET /a/c must match the param route.
	r := New()
	r.AddRoute("GET", "/a/{x}", noopHandler, nil, true)
	r.AddRoute("GET", "/a/b", noopHandler, nil, true)

	m := r.Match("GET", "/a/b")
	if m.StatusHint != 200 || len(m.Params) != 0 {
		t.Fatalf("GET /a/b: StatusHint=%d Params=%+v, want 200 with no params (static wins)", m.StatusHint, m.Params)
	}

	m = r.Match("GET", "/a/c")
	if m.StatusHint != 200 || len(m.Params) != 1 || m.Params[0].Value != "c" {
		t.Fatalf("GET /a/c: StatusHint=%d Params=%+v, want 200 with x=c", m.StatusHint, m.Params)
	}
}

func TestHeadFallsBackToGet(t *testing.T) {
	// Invariant 7: a HEAD request against a path with only a GET handler
	// is dispatched to the GET handler.
	r := New()
	id, _ := r.AddRoute("GET", "/ping", noopHandler, nil, true)

	m := r.Match("HEAD", "/ping")
	if m.StatusHint != 200 || m.Route == nil || m.Route.ID != id {
		t.Fatalf("HEAD /ping did not fall back to GET: %+v", m)
	}
}

func TestNoRouteIs404(t *testing.T) {
	r := New()
	r.AddRoute("GET", "/a", noopHandler, nil, true)

	m := r.Match("GET", "/b")
	if m.StatusHint != 404 {
		t.Fatalf("StatusHint = %d, want 404", m.StatusHint)
	}
}

func TestOverwriteFalseKeepsExisting(t *testing.T) {
	r := New()
	firstID, ok := r.AddRoute("GET", "/x", noopHandler, nil, true)
	if !ok {
		t.Fatalf("first AddRoute failed")
	}

	secondID, ok := r.AddRoute("GET", "/x", noopHandler, nil, false)
	if ok {
		t.Fatalf("AddRoute with overwrite=false on conflict should report ok=false")
	}
	if secondID != firstID {
		t.Fatalf("conflicting AddRoute should report the existing route id, got %d want %d", secondID, firstID)
	}

	m := r.Match("GET", "/x")
	if m.Route == nil || m.Route.ID != firstID {
		t.Fatalf("existing handler should remain bound after a rejected overwrite")
	}
}

func TestRemoveRouteIsInvisibleToMatch(t *testing.T) {
	r := New()
	id, _ := r.AddRoute("GET", "/gone", noopHandler, nil, true)

	if !r.RemoveRoute(id) {
		t.Fatalf("RemoveRoute returned false for a live id")
	}

	m := r.Match("GET", "/gone")
	if m.StatusHint != 404 {
		t.Fatalf("StatusHint after RemoveRoute = %d, want 404", m.StatusHint)
	}

	routes := r.Routes(10)
	for _, ri := range routes {
		if ri.ID == id {
			t.Fatalf("removed route %d still present in Routes()", id)
		}
	}
}

func TestNormalizePathIdempotent(t *testing.T) {
	cases := []string{"", "/", "//a//b//", "a/b/c/", "/a/b/c"}
	for _, c := range cases {
		once := normalizePath(c)
		twice := normalizePath(once)
		if once != twice {
			t.Fatalf("normalizePath not idempotent for %q: once=%q twice=%q", c, once, twice)
		}
	}
}

func TestCompileIdempotenceOfAllowedMethodsCache(t *testing.T) {
	r := New()
	r.AddRoute("GET", "/r", noopHandler, nil, true)
	r.AddRoute("POST", "/r", noopHandler, nil, true)

	m1 := r.Match("PUT", "/r")
	m2 := r.Match("PUT", "/r")
	if m1.AllowedMethods != m2.AllowedMethods {
		t.Fatalf("AllowedMethods changed between identical Match calls: %q vs %q", m1.AllowedMethods, m2.AllowedMethods)
	}
}
