package middleware

import (
	"io"
	"strconv"
	"testing"

	"github.com/yourusername/ember/router"
	"github.com/yourusername/ember/transport/http11"
)

func TestSetHeaderReplacesCaseInsensitive(t *testing.T) {
	c := &Context{}
	c.SetHeader("Content-Type", "text/plain")
	c.SetHeader("content-type", "application/json")

	headers := c.Headers()
	if len(headers) != 1 {
		t.Fatalf("Headers len = %d, want 1 (replace, not append)", len(headers))
	}
	if headers[0].Value() != "application/json" {
		t.Fatalf("value = %q, want application/json", headers[0].Value())
	}
}

func TestSetHeaderDropsBeyondBound(t *testing.T) {
	c := &Context{}
	for i := 0; i < maxResponseHeaders+5; i++ {
		c.SetHeader("X-Header-"+strconv.Itoa(i), "v")
	}
	if len(c.Headers()) != maxResponseHeaders {
		t.Fatalf("Headers len = %d, want capped at %d", len(c.Headers()), maxResponseHeaders)
	}
}

func TestJSONSetsBodyAndStatus(t *testing.T) {
	c := &Context{}
	if err := c.JSON(201, map[string]string{"a": "b"}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if c.ResponseStatus != 201 {
		t.Fatalf("ResponseStatus = %d, want 201", c.ResponseStatus)
	}
	if string(c.ResponseBody) != `{"a":"b"}` {
		t.Fatalf("ResponseBody = %q, want {\"a\":\"b\"}", c.ResponseBody)
	}
	if c.ContentTypeOverride != "application/json; charset=utf-8" {
		t.Fatalf("ContentTypeOverride = %q", c.ContentTypeOverride)
	}
}

type stubResolver struct{ value any }

func (s stubResolver) Resolve(name string) (any, bool) {
	if name == "known" {
		return s.value, true
	}
	return nil, false
}

func TestResolveDependencyDelegatesToResolver(t *testing.T) {
	c := NewContext(nil, nil, stubResolver{value: 42})

	v, ok := c.ResolveDependency("known")
	if !ok || v != 42 {
		t.Fatalf("ResolveDependency(known) = (%v, %v), want (42, true)", v, ok)
	}
	if _, ok := c.ResolveDependency("missing"); ok {
		t.Fatal("expected ResolveDependency(missing) to report false")
	}
}

func TestResolveDependencyWithNilResolver(t *testing.T) {
	c := NewContext(nil, nil, nil)
	if _, ok := c.ResolveDependency("anything"); ok {
		t.Fatal("expected false when no resolver is wired")
	}
}

func TestParamReadsRouteMatch(t *testing.T) {
	match := &router.Match{Params: []router.Param{{Name: "id", Value: "42"}}}
	c := NewContext(nil, match, nil)

	if got := c.Param("id"); got != "42" {
		t.Fatalf("Param(id) = %q, want 42", got)
	}
	if got := c.Param("missing"); got != "" {
		t.Fatalf("Param(missing) = %q, want empty", got)
	}
}

func TestContextQueryDelegatesToRequest(t *testing.T) {
	req := &http11.Request{}
	c := NewContext(req, nil, nil)
	if got := c.Query("missing"); got != "" {
		t.Fatalf("Query(missing) = %q, want empty", got)
	}
}

func TestContextQueryWithNilRequestReturnsEmpty(t *testing.T) {
	c := NewContext(nil, nil, nil)
	if got := c.Query("anything"); got != "" {
		t.Fatalf("Query(anything) = %q, want empty", got)
	}
	if got := c.FormValue("anything"); got != "" {
		t.Fatalf("FormValue(anything) = %q, want empty", got)
	}
	if err := c.BindJSON(&struct{}{}); err != ErrNoRequest {
		t.Fatalf("BindJSON err = %v, want ErrNoRequest", err)
	}
}

func TestResetClearsResponseWriter(t *testing.T) {
	c := NewContext(nil, nil, nil)
	c.SetResponseWriter(http11.NewResponseWriter(io.Discard))
	if c.ResponseWriter() == nil {
		t.Fatal("expected ResponseWriter to be set before Reset")
	}
	c.Reset()
	if c.ResponseWriter() != nil {
		t.Fatal("expected ResponseWriter to be nil after Reset")
	}
}
