package builtin

import (
	"testing"

	"github.com/yourusername/ember/middleware"
	"github.com/yourusername/ember/transport/http11"
)

func parseRequest(t *testing.T, raw string) *http11.Request {
	t.Helper()
	p := http11.NewParser()
	done, err := p.Execute([]byte(raw))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !done {
		t.Fatal("Execute did not complete the header block")
	}
	return p.Request()
}

func TestCORSSetsHeadersAndContinuesOnGet(t *testing.T) {
	reg := CORS(0, DefaultCORSConfig())
	req := parseRequest(t, "GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	ctx := &middleware.Context{Request: req, ShouldContinue: true, ResponseStatus: 200}

	if got := reg.Func(ctx); got != middleware.Continue {
		t.Fatalf("Func = %v, want Continue", got)
	}

	var originSet bool
	for _, h := range ctx.Headers() {
		if h.Name() == "Access-Control-Allow-Origin" && h.Value() == "*" {
			originSet = true
		}
	}
	if !originSet {
		t.Fatal("expected Access-Control-Allow-Origin: * to be set")
	}
}

func TestCORSShortCircuitsOptionsPreflight(t *testing.T) {
	reg := CORS(0, DefaultCORSConfig())
	req := parseRequest(t, "OPTIONS / HTTP/1.1\r\nHost: x\r\n\r\n")
	ctx := &middleware.Context{Request: req, ShouldContinue: true, ResponseStatus: 200}

	if got := reg.Func(ctx); got != middleware.SkipRoute {
		t.Fatalf("Func = %v, want SkipRoute", got)
	}
	if ctx.ResponseStatus != 204 {
		t.Fatalf("ResponseStatus = %d, want 204", ctx.ResponseStatus)
	}
}
