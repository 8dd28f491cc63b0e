package builtin

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/yourusername/ember/middleware"
)

func TestCompressionSkipsEmptyBody(t *testing.T) {
	reg := Compression(0)
	req := parseRequest(t, "GET / HTTP/1.1\r\nHost: x\r\nAccept-Encoding: gzip\r\n\r\n")
	ctx := &middleware.Context{Request: req, ShouldContinue: true, ResponseStatus: 200}

	if got := reg.Func(ctx); got != middleware.Continue {
		t.Fatalf("Func = %v, want Continue", got)
	}
	if len(ctx.ResponseBody) != 0 {
		t.Fatal("expected body to remain empty")
	}
}

func TestCompressionGzipsWhenAccepted(t *testing.T) {
	reg := Compression(0)
	req := parseRequest(t, "GET / HTTP/1.1\r\nHost: x\r\nAccept-Encoding: gzip\r\n\r\n")
	ctx := &middleware.Context{Request: req, ShouldContinue: true, ResponseStatus: 200}
	ctx.SetBody([]byte(`{"hello":"world"}`), "application/json")

	if got := reg.Func(ctx); got != middleware.Continue {
		t.Fatalf("Func = %v, want Continue", got)
	}

	found := false
	for _, h := range ctx.Headers() {
		if h.Name() == "Content-Encoding" && h.Value() == "gzip" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected Content-Encoding: gzip header")
	}

	r, err := gzip.NewReader(bytes.NewReader(ctx.ResponseBody))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer r.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		t.Fatalf("reading gzip body: %v", err)
	}
	if out.String() != `{"hello":"world"}` {
		t.Fatalf("decompressed = %q, want original JSON", out.String())
	}
}

func TestCompressionPrefersBrotli(t *testing.T) {
	reg := Compression(0)
	req := parseRequest(t, "GET / HTTP/1.1\r\nHost: x\r\nAccept-Encoding: gzip, br\r\n\r\n")
	ctx := &middleware.Context{Request: req, ShouldContinue: true, ResponseStatus: 200}
	ctx.SetBody([]byte("hello"), "text/plain")

	reg.Func(ctx)

	found := false
	for _, h := range ctx.Headers() {
		if h.Name() == "Content-Encoding" && h.Value() == "br" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected Content-Encoding: br to be preferred over gzip")
	}
}
