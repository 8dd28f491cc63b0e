package builtin

import (
	"bytes"
	"log"
	"testing"

	"github.com/yourusername/ember/middleware"
)

func TestLoggerRecordsStartThenLogsOnSecondPass(t *testing.T) {
	var buf bytes.Buffer
	out := log.New(&buf, "", 0)
	reg := LoggerWithConfig(0, LoggerConfig{JSON: true, Output: out})

	req := parseRequest(t, "GET /ping HTTP/1.1\r\nHost: x\r\n\r\n")
	ctx := &middleware.Context{Request: req, ShouldContinue: true, ResponseStatus: 200}

	if got := reg.Func(ctx); got != middleware.Continue {
		t.Fatalf("pre-route Func = %v, want Continue", got)
	}
	if buf.Len() != 0 {
		t.Fatal("expected nothing logged on the pre-route pass")
	}

	ctx.SetStatus(200)
	if got := reg.Func(ctx); got != middleware.Continue {
		t.Fatalf("post-route Func = %v, want Continue", got)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a log line on the post-route pass")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"path":"/ping"`)) {
		t.Fatalf("log line %q missing path", buf.String())
	}
}

func TestLoggerSkipsConfiguredPaths(t *testing.T) {
	var buf bytes.Buffer
	out := log.New(&buf, "", 0)
	reg := LoggerWithConfig(0, LoggerConfig{JSON: true, Output: out, SkipPaths: map[string]bool{"/health": true}})

	req := parseRequest(t, "GET /health HTTP/1.1\r\nHost: x\r\n\r\n")
	ctx := &middleware.Context{Request: req, ShouldContinue: true, ResponseStatus: 200}

	reg.Func(ctx)
	reg.Func(ctx)

	if buf.Len() != 0 {
		t.Fatalf("expected no log output for a skipped path, got %q", buf.String())
	}
}
