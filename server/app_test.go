package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/yourusername/ember/middleware"
)

func TestNew(t *testing.T) {
	app := New()
	if app.router == nil {
		t.Error("expected router to be initialized")
	}
	if app.engine == nil {
		t.Error("expected engine to be initialized")
	}
	if app.pool == nil {
		t.Error("expected pool to be initialized")
	}
	if app.allocator == nil {
		t.Error("expected allocator to be initialized")
	}
}

func TestNewWithConfigCustomAddr(t *testing.T) {
	app, err := NewWithConfig(Config{Addr: ":9000", ArenaBackend: DefaultConfig().ArenaBackend})
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	if app.config.ErrorHandler == nil {
		t.Error("expected ErrorHandler to default when unset")
	}
	if app.config.Logger == nil {
		t.Error("expected Logger to default when unset")
	}
}

func TestGetRouteRegistrationAndDispatch(t *testing.T) {
	app := New()

	called := false
	app.Get("/greet/{name}", func(c *middleware.Context) error {
		called = true
		if got := c.Param("name"); got != "world" {
			t.Errorf("Param(name) = %q, want world", got)
		}
		return c.JSON(200, map[string]string{"hello": c.Param("name")})
	})

	match := app.router.Match("GET", "/greet/world")
	if match.StatusHint != 200 {
		t.Fatalf("StatusHint = %d, want 200", match.StatusHint)
	}
	if match.Route == nil {
		t.Fatal("expected a matched route")
	}

	c := middleware.NewContext(nil, &match, nil)
	if err := app.dispatch(c, match); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
}

func TestDispatchNotFound(t *testing.T) {
	app := New()
	match := app.router.Match("GET", "/does-not-exist")
	if match.StatusHint != 404 {
		t.Fatalf("StatusHint = %d, want 404", match.StatusHint)
	}

	c := &middleware.Context{}
	if err := app.dispatch(c, match); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if c.ResponseStatus != 404 {
		t.Fatalf("ResponseStatus = %d, want 404", c.ResponseStatus)
	}
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	app := New()
	app.Get("/only-get", func(c *middleware.Context) error { return nil })

	match := app.router.Match("POST", "/only-get")
	if match.StatusHint != 405 {
		t.Fatalf("StatusHint = %d, want 405", match.StatusHint)
	}

	c := &middleware.Context{}
	if err := app.dispatch(c, match); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if c.ResponseStatus != 405 {
		t.Fatalf("ResponseStatus = %d, want 405", c.ResponseStatus)
	}
	found := false
	for _, h := range c.Headers() {
		if h.Name() == "Allow" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an Allow header on a 405 response")
	}
}

func waitForServer(addr string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestAppServesRequestOverTCP(t *testing.T) {
	app := New()
	app.Get("/hello", func(c *middleware.Context) error {
		return c.JSON(200, map[string]string{"msg": "hi"})
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find available port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	go func() {
		if err := app.Listen(addr); err != nil {
			t.Logf("Listen stopped: %v", err)
		}
	}()

	if !waitForServer(addr, 5*time.Second) {
		t.Fatal("server failed to start")
	}

	resp, err := http.Get("http://" + addr + "/hello")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != `{"msg":"hi"}` {
		t.Fatalf("body = %q, want {\"msg\":\"hi\"}", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
