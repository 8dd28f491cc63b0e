// Package server wires components A-E into the application-facing App type
// spec §6 implies: route registration, middleware registration, and
// Listen/Shutdown — grounded on bolt/core/app.go's App/New/NewWithConfig/
// Listen/Run/Shutdown, upgraded to use golang.org/x/sync/errgroup for
// coordinated connection-goroutine shutdown and golang.org/x/sync/semaphore
// to bound concurrent connections (SPEC_FULL.md §1.2 domain stack).
package server

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/yourusername/ember/arena"
	"github.com/yourusername/ember/elog"
	"github.com/yourusername/ember/middleware"
	"github.com/yourusername/ember/router"
	"github.com/yourusername/ember/transport/http11"
)

// App is the Ember application: router + middleware engine + arena
// allocator + connection acceptor, matching bolt/core/app.go's App shape.
type App struct {
	router *router.Router
	engine *middleware.Engine
	pool   *middleware.Pool

	config    Config
	allocator arena.Allocator

	listenerMu sync.RWMutex
	listener   net.Listener

	sem   *semaphore.Weighted
	group *errgroup.Group

	connsMu sync.Mutex
	conns   map[*http11.Connection]struct{}

	closing atomic.Bool
}

// New creates an App with default configuration.
func New() *App {
	app, err := NewWithConfig(DefaultConfig())
	if err != nil {
		// MallocBackendKind (the default) cannot fail; panicking here would
		// only ever fire on a programmer error in DefaultConfig itself.
		panic(err)
	}
	return app
}

// NewWithConfig creates an App with custom configuration. It fails only if
// config.ArenaBackend cannot be constructed (e.g. MultiArenaBackendKind on a
// platform without anonymous mmap).
func NewWithConfig(config Config) (*App, error) {
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultErrorHandler
	}
	if config.Logger == nil {
		config.Logger = elog.Default
	}

	allocator, err := arena.New(config.ArenaBackend)
	if err != nil {
		return nil, err
	}

	app := &App{
		router:    router.New(),
		engine:    middleware.NewEngine(),
		pool:      middleware.NewPool(),
		config:    config,
		allocator: allocator,
		conns:     make(map[*http11.Connection]struct{}),
	}
	if config.MaxConcurrentConnections > 0 {
		app.sem = semaphore.NewWeighted(config.MaxConcurrentConnections)
	}
	return app, nil
}

// Use registers global middleware (spec §4.D registration).
func (app *App) Use(reg middleware.Registration) {
	app.engine.Register(reg)
}

// Get registers a GET route.
func (app *App) Get(path string, handler Handler, refs ...router.MiddlewareRef) {
	app.addRoute("GET", path, handler, refs)
}

// Post registers a POST route.
func (app *App) Post(path string, handler Handler, refs ...router.MiddlewareRef) {
	app.addRoute("POST", path, handler, refs)
}

// Put registers a PUT route.
func (app *App) Put(path string, handler Handler, refs ...router.MiddlewareRef) {
	app.addRoute("PUT", path, handler, refs)
}

// Delete registers a DELETE route.
func (app *App) Delete(path string, handler Handler, refs ...router.MiddlewareRef) {
	app.addRoute("DELETE", path, handler, refs)
}

// Patch registers a PATCH route.
func (app *App) Patch(path string, handler Handler, refs ...router.MiddlewareRef) {
	app.addRoute("PATCH", path, handler, refs)
}

// Head registers a HEAD route.
func (app *App) Head(path string, handler Handler, refs ...router.MiddlewareRef) {
	app.addRoute("HEAD", path, handler, refs)
}

// Options registers an OPTIONS route.
func (app *App) Options(path string, handler Handler, refs ...router.MiddlewareRef) {
	app.addRoute("OPTIONS", path, handler, refs)
}

func (app *App) addRoute(method, path string, handler Handler, refs []router.MiddlewareRef) {
	wrapped := func(ctxAny any) error {
		return handler(ctxAny.(*middleware.Context))
	}
	app.router.AddRoute(method, path, wrapped, refs, true)
}

// Router exposes the underlying trie router for introspection (Routes,
// RemoveRoute).
func (app *App) Router() *router.Router {
	return app.router
}

// Allocator exposes the arena allocator backing per-request scratch memory.
func (app *App) Allocator() arena.Allocator {
	return app.allocator
}

// Listen starts accepting connections on addr. It blocks until the
// listener is closed by Shutdown or Accept returns a non-transient error.
func (app *App) Listen(addr string) error {
	app.config.Addr = addr
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	app.listenerMu.Lock()
	app.listener = ln
	app.listenerMu.Unlock()

	g, gctx := errgroup.WithContext(context.Background())
	app.group = g

	app.config.Logger.Info("listening", map[string]any{"addr": addr})

	for {
		conn, err := ln.Accept()
		if err != nil {
			if app.closing.Load() {
				return nil
			}
			return err
		}

		if app.sem != nil {
			if err := app.sem.Acquire(gctx, 1); err != nil {
				conn.Close()
				if app.closing.Load() {
					return nil
				}
				continue
			}
		}

		g.Go(func() error {
			if app.sem != nil {
				defer app.sem.Release(1)
			}
			return app.serveConn(conn)
		})
	}
}

// Run starts Listen in the background and blocks until SIGINT/SIGTERM,
// then performs a graceful Shutdown, matching bolt/core/app.go's Run.
func (app *App) Run(addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		app.config.Logger.Info("shutting down", nil)
		ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(ctx); err != nil {
			app.config.Logger.Error("shutdown error", map[string]any{"error": err.Error()})
			return err
		}
		app.config.Logger.Info("stopped", nil)
		return nil
	}
}

func (app *App) serveConn(conn net.Conn) error {
	defer conn.Close()

	connCfg := http11.ConnectionConfig{
		KeepAliveTimeout: app.config.KeepAliveTimeout,
		MaxRequests:      app.config.MaxRequestsPerConnection,
		ReadBufferSize:   http11.DefaultBufferSize,
		WriteBufferSize:  http11.DefaultBufferSize,
	}
	c := http11.NewConnection(conn, connCfg, app.handleRequest, http11.ParserCallbacks{})

	app.connsMu.Lock()
	app.conns[c] = struct{}{}
	app.connsMu.Unlock()
	defer func() {
		app.connsMu.Lock()
		delete(app.conns, c)
		app.connsMu.Unlock()
	}()

	return c.Serve()
}

// Shutdown stops accepting new connections, closes every connection
// currently being served, and waits (up to ctx's deadline) for their
// goroutines to exit — the same shape as bolt/core/app.go's Shutdown,
// generalized from "one server.Shutdown call" to the per-connection
// goroutine model this engine uses.
func (app *App) Shutdown(ctx context.Context) error {
	if !app.closing.CompareAndSwap(false, true) {
		return nil
	}

	app.listenerMu.RLock()
	ln := app.listener
	app.listenerMu.RUnlock()
	if ln != nil {
		ln.Close()
	}

	app.connsMu.Lock()
	for c := range app.conns {
		c.Close()
	}
	app.connsMu.Unlock()

	if app.group == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- app.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
