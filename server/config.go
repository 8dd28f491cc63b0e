package server

import (
	"time"

	"github.com/yourusername/ember/arena"
	"github.com/yourusername/ember/elog"
	"github.com/yourusername/ember/middleware"
)

// Handler is the application-level request handler (spec §6 "handler
// interface"), mirroring bolt/core/types.go's `Handler func(*Context) error`.
type Handler func(*middleware.Context) error

// ErrorHandler handles an error a Handler or the middleware chain left on
// Context, matching bolt/core/types.go's ErrorHandler shape.
type ErrorHandler func(*middleware.Context)

// Config holds application configuration, following bolt/core/types.go's
// Config/DefaultConfig pattern (SPEC_FULL.md §1.1 ambient stack).
type Config struct {
	// Addr is the listen address (default ":8080").
	Addr string

	// ErrorHandler maps an unhandled error/status left on Context into a
	// response body (default DefaultErrorHandler).
	ErrorHandler ErrorHandler

	// MaxRequestBodySize holds a request-body size limit (default 10MB).
	// The value is not passed to the connection pipeline, so request
	// bodies are not limited by it.
	MaxRequestBodySize int64

	// KeepAliveTimeout bounds idle time between pipelined requests on one
	// connection before the connection is closed (default 60s).
	KeepAliveTimeout time.Duration

	// MaxRequestsPerConnection caps requests served per connection before
	// it is closed after the next response (0 = unlimited).
	MaxRequestsPerConnection int

	// ShutdownTimeout bounds how long Shutdown waits for in-flight
	// connections to finish before giving up (default 30s).
	ShutdownTimeout time.Duration

	// MaxConcurrentConnections bounds how many connections Listen accepts
	// concurrently via a golang.org/x/sync/semaphore (0 = unbounded),
	// the DOMAIN STACK home for shockwave's otherwise-unwired
	// Config.MaxConcurrentConnections field (SPEC_FULL.md §1.2).
	MaxConcurrentConnections int64

	// ArenaBackend selects the memory-arena Allocator backing per-request
	// scratch memory (default arena.MallocBackendKind).
	ArenaBackend arena.Backend

	// Logger is the process-level structured logger (SPEC_FULL.md §1.1);
	// defaults to elog.Default.
	Logger *elog.Logger

	// Resolver, if set, backs Context.ResolveDependency (spec's DI
	// collaborator, middleware.DependencyResolver).
	Resolver middleware.DependencyResolver
}

// DefaultConfig returns Ember's default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:                     ":8080",
		ErrorHandler:             DefaultErrorHandler,
		MaxRequestBodySize:       10 << 20,
		KeepAliveTimeout:         60 * time.Second,
		ShutdownTimeout:          30 * time.Second,
		MaxConcurrentConnections: 0,
		ArenaBackend:             arena.MallocBackendKind,
		Logger:                   elog.Default,
	}
}

// DefaultErrorHandler maps Context.ResponseStatus/ErrorMessage into a JSON
// error body, matching bolt/core/types.go's DefaultErrorHandler.
func DefaultErrorHandler(c *middleware.Context) {
	status := c.ResponseStatus
	if status < 400 {
		status = 500
	}
	message := c.ErrorMessage
	if message == "" {
		message = statusFallbackMessage(status)
	}
	_ = c.JSON(status, map[string]string{"error": message})
}

func statusFallbackMessage(status int) string {
	switch status {
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 413:
		return "Request Too Large"
	case 500:
		return "Internal Server Error"
	default:
		return "Error"
	}
}
