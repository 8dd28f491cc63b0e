// Command emberd is an example server binary wiring server.App, the trie
// router, and the built-in middleware together — written fresh (not ported
// verbatim) per bolt/examples/hello/main.go's usage shape, with flag-based
// CLI overrides matching SPEC_FULL.md §1.1's environment-variable-first,
// flags-second convention.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/yourusername/ember/middleware"
	"github.com/yourusername/ember/middleware/builtin"
	"github.com/yourusername/ember/server"
	"github.com/yourusername/ember/stream"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	keepAlive := flag.Duration("keepalive", 60*time.Second, "keep-alive timeout")
	maxConns := flag.Int64("max-conns", 0, "maximum concurrent connections (0 = unbounded)")
	flag.Parse()

	config := server.DefaultConfig()
	config.Addr = *addr
	config.KeepAliveTimeout = *keepAlive
	config.MaxConcurrentConnections = *maxConns

	app, err := server.NewWithConfig(config)
	if err != nil {
		log.Fatalf("emberd: %v", err)
	}

	app.Use(builtin.Recovery(0))
	app.Use(builtin.Logger(10))
	app.Use(builtin.CORS(20, builtin.DefaultCORSConfig()))
	app.Use(builtin.Compression(30))
	app.Use(builtin.Timeout(40, 10*time.Second))

	app.Get("/", func(c *middleware.Context) error {
		return c.JSON(200, map[string]string{
			"message": "Hello, Ember!",
		})
	})

	app.Get("/health", func(c *middleware.Context) error {
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	app.Get("/users/{id}", func(c *middleware.Context) error {
		id := c.Param("id")
		if id == "" {
			return c.JSON(400, map[string]string{"error": "missing id"})
		}
		return c.JSON(200, map[string]string{"id": id, "name": "Alice"})
	})

	// /stream demonstrates component E directly: a handler that bypasses
	// the buffered ResponseBody and drives the chunked streaming engine
	// itself.
	app.Get("/stream", func(c *middleware.Context) error {
		rw := c.ResponseWriter()
		rw.WriteHeader(200)
		s := rw.StartStream(4096)
		for i := 0; i < 5; i++ {
			if res := s.WriteChunk([]byte("chunk\n")); res == stream.ResultBackpressure {
				s.WaitForDrain(time.Second)
			}
		}
		return rw.FinishChunked()
	})

	log.Printf("emberd listening on %s", *addr)
	if err := app.Run(*addr); err != nil {
		log.Fatalf("emberd: %v", err)
	}
}
