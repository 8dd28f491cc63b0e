package builtin

import (
	"bytes"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/yourusername/ember/middleware"
)

// Compression returns a POST_ROUTE registration that compresses
// ctx.ResponseBody with gzip or brotli, selected by the request's
// Accept-Encoding header (brotli preferred when both are acceptable).
//
// Neither bolt nor shockwave implement response compression — this
// middleware is the DOMAIN STACK home SPEC_FULL.md §1.2 gives
// klauspost/compress and andybalholm/brotli, replacing
// bolt/middleware/ratelimit.go (dropped: rate limiting is an explicit
// spec Non-goal, see DESIGN.md).
func Compression(priority uint32) middleware.Registration {
	return middleware.Registration{
		Name:     "compression",
		Priority: priority,
		Flags:    middleware.FlagPostRoute,
		Func: func(ctx *middleware.Context) middleware.Result {
			if len(ctx.ResponseBody) == 0 {
				return middleware.Continue
			}
			accept := ctx.GetRequestHeader("Accept-Encoding")
			switch {
			case strings.Contains(accept, "br"):
				var buf bytes.Buffer
				w := brotli.NewWriter(&buf)
				if _, err := w.Write(ctx.ResponseBody); err != nil {
					return middleware.Continue
				}
				if err := w.Close(); err != nil {
					return middleware.Continue
				}
				ctx.ResponseBody = buf.Bytes()
				ctx.SetHeader("Content-Encoding", "br")
			case strings.Contains(accept, "gzip"):
				var buf bytes.Buffer
				w := gzip.NewWriter(&buf)
				if _, err := w.Write(ctx.ResponseBody); err != nil {
					return middleware.Continue
				}
				if err := w.Close(); err != nil {
					return middleware.Continue
				}
				ctx.ResponseBody = buf.Bytes()
				ctx.SetHeader("Content-Encoding", "gzip")
			}
			return middleware.Continue
		},
	}
}
