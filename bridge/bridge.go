// Package bridge defines the external-collaborator interfaces spec §1 scopes
// out of the core: the embedded scripting bridge, the multipart upload
// parser, the static-file server, and the virus-scan integration. Bolt and
// shockwave have no equivalent package — these are pure Go interfaces with
// zero implementation, mirroring the spec's own "treated as external
// collaborators, consumed only through the interfaces in §6" boundary.
package bridge

import (
	"io"

	"github.com/yourusername/ember/middleware"
	"github.com/yourusername/ember/transport/http11"
)

// BridgeHandler lets an embedded scripting runtime (e.g. a Python/Lua
// bridge, per the spec's ancestor program) own a route's handler callable
// instead of a native Go function. Implementations adapt their own calling
// convention into Context's data model.
type BridgeHandler interface {
	// Invoke dispatches one request to the foreign callable identified by
	// name, writing the response through ctx exactly as a native Handler
	// would.
	Invoke(ctx *middleware.Context, name string) error
}

// MultipartPart is one decoded part of a multipart/form-data body.
type MultipartPart struct {
	Name        string
	FileName    string
	ContentType string
	Header      map[string]string
	Data        io.Reader
}

// MultipartParser decodes a multipart/form-data request body. Ember's core
// only exposes the raw Request.Body; an embedding application wires a
// MultipartParser implementation in to decode it.
type MultipartParser interface {
	// Parse reads body (the Content-Type header's boundary already
	// extracted by the caller) and returns its parts in order.
	Parse(body io.Reader, boundary string) ([]MultipartPart, error)
}

// StaticFileServer serves a request directly from a file-system-backed (or
// LRU-cached) static asset tree, short-circuiting the router/middleware
// path entirely when it claims a request.
type StaticFileServer interface {
	// TryServe attempts to serve req from static storage, writing through
	// rw and returning served=true if it handled the request.
	TryServe(req *http11.Request, rw *http11.ResponseWriter) (served bool, err error)
}

// VirusScanner scans an uploaded payload before it is persisted or passed
// to application code.
type VirusScanner interface {
	// Scan returns clean=false and a human-readable reason when data is
	// flagged.
	Scan(data io.Reader) (clean bool, reason string, err error)
}
