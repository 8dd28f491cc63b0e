package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/ember/pool/buffers"
	"github.com/yourusername/ember/router"
	"github.com/yourusername/ember/transport/http11"
)

// ErrNoRequest is returned by Context methods that need the underlying
// http11.Request (e.g. BindJSON) when none was wired in.
var ErrNoRequest = errors.New("middleware: context has no request")

const maxChainLength = 64
const maxResponseHeaders = 32

type headerPair struct {
	name  string
	value string
}

// Name returns the header's field name.
func (h headerPair) Name() string { return h.name }

// Value returns the header's field value.
func (h headerPair) Value() string { return h.value }

// Context is the per-request middleware context of spec §3 ("Middleware
// context"): borrows of the Request and RouteMatch, the should_continue /
// should_skip_route flags the chain executor reads, the response being
// assembled, and the bounded per-middleware data slots. Field grouping
// follows bolt/core/context.go's cache-line-driven ordering: hot fields
// (borrows, flags, status) first, larger inline arrays last.
type Context struct {
	// --- hot path ---
	Request        *http11.Request
	RouteMatch     *router.Match
	currentIndex   int
	ShouldContinue bool
	ShouldSkip     bool
	fatal          bool
	ResponseStatus int

	// --- response being assembled ---
	responseHeaders    [maxResponseHeaders]headerPair
	responseHeaderLen  int
	ResponseBody       []byte
	ContentTypeOverride string

	// --- identity / observability ---
	RequestID string

	// --- error reporting ---
	ErrorCode    int
	ErrorMessage string

	// --- bounded per-middleware extension points ---
	perMiddlewareSlot [maxChainLength]any
	Timing            [maxChainLength]time.Duration

	// resolver is the DI collaborator resolve_dependency delegates to; nil
	// unless the embedding application wires one in (spec treats the DI
	// container as an external collaborator; the interface is defined below
	// in this package).
	resolver DependencyResolver

	// rw gives a handler direct access to the streaming engine (component
	// E) via ResponseWriter.StartStream/WriteChunk/FinishChunked, bypassing
	// the buffered ResponseBody path entirely. Set by the wiring layer
	// (package server) before the middleware chain runs.
	rw *http11.ResponseWriter
}

// DependencyResolver is the collaborator interface resolve_dependency
// delegates to (spec §4.D). Defined here rather than in package bridge to
// avoid Context depending on bridge's other, unrelated collaborator
// interfaces.
type DependencyResolver interface {
	Resolve(name string) (any, bool)
}

// NewContext allocates and initializes a Context for one request. The
// server reuses Contexts through Pool (a sync.Pool, see pool.go) rather
// than calling this per request; NewContext itself just performs the
// zero-value initialization spec §4.D step 1 describes.
func NewContext(req *http11.Request, match *router.Match, resolver DependencyResolver) *Context {
	c := &Context{
		Request:        req,
		RouteMatch:     match,
		ShouldContinue: true,
		ResponseStatus: 200,
		RequestID:      uuid.NewString(),
		resolver:       resolver,
	}
	return c
}

// Reset clears a Context for reuse from a pool, matching the
// Acquire/Release/FastReset discipline of bolt/core/context_pool.go.
func (c *Context) Reset() {
	*c = Context{
		ShouldContinue: true,
		ResponseStatus: 200,
	}
}

// SetStatus implements the set_status utility operation.
func (c *Context) SetStatus(status int) {
	c.ResponseStatus = status
}

// SetHeader implements set_header(name, value), bounded to 32 entries
// (spec §4.D). Beyond the bound, the call is dropped silently — matching
// the teacher's Header.Add overflow discipline of degrading gracefully
// rather than erroring on a rare case.
func (c *Context) SetHeader(name, value string) {
	for i := 0; i < c.responseHeaderLen; i++ {
		if strings.EqualFold(c.responseHeaders[i].name, name) {
			c.responseHeaders[i].value = value
			return
		}
	}
	if c.responseHeaderLen >= maxResponseHeaders {
		return
	}
	c.responseHeaders[c.responseHeaderLen] = headerPair{name: name, value: value}
	c.responseHeaderLen++
}

// Headers returns the response headers set so far, in insertion order.
func (c *Context) Headers() []headerPair {
	return c.responseHeaders[:c.responseHeaderLen]
}

// SetBody implements set_body(bytes, content_type): the slice is stored
// as-is, so the caller hands over memory that stays valid for the rest of
// the request (JSON, for instance, passes the owned copy that
// buffers.EncodeJSON returns from its pooled encode buffer).
func (c *Context) SetBody(body []byte, contentType string) {
	c.ResponseBody = body
	c.ContentTypeOverride = contentType
	c.SetHeader("Content-Type", contentType)
}

// JSON encodes v via the pooled-buffer goccy/go-json encoder in
// pool/buffers (matching bolt/core/context.go's encoder choice, upgraded
// from the teacher's unpooled json.Marshal call) and calls SetBody with
// the JSON content type.
func (c *Context) JSON(status int, v any) error {
	body, err := buffers.EncodeJSON(v, len(c.ResponseBody))
	if err != nil {
		return err
	}
	c.SetStatus(status)
	c.SetBody(body, "application/json; charset=utf-8")
	return nil
}

// Query returns a query-parameter value by name, lazily URL-decoding the
// query string on first access (spec §4.C point 4 / §3's parsed_query).
func (c *Context) Query(name string) string {
	if c.Request == nil {
		return ""
	}
	value, _ := c.Request.QueryParam(name)
	return value
}

// FormValue returns a form field's value by name, lazily decoding the
// request body as application/x-www-form-urlencoded on first access
// (spec §3's parsed_form). Returns "" if the request's Content-Type
// didn't classify to FORM.
func (c *Context) FormValue(name string) string {
	if c.Request == nil {
		return ""
	}
	value, _ := c.Request.FormValue(name)
	return value
}

// BindJSON decodes the request body as JSON into v (spec §3's
// parsed_json), delegating to Request.BindJSON.
func (c *Context) BindJSON(v any) error {
	if c.Request == nil {
		return ErrNoRequest
	}
	return c.Request.BindJSON(v)
}

// GetRequestHeader implements get_request_header(name), case-insensitive.
func (c *Context) GetRequestHeader(name string) string {
	if c.Request == nil {
		return ""
	}
	return c.Request.Header.GetString([]byte(name))
}

// SetData implements set_data(slot, ptr): slot indexes the bounded
// per-middleware data array (spec §3's per_middleware_slot, ≤64 entries).
func (c *Context) SetData(slot int, value any) {
	if slot < 0 || slot >= maxChainLength {
		return
	}
	c.perMiddlewareSlot[slot] = value
}

// GetData implements get_data(slot).
func (c *Context) GetData(slot int) any {
	if slot < 0 || slot >= maxChainLength {
		return nil
	}
	return c.perMiddlewareSlot[slot]
}

// ResolveDependency implements resolve_dependency(name), delegating to the
// DI collaborator if one was wired in at context construction.
func (c *Context) ResolveDependency(name string) (any, bool) {
	if c.resolver == nil {
		return nil, false
	}
	return c.resolver.Resolve(name)
}

// SetResponseWriter wires the connection's ResponseWriter into ctx, called
// by package server before the middleware chain runs.
func (c *Context) SetResponseWriter(rw *http11.ResponseWriter) {
	c.rw = rw
}

// ResponseWriter returns the underlying http11.ResponseWriter for handlers
// that need to stream a chunked response directly (component E) instead of
// returning a buffered ResponseBody. Once the response headers have
// actually been sent through it (rw.HeaderWritten reports true), the
// wiring layer skips its own buffered write for this request.
func (c *Context) ResponseWriter() *http11.ResponseWriter {
	return c.rw
}

// Param returns the value bound to name by the router match, or "" if no
// such parameter was bound.
func (c *Context) Param(name string) string {
	if c.RouteMatch == nil {
		return ""
	}
	for _, p := range c.RouteMatch.Params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}
