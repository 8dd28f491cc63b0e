package http11

import (
	"io"
	"net/url"

	"github.com/yourusername/ember/pool/buffers"
)

// Request is a parsed HTTP/1.1 request, ported from
// shockwave/pkg/shockwave/http11/request.go. The Request-line and header
// byte slices are zero-copy references into the parser's internal buffer
// and are only valid for the lifetime of the request; Method()/Path()
// allocate a string when a caller needs to retain the value.
type Request struct {
	MethodID uint8

	methodBytes []byte
	pathBytes   []byte
	queryBytes  []byte
	protoBytes  []byte

	pathParsed  *url.URL
	queryValues url.Values
	formValues  url.Values
	formParsed  bool

	// ContentType is the classification on_header_value derives from the
	// Content-Type header (spec §3/§4.C): ContentTypeNone/JSON/Form.
	ContentType uint8

	Header Header

	// Body streams the request body. nil if there is none. Set by the
	// connection goroutine after OnHeadersComplete, as an
	// io.LimitReader for Content-Length bodies or a *ChunkedReader for
	// chunked ones — see connection.go's finishHeaders.
	Body io.Reader

	Proto      string
	ProtoMajor int
	ProtoMinor int

	ContentLength int64

	TransferEncoding []string

	Close bool

	RemoteAddr string

	buf []byte
}

// Method returns the HTTP method as a string. Canonical methods use the
// pre-compiled constants; an unrecognized pass-through method (spec §6)
// falls back to the raw request-line bytes so e.g. PURGE still reaches
// the router instead of being reported as empty.
func (r *Request) Method() string {
	if r.MethodID == MethodUnknown {
		return string(r.methodBytes)
	}
	return MethodString(r.MethodID)
}

// MethodBytes returns the zero-copy method bytes.
func (r *Request) MethodBytes() []byte {
	return r.methodBytes
}

// Path returns the request path as a string (one allocation). Use
// PathBytes for the zero-copy form.
func (r *Request) Path() string {
	return string(r.pathBytes)
}

// PathBytes returns the zero-copy path bytes.
func (r *Request) PathBytes() []byte {
	return r.pathBytes
}

// Query returns the raw query string (without '?'), one allocation.
func (r *Request) Query() string {
	return string(r.queryBytes)
}

// QueryBytes returns the zero-copy query bytes.
func (r *Request) QueryBytes() []byte {
	return r.queryBytes
}

// ParsedURL lazily parses and caches path+query as a *url.URL.
func (r *Request) ParsedURL() (*url.URL, error) {
	if r.pathParsed == nil {
		var urlStr string
		if len(r.queryBytes) > 0 {
			urlStr = string(r.pathBytes) + "?" + string(r.queryBytes)
		} else {
			urlStr = string(r.pathBytes)
		}
		parsed, err := url.Parse(urlStr)
		if err != nil {
			return nil, err
		}
		r.pathParsed = parsed
	}
	return r.pathParsed, nil
}

// QueryParam lazily parses and caches the query string (percent-decoding
// %HH pairs and treating '+' as space, per spec §4.C point 4) and returns
// the named parameter's first value.
func (r *Request) QueryParam(name string) (string, bool) {
	if r.queryValues == nil {
		r.queryValues, _ = url.ParseQuery(string(r.queryBytes))
		if r.queryValues == nil {
			r.queryValues = url.Values{}
		}
	}
	values, ok := r.queryValues[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ParseForm lazily decodes the request body as an
// application/x-www-form-urlencoded form (percent-decoding %HH pairs and
// treating '+' as space), caching the result. It is a no-op, returning
// (nil, nil), if ContentType isn't ContentTypeForm. Callers that also
// need the body elsewhere must read it before calling ParseForm, since
// the body reader is consumed here.
func (r *Request) ParseForm() (url.Values, error) {
	if r.formParsed {
		return r.formValues, nil
	}
	r.formParsed = true
	if r.ContentType != ContentTypeForm || r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	r.formValues = values
	return values, nil
}

// FormValue returns the named form field's first value, lazily parsing
// the body via ParseForm on first use.
func (r *Request) FormValue(name string) (string, bool) {
	values, err := r.ParseForm()
	if err != nil || values == nil {
		return "", false
	}
	result, ok := values[name]
	if !ok || len(result) == 0 {
		return "", false
	}
	return result[0], true
}

// BindJSON decodes the request body as JSON into v via the module's
// shared goccy/go-json codec (pool/buffers.DecodeJSON), the parsed_json
// access spec §3 names. The body reader is consumed; call at most once
// per request.
func (r *Request) BindJSON(v any) error {
	if r.Body == nil {
		return io.EOF
	}
	return buffers.DecodeJSON(r.Body, v)
}

// IsUnsupportedMediaType implements the on_message_complete media-type
// guard of spec §4.C/§7: a body-bearing POST/PUT/PATCH whose Content-Type
// didn't classify to JSON or FORM must be rejected with 415 before
// dispatch.
func (r *Request) IsUnsupportedMediaType() bool {
	if !r.HasBody() {
		return false
	}
	if r.ContentType != ContentTypeNone {
		return false
	}
	switch r.MethodID {
	case MethodPOST, MethodPUT, MethodPATCH:
		return true
	default:
		return false
	}
}

// GetHeader returns a header's zero-copy value, nil if absent.
func (r *Request) GetHeader(name []byte) []byte {
	return r.Header.Get(name)
}

// GetHeaderString returns a header's value as a string.
func (r *Request) GetHeaderString(name string) string {
	return r.Header.GetString([]byte(name))
}

// HasHeader reports whether a header is present.
func (r *Request) HasHeader(name []byte) bool {
	return r.Header.Has(name)
}

// HasBody reports whether the request declares a body via Content-Length
// or Transfer-Encoding.
func (r *Request) HasBody() bool {
	return r.ContentLength > 0 || len(r.TransferEncoding) > 0
}

// IsChunked reports whether the body uses chunked transfer encoding —
// per RFC 7230, chunked must be the final encoding in the list.
func (r *Request) IsChunked() bool {
	if len(r.TransferEncoding) == 0 {
		return false
	}
	return r.TransferEncoding[len(r.TransferEncoding)-1] == "chunked"
}

// ShouldClose reports whether the connection must be closed after this
// request completes.
func (r *Request) ShouldClose() bool {
	return r.Close
}

// Reset clears the request for pooled reuse.
func (r *Request) Reset() {
	r.MethodID = 0
	r.methodBytes = nil
	r.pathBytes = nil
	r.queryBytes = nil
	r.protoBytes = nil
	r.pathParsed = nil
	r.queryValues = nil
	r.formValues = nil
	r.formParsed = false
	r.ContentType = ContentTypeNone
	r.Header.Reset()
	r.Body = nil
	r.Proto = ""
	r.ProtoMajor = 0
	r.ProtoMinor = 0
	r.ContentLength = 0
	r.TransferEncoding = nil
	r.Close = false
	r.RemoteAddr = ""
	r.buf = nil
}
