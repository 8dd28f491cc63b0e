// Package http11 implements the HTTP/1.1 connection pipeline: an
// incremental, zero-copy request-line/header parser, inline header storage,
// and a pooled response writer, grounded on
// shockwave/pkg/shockwave/http11.
package http11

// HTTP method IDs, for O(1) switching instead of string comparison.
const (
	MethodUnknown uint8 = 0
	MethodGET     uint8 = 1
	MethodPOST    uint8 = 2
	MethodPUT     uint8 = 3
	MethodDELETE  uint8 = 4
	MethodPATCH   uint8 = 5
	MethodHEAD    uint8 = 6
	MethodOPTIONS uint8 = 7
	MethodCONNECT uint8 = 8
	MethodTRACE   uint8 = 9
)

var (
	methodGETBytes     = []byte("GET")
	methodPOSTBytes    = []byte("POST")
	methodPUTBytes     = []byte("PUT")
	methodDELETEBytes  = []byte("DELETE")
	methodPATCHBytes   = []byte("PATCH")
	methodHEADBytes    = []byte("HEAD")
	methodOPTIONSBytes = []byte("OPTIONS")
	methodCONNECTBytes = []byte("CONNECT")
	methodTRACEBytes   = []byte("TRACE")
)

const (
	methodGETString     = "GET"
	methodPOSTString    = "POST"
	methodPUTString     = "PUT"
	methodDELETEString  = "DELETE"
	methodPATCHString   = "PATCH"
	methodHEADString    = "HEAD"
	methodOPTIONSString = "OPTIONS"
	methodCONNECTString = "CONNECT"
	methodTRACEString   = "TRACE"
)

// Pre-compiled status lines, covering the common codes with zero
// allocations; uncommon codes fall back to buildStatusLine.
var (
	status100Bytes = []byte("HTTP/1.1 100 Continue\r\n")
	status200Bytes = []byte("HTTP/1.1 200 OK\r\n")
	status201Bytes = []byte("HTTP/1.1 201 Created\r\n")
	status202Bytes = []byte("HTTP/1.1 202 Accepted\r\n")
	status204Bytes = []byte("HTTP/1.1 204 No Content\r\n")
	status206Bytes = []byte("HTTP/1.1 206 Partial Content\r\n")
	status301Bytes = []byte("HTTP/1.1 301 Moved Permanently\r\n")
	status302Bytes = []byte("HTTP/1.1 302 Found\r\n")
	status304Bytes = []byte("HTTP/1.1 304 Not Modified\r\n")
	status307Bytes = []byte("HTTP/1.1 307 Temporary Redirect\r\n")
	status308Bytes = []byte("HTTP/1.1 308 Permanent Redirect\r\n")
	status400Bytes = []byte("HTTP/1.1 400 Bad Request\r\n")
	status401Bytes = []byte("HTTP/1.1 401 Unauthorized\r\n")
	status403Bytes = []byte("HTTP/1.1 403 Forbidden\r\n")
	status404Bytes = []byte("HTTP/1.1 404 Not Found\r\n")
	status405Bytes = []byte("HTTP/1.1 405 Method Not Allowed\r\n")
	status408Bytes = []byte("HTTP/1.1 408 Request Timeout\r\n")
	status409Bytes = []byte("HTTP/1.1 409 Conflict\r\n")
	status413Bytes = []byte("HTTP/1.1 413 Payload Too Large\r\n")
	status414Bytes = []byte("HTTP/1.1 414 URI Too Long\r\n")
	status415Bytes = []byte("HTTP/1.1 415 Unsupported Media Type\r\n")
	status429Bytes = []byte("HTTP/1.1 429 Too Many Requests\r\n")
	status500Bytes = []byte("HTTP/1.1 500 Internal Server Error\r\n")
	status501Bytes = []byte("HTTP/1.1 501 Not Implemented\r\n")
	status502Bytes = []byte("HTTP/1.1 502 Bad Gateway\r\n")
	status503Bytes = []byte("HTTP/1.1 503 Service Unavailable\r\n")
	status504Bytes = []byte("HTTP/1.1 504 Gateway Timeout\r\n")
)

var (
	headerContentLength    = []byte("Content-Length")
	headerContentType      = []byte("Content-Type")
	headerConnection       = []byte("Connection")
	headerClose            = []byte("close")
	headerTransferEncoding = []byte("Transfer-Encoding")
	headerChunked          = []byte("chunked")
	headerHost             = []byte("Host")
)

var (
	contentTypeJSONUTF8 = []byte("application/json; charset=utf-8")
	contentTypePlain    = []byte("text/plain; charset=utf-8")
	contentTypeHTML     = []byte("text/html; charset=utf-8")
)

// Request Content-Type classification (spec §3/§4.C: content_type ∈
// {NONE, JSON, FORM}), set by the parser's Content-Type header
// classification and read by the 415 Unsupported Media Type check.
const (
	ContentTypeNone uint8 = 0
	ContentTypeJSON uint8 = 1
	ContentTypeForm uint8 = 2
)

var (
	contentTypeJSONMatch = []byte("application/json")
	contentTypeFormMatch = []byte("application/x-www-form-urlencoded")
)

var (
	http11Bytes = []byte("HTTP/1.1")
	crlfBytes   = []byte("\r\n")
	colonSpace  = []byte(": ")
	http11Proto = "HTTP/1.1"
)

const (
	ProtoHTTP11Major = 1
	ProtoHTTP11Minor = 1
)

// Header and request limits, per RFC 7230 and shockwave's security fixes.
const (
	// MaxHeaders is the number of headers held inline before overflow.
	MaxHeaders = 32

	// MaxHeaderName is the maximum length of a header name held inline.
	MaxHeaderName = 64

	// MaxHeaderValue is the maximum length of a header value held inline;
	// longer values fall back to overflow storage.
	MaxHeaderValue = 128

	// MaxRequestLineSize bounds the request line (RFC 7230 §3.1.1).
	MaxRequestLineSize = 8192

	// MaxURILength bounds the Request-URI, preventing slowloris-style
	// memory exhaustion via an unbounded URI.
	MaxURILength = 8192

	// MaxHeadersSize bounds the total size of the header block.
	MaxHeadersSize = 8192
)
