package http11

import "errors"

// Parser and protocol errors, grounded on shockwave/pkg/shockwave/http11/errors.go.
var (
	ErrInvalidRequestLine = errors.New("http11: invalid request line")
	ErrInvalidMethod      = errors.New("http11: invalid HTTP method")
	ErrInvalidPath        = errors.New("http11: invalid request path")
	ErrInvalidProtocol    = errors.New("http11: invalid or unsupported protocol version")
	ErrInvalidHeader      = errors.New("http11: invalid HTTP header")
	ErrHeaderTooLarge     = errors.New("http11: header name or value too large")
	ErrRequestLineTooLarge = errors.New("http11: request line too large")
	ErrHeadersTooLarge    = errors.New("http11: headers too large")
	ErrChunkedEncoding    = errors.New("http11: chunked encoding error")
	ErrInvalidContentLength = errors.New("http11: invalid Content-Length")

	// RFC 7230 §3.3.3: a message with both Content-Length and
	// Transfer-Encoding must be rejected — the classic CL.TE smuggling
	// vector.
	ErrContentLengthWithTransferEncoding = errors.New("http11: request has both Content-Length and Transfer-Encoding")

	// RFC 7230 §3.3.3: duplicate Content-Length headers with different
	// values must be rejected.
	ErrDuplicateContentLength = errors.New("http11: duplicate Content-Length headers with different values")

	// RFC 7230 §5.4: exactly one Host header is required.
	ErrDuplicateHost = errors.New("http11: duplicate Host header")

	ErrURITooLong    = errors.New("http11: URI too long")
	ErrUnexpectedEOF = errors.New("http11: unexpected EOF")
)

// Connection and response errors.
var (
	ErrConnectionClosed    = errors.New("http11: connection closed")
	ErrMaxRequestsExceeded = errors.New("http11: max requests per connection exceeded")
	ErrHeadersAlreadyWritten = errors.New("http11: headers already written")
)
