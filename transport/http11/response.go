package http11

import (
	"io"
	"strconv"

	"github.com/yourusername/ember/stream"
)

// ResponseWriter writes an HTTP/1.1 response, ported from
// shockwave/pkg/shockwave/http11/response.go. Status lines are
// pre-compiled for the common codes, and headers reuse the inline Header
// storage from header.go.
type ResponseWriter struct {
	w io.Writer

	status int

	header Header

	statusWritten bool
	headerWritten bool
	bytesWritten  int64

	chunked bool

	// stream, once started via StartStream, owns chunk framing for the
	// rest of the response; WriteChunk/FinishChunked delegate to it
	// instead of writing chunk frames directly (spec §4.E).
	stream *stream.Stream
}

// NewResponseWriter wraps w, defaulting to status 200.
func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{w: w, status: 200}
}

// Header returns the response's mutable header set; set headers before
// the first Write/WriteHeader/StartStream call.
func (rw *ResponseWriter) Header() *Header {
	return &rw.header
}

// WriteHeader records statusCode; only the first call takes effect.
func (rw *ResponseWriter) WriteHeader(statusCode int) {
	if rw.statusWritten {
		return
	}
	rw.status = statusCode
	rw.statusWritten = true
}

// Write sends data as the response body, writing the status line and
// headers first if they haven't been sent yet.
func (rw *ResponseWriter) Write(data []byte) (int, error) {
	if !rw.headerWritten {
		if err := rw.writeHeaders(); err != nil {
			return 0, err
		}
	}
	n, err := rw.w.Write(data)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *ResponseWriter) writeHeaders() error {
	if rw.headerWritten {
		return nil
	}
	rw.headerWritten = true

	if _, err := rw.w.Write(getStatusLine(rw.status)); err != nil {
		return err
	}

	var writeErr error
	rw.header.VisitAll(func(name, value []byte) bool {
		if _, err := rw.w.Write(name); err != nil {
			writeErr = err
			return false
		}
		if _, err := rw.w.Write(colonSpace); err != nil {
			writeErr = err
			return false
		}
		if _, err := rw.w.Write(value); err != nil {
			writeErr = err
			return false
		}
		if _, err := rw.w.Write(crlfBytes); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	_, err := rw.w.Write(crlfBytes)
	return err
}

// Flush writes the headers if they haven't been sent, then flushes the
// underlying writer if it supports Flush.
func (rw *ResponseWriter) Flush() error {
	if !rw.headerWritten {
		if err := rw.writeHeaders(); err != nil {
			return err
		}
	}
	if flusher, ok := rw.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Status returns the status code that will be (or was) written.
func (rw *ResponseWriter) Status() int {
	return rw.status
}

// BytesWritten returns the number of body bytes written so far.
func (rw *ResponseWriter) BytesWritten() int64 {
	return rw.bytesWritten
}

// HeaderWritten reports whether the status line and headers were sent.
func (rw *ResponseWriter) HeaderWritten() bool {
	return rw.headerWritten
}

// Reset clears the ResponseWriter for pooled reuse against w (nil to
// just clear).
func (rw *ResponseWriter) Reset(w io.Writer) {
	rw.w = w
	rw.status = 200
	rw.header.Reset()
	rw.statusWritten = false
	rw.headerWritten = false
	rw.bytesWritten = 0
	rw.chunked = false
	rw.stream = nil
}

func getStatusLine(code int) []byte {
	switch code {
	case 100:
		return status100Bytes
	case 200:
		return status200Bytes
	case 201:
		return status201Bytes
	case 202:
		return status202Bytes
	case 204:
		return status204Bytes
	case 206:
		return status206Bytes
	case 301:
		return status301Bytes
	case 302:
		return status302Bytes
	case 304:
		return status304Bytes
	case 307:
		return status307Bytes
	case 308:
		return status308Bytes
	case 400:
		return status400Bytes
	case 401:
		return status401Bytes
	case 403:
		return status403Bytes
	case 404:
		return status404Bytes
	case 405:
		return status405Bytes
	case 408:
		return status408Bytes
	case 409:
		return status409Bytes
	case 413:
		return status413Bytes
	case 414:
		return status414Bytes
	case 415:
		return status415Bytes
	case 429:
		return status429Bytes
	case 500:
		return status500Bytes
	case 501:
		return status501Bytes
	case 502:
		return status502Bytes
	case 503:
		return status503Bytes
	case 504:
		return status504Bytes
	default:
		return buildStatusLine(code)
	}
}

func buildStatusLine(code int) []byte {
	return []byte("HTTP/1.1 " + strconv.Itoa(code) + " " + statusText(code) + "\r\n")
}

func statusText(code int) string {
	switch code {
	case 100:
		return "Continue"
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 202:
		return "Accepted"
	case 204:
		return "No Content"
	case 206:
		return "Partial Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 303:
		return "See Other"
	case 304:
		return "Not Modified"
	case 307:
		return "Temporary Redirect"
	case 308:
		return "Permanent Redirect"
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
	case 406:
		return "Not Acceptable"
	case 408:
		return "Request Timeout"
	case 409:
		return "Conflict"
	case 413:
		return "Payload Too Large"
	case 414:
		return "URI Too Long"
	case 415:
		return "Unsupported Media Type"
	case 422:
		return "Unprocessable Entity"
	case 429:
		return "Too Many Requests"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	case 504:
		return "Gateway Timeout"
	default:
		return "Unknown"
	}
}

// WriteJSON sets Content-Type/Content-Length and writes data as the
// complete (non-streamed) body.
func (rw *ResponseWriter) WriteJSON(statusCode int, data []byte) error {
	return rw.writeSized(statusCode, contentTypeJSONUTF8, data)
}

// WriteText is WriteJSON with a text/plain content type.
func (rw *ResponseWriter) WriteText(statusCode int, data []byte) error {
	return rw.writeSized(statusCode, contentTypePlain, data)
}

// WriteHTML is WriteJSON with a text/html content type.
func (rw *ResponseWriter) WriteHTML(statusCode int, data []byte) error {
	return rw.writeSized(statusCode, contentTypeHTML, data)
}

func (rw *ResponseWriter) writeSized(statusCode int, contentType, data []byte) error {
	rw.WriteHeader(statusCode)
	rw.header.Set(headerContentType, contentType)
	rw.header.Set(headerContentLength, []byte(strconv.Itoa(len(data))))
	if _, err := rw.Write(data); err != nil {
		return err
	}
	return rw.Flush()
}

// WriteError writes message as a plain-text error body.
func (rw *ResponseWriter) WriteError(statusCode int, message string) error {
	return rw.WriteText(statusCode, []byte(message))
}

// StartStream switches the response into chunked mode: it sets
// Transfer-Encoding: chunked (if not already set) and constructs the
// backing stream.Stream, sized via stream.OptimalBufferSize(expectedTotal)
// (pass 0 if unknown). The stream's header-writer callback is wired to
// this ResponseWriter's own writeHeaders, so the status line and headers
// go out exactly once, on the first chunk.
func (rw *ResponseWriter) StartStream(expectedTotal int) *stream.Stream {
	if rw.stream != nil {
		return rw.stream
	}
	rw.chunked = true
	if rw.header.Get(headerTransferEncoding) == nil {
		rw.header.Set(headerTransferEncoding, headerChunked)
	}
	rw.stream = stream.Create(rw.w, stream.OptimalBufferSize(expectedTotal),
		stream.WithHeaderWriter(rw.writeHeaders),
	)
	return rw.stream
}

// WriteChunk writes one chunk of a streaming response, starting the
// stream on first use with a default buffer size.
func (rw *ResponseWriter) WriteChunk(chunk []byte) stream.Result {
	if rw.stream == nil {
		rw.StartStream(0)
	}
	return rw.stream.WriteChunk(chunk)
}

// FinishChunked completes a streaming response started by WriteChunk or
// StartStream.
func (rw *ResponseWriter) FinishChunked() error {
	if rw.stream == nil {
		return nil
	}
	rw.bytesWritten += rw.stream.BytesStreamed()
	return rw.stream.Finish()
}
