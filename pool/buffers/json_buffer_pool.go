// Package buffers provides three-tier pooled byte buffers for JSON
// encoding, ported near-verbatim from bolt/pool/buffers/json_buffer_pool.go
// (same tier thresholds, same acquire/release-by-capacity discipline).
// Ember's middleware.Context.JSON uses this pool to avoid a fresh
// allocation per response encode.
package buffers

import (
	"bytes"
	"io"
	"sync"

	"github.com/goccy/go-json"
)

var (
	smallJSONPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 512))
		},
	}
	mediumJSONPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 8192))
		},
	}
	largeJSONPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 65536))
		},
	}
)

const (
	smallBufferThreshold  = 512
	mediumBufferThreshold = 8192
)

// AcquireJSONBuffer acquires a buffer from the tier matching sizeHint (0 or
// unknown defaults to medium), matching bolt's AcquireJSONBuffer tier
// selection.
func AcquireJSONBuffer(sizeHint int) *bytes.Buffer {
	if sizeHint == 0 || (sizeHint > smallBufferThreshold && sizeHint <= mediumBufferThreshold) {
		return mediumJSONPool.Get().(*bytes.Buffer)
	}
	if sizeHint <= smallBufferThreshold {
		return smallJSONPool.Get().(*bytes.Buffer)
	}
	return largeJSONPool.Get().(*bytes.Buffer)
}

// ReleaseJSONBuffer resets buf and returns it to the pool matching its
// current capacity.
func ReleaseJSONBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	switch cap := buf.Cap(); {
	case cap <= smallBufferThreshold:
		smallJSONPool.Put(buf)
	case cap <= mediumBufferThreshold:
		mediumJSONPool.Put(buf)
	default:
		largeJSONPool.Put(buf)
	}
}

// AcquireSmallJSONBuffer explicitly acquires a small (512B) buffer.
func AcquireSmallJSONBuffer() *bytes.Buffer { return smallJSONPool.Get().(*bytes.Buffer) }

// AcquireMediumJSONBuffer explicitly acquires a medium (8KB) buffer.
func AcquireMediumJSONBuffer() *bytes.Buffer { return mediumJSONPool.Get().(*bytes.Buffer) }

// AcquireLargeJSONBuffer explicitly acquires a large (64KB) buffer.
func AcquireLargeJSONBuffer() *bytes.Buffer { return largeJSONPool.Get().(*bytes.Buffer) }

// EncodeJSON marshals v into a pooled buffer sized by sizeHint and returns
// its bytes copied out (the buffer itself is released back to the pool
// before returning, since callers need an owned slice they can hand to a
// Context.ResponseBody that outlives this call).
func EncodeJSON(v any, sizeHint int) ([]byte, error) {
	buf := AcquireJSONBuffer(sizeHint)
	defer ReleaseJSONBuffer(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder.Encode terminates its output with '\n'; drop it so the result
	// matches what json.Marshal would produce.
	b := buf.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// DecodeJSON decodes r into v with the same goccy/go-json codec EncodeJSON
// encodes with, so a request body's lazy JSON access (parsed_json, spec
// §3) goes through the one decoder the rest of the module already pays
// the import cost for.
func DecodeJSON(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
