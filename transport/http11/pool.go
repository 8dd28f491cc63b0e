package http11

import (
	"bufio"
	"io"
	"sync"
)

// DefaultBufferSize is the default size for connection read/write buffers.
const DefaultBufferSize = 4096

var (
	requestPool = sync.Pool{New: func() any { return &Request{} }}

	responseWriterPool = sync.Pool{New: func() any { return &ResponseWriter{} }}

	parserPool = sync.Pool{New: func() any { return NewParser() }}

	bufioReaderPool = sync.Pool{New: func() any { return bufio.NewReaderSize(nil, DefaultBufferSize) }}
	bufioWriterPool = sync.Pool{New: func() any { return bufio.NewWriterSize(nil, DefaultBufferSize) }}
)

// GetRequest returns a reset *Request from the pool. The caller must call
// PutRequest when done.
func GetRequest() *Request {
	req := requestPool.Get().(*Request)
	req.Reset()
	return req
}

// PutRequest returns req to the pool; req must not be used afterward.
func PutRequest(req *Request) {
	if req != nil {
		req.Reset()
		requestPool.Put(req)
	}
}

// GetResponseWriter returns a *ResponseWriter configured to write to w.
func GetResponseWriter(w io.Writer) *ResponseWriter {
	rw := responseWriterPool.Get().(*ResponseWriter)
	rw.Reset(w)
	return rw
}

// PutResponseWriter returns rw to the pool; rw must not be used afterward.
func PutResponseWriter(rw *ResponseWriter) {
	if rw != nil {
		rw.Reset(nil)
		responseWriterPool.Put(rw)
	}
}

// GetParser returns a *Parser ready to parse a new message.
func GetParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.reset()
	return p
}

// PutParser returns p to the pool; p must not be used afterward.
func PutParser(p *Parser) {
	if p != nil {
		p.reset()
		parserPool.Put(p)
	}
}

// GetBufioReader returns a *bufio.Reader reset onto r.
func GetBufioReader(r io.Reader) *bufio.Reader {
	br := bufioReaderPool.Get().(*bufio.Reader)
	br.Reset(r)
	return br
}

// PutBufioReader returns br to the pool.
func PutBufioReader(br *bufio.Reader) {
	if br != nil {
		br.Reset(nil)
		bufioReaderPool.Put(br)
	}
}

// GetBufioWriter returns a *bufio.Writer reset onto w.
func GetBufioWriter(w io.Writer) *bufio.Writer {
	bw := bufioWriterPool.Get().(*bufio.Writer)
	bw.Reset(w)
	return bw
}

// PutBufioWriter flushes and returns bw to the pool.
func PutBufioWriter(bw *bufio.Writer) {
	if bw != nil {
		bw.Flush()
		bw.Reset(nil)
		bufioWriterPool.Put(bw)
	}
}
