package stream

import (
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
)

// Result is the tagged outcome of a stream operation — BACKPRESSURE and
// TIMEDOUT are ordinary, expected results a caller must branch on, not
// errors, which is why Stream's API returns this instead of error.
type Result int

const (
	ResultOK Result = iota
	ResultBackpressure
	ResultClosed
	ResultTimeout
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "OK"
	case ResultBackpressure:
		return "BACKPRESSURE"
	case ResultClosed:
		return "CLOSED"
	case ResultTimeout:
		return "TIMEDOUT"
	default:
		return "UNKNOWN"
	}
}

// defaultMaxPendingWrites is the pending-scatter-write threshold below
// which backpressure clears (spec §4.E).
const defaultMaxPendingWrites = 50

const drainChunkSize = 8 * 1024

var finalChunk = []byte("0\r\n\r\n")

// asyncWrite is a queued WriteAsync call waiting for ring space.
type asyncWrite struct {
	data     []byte
	callback func(error)
}

// Stream is the chunked-response producer side of spec §4.E's "Stream
// context": a handler writes chunks into the ring via WriteChunk/WriteAsync
// and the same goroutine (there is no separate reactor thread in Ember's
// goroutine-per-connection model, see transport/http11/connection.go)
// drains the ring directly onto the socket, framed as chunked-encoding.
type Stream struct {
	ring *ring
	w    io.Writer

	active     atomic.Bool
	pending    atomic.Int64
	backpressure atomic.Bool

	maxPendingWrites int

	headersSent  bool
	writeHeaders func() error

	onChunk        func([]byte)
	onBackpressure func(active bool)

	bytesStreamed atomic.Int64
	startTime     time.Time

	mu       sync.Mutex
	asyncQ   []asyncWrite
	closeErr error
}

// Option configures a Stream at Create time.
type Option func(*Stream)

// WithHeaderWriter registers a callback invoked exactly once, before the
// first chunk is written, to emit the response's status line and headers
// (with Transfer-Encoding: chunked already set by the caller).
func WithHeaderWriter(fn func() error) Option {
	return func(s *Stream) { s.writeHeaders = fn }
}

// WithChunkCallback registers a callback invoked with each chunk's payload
// as it is handed to the drain loop.
func WithChunkCallback(fn func([]byte)) Option {
	return func(s *Stream) { s.onChunk = fn }
}

// WithBackpressureCallback registers a callback invoked whenever
// backpressure is asserted or cleared.
func WithBackpressureCallback(fn func(active bool)) Option {
	return func(s *Stream) { s.onBackpressure = fn }
}

// WithMaxPendingWrites overrides the default pending-write threshold
// (50) below which backpressure clears.
func WithMaxPendingWrites(n int) Option {
	return func(s *Stream) { s.maxPendingWrites = n }
}

// OptimalBufferSize maps an expected total response size to a ring
// buffer size class (spec §4.E): <1KiB→1KiB, <64KiB→8KiB, <1MiB→64KiB,
// else 256KiB.
func OptimalBufferSize(expectedTotal int) int {
	switch {
	case expectedTotal < 1024:
		return 1024
	case expectedTotal < 64*1024:
		return 8 * 1024
	case expectedTotal < 1024*1024:
		return 64 * 1024
	default:
		return 256 * 1024
	}
}

// Create allocates a Stream backed by a ring buffer of bufferSize bytes
// (clamped to [1024, 262144] and rounded up to a power of two), writing
// chunk frames to client.
func Create(client io.Writer, bufferSize int, opts ...Option) *Stream {
	if bufferSize < 1024 {
		bufferSize = 1024
	}
	if bufferSize > 262144 {
		bufferSize = 262144
	}
	s := &Stream{
		ring:             newRing(bufferSize),
		w:                client,
		maxPendingWrites: defaultMaxPendingWrites,
		startTime:        time.Now(),
	}
	s.active.Store(true)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteChunk writes bytes into the ring and attempts to drain
// immediately. Returns BACKPRESSURE without copying anything if the ring
// lacks space — the caller must retry after drain (e.g. WaitForDrain).
func (s *Stream) WriteChunk(data []byte) Result {
	if !s.active.Load() {
		return ResultClosed
	}
	if len(data) > s.ring.availableWrite() {
		s.setBackpressure(true)
		return ResultBackpressure
	}
	s.ring.write(data)
	s.bytesStreamed.Add(int64(len(data)))
	if err := s.drain(); err != nil {
		s.closeErr = err
		s.active.Store(false)
		return ResultClosed
	}
	return ResultOK
}

// WriteAsync writes data without blocking the caller on ring space: if
// the ring has room it behaves like WriteChunk and calls callback(nil)
// immediately; otherwise it queues the write and callback is invoked once
// a later drain makes room (or with an error if the stream closes first).
func (s *Stream) WriteAsync(data []byte, callback func(error)) {
	if !s.active.Load() {
		if callback != nil {
			callback(ErrStreamClosed)
		}
		return
	}
	if len(data) <= s.ring.availableWrite() {
		res := s.WriteChunk(data)
		if callback != nil {
			if res == ResultOK {
				callback(nil)
			} else {
				callback(ErrStreamClosed)
			}
		}
		return
	}
	s.setBackpressure(true)
	s.mu.Lock()
	s.asyncQ = append(s.asyncQ, asyncWrite{data: data, callback: callback})
	s.mu.Unlock()
}

// flushAsyncQueue attempts to move queued WriteAsync payloads into the
// ring now that drain has freed space.
func (s *Stream) flushAsyncQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.asyncQ) > 0 {
		next := s.asyncQ[0]
		if len(next.data) > s.ring.availableWrite() {
			break
		}
		s.ring.write(next.data)
		s.bytesStreamed.Add(int64(len(next.data)))
		s.asyncQ = s.asyncQ[1:]
		if next.callback != nil {
			next.callback(nil)
		}
	}
}

// drain reads up to drainChunkSize bytes at a time from the ring into a
// pooled staging buffer, emitting each as a chunked-encoding frame
// (<hex-len>\r\n<payload>\r\n) via three writes, exactly as spec §4.E
// describes and shockwave's ResponseWriter.WriteChunk does inline.
func (s *Stream) drain() error {
	if !s.headersSent {
		if s.writeHeaders != nil {
			if err := s.writeHeaders(); err != nil {
				return err
			}
		}
		s.headersSent = true
	}

	staging := bytebufferpool.Get()
	defer bytebufferpool.Put(staging)

	for s.ring.availableRead() > 0 {
		staging.Reset()
		staging.B = staging.B[:drainChunkSize]
		n := s.ring.read(staging.B)
		chunk := staging.B[:n]

		s.pending.Add(1)
		if err := s.writeFrame(chunk); err != nil {
			s.pending.Add(-1)
			return err
		}
		s.pending.Add(-1)

		if s.onChunk != nil {
			s.onChunk(chunk)
		}

		if s.pending.Load() < int64(s.maxPendingWrites) {
			s.setBackpressure(false)
		}
	}

	s.flushAsyncQueue()
	return nil
}

func (s *Stream) writeFrame(chunk []byte) error {
	header := []byte(strconv.FormatInt(int64(len(chunk)), 16) + "\r\n")
	if _, err := s.w.Write(header); err != nil {
		return err
	}
	if _, err := s.w.Write(chunk); err != nil {
		return err
	}
	if _, err := s.w.Write(crlf); err != nil {
		return err
	}
	return nil
}

var crlf = []byte("\r\n")

func (s *Stream) setBackpressure(active bool) {
	if s.backpressure.Swap(active) != active && s.onBackpressure != nil {
		s.onBackpressure(active)
	}
}

// HasBackpressure reports whether the ring is currently refusing writes.
func (s *Stream) HasBackpressure() bool {
	return s.backpressure.Load()
}

// WaitForDrain polls backpressure once per event-loop iteration
// (approximated here as a 1ms sleep, per spec §5's "explicitly polls one
// event-loop iteration and then sleeps 1 ms"), returning OK as soon as
// backpressure clears or TIMEDOUT after timeout elapses.
func (s *Stream) WaitForDrain(timeout time.Duration) Result {
	if !s.active.Load() {
		return ResultClosed
	}
	deadline := time.Now().Add(timeout)
	for {
		if !s.HasBackpressure() {
			return ResultOK
		}
		if time.Now().After(deadline) {
			return ResultTimeout
		}
		time.Sleep(time.Millisecond)
	}
}

// Finish drains any remaining buffered bytes, writes the terminating
// zero-length chunk, and marks the stream inactive. Calling
// WaitForDrain/WriteChunk after Finish returns CLOSED.
func (s *Stream) Finish() error {
	if !s.active.Load() {
		return ErrStreamClosed
	}
	if err := s.drain(); err != nil {
		s.active.Store(false)
		return err
	}
	if !s.headersSent {
		if s.writeHeaders != nil {
			if err := s.writeHeaders(); err != nil {
				s.active.Store(false)
				return err
			}
		}
		s.headersSent = true
	}
	_, err := s.w.Write(finalChunk)
	s.active.Store(false)
	return err
}

// Abort marks the stream inactive without writing a terminator, for the
// case where the response is being abandoned (e.g. handler panic,
// connection error).
func (s *Stream) Abort() {
	s.active.Store(false)
	s.mu.Lock()
	q := s.asyncQ
	s.asyncQ = nil
	s.mu.Unlock()
	for _, a := range q {
		if a.callback != nil {
			a.callback(ErrStreamClosed)
		}
	}
}

// ThroughputMbps returns the stream's average throughput in megabits per
// second since Create.
func (s *Stream) ThroughputMbps() float64 {
	elapsed := time.Since(s.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	bits := float64(s.bytesStreamed.Load()) * 8
	return bits / elapsed / 1e6
}

// BytesStreamed returns the total number of payload bytes accepted by
// WriteChunk/WriteAsync so far.
func (s *Stream) BytesStreamed() int64 {
	return s.bytesStreamed.Load()
}

// Active reports whether the stream can still accept writes.
func (s *Stream) Active() bool {
	return s.active.Load()
}
