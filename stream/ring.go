// Package stream implements the chunked streaming engine: a lock-free
// single-producer/single-consumer ring buffer feeding an HTTP/1.1
// chunked-encoding drain loop. No teacher file implements this directly;
// the wire framing is grounded on
// shockwave/pkg/shockwave/http11/response.go's WriteChunk/FinishChunked,
// and the atomic active/pending-writes bookkeeping mirrors the
// state-machine idiom in shockwave/pkg/shockwave/http11/connection.go.
package stream

import "sync/atomic"

// ring is a power-of-two-sized SPSC byte buffer. readPos/writePos are
// monotonically increasing counters; indices into buf are readPos&mask
// and writePos&mask, so the producer and consumer never need a modulo.
type ring struct {
	buf  []byte
	mask uint64

	// readPos is advanced only by the consumer (drain); writePos only by
	// the producer (WriteChunk/WriteAsync). Both are read by either side,
	// hence atomic.
	readPos  atomic.Uint64
	writePos atomic.Uint64
}

func newRing(size int) *ring {
	size = nextPowerOfTwo(size)
	return &ring{
		buf:  make([]byte, size),
		mask: uint64(size - 1),
	}
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// capacity returns B, the total ring size.
func (r *ring) capacity() int {
	return len(r.buf)
}

// availableWrite implements spec §4.E: B - (write_pos - read_pos) - 1. The
// -1 keeps write_pos from ever catching up to read_pos, so a full ring is
// always distinguishable from an empty one.
func (r *ring) availableWrite() int {
	w := r.writePos.Load()
	rp := r.readPos.Load()
	return len(r.buf) - int(w-rp) - 1
}

// availableRead returns the number of unread bytes.
func (r *ring) availableRead() int {
	w := r.writePos.Load()
	rp := r.readPos.Load()
	return int(w - rp)
}

// write copies data into the ring, wrapping around as needed. Caller must
// have already confirmed len(data) <= availableWrite().
func (r *ring) write(data []byte) {
	w := r.writePos.Load()
	start := w & r.mask
	n := uint64(len(data))

	first := uint64(len(r.buf)) - start
	if first > n {
		first = n
	}
	copy(r.buf[start:], data[:first])
	if n > first {
		copy(r.buf, data[first:])
	}

	r.writePos.Store(w + n)
}

// read drains up to len(dst) unread bytes into dst, advancing readPos,
// and returns the number of bytes copied.
func (r *ring) read(dst []byte) int {
	rp := r.readPos.Load()
	w := r.writePos.Load()
	avail := int(w - rp)
	n := len(dst)
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	start := rp & r.mask
	first := uint64(len(r.buf)) - start
	if first > uint64(n) {
		first = uint64(n)
	}
	copy(dst, r.buf[start:start+first])
	if uint64(n) > first {
		copy(dst[first:], r.buf[:uint64(n)-first])
	}

	r.readPos.Store(rp + uint64(n))
	return n
}
