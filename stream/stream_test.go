package stream

import (
	"bytes"
	"testing"
	"time"
)

// scenario 5: open a stream with buffer size 1024, write 800 bytes
// (succeeds), write another 400 (BACKPRESSURE), then after the drain a
// retry of 400 succeeds.
func TestWriteChunkBackpressureAndRetry(t *testing.T) {
	var out bytes.Buffer
	s := Create(&out, 1024)

	if res := s.WriteChunk(make([]byte, 800)); res != ResultOK {
		t.Fatalf("first write: got %s, want OK", res)
	}

	if res := s.WriteChunk(make([]byte, 400)); res != ResultBackpressure {
		t.Fatalf("second write: got %s, want BACKPRESSURE", res)
	}
	if !s.HasBackpressure() {
		t.Fatal("expected HasBackpressure() true after BACKPRESSURE result")
	}

	// The first WriteChunk already drained synchronously (single
	// reactor-goroutine model), so the ring has room again.
	if res := s.WriteChunk(make([]byte, 400)); res != ResultOK {
		t.Fatalf("retry write: got %s, want OK", res)
	}
}

func TestFinishWritesTerminator(t *testing.T) {
	var out bytes.Buffer
	s := Create(&out, 1024)
	if res := s.WriteChunk([]byte("hello")); res != ResultOK {
		t.Fatalf("write: got %s", res)
	}
	if err := s.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if s.Active() {
		t.Fatal("expected stream inactive after Finish")
	}
	if !bytes.HasSuffix(out.Bytes(), []byte("0\r\n\r\n")) {
		t.Fatalf("expected terminating chunk, got %q", out.String())
	}
	if res := s.WriteChunk([]byte("late")); res != ResultClosed {
		t.Fatalf("write after Finish: got %s, want CLOSED", res)
	}
}

func TestAbortSkipsTerminator(t *testing.T) {
	var out bytes.Buffer
	s := Create(&out, 1024)
	s.WriteChunk([]byte("partial"))
	s.Abort()
	if s.Active() {
		t.Fatal("expected inactive after Abort")
	}
	if bytes.Contains(out.Bytes(), []byte("0\r\n\r\n")) {
		t.Fatal("Abort must not write a terminator")
	}
}

func TestWriteAsyncQueuesUntilDrain(t *testing.T) {
	var out bytes.Buffer
	s := Create(&out, 1024)
	s.WriteChunk(make([]byte, 800))
	s.WriteChunk(make([]byte, 400)) // backpressure, drained already though

	done := make(chan error, 1)
	s.WriteAsync([]byte("queued"), func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected async error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WriteAsync callback never fired")
	}
}

func TestOptimalBufferSizeClasses(t *testing.T) {
	cases := map[int]int{
		500:          1024,
		32 * 1024:    8 * 1024,
		512 * 1024:   64 * 1024,
		2 * 1024 * 1024: 256 * 1024,
	}
	for total, want := range cases {
		if got := OptimalBufferSize(total); got != want {
			t.Errorf("OptimalBufferSize(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	r := newRing(16)
	r.write([]byte("0123456789012"))
	buf := make([]byte, 13)
	if n := r.read(buf); n != 13 || string(buf) != "0123456789012" {
		t.Fatalf("got %q (%d)", buf[:n], n)
	}
	r.write([]byte("abcde"))
	buf2 := make([]byte, 5)
	if n := r.read(buf2); n != 5 || string(buf2) != "abcde" {
		t.Fatalf("wrap read got %q (%d)", buf2[:n], n)
	}
}
