package http11

import (
	"bytes"
	"io"
	"testing"
)

func TestChunkedReaderDecodesMultipleChunks(t *testing.T) {
	raw := "5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	cr := NewChunkedReader(bytes.NewReader([]byte(raw)))

	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
	if cr.TotalRead() != uint64(len("hello world")) {
		t.Fatalf("TotalRead = %d, want %d", cr.TotalRead(), len("hello world"))
	}
}

func TestChunkedReaderStripsExtensions(t *testing.T) {
	raw := "5;foo=bar\r\nhello\r\n0\r\n\r\n"
	cr := NewChunkedReader(bytes.NewReader([]byte(raw)))

	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
}

func TestChunkedReaderRejectsOversizedChunk(t *testing.T) {
	raw := "FFFFFFFF\r\n"
	cr := NewChunkedReaderWithLimits(bytes.NewReader([]byte(raw)), 1024, 0)

	_, err := cr.Read(make([]byte, 16))
	if err != ErrChunkedEncoding {
		t.Fatalf("err = %v, want ErrChunkedEncoding", err)
	}
}

func TestChunkedReaderRejectsBodyOverTotalLimit(t *testing.T) {
	raw := "5\r\nhello\r\n5\r\nworld\r\n0\r\n\r\n"
	cr := NewChunkedReaderWithLimits(bytes.NewReader([]byte(raw)), 0, 5)

	_, err := io.ReadAll(cr)
	if err != ErrChunkedEncoding {
		t.Fatalf("err = %v, want ErrChunkedEncoding", err)
	}
}

func TestChunkedReaderRejectsMalformedChunkSize(t *testing.T) {
	raw := "zz\r\nhello\r\n0\r\n\r\n"
	cr := NewChunkedReader(bytes.NewReader([]byte(raw)))

	_, err := cr.Read(make([]byte, 16))
	if err != ErrChunkedEncoding {
		t.Fatalf("err = %v, want ErrChunkedEncoding", err)
	}
}
