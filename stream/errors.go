package stream

import "errors"

// ErrStreamClosed is returned (or passed to a WriteAsync callback) when a
// write is attempted after Finish or Abort.
var ErrStreamClosed = errors.New("stream: closed")
