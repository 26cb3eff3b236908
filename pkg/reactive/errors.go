package reactive

import "errors"

var (
	// ErrClosed is returned when writing to a sink whose stream has
	// already terminated.
	ErrClosed = errors.New("reactive: stream closed")
	// ErrBufferOverflow terminates a buffered stream whose overflow
	// strategy is ErrorWhenFull.
	ErrBufferOverflow = errors.New("reactive: buffer overflow")
)
