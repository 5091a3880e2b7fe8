// Package core holds the contracts shared between the application layer
// and transport adapters.
package core

import "errors"

var ErrBackpressure = errors.New("backpressure")

// Frame is one outbound transport message, already encoded.
type Frame []byte

// Conn is an indirection over the transport endpoint to ease testing.
// TrySend must never block: a full send buffer returns ErrBackpressure
// and the frame is dropped for that connection only.
type Conn interface {
	TrySend(Frame) error
}
