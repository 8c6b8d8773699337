package wire

import "errors"

// ErrMalformedFrame is returned when a frame cannot be decoded into a
// well-formed message.
var ErrMalformedFrame = errors.New("malformed frame")

// ErrFrameTooLarge is returned when a frame exceeds MaxFrameBytes.
var ErrFrameTooLarge = errors.New("frame too large")
