package client

import (
	"fmt"

	"ssvp/internal/pkg/wire"

	"github.com/pkg/errors"
)

// ErrNotConnected indicates that Run was called before Connect.
var ErrNotConnected = errors.New("not connected")

// ErrServerClosed indicates that the server closed the connection without
// sending a verdict.
var ErrServerClosed = errors.New("server closed connection")

// RejectionError is the server verdict that ended the run.
type RejectionError struct {
	StepID uint64
	Code   wire.Code
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("step %d rejected: %s", e.StepID, e.Code)
}
