package handler

import (
	"context"
	"io"
	"net"
	"time"

	"ssvp/internal/pkg/log"
	"ssvp/internal/pkg/metrics"
	"ssvp/internal/pkg/session"
	"ssvp/internal/pkg/wire"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// DefaultReadTimeout bounds the wait for the next record before the
// session is declared idle.
const DefaultReadTimeout = 30 * time.Second

// Validator produces a verdict for each record received on a session.
type Validator interface {
	Validate(rec wire.Record) session.Outcome
}

type handler struct {
	conn        net.Conn
	validator   Validator
	threshold   float64
	readTimeout time.Duration
	sessionID   uuid.UUID
}

// HandlerCfg is configures a handler.
type HandlerCfg func(*handler) error

// WithConn sets the client connection. The handler takes ownership of the
// connection and closes it when the session ends.
func WithConn(conn net.Conn) HandlerCfg {
	return func(h *handler) error {
		h.conn = conn
		return nil
	}
}

// WithValidator sets the record validator.
func WithValidator(validator Validator) HandlerCfg {
	return func(h *handler) error {
		h.validator = validator
		return nil
	}
}

// WithThreshold sets the minimum accepted wait_seconds.
func WithThreshold(threshold float64) HandlerCfg {
	return func(h *handler) error {
		h.threshold = threshold
		return nil
	}
}

// WithReadTimeout sets how long the handler waits for the next record.
func WithReadTimeout(timeout time.Duration) HandlerCfg {
	return func(h *handler) error {
		h.readTimeout = timeout
		return nil
	}
}

// NewHandler creates a new handler.
func NewHandler(cfgs ...HandlerCfg) (*handler, error) {
	h := &handler{
		threshold:   session.DefaultThreshold,
		readTimeout: DefaultReadTimeout,
		sessionID:   uuid.New(),
	}
	for _, cfg := range cfgs {
		if err := cfg(h); err != nil {
			return nil, errors.Wrap(err, "apply handler cfg failed")
		}
	}
	if h.conn == nil {
		return nil, errors.New("conn is required")
	}
	if h.validator == nil {
		h.validator = session.NewState(h.threshold)
	}
	return h, nil
}

// Run serves the session until the client disconnects, a record is
// rejected, the session goes idle, or ctx is cancelled. The first
// rejection is final: the verdict is written and the connection closed.
func (h *handler) Run(ctx context.Context) error {
	defer h.conn.Close()

	metrics.SessionOpened()
	outcome := metrics.OutcomeCompleted
	defer func() { metrics.SessionClosed(outcome) }()

	// Closing the connection is the only way to unblock a pending read.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			h.conn.Close()
		case <-stop:
		}
	}()

	fields := logrus.Fields{
		"session": h.sessionID.String(),
		"remote":  h.conn.RemoteAddr().String(),
	}
	logger.WithFields(fields).Info("session opened")

	enc := wire.NewEncoder(h.conn)
	dec := wire.NewDecoder(h.conn)
	var lastStepID uint64
	for {
		if err := h.conn.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
			outcome = metrics.OutcomeAborted
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "set read deadline failed")
		}
		rec, err := dec.DecodeRecord()
		if err != nil {
			if ctx.Err() != nil {
				outcome = metrics.OutcomeAborted
				return ctx.Err()
			}
			return h.handleReadError(enc, fields, lastStepID, err, &outcome)
		}
		out := h.validator.Validate(rec)
		resp := wire.Response{StepID: rec.StepID, Code: out.Code()}
		if err := enc.EncodeResponse(resp); err != nil {
			outcome = metrics.OutcomeAborted
			return errors.Wrap(err, "encode response failed")
		}
		metrics.RecordResponse(resp.Code)
		if out.Rejected() {
			logger.WithFields(fields).WithFields(log.RecordToFields(rec)).
				WithField("code", resp.Code.String()).
				Warn("record rejected")
			outcome = rejectionOutcome(out)
			return nil
		}
		lastStepID = rec.StepID
		logger.WithFields(fields).WithFields(log.RecordToFields(rec)).Debug("record accepted")
	}
}

// handleReadError classifies a failed read. Client-caused endings (clean
// disconnect, idle timeout, malformed frame) close the session without an
// error; transport failures propagate.
func (h *handler) handleReadError(enc *wire.Encoder, fields logrus.Fields, lastStepID uint64, err error, outcome *string) error {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		logger.WithFields(fields).Info("session closed by client")
		return nil
	case errors.As(err, &netErr) && netErr.Timeout():
		*outcome = metrics.OutcomeIdleTimeout
		resp := wire.Response{StepID: lastStepID, Code: wire.CodeTimeout}
		if err := enc.EncodeResponse(resp); err != nil {
			return errors.Wrap(err, "encode timeout response failed")
		}
		metrics.RecordResponse(resp.Code)
		logger.WithFields(fields).WithFields(log.ResponseToFields(resp)).Warn("session idle timeout")
		return nil
	case errors.Is(err, wire.ErrMalformedFrame) || errors.Is(err, wire.ErrFrameTooLarge):
		*outcome = metrics.OutcomeMalformed
		resp := wire.Response{StepID: lastStepID, Code: wire.CodeUnexpected}
		if err := enc.EncodeResponse(resp); err != nil {
			return errors.Wrap(err, "encode error response failed")
		}
		metrics.RecordResponse(resp.Code)
		logger.WithFields(fields).WithError(err).Warn("malformed record")
		return nil
	default:
		*outcome = metrics.OutcomeAborted
		return errors.Wrap(err, "read record failed")
	}
}

func rejectionOutcome(out session.Outcome) string {
	if out == session.RejectedTimeout {
		return metrics.OutcomeRejectedTimeout
	}
	return metrics.OutcomeRejectedSequence
}
