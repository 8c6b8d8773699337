package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MaxFrameBytes caps the size of a single frame on the wire.
const MaxFrameBytes = 64 * 1024

// Code is the numeric result code carried by every server response.
type Code int

const (
	CodeOK         Code = 0
	CodeTimeout    Code = 1
	CodeOutOfOrder Code = 2
	CodeUnexpected Code = 3
)

// String returns the protocol name for the code.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ACK"
	case CodeTimeout:
		return "ERR_TIMEOUT"
	case CodeOutOfOrder:
		return "ERR_SEQUENCE"
	case CodeUnexpected:
		return "ERR_UNEXPECTED"
	}
	return fmt.Sprintf("ERR_UNKNOWN(%d)", int(c))
}

// Record is one client-submitted step. Payload is opaque to the protocol
// and passed through untouched.
type Record struct {
	StepID      uint64          `json:"step_id"`
	WaitSeconds float64         `json:"wait_seconds"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Response is the server verdict for one received record. StepID echoes the
// record the verdict refers to; for an idle-timeout response it echoes the
// last step seen on the session.
type Response struct {
	StepID uint64 `json:"step_id"`
	Code   Code   `json:"error_code"`
}

// Encoder writes newline-delimited JSON frames.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// EncodeRecord writes one record frame.
func (e *Encoder) EncodeRecord(rec Record) error {
	return e.encode(rec)
}

// EncodeResponse writes one response frame.
func (e *Encoder) EncodeResponse(resp Response) error {
	return e.encode(resp)
}

func (e *Encoder) encode(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if len(payload)+1 > MaxFrameBytes {
		return ErrFrameTooLarge
	}
	payload = append(payload, '\n')
	if _, err := e.w.Write(payload); err != nil {
		return err
	}
	return nil
}

// Decoder reads newline-delimited JSON frames, reassembling frames that
// arrive split across TCP segments. Transport errors (EOF, deadline expiry)
// pass through untouched so the caller can tell them apart from frame
// errors.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// DecodeRecord reads one record frame. A record without step_id or
// wait_seconds is malformed; an absent field is never read as zero.
func (d *Decoder) DecodeRecord() (Record, error) {
	line, err := d.readFrame()
	if err != nil {
		return Record{}, err
	}
	var raw struct {
		StepID      *uint64         `json:"step_id"`
		WaitSeconds *float64        `json:"wait_seconds"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return Record{}, errors.Wrapf(ErrMalformedFrame, "unmarshal record failed: %v", err)
	}
	if raw.StepID == nil {
		return Record{}, errors.Wrap(ErrMalformedFrame, "missing step_id")
	}
	if raw.WaitSeconds == nil {
		return Record{}, errors.Wrap(ErrMalformedFrame, "missing wait_seconds")
	}
	return Record{
		StepID:      *raw.StepID,
		WaitSeconds: *raw.WaitSeconds,
		Payload:     raw.Payload,
	}, nil
}

// DecodeResponse reads one response frame.
func (d *Decoder) DecodeResponse() (Response, error) {
	line, err := d.readFrame()
	if err != nil {
		return Response{}, err
	}
	var raw struct {
		StepID *uint64 `json:"step_id"`
		Code   *int    `json:"error_code"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return Response{}, errors.Wrapf(ErrMalformedFrame, "unmarshal response failed: %v", err)
	}
	if raw.StepID == nil || raw.Code == nil {
		return Response{}, errors.Wrap(ErrMalformedFrame, "missing response field")
	}
	return Response{StepID: *raw.StepID, Code: Code(*raw.Code)}, nil
}

func (d *Decoder) readFrame() ([]byte, error) {
	line, err := d.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return nil, errors.Wrap(ErrMalformedFrame, "truncated frame")
		}
		return nil, err
	}
	if len(line) > MaxFrameBytes {
		return nil, ErrFrameTooLarge
	}
	return line, nil
}
