package client

import (
	"context"
	"io"
	"net"
	"time"

	"ssvp/internal/pkg/fixture"
	"ssvp/internal/pkg/log"
	"ssvp/internal/pkg/wire"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// DefaultServerAddr is where the client connects when no address is
// configured.
const DefaultServerAddr = "localhost:8080"

// Client plays a scripted sequence of step records against the server.
type Client struct {
	serverAddr string
	steps      []fixture.Step
	killswitch time.Duration
	uuid       uuid.UUID

	conn net.Conn
	enc  *wire.Encoder
	dec  *wire.Decoder
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerAddr sets the server address to connect to.
func WithServerAddr(addr string) Cfg {
	return func(c *Client) error {
		c.serverAddr = addr
		return nil
	}
}

// WithSteps sets the steps the client will send, in order.
func WithSteps(steps []fixture.Step) Cfg {
	return func(c *Client) error {
		c.steps = steps
		return nil
	}
}

// WithKillswitch arms the killswitch: once the given duration elapses the
// client stops sending and holds the connection open. Zero disables it.
func WithKillswitch(d time.Duration) Cfg {
	return func(c *Client) error {
		if d < 0 {
			return errors.New("killswitch must not be negative")
		}
		c.killswitch = d
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{
		serverAddr: DefaultServerAddr,
	}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	client.uuid = uuid.New()
	return client, nil
}

// Connect establishes the connection to the server.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return errors.Wrap(err, "close client connection failed")
		}
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.serverAddr)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.serverAddr)
	}
	c.conn = conn
	c.enc = wire.NewEncoder(conn)
	c.dec = wire.NewDecoder(conn)
	return nil
}

// Run sends every configured step over the single connection, waiting for
// the verdict on each before moving to the next. The first non-OK verdict
// ends the run with a RejectionError; later steps are never sent.
func (c *Client) Run(ctx context.Context) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	defer c.conn.Close()

	// Closing the connection is the only way to unblock a pending read.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-stop:
		}
	}()

	var killswitch <-chan time.Time
	if c.killswitch > 0 {
		timer := time.NewTimer(c.killswitch)
		defer timer.Stop()
		killswitch = timer.C
	}

	for _, step := range c.steps {
		fired, err := c.think(ctx, step.Think(), killswitch)
		if err != nil {
			return err
		}
		if fired {
			return c.hold(ctx)
		}

		rec := wire.Record{StepID: step.StepID, WaitSeconds: step.WaitSeconds, Payload: step.Payload}
		if err := c.enc.EncodeRecord(rec); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "send record failed")
		}
		logger.WithFields(log.RecordToFields(rec)).Debug("sent record")

		resp, err := c.recv(ctx)
		if err != nil {
			return err
		}
		if resp.Code != wire.CodeOK {
			return &RejectionError{StepID: resp.StepID, Code: resp.Code}
		}
	}

	logger.WithFields(logrus.Fields{
		"uuid":  c.uuid.String(),
		"steps": len(c.steps),
	}).Info("client completed successfully")
	return nil
}

// think pauses for the step's think time. It reports whether the killswitch
// fired during the pause.
func (c *Client) think(ctx context.Context, d time.Duration, killswitch <-chan time.Time) (bool, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return false, nil
	case <-killswitch:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// hold keeps the connection open without sending anything further,
// surfacing whatever the server does with the now-idle session.
func (c *Client) hold(ctx context.Context) error {
	logger.Warn("killswitch fired, holding connection open")
	resp, err := c.recv(ctx)
	if err != nil {
		return err
	}
	return &RejectionError{StepID: resp.StepID, Code: resp.Code}
}

func (c *Client) recv(ctx context.Context) (wire.Response, error) {
	resp, err := c.dec.DecodeResponse()
	if err != nil {
		if ctx.Err() != nil {
			return wire.Response{}, ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			return wire.Response{}, ErrServerClosed
		}
		return wire.Response{}, errors.Wrap(err, "receive response failed")
	}
	logger.WithFields(log.ResponseToFields(resp)).Debug("received response")
	return resp, nil
}
