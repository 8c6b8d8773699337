package client

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"ssvp/internal/pkg/fixture"
	"ssvp/internal/pkg/wire"

	"github.com/stretchr/testify/require"
)

func makeSteps(n int) []fixture.Step {
	steps := make([]fixture.Step, 0, n)
	for i := 0; i < n; i++ {
		steps = append(steps, fixture.Step{
			StepID:      uint64(i),
			WaitSeconds: 5.0,
			Interval:    time.Millisecond,
		})
	}
	return steps
}

// pipedClient wires a Client to one end of an in-memory pipe, standing in
// for Connect.
func pipedClient(t *testing.T, cfgs ...Cfg) (*Client, net.Conn) {
	t.Helper()
	c, err := NewClient(cfgs...)
	require.NoError(t, err)
	server, conn := net.Pipe()
	c.conn = conn
	c.enc = wire.NewEncoder(conn)
	c.dec = wire.NewDecoder(conn)
	t.Cleanup(func() {
		server.Close()
	})
	return c, server
}

func TestClientRunSendsAllSteps(t *testing.T) {
	c, server := pipedClient(t, WithSteps(makeSteps(3)))

	received := make(chan uint64, 3)
	go func() {
		enc := wire.NewEncoder(server)
		dec := wire.NewDecoder(server)
		for i := 0; i < 3; i++ {
			rec, err := dec.DecodeRecord()
			if err != nil {
				return
			}
			received <- rec.StepID
			if err := enc.EncodeResponse(wire.Response{StepID: rec.StepID, Code: wire.CodeOK}); err != nil {
				return
			}
		}
	}()

	require.NoError(t, c.Run(context.Background()))
	for i := uint64(0); i < 3; i++ {
		require.Equal(t, i, <-received)
	}
}

func TestClientFailFastOnRejection(t *testing.T) {
	c, server := pipedClient(t, WithSteps(makeSteps(3)))

	serverDone := make(chan error, 1)
	go func() {
		enc := wire.NewEncoder(server)
		dec := wire.NewDecoder(server)
		rec, err := dec.DecodeRecord()
		if err != nil {
			serverDone <- err
			return
		}
		if err := enc.EncodeResponse(wire.Response{StepID: rec.StepID, Code: wire.CodeOK}); err != nil {
			serverDone <- err
			return
		}
		rec, err = dec.DecodeRecord()
		if err != nil {
			serverDone <- err
			return
		}
		if err := enc.EncodeResponse(wire.Response{StepID: rec.StepID, Code: wire.CodeOutOfOrder}); err != nil {
			serverDone <- err
			return
		}
		// The rejected client must close without sending the third step.
		_, err = dec.DecodeRecord()
		serverDone <- err
	}()

	err := c.Run(context.Background())
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, uint64(1), rejection.StepID)
	require.Equal(t, wire.CodeOutOfOrder, rejection.Code)
	require.ErrorIs(t, <-serverDone, io.EOF)
}

func TestClientServerClosedWithoutVerdict(t *testing.T) {
	c, server := pipedClient(t, WithSteps(makeSteps(1)))

	go func() {
		dec := wire.NewDecoder(server)
		if _, err := dec.DecodeRecord(); err != nil {
			return
		}
		server.Close()
	}()

	require.ErrorIs(t, c.Run(context.Background()), ErrServerClosed)
}

func TestClientKillswitchHoldsConnection(t *testing.T) {
	steps := []fixture.Step{{StepID: 0, WaitSeconds: 5.0, Interval: time.Second}}
	c, server := pipedClient(t, WithSteps(steps), WithKillswitch(10*time.Millisecond))

	go func() {
		time.Sleep(50 * time.Millisecond)
		enc := wire.NewEncoder(server)
		_ = enc.EncodeResponse(wire.Response{StepID: 0, Code: wire.CodeTimeout})
	}()

	err := c.Run(context.Background())
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, wire.CodeTimeout, rejection.Code)
}

func TestClientContextCancelDuringThink(t *testing.T) {
	steps := []fixture.Step{{StepID: 0, WaitSeconds: 5.0, Interval: time.Second}}
	c, _ := pipedClient(t, WithSteps(steps))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	require.ErrorIs(t, c.Run(ctx), context.Canceled)
}

func TestClientRunRequiresConnect(t *testing.T) {
	c, err := NewClient(WithSteps(makeSteps(1)))
	require.NoError(t, err)
	require.ErrorIs(t, c.Run(context.Background()), ErrNotConnected)
}

func TestClientConnect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	c, err := NewClient(WithServerAddr(ln.Addr().String()))
	require.NoError(t, err)
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Run(context.Background()))
}

func TestClientConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c, err := NewClient(WithServerAddr(addr))
	require.NoError(t, err)
	require.Error(t, c.Connect(context.Background()))
}

func TestNewClientRejectsNegativeKillswitch(t *testing.T) {
	_, err := NewClient(WithKillswitch(-time.Second))
	require.Error(t, err)
}

func TestRejectionErrorMessage(t *testing.T) {
	err := &RejectionError{StepID: 7, Code: wire.CodeOutOfOrder}
	require.Equal(t, "step 7 rejected: ERR_SEQUENCE", err.Error())
}
