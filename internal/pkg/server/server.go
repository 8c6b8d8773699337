package server

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"ssvp/internal/pkg/handler"
	"ssvp/internal/pkg/session"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Server accepts TCP connections and runs one validation session per
// connection.
type Server struct {
	host        string
	port        uint16
	threshold   float64
	readTimeout time.Duration
	maxSessions int

	ln    net.Listener
	slots chan struct{}
	wg    sync.WaitGroup
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithHost sets the listen host.
func WithHost(host string) Cfg {
	return func(s *Server) error {
		s.host = host
		return nil
	}
}

// WithPort sets the listen port. Port 0 binds an ephemeral port.
func WithPort(port uint16) Cfg {
	return func(s *Server) error {
		s.port = port
		return nil
	}
}

// WithThreshold sets the minimum accepted wait_seconds for every session.
func WithThreshold(threshold float64) Cfg {
	return func(s *Server) error {
		s.threshold = threshold
		return nil
	}
}

// WithReadTimeout sets the per-session idle read timeout.
func WithReadTimeout(timeout time.Duration) Cfg {
	return func(s *Server) error {
		s.readTimeout = timeout
		return nil
	}
}

// WithMaxSessions bounds the number of concurrent sessions. Connections
// beyond the bound wait in the listen backlog until a session slot frees.
// Zero means unbounded.
func WithMaxSessions(n int) Cfg {
	return func(s *Server) error {
		if n < 0 {
			return errors.New("max sessions must not be negative")
		}
		s.maxSessions = n
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{
		host:        "localhost",
		port:        8080,
		threshold:   session.DefaultThreshold,
		readTimeout: handler.DefaultReadTimeout,
	}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	if server.maxSessions > 0 {
		server.slots = make(chan struct{}, server.maxSessions)
	}
	return server, nil
}

// Listen opens the TCP listener. Serve calls it implicitly; calling it first
// is useful when the caller needs the bound address before serving.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(int(s.port))))
	if err != nil {
		return errors.Wrap(err, "listen failed")
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until ctx is cancelled or the listener fails,
// then waits for open sessions to finish.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer s.ln.Close()

	// Closing the listener is the only way to unblock a pending Accept.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.ln.Close()
		case <-stop:
		}
	}()

	logger.WithField("addr", s.ln.Addr().String()).Info("server listening")
	for {
		if err := s.acquire(ctx); err != nil {
			break
		}
		conn, err := s.ln.Accept()
		if err != nil {
			s.release()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.wg.Wait()
			return errors.Wrap(err, "accept failed")
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release()
			s.handleConn(ctx, conn)
		}()
	}
	s.wg.Wait()
	return nil
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	h, err := handler.NewHandler(
		handler.WithConn(conn),
		handler.WithThreshold(s.threshold),
		handler.WithReadTimeout(s.readTimeout),
	)
	if err != nil {
		conn.Close()
		logger.WithError(err).Error("create handler failed")
		return
	}
	if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).WithField("remote", conn.RemoteAddr().String()).Error("session failed")
	}
}

func (s *Server) acquire(ctx context.Context) error {
	if s.slots == nil {
		return ctx.Err()
	}
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) release() {
	if s.slots == nil {
		return
	}
	<-s.slots
}
