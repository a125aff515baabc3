// Package collector implements the line-oriented TCP listener that receives
// audit events from stream sinks. The contract is deliberately bare: a client
// connects, writes newline-terminated JSON documents, and disconnects. No
// handshake, no length prefix, no response bytes.
package collector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"audittrail/internal/platform/metrics"
	"audittrail/pkg/audit"
)

// Lines longer than this are rejected rather than buffered without bound.
const maxLineBytes = 1 << 20

// Server accepts collector connections and appends parsed events to a store.
type Server struct {
	addr    string
	store   audit.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	lis net.Listener
}

// New builds a server. The listener is not bound until Listen.
func New(addr string, store audit.Store, logger *slog.Logger, m *metrics.Metrics) *Server {
	return &Server{addr: addr, store: store, logger: logger, metrics: m}
}

// Listen binds the TCP listener. Call before Serve; Addr reports the bound
// address, which matters when the configured port is 0.
func (s *Server) Listen() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("collector listen %s: %w", s.addr, err)
	}
	s.lis = lis
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Serve accepts connections until ctx is cancelled, then closes the listener
// and waits for per-connection goroutines to drain.
func (s *Server) Serve(ctx context.Context) error {
	if s.lis == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return s.lis.Close()
	})

	g.Go(func() error {
		for {
			conn, err := s.lis.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				return fmt.Errorf("collector accept: %w", err)
			}
			g.Go(func() error {
				s.handleConn(ctx, conn)
				return nil
			})
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// handleConn reads newline-terminated JSON documents until EOF. Malformed
// lines are counted and logged but never terminate the connection; a slow or
// broken producer must not poison the others.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		ev, err := audit.Unmarshal(line)
		if err != nil {
			s.metrics.IncRejected()
			s.logger.WarnContext(ctx, "rejected malformed audit line",
				"remote", conn.RemoteAddr().String(),
				"error", err.Error(),
			)
			continue
		}

		if err := s.store.Append(ctx, ev); err != nil {
			s.metrics.IncRejected()
			s.logger.ErrorContext(ctx, "failed to store audit event",
				"event_type", ev.EventType,
				"error", err.Error(),
			)
			continue
		}
		s.metrics.IncIngested()
	}

	if err := scanner.Err(); err != nil {
		s.logger.WarnContext(ctx, "collector connection error",
			"remote", conn.RemoteAddr().String(),
			"error", err.Error(),
		)
	}
}
