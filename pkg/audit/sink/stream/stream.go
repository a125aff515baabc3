// Package stream implements the asynchronous TCP audit sink. Every event is
// delivered over its own one-shot connection to a line-oriented collector:
// connect, write one JSON line, close. There is no persistent connection, no
// reconnect, no queue, and no ordering guarantee between concurrent emits. If
// the collector is down, events emitted during the outage are lost unless the
// caller retries at a higher layer.
package stream

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"audittrail/pkg/audit"
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	DefaultConnectTimeout = 2 * time.Second
	DefaultProbeTimeout   = 1 * time.Second
	DefaultCloseGrace     = 5 * time.Second
)

// Config controls stream sink behavior. It is consumed at construction and
// not re-read afterward.
type Config struct {
	// Host and Port locate the collector endpoint.
	Host string
	Port int

	// ConnectTimeout bounds each per-event dial.
	ConnectTimeout time.Duration

	// ProbeTimeout bounds the Ready connect probe.
	ProbeTimeout time.Duration

	// SendBufferSize, when positive, is applied to each connection's socket
	// send buffer.
	SendBufferSize int

	// CloseGrace bounds how long Close waits for in-flight deliveries.
	CloseGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.CloseGrace <= 0 {
		c.CloseGrace = DefaultCloseGrace
	}
	return c
}

// Sink streams audit events to a remote collector, one TCP connection per
// event. Concurrency is unbounded: callers that need backpressure apply it
// above this layer.
type Sink struct {
	cfg    Config
	addr   string
	closed atomic.Bool

	// inflight tracks deliveries so Close can drain best-effort.
	inflight sync.WaitGroup
}

// New validates the endpoint and returns a ready sink. No connection is made
// until the first Emit or Ready call.
func New(cfg Config) (*Sink, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("stream sink: host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("stream sink: invalid port %d", cfg.Port)
	}
	cfg = cfg.withDefaults()
	return &Sink{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}, nil
}

// Addr returns the collector endpoint as host:port.
func (s *Sink) Addr() string { return s.addr }

// Emit serializes the event, dials a fresh connection, writes the line plus a
// terminating '\n', and closes the connection. Connect and write failures are
// returned to the caller and never retried here.
func (s *Sink) Emit(ctx context.Context, ev audit.Event) error {
	if s.closed.Load() {
		return audit.ErrClosed
	}
	s.inflight.Add(1)
	defer s.inflight.Done()

	line, err := audit.Marshal(ev)
	if err != nil {
		return err
	}

	d := net.Dialer{Timeout: s.cfg.ConnectTimeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", audit.ErrConnect, s.addr, err)
	}
	defer func() { _ = conn.Close() }()

	if s.cfg.SendBufferSize > 0 {
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetWriteBuffer(s.cfg.SendBufferSize)
		}
	}

	if _, err := conn.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: write %s: %w", audit.ErrNetworkWrite, s.addr, err)
	}
	return nil
}

// Ready probe-connects to the collector with a short timeout and drops the
// connection without sending data.
func (s *Sink) Ready(ctx context.Context) bool {
	if s.closed.Load() {
		return false
	}
	d := net.Dialer{Timeout: s.cfg.ProbeTimeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Close stops accepting new events and waits up to CloseGrace for in-flight
// deliveries, then returns regardless. Events submitted concurrently with
// Close may or may not complete; a delivery already on the wire is not
// interrupted.
func (s *Sink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.cfg.CloseGrace):
	}
	return nil
}
