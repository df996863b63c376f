// Package reactor implements the connection multiplexer: one event-loop
// goroutine services every connection and owns all mutable server state.
//
// Readiness notification is expressed with the language's own multiplexing
// primitive: the acceptor goroutine and one reader goroutine per connection
// deliver events into a single channel, and the loop goroutine selects over
// it. Reader goroutines do nothing but blocking line reads and never touch
// shared state, so the domain needs no locks. Provider refreshes and
// snapshot writes run inline on the loop; a slow refresh stalls every
// connection until it completes, a latency trade-off this design accepts.
package reactor

import (
	"context"
	"fmt"
	"net"

	"github.com/dmitrijs2005/cryptowallet/internal/logging"
	"github.com/dmitrijs2005/cryptowallet/internal/server/protocol"
)

type eventKind int

const (
	evAccept eventKind = iota
	evLine
	evClosed
	evPersist
)

type event struct {
	kind eventKind
	nc   net.Conn // evAccept only
	conn *conn
	line string
}

type conn struct {
	id uint64
	nc net.Conn
}

// Server is the TCP front end. Construct with New, then call Run; Run blocks
// until ctx is cancelled.
type Server struct {
	addr       string
	dispatcher *protocol.Dispatcher
	logger     logging.Logger

	events chan event
	conns  map[uint64]*conn
	nextID uint64

	// ready is closed once the listener is bound; tests use Addr after it.
	ready    chan struct{}
	listener net.Listener
}

func New(addr string, dispatcher *protocol.Dispatcher, logger logging.Logger) *Server {
	return &Server{
		addr:       addr,
		dispatcher: dispatcher,
		logger:     logger.With("module", "reactor"),
		events:     make(chan event, 256),
		conns:      make(map[uint64]*conn),
		ready:      make(chan struct{}),
	}
}

// Addr returns the bound listen address. Valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Ready is closed once the listener is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// RequestPersist asks the loop to write snapshots at its next opportunity.
// Safe to call from any goroutine; if the loop is busy the request is
// dropped; the next tick will catch up.
func (s *Server) RequestPersist() {
	select {
	case s.events <- event{kind: evPersist}:
	default:
	}
}

// Run binds the listener and drives the event loop until ctx is cancelled.
// On shutdown it persists a final snapshot and closes every connection.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.addr, err)
	}
	s.listener = ln
	close(s.ready)

	// Unblock Accept when the context goes.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	go s.acceptLoop(ctx, ln)

	s.logger.Info(ctx, "server listening", "addr", ln.Addr().String())

	for {
		select {
		case <-ctx.Done():
			s.shutdown(ctx)
			return nil
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error(ctx, "accept failed", "error", err.Error())
			return
		}
		select {
		case s.events <- event{kind: evAccept, nc: nc}:
		case <-ctx.Done():
			nc.Close()
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evAccept:
		s.nextID++
		c := &conn{id: s.nextID, nc: ev.nc}
		s.conns[c.id] = c
		go s.readLoop(ctx, c)
		s.logger.Info(ctx, "connection accepted", "conn", c.id, "remote", ev.nc.RemoteAddr().String())

	case evLine:
		s.serveLine(ctx, ev.conn, ev.line)

	case evClosed:
		// Abrupt peer close: drop the connection without running the
		// disconnect handler.
		if _, ok := s.conns[ev.conn.id]; !ok {
			return
		}
		s.dispatcher.Unbind(ev.conn.id)
		s.drop(ctx, ev.conn)
		s.logger.Info(ctx, "client closed the connection", "conn", ev.conn.id)

	case evPersist:
		if err := s.dispatcher.Persist(ctx); err != nil {
			s.logger.Error(ctx, "snapshot autosave failed", "error", err.Error())
		}
	}
}

func (s *Server) serveLine(ctx context.Context, c *conn, line string) {
	if _, ok := s.conns[c.id]; !ok {
		// Raced with a close; the session is gone.
		return
	}

	result := s.dispatcher.Dispatch(ctx, c.id, line)

	if _, err := c.nc.Write([]byte(result.Reply + "\n")); err != nil {
		s.logger.Error(ctx, "write failed", "conn", c.id, "error", err.Error())
		s.dispatcher.Unbind(c.id)
		s.drop(ctx, c)
		return
	}

	if result.Close {
		s.drop(ctx, c)
		s.logger.Info(ctx, "connection disconnected", "conn", c.id)
	}
}

// readLoop feeds complete lines from one connection into the event channel.
// Runs in its own goroutine; EOF or a read error becomes an evClosed event.
func (s *Server) readLoop(ctx context.Context, c *conn) {
	scanner := newLineScanner(c.nc)
	for scanner.Scan() {
		select {
		case s.events <- event{kind: evLine, conn: c, line: scanner.Text()}:
		case <-ctx.Done():
			return
		}
	}
	select {
	case s.events <- event{kind: evClosed, conn: c}:
	case <-ctx.Done():
	}
}

func (s *Server) drop(ctx context.Context, c *conn) {
	delete(s.conns, c.id)
	c.nc.Close()
}

func (s *Server) shutdown(ctx context.Context) {
	// Final snapshot, then tear the connections down. Persist uses a fresh
	// context because ctx is already cancelled.
	if err := s.dispatcher.Persist(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error(ctx, "final snapshot failed", "error", err.Error())
	}
	for _, c := range s.conns {
		c.nc.Close()
	}
	s.conns = make(map[uint64]*conn)
	s.logger.Info(ctx, "server stopped")
}
