package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/BRAVO68WEB/hellodock/internal/config"
)

// ErrBindFailure is wrapped by Listen and Run when the listen address cannot be acquired.
var ErrBindFailure = errors.New("bind failure")

var errAlreadyListening = errors.New("server is already listening")

var errNotListening = errors.New("server is not listening")

// State is the lifecycle state of a Server.
type State int

const (
	Stopped State = iota
	Listening
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Listening:
		return "listening"
	default:
		return "unknown"
	}
}

// Config holds server configuration.
// Port 0 picks an ephemeral port; the CLI always uses DefaultConfig.
type Config struct {
	Host     string
	Port     int
	Template ResponseTemplate // zero value means DefaultTemplate
	Stdout   io.Writer        // startup message; nil means os.Stdout
	ErrorLog *log.Logger      // request lines and connection faults; nil means stderr with [hellodock] prefix
}

// DefaultConfig returns the fixed 0.0.0.0:8000 configuration.
func DefaultConfig() Config {
	return Config{Host: config.ListenHost, Port: config.ListenPort}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server is the static responder.
type Server struct {
	cfg     Config
	handler http.Handler
	conns   *connTracker

	httpServer *http.Server
	listener   net.Listener
	state      State
	mu         sync.Mutex
}

// New creates a new Server in the Stopped state.
func New(cfg Config) (*Server, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Template.StatusCode == 0 && cfg.Template.Header == nil && cfg.Template.Body == nil {
		cfg.Template = DefaultTemplate()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.ErrorLog == nil {
		cfg.ErrorLog = log.New(os.Stderr, "[hellodock] ", log.LstdFlags)
	}

	s := &Server{
		cfg:     cfg,
		handler: logRequests(cfg.ErrorLog, statusOf(cfg.Template), len(cfg.Template.Body), StaticHandler(cfg.Template)),
		conns:   newConnTracker(cfg.ErrorLog),
		state:   Stopped,
	}
	return s, nil
}

// Handler returns the request handler, including request logging.
func (s *Server) Handler() http.Handler { return s.handler }

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound address, or nil before Listen succeeds.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the configured address and moves the server to Listening.
// On failure the server stays Stopped and the error wraps ErrBindFailure.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Listening {
		return errAlreadyListening
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBindFailure, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:     s.handler,
		ErrorLog:    s.cfg.ErrorLog,
		ConnContext: s.conns.connContext,
		ConnState:   s.conns.connState,
	}
	s.state = Listening
	return nil
}

// Serve prints the startup message and runs the accept loop until the listener is closed.
// Listen must have succeeded first.
func (s *Server) Serve() error {
	s.mu.Lock()
	if s.state != Listening {
		s.mu.Unlock()
		return errNotListening
	}
	ln, httpServer := s.listener, s.httpServer
	s.mu.Unlock()

	port := s.cfg.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	fmt.Fprintf(s.cfg.Stdout, "Starting server on port %d...\n", port)

	if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Run binds and serves. It only returns on BindFailure or when the listener fails.
func (s *Server) Run() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown closes the listener, waits for in-flight requests and returns the server to Stopped.
// The service itself never calls it; the process is stopped externally.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer, ln := s.httpServer, s.listener
	s.httpServer, s.listener = nil, nil
	s.state = Stopped
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}
	err := httpServer.Shutdown(ctx)
	// Shutdown only closes listeners that Serve has picked up.
	_ = ln.Close()
	return err
}
