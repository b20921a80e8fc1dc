// Package server accepts WideTable protocol connections and hands
// them to the engine.
package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

const serverName = "WideTable Server"

type handler interface {
	Handle(conn net.Conn)
}

type Server struct {
	listener net.Listener
	address  string
	handler  handler

	// configuration for handling connections
	maxConnections int
	connSemaphore  chan struct{}
	activeConns    sync.WaitGroup
}

type Config struct {
	Address        string
	Port           string
	Handler        handler
	MaxConnections int
	// Certificate enables TLS when set.
	Certificate *tls.Certificate
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Port == "" {
		errGrp = append(errGrp, errors.New("port is required"))
	}
	if c.Handler == nil {
		errGrp = append(errGrp, errors.New("handler is required"))
	}
	return errors.Join(errGrp...)
}

// New returns a new WideTable server listening for incoming protocol
// requests.
func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	address := net.JoinHostPort(cfg.Address, cfg.Port)

	var listener net.Listener
	var err error
	if cfg.Certificate != nil {
		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{*cfg.Certificate},
			MinVersion:   tls.VersionTLS12,
		}
		listener, err = tls.Listen("tcp", address, tlsConfig)
	} else {
		listener, err = net.Listen("tcp", address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 100 // default value
	}

	return &Server{
		listener:       listener,
		address:        address,
		handler:        cfg.Handler,
		maxConnections: maxConns,
		connSemaphore:  make(chan struct{}, maxConns),
	}, nil
}

// Addr reports the listener's address, useful when the configured
// port was 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Start() error {
	log.Info().Str("address", s.listener.Addr().String()).Msg("listening")
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		remoteAddr := conn.RemoteAddr().String()

		// Try to acquire a connection slot
		select {
		case s.connSemaphore <- struct{}{}:
			s.activeConns.Add(1)
			go func() {
				defer func() {
					<-s.connSemaphore
					s.activeConns.Done()
				}()
				s.handler.Handle(conn)
			}()
		default:
			// Max connections reached, reject the connection
			_ = conn.Close()
			log.Warn().Str("remote", remoteAddr).Msg("rejected connection: max connections reached")
		}
	}
}

// Stop will stop the server from accepting new connections and waits
// for in-flight connections to drain.
func (s *Server) Stop() error {
	err := s.listener.Close()
	s.activeConns.Wait()
	return err
}

// Name returns the name of the server.
func (s *Server) Name() string {
	return serverName
}
