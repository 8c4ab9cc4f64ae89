package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server serves a deck directory over HTTP so it can be exported without an
// external server.
type Server struct {
	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
	dir      string
	addr     string
	done     chan error
}

// NewServer creates a server for dir listening on addr, e.g. "127.0.0.1:3000".
// Port 0 picks a free port.
func NewServer(dir, addr string, debug bool) *Server {
	// Set gin mode
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if debug {
		engine.Use(gin.Logger())
	}
	engine.Use(gin.Recovery())
	engine.Use(noCacheMiddleware())

	s := &Server{
		engine: engine,
		dir:    dir,
		addr:   addr,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Handler: engine,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.engine.StaticFS("/", gin.Dir(s.dir, false))
}

// Start binds the listener and serves in the background. The server accepts
// connections once Start returns.
func (s *Server) Start() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("cannot serve %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot serve %s: not a directory", s.dir)
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	s.done = make(chan error, 1)

	log.Debugf("Serving %s on %s", s.dir, s.URL())
	go func() {
		if errServe := s.server.Serve(listener); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			log.Errorf("static server stopped: %v", errServe)
			s.done <- errServe
		}
		close(s.done)
	}()
	return nil
}

// URL returns the root URL of a started server.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	addr := s.listener.Addr().(*net.TCPAddr)
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, fmt.Sprint(addr.Port)))
}

// Handler exposes the routes for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	log.Debug("Stopping static server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	if err := <-s.done; err != nil {
		return err
	}

	log.Debug("Static server stopped")
	return nil
}

// noCacheMiddleware keeps the browser from reusing assets of an earlier export.
func noCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
