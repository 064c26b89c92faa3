package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/server/middleware"
)

// Server is an HTTP server backed by Gin. It serves HTTP/1.1 and cleartext
// HTTP/2 on the same port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger

	mu   sync.Mutex
	addr net.Addr
}

// New creates a Server with the standard middleware stack: recovery,
// request id, CORS, body size limit and request logging.
func New(cfg Config) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.Get("server")
	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.CORS(cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.RequestLogger(log),
	)

	h2s := &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: cfg.IdleTimeout}
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.addr(),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine: engine,
		config: cfg,
		log:    log,
	}, nil
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start binds the port and serves in the background. It returns once the
// listener is bound.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server error", logger.ErrorFields("serve", err))
		}
	}()
	s.log.Info("HTTP server started", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop shuts the server down, waiting at most 5 seconds for open requests.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != nil {
		return s.addr.String()
	}
	return s.httpServer.Addr
}

// URL returns the base URL of the running server.
func (s *Server) URL() string { return "http://" + s.Addr() }

// Port returns the bound port, or the configured one before Start.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tcp, ok := s.addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return s.config.Port
}
