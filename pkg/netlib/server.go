package netlib

import (
	"context"
	"fmt"
	"log"

	"github.com/xiaoliukai/cpp-netlib/internal/h1"
)

// Server is a public facade over the per-connection pipeline: it owns the
// configuration and the acceptor, and adapts the public handler chain to
// the internal handler contract.
type Server struct {
	config    Config
	handler   Handler
	transport *h1.Server
}

// New creates a new Server with the provided configuration.
func New(config Config) *Server {
	if err := config.Validate(); err != nil {
		panic(err)
	}
	return &Server{config: config}
}

// NewWithDefaults creates a new Server with default configuration.
func NewWithDefaults() *Server {
	return New(DefaultConfig())
}

// Handler sets the request handler and returns the server for method
// chaining.
func (s *Server) Handler(handler Handler) *Server {
	s.handler = handler
	return s
}

// ListenAndServe sets the handler and starts the server.
func (s *Server) ListenAndServe(handler Handler) error {
	s.handler = handler
	return s.Start()
}

// Start begins accepting connections.
func (s *Server) Start() error {
	if s.handler == nil {
		return fmt.Errorf("handler not set")
	}

	adapter := &handlerAdapter{
		handler: s.handler,
		logger:  s.config.Logger,
	}

	s.transport = h1.NewServer(context.Background(), adapter, h1.Config{
		Addr:           s.config.Addr,
		Multicore:      s.config.Multicore,
		NumEventLoop:   s.config.NumEventLoop,
		ReusePort:      s.config.ReusePort,
		BufferSize:     s.config.BufferSize,
		MaxConnections: s.config.MaxConnections,
		Logger:         s.config.Logger,
	})
	return s.transport.Start()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.transport != nil {
		return s.transport.Stop(ctx)
	}
	return nil
}

// handlerAdapter implements the internal handler contract on top of the
// public handler chain. A handler error never reaches the connection; it
// is logged and converted to a 500 reply.
type handlerAdapter struct {
	handler Handler
	logger  *log.Logger
}

func (a *handlerAdapter) ServeHTTP(req *h1.Request, res *h1.Response) {
	ctx := newContext(context.Background(), req, res)
	if err := a.handler.ServeHTTP(ctx); err != nil {
		a.logger.Printf("handler error for %s %s: %v", req.Method, req.Target, err)
		*res = *h1.StockReply(500)
		return
	}
	if res.Status == 0 {
		res.Status = 200
	}
}

func (a *handlerAdapter) Log(message string) {
	a.logger.Print(message)
}
