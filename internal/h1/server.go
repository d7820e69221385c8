package h1

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/panjf2000/gnet/v2"

	"github.com/xiaoliukai/cpp-netlib/internal/date"
)

// Config defines the acceptor's configuration.
type Config struct {
	Addr           string
	Multicore      bool
	NumEventLoop   int
	ReusePort      bool
	BufferSize     int
	MaxConnections uint32
	Logger         *log.Logger
}

// Server accepts connections and hands each one to its own Connection. It
// implements gnet.EventHandler; the gnet engine is the shared execution
// context that multiplexes I/O completions across all connections, and it
// never runs two events for the same connection concurrently.
type Server struct {
	gnet.BuiltinEventEngine
	handler       Handler
	ctx           context.Context
	cancel        context.CancelFunc
	logger        *log.Logger
	cfg           Config
	activeConns   uint32
	engine        gnet.Engine
	engineStarted bool
	stopDate      func()
}

// NewServer creates an acceptor for the given handler and configuration.
func NewServer(ctx context.Context, handler Handler, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		handler: handler,
		ctx:     serverCtx,
		cancel:  cancel,
		logger:  cfg.Logger,
		cfg:     cfg,
	}
}

// Start boots the event engine and begins accepting connections.
func (s *Server) Start() error {
	options := []gnet.Option{
		gnet.WithMulticore(s.cfg.Multicore),
		gnet.WithReusePort(s.cfg.ReusePort),
		gnet.WithTCPNoDelay(gnet.TCPNoDelay),
		gnet.WithTCPKeepAlive(time.Minute),
		gnet.WithLogger(silentGnetLogger{}),
	}
	if s.cfg.NumEventLoop > 0 {
		options = append(options, gnet.WithNumEventLoop(s.cfg.NumEventLoop))
	}

	s.stopDate = date.StartTicker()
	s.logger.Printf("http server listening on %s (multicore: %v)", s.cfg.Addr, s.cfg.Multicore)

	// gnet.Run blocks until the engine stops. OnBoot marks the engine
	// started, so a bind failure never leaves Stop talking to a
	// zero-value engine.
	go func() {
		if err := gnet.Run(s, "tcp://"+s.cfg.Addr, options...); err != nil {
			s.logger.Printf("engine run: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the acceptor down.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	if s.stopDate != nil {
		s.stopDate()
	}
	if s.engineStarted {
		stopCtx, stopCancel := context.WithTimeout(ctx, 2*time.Second)
		defer stopCancel()
		if err := s.engine.Stop(stopCtx); err != nil {
			s.logger.Printf("stopping engine: %v", err)
			return err
		}
	}
	return nil
}

// ActiveConnections returns the number of currently open connections.
func (s *Server) ActiveConnections() uint32 {
	return atomic.LoadUint32(&s.activeConns)
}

// OnBoot is called when the engine is ready to accept connections.
func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.engine = eng
	s.engineStarted = true
	return gnet.None
}

// OnShutdown is called when the engine is shutting down.
func (s *Server) OnShutdown(_ gnet.Engine) {
	s.engineStarted = false
}

// OnOpen creates the per-connection pipeline and stores it in the
// connection's context slot. Connections beyond the configured limit are
// refused with a canned 503.
func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	if s.cfg.MaxConnections > 0 {
		if atomic.LoadUint32(&s.activeConns) >= s.cfg.MaxConnections {
			s.logger.Printf("connection from %s refused: connection limit reached", c.RemoteAddr())
			_ = c.AsyncWritev(StockReply(503).ToBuffers(), func(_ gnet.Conn, _ error) error {
				return c.Close()
			})
			return nil, gnet.None
		}
	}
	atomic.AddUint32(&s.activeConns, 1)

	conn := NewConnection(c, s.handler, s.cfg.BufferSize)
	c.SetContext(conn)
	conn.Start()
	return nil, gnet.None
}

// OnClose releases the per-connection pipeline. Only admitted
// connections carry a pipeline in their context slot, so a refused
// socket closing must not touch the counter. A transport error is
// logged here and nowhere else; it terminates the exchange silently.
func (s *Server) OnClose(c gnet.Conn, err error) gnet.Action {
	if _, ok := c.Context().(*Connection); ok {
		atomic.AddUint32(&s.activeConns, ^uint32(0))
	}
	if err != nil {
		s.logger.Printf("connection from %s closed: %v", c.RemoteAddr(), err)
	}
	c.SetContext(nil)
	return gnet.None
}

// OnTraffic drains the inbound buffer and feeds it to the connection's
// state machine.
func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	conn, ok := c.Context().(*Connection)
	if !ok {
		// Refused or already torn down; drop whatever arrived.
		_, _ = c.Next(-1)
		return gnet.None
	}
	buf, err := c.Next(-1)
	if err != nil {
		s.logger.Printf("reading from %s: %v", c.RemoteAddr(), err)
		return gnet.Close
	}
	if len(buf) > 0 {
		conn.Receive(buf)
	}
	return gnet.None
}

// silentGnetLogger discards engine-level log output; the server does its
// own logging.
type silentGnetLogger struct{}

func (silentGnetLogger) Debugf(_ string, _ ...any) {}
func (silentGnetLogger) Infof(_ string, _ ...any)  {}
func (silentGnetLogger) Warnf(_ string, _ ...any)  {}
func (silentGnetLogger) Errorf(_ string, _ ...any) {}
func (silentGnetLogger) Fatalf(_ string, _ ...any) {}
