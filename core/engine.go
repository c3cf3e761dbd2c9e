package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"github.com/searchktools/tiny-server/config"
	"github.com/searchktools/tiny-server/core/observability"
	"github.com/searchktools/tiny-server/core/pools"
	"github.com/searchktools/tiny-server/core/router"
)

// Engine accepts connections and runs one goroutine per connection.
// Connections share nothing mutable apart from the pools and the monitor.
type Engine struct {
	cfg     config.Config
	router  *router.Router
	log     zerolog.Logger
	monitor *observability.PerformanceMonitor
	fs      router.FileSystem

	bytePool   *pools.BytePool
	bufferPool *pools.BufferPool
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithFileSystem replaces the disk used by the files route
func WithFileSystem(fsys router.FileSystem) Option {
	return func(e *Engine) { e.fs = fsys }
}

// WithMonitor shares a monitor with the caller
func WithMonitor(pm *observability.PerformanceMonitor) Option {
	return func(e *Engine) { e.monitor = pm }
}

// NewEngine creates a new engine instance. cfg is copied.
func NewEngine(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		log:        zerolog.Nop(),
		bytePool:   pools.NewBytePool(),
		bufferPool: pools.NewBufferPool(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.monitor == nil {
		e.monitor = observability.NewPerformanceMonitor()
	}
	e.router = router.New(cfg, e.fs, e.log)

	return e
}

// Monitor returns the engine's request metrics
func (e *Engine) Monitor() *observability.PerformanceMonitor {
	return e.monitor
}

// Run binds the configured address and serves until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	lc := listenConfig()
	ln, err := lc.Listen(ctx, "tcp", e.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", e.cfg.Addr(), err)
	}
	return e.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln
// and returns nil. Connections already accepted keep running.
func (e *Engine) Serve(ctx context.Context, ln net.Listener) error {
	if e.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, e.cfg.MaxConnections)
	}
	defer ln.Close()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	e.log.Info().
		Str("addr", ln.Addr().String()).
		Str("directory", e.cfg.Directory).
		Int("max_conns", e.cfg.MaxConnections).
		Msg("listening")

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			// Back off on transient accept failures such as EMFILE
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if tempDelay > time.Second {
				tempDelay = time.Second
			}
			e.log.Error().Err(err).Dur("retry_in", tempDelay).Msg("accept failed")
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		go e.handleConn(conn)
	}
}

// handleConn owns conn until its loop ends
func (e *Engine) handleConn(conn net.Conn) {
	e.monitor.ConnOpened()
	defer e.monitor.ConnClosed()
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	e.log.Debug().Str("remote", remote).Msg("accepted connection")

	c := newConnection(e, conn)
	if err := c.serve(); err != nil {
		e.log.Error().Err(err).Str("remote", remote).Int("served", c.served).Msg("connection error")
		return
	}
	e.log.Debug().Str("remote", remote).Int("served", c.served).Msg("connection closed")
}
