package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/searchktools/tiny-server/config"
	"github.com/searchktools/tiny-server/core"
)

// App wires configuration, logging and the engine together
type App struct {
	cfg    config.Config
	log    zerolog.Logger
	engine *core.Engine
}

// New creates an application instance logging to stderr
func New(cfg config.Config) *App {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates an application instance logging to w
func NewWithWriter(cfg config.Config, w io.Writer) *App {
	log := NewLogger(cfg, w)
	return &App{
		cfg:    cfg,
		log:    log,
		engine: core.NewEngine(cfg, core.WithLogger(log)),
	}
}

// Engine returns the underlying engine
func (a *App) Engine() *core.Engine {
	return a.engine
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.log
}

// Run serves until SIGINT or SIGTERM. It returns an error only if the
// listener cannot be bound.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.RunContext(ctx)
}

// RunContext serves until ctx is cancelled
func (a *App) RunContext(ctx context.Context) error {
	a.log.Info().
		Str("addr", a.cfg.Addr()).
		Str("env", a.cfg.Env).
		Msg("server starting")

	if err := a.engine.Run(ctx); err != nil {
		return err
	}

	a.log.Info().Msg("shutting down")
	a.engine.Monitor().LogSummary(a.log)

	ps := a.engine.PoolStats()
	a.log.Info().
		Uint64("read_gets", ps.ReadBuffers.Gets).
		Uint64("read_misses", ps.ReadBuffers.Misses).
		Uint64("write_gets", ps.WriteBuffers.TotalGets).
		Uint64("write_oversized", ps.WriteBuffers.Oversized).
		Msg("buffer pools")
	return nil
}

// NewLogger builds the process logger: JSON in production, console output
// otherwise. Unknown levels fall back to info.
func NewLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Env != "production" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
