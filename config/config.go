package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
)

// EnvPrefix is the prefix of environment variables that override defaults.
const EnvPrefix = "TINY_SERVER"

// Config holds all application configuration.
//
// A Config is built once at startup and passed by value afterwards; nothing
// mutates it while the server runs.
type Config struct {
	Host string `config:"host"`
	Port int    `config:"port"`

	// Directory is the root for the files route. Empty disables the route.
	// It is joined to file names by plain concatenation, so it should end
	// with a path separator.
	Directory string `config:"directory"`

	ReadBufferSize int `config:"read.buffer"`
	MaxConnections int `config:"max.conns"`

	Env      string `config:"env"`
	LogLevel string `config:"log.level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           4221,
		ReadBufferSize: 1024,
		Env:            "development",
		LogLevel:       "info",
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasDirectory reports whether the files route is enabled.
func (c Config) HasDirectory() bool {
	return c.Directory != ""
}

// New loads configuration from the process flags and environment.
func New() Config {
	cfg, err := Load(os.Args[1:], os.Environ())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// Load builds a Config from command-line args and environment entries
// ("KEY=value"). Precedence, lowest first: defaults, the JSON file named by
// -config, TINY_SERVER_* variables, explicit flags.
func Load(args, environ []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("tiny-server", flag.ContinueOnError)
	configFile := fs.String("config", "", "JSON configuration file")
	host := fs.String("host", cfg.Host, "Listen host")
	port := fs.Int("port", cfg.Port, "Listen port")
	dir := fs.String("directory", cfg.Directory, "Directory served by /files")
	readBuf := fs.Int("read-buffer", cfg.ReadBufferSize, "Per-read buffer size (bytes)")
	maxConns := fs.Int("max-conns", cfg.MaxConnections, "Concurrent connection limit (0 = unbounded)")
	env := fs.String("env", cfg.Env, "Environment (development/production)")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level (debug/info/warn/error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	m := NewManager()
	if *configFile != "" {
		if err := m.LoadFromJSON(*configFile); err != nil {
			return Config{}, err
		}
	}
	m.LoadFromEnv(EnvPrefix, environ)
	if err := m.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to apply configuration: %w", err)
	}

	// Explicit flags win over file and environment
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "directory":
			cfg.Directory = *dir
		case "read-buffer":
			cfg.ReadBufferSize = *readBuf
		case "max-conns":
			cfg.MaxConnections = *maxConns
		case "env":
			cfg.Env = *env
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("invalid read buffer size %d", c.ReadBufferSize)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid connection limit %d", c.MaxConnections)
	}
	return nil
}
