package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Host           string
	Port           int
	RootPath       string
	Env            string
	Debug          bool
	Timeout        time.Duration
	PollInterval   time.Duration
	BufferSize     int
	MaxHeaderSize  int
	MaxBodySize    int
	MaxConnections int
	FormMethods    []string
	CertFile       string
	KeyFile        string
	ConfigFile     string
}

// Default returns the default configuration without touching flags.
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           5000,
		RootPath:       "",
		Env:            "development",
		Debug:          false,
		Timeout:        time.Second,
		PollInterval:   100 * time.Millisecond,
		BufferSize:     1024,
		MaxHeaderSize:  8 * 1024,
		MaxBodySize:    64 * 1024,
		MaxConnections: 64,
		FormMethods:    nil, // engine default: POST/PUT/PATCH/DELETE
	}
}

// New loads configuration from flags (and potentially env vars).
func New() *Config {
	cfg := Default()

	flag.StringVar(&cfg.Host, "host", cfg.Host, "Bind address")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.RootPath, "root", cfg.RootPath, "Static file root (empty disables file serving)")
	flag.StringVar(&cfg.Env, "env", cfg.Env, "Environment (development/production)")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-connection idle timeout")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Accept/read poll interval")
	flag.IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "Read buffer size (bytes)")
	flag.IntVar(&cfg.MaxHeaderSize, "max-header-size", cfg.MaxHeaderSize, "Maximum request header size (bytes)")
	flag.IntVar(&cfg.MaxBodySize, "max-body-size", cfg.MaxBodySize, "Maximum request body size (bytes)")
	flag.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "Maximum concurrent connections")
	flag.StringVar(&cfg.CertFile, "cert", cfg.CertFile, "TLS certificate file")
	flag.StringVar(&cfg.KeyFile, "key", cfg.KeyFile, "TLS key file")
	flag.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "JSON config file, reloaded on change")

	flag.Parse()

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		cfg.Host = host
	}
	if methods := os.Getenv("FORM_METHODS"); methods != "" {
		cfg.FormMethods = strings.Split(strings.ToUpper(methods), ",")
	}

	return cfg
}

// TLS reports whether both certificate and key files are configured.
func (c *Config) TLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}
