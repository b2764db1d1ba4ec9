package app

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinyserv/tiny-server/config"
	"github.com/tinyserv/tiny-server/core"
)

// App is the application instance wrapping the poll-driven engine
type App struct {
	cfg     *config.Config
	server  *core.Server
	manager *config.Manager
}

// New creates an application instance
func New(cfg *config.Config) *App {
	return &App{
		cfg:     cfg,
		server:  core.New(cfg),
		manager: newManager(cfg),
	}
}

// Server returns the underlying server for route registration
func (a *App) Server() *core.Server {
	return a.server
}

// Manager returns the dynamic configuration store. It is nil unless a
// config file was configured.
func (a *App) Manager() *config.Manager {
	return a.manager
}

// NewWithServer creates an application instance with a pre-configured server
func NewWithServer(cfg *config.Config, server *core.Server) *App {
	return &App{
		cfg:     cfg,
		server:  server,
		manager: newManager(cfg),
	}
}

// newManager loads the JSON config file into a Manager and keeps it in sync
// with the file on disk. A broken file is a warning, not a startup failure.
func newManager(cfg *config.Config) *config.Manager {
	if cfg.ConfigFile == "" {
		return nil
	}
	m := config.NewManager()
	if err := m.LoadFromJSON(cfg.ConfigFile); err != nil {
		log.Printf("⚠️  Config file %s not loaded: %v", cfg.ConfigFile, err)
	}
	if err := m.WatchFile(cfg.ConfigFile); err != nil {
		log.Printf("⚠️  Config file %s not watched: %v", cfg.ConfigFile, err)
	}
	return m
}

// Run starts the poll loop and blocks until a termination signal arrives.
func (a *App) Run() {
	go a.awaitSignal()

	if err := a.server.ServeForever(a.cfg.Host, a.cfg.Port); err != nil {
		log.Fatalf("Server startup failed: %v", err)
	}
}

func (a *App) awaitSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("Signal received: %v. Shutting down...", sig)
	if a.manager != nil {
		a.manager.Close()
	}
	a.server.Stop()
}
