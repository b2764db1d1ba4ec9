package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinyserv/tiny-server/config"
)

func TestNewWithoutConfigFile(t *testing.T) {
	a := New(config.Default())
	if a.Server() == nil {
		t.Fatalf("Server() = nil")
	}
	if a.Manager() != nil {
		t.Errorf("Manager() != nil without a config file")
	}
}

func TestNewLoadsAndWatchesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	if err := os.WriteFile(path, []byte(`{"greeting":"hello"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.ConfigFile = path
	a := New(cfg)
	m := a.Manager()
	if m == nil {
		t.Fatalf("Manager() = nil with a config file")
	}
	defer m.Close()

	if got := m.GetString("greeting"); got != "hello" {
		t.Errorf("greeting = %q, want %q", got, "hello")
	}

	reloaded := make(chan interface{}, 1)
	m.Watch("greeting", func(k string, v interface{}) {
		reloaded <- v
	})
	if err := os.WriteFile(path, []byte(`{"greeting":"hej"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		if got := m.GetString("greeting"); got != "hej" {
			t.Errorf("greeting after reload = %q, want %q", got, "hej")
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("config file change never picked up")
	}
}
