// Package app wires configuration, logging and storage into the task
// registry shared by the web server and the CLI.
package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/elpatron68/focustasks/internal/auth"
	"github.com/elpatron68/focustasks/internal/config"
	applog "github.com/elpatron68/focustasks/internal/log"
	"github.com/elpatron68/focustasks/internal/server"
	"github.com/elpatron68/focustasks/internal/slot"
	"github.com/elpatron68/focustasks/internal/tasks"
)

type App struct {
	Config *config.Config
	Slots  slot.Slots
	Stores *tasks.Registry
	close  func() error
}

// Open loads the config at path (or the usual locations when empty),
// initializes logging and opens the configured slot backend.
func Open(path string) (*App, error) {
	if path == "" {
		path = config.FindFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	applog.InitFromEnvFallback(cfg.Logging.Level)

	slots, closeFn, err := slot.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}
	applog.Infof("storage backend %s ready (quota %d bytes)", cfg.Storage.Backend, cfg.Storage.QuotaBytes)
	return &App{
		Config: cfg,
		Slots:  slots,
		Stores: tasks.NewRegistry(slots, cfg.SlotKey),
		close:  closeFn,
	}, nil
}

func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Handler builds the authenticated HTTP handler. FOCUS_USER/FOCUS_PASS
// (default admin/admin) apply only when the config lists no users.
func (a *App) Handler() (http.Handler, error) {
	users, err := auth.FromConfig(a.Config, getenvDefault("FOCUS_USER", "admin"), getenvDefault("FOCUS_PASS", "admin"))
	if err != nil {
		return nil, err
	}
	return server.NewServerWithConfig(users, a.Config, a.Stores).Handler(), nil
}

// ResolveListenAddress picks the listen address: flag > env > config > :8080.
func ResolveListenAddress(cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("FOCUS_LISTEN"); v != "" {
		return v
	}
	if cfg != nil && cfg.Listen != "" {
		return cfg.Listen
	}
	return ":8080"
}

// Serve blocks serving the web UI on addr.
func (a *App) Serve(addr string) error {
	h, err := a.Handler()
	if err != nil {
		return err
	}
	applog.Infof("focustasks web UI listening on %s", addr)
	return http.ListenAndServe(addr, h)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
