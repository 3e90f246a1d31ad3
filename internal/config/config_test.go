package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHasReasonableValues(t *testing.T) {
	cfg := Default()
	if cfg.Storage.Backend != BackendFile {
		t.Fatalf("expected file backend by default, got %q", cfg.Storage.Backend)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if !cfg.UI.ShowActivityLog {
		t.Fatalf("expected ShowActivityLog default true")
	}
	if cfg.UI.ActivityLogMax <= 0 {
		t.Fatalf("expected positive ActivityLogMax")
	}
	if cfg.Storage.QuotaBytes != DefaultQuotaBytes {
		t.Fatalf("unexpected default quota %d", cfg.Storage.QuotaBytes)
	}
	if got := cfg.SlotKey("1234"); got != "focustasks_1234" {
		t.Fatalf("SlotKey=%q", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FOCUS_LOG_LEVEL", "debug")
	t.Setenv("FOCUS_STORAGE_BACKEND", "SQLite")
	t.Setenv("FOCUS_STORAGE_DSN", "/tmp/tasks.db")
	t.Setenv("FOCUS_QUOTA_BYTES", "1024")
	t.Setenv("FOCUS_UI_SHOW_ACTIVITY", "0")
	t.Setenv("FOCUS_ACTIVITY_MAX", "50")

	cfg, err := Load("__does_not_exist.yaml")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level env override failed: %q", cfg.Logging.Level)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.DSN != "/tmp/tasks.db" {
		t.Fatalf("storage env override failed: %+v", cfg.Storage)
	}
	if cfg.Storage.QuotaBytes != 1024 {
		t.Fatalf("quota env override failed: %d", cfg.Storage.QuotaBytes)
	}
	if cfg.UI.ShowActivityLog {
		t.Fatalf("UI.ShowActivityLog expected false via env")
	}
	if cfg.UI.ActivityLogMax != 50 {
		t.Fatalf("UI.ActivityLogMax expected 50 via env, got %d", cfg.UI.ActivityLogMax)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("listen: '127.0.0.1:9000'\nstorage:\n  backend: memory\n  slotPrefix: 'sid_'\nlogging:\n  level: 'warn'\nui:\n  showActivityLog: false\n  activityLogMax: 12\nusers:\n  - username: alice\n    passwordHash: '$2a$10$abc'\n")
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, yaml, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Fatalf("file load failed for listen: %q", cfg.Listen)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Fatalf("file load failed for storage.backend: %q", cfg.Storage.Backend)
	}
	if cfg.Storage.QuotaBytes != DefaultQuotaBytes {
		t.Fatalf("defaults should survive partial storage block, got quota %d", cfg.Storage.QuotaBytes)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("file load failed for logging.level: %q", cfg.Logging.Level)
	}
	if cfg.UI.ShowActivityLog || cfg.UI.ActivityLogMax != 12 {
		t.Fatalf("file load failed for ui: %+v", cfg.UI)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Username != "alice" {
		t.Fatalf("file load failed for users: %+v", cfg.Users)
	}
	if got := cfg.SlotKey("alice"); got != "sid_alice" {
		t.Fatalf("SlotKey=%q", got)
	}
}

func TestLoadRejectsInvalidStorage(t *testing.T) {
	cases := map[string]string{
		"unknown backend": "storage:\n  backend: redis\n",
		"sqlite no dsn":   "storage:\n  backend: sqlite\n",
		"file no dir":     "storage:\n  backend: file\n  dir: ''\n",
		"negative quota":  "storage:\n  quotaBytes: -1\n",
		"malformed yaml":  "storage: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}
