package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"passwordHash"` // bcrypt hash
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Storage selects the slot backend the task stores persist into.
type Storage struct {
	Backend    string `yaml:"backend"` // memory | file | sqlite | mysql
	Dir        string `yaml:"dir"`     // file backend root
	DSN        string `yaml:"dsn"`     // sqlite path or mysql DSN
	QuotaBytes int    `yaml:"quotaBytes"`
	SlotPrefix string `yaml:"slotPrefix"`
}

type UIConfig struct {
	Title           string `yaml:"title"`
	ShowActivityLog bool   `yaml:"showActivityLog"`
	ActivityLogMax  int    `yaml:"activityLogMax"`
}

type Config struct {
	Listen  string        `yaml:"listen"`
	Logging LoggingConfig `yaml:"logging"`
	Storage Storage       `yaml:"storage"`
	Users   []UserConfig  `yaml:"users"`
	UI      UIConfig      `yaml:"ui"`
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// DefaultQuotaBytes mirrors the common 5 MiB localStorage budget.
const DefaultQuotaBytes = 5 << 20

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: Storage{
			Backend:    BackendFile,
			Dir:        "data",
			QuotaBytes: DefaultQuotaBytes,
			SlotPrefix: "focustasks_",
		},
		Users: []UserConfig{},
		UI: UIConfig{
			Title:           "FocusTasks",
			ShowActivityLog: true,
			ActivityLogMax:  200,
		},
	}
}

// Load reads an optional YAML file. An empty path falls back to config.yaml;
// a missing file yields the defaults. Env overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindFile returns the first existing config file among the usual locations,
// or "" when there is none.
func FindFile() string {
	for _, p := range []string{"config.yaml", "../../config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendMySQL:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendFile && c.Storage.Dir == "" {
		return errors.New("storage.dir required for file backend")
	}
	if (c.Storage.Backend == BackendSQLite || c.Storage.Backend == BackendMySQL) && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn required for %s backend", c.Storage.Backend)
	}
	if c.Storage.QuotaBytes < 0 {
		return errors.New("storage.quotaBytes must not be negative")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FOCUS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FOCUS_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("FOCUS_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("FOCUS_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("FOCUS_QUOTA_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.QuotaBytes = n
		}
	}
	if v := os.Getenv("FOCUS_UI_SHOW_ACTIVITY"); v != "" {
		cfg.UI.ShowActivityLog = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("FOCUS_ACTIVITY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UI.ActivityLogMax = n
		}
	}
}

// SlotKey derives the storage slot for a user or session identifier.
func (c *Config) SlotKey(id string) string {
	return c.Storage.SlotPrefix + id
}
