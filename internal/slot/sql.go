package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	applog "github.com/elpatron68/focustasks/internal/log"
)

// SQL keeps slots in a single two-column table. Supported drivers are
// "sqlite3" and "mysql"; the config names "sqlite" and "mysql" are accepted.
type SQL struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
}

func OpenSQL(backend, dsn string) (*SQL, error) {
	driver := backend
	if driver == "sqlite" {
		driver = "sqlite3"
	}
	if driver != "sqlite3" && driver != "mysql" {
		return nil, fmt.Errorf("slot: unsupported sql driver %q", backend)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("slot: open %s: %w", driver, err)
	}
	if driver == "sqlite3" {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}
	s := &SQL{db: db, driver: driver, timeout: 5 * time.Second}
	ctx, cancel := s.ctx()
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("slot: ping %s: %w", driver, err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	applog.Debugf("slot: %s backend ready", driver)
	return s, nil
}

func (s *SQL) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *SQL) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS slots (
    slot_key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`
	if s.driver == "mysql" {
		ddl = `CREATE TABLE IF NOT EXISTS slots (
    slot_key VARCHAR(255) PRIMARY KEY,
    value LONGTEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("slot: create table: %w", err)
	}
	return nil
}

func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE slot_key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQL) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()
	q := `INSERT INTO slots (slot_key, value) VALUES (?, ?)
    ON CONFLICT(slot_key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if s.driver == "mysql" {
		q = `INSERT INTO slots (slot_key, value) VALUES (?, ?)
    ON DUPLICATE KEY UPDATE value = VALUES(value)`
	}
	_, err := s.db.ExecContext(ctx, q, key, value)
	return err
}
