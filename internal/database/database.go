package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"storefront/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a *sql.DB
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// PostgresDSN builds a pgx connection string from the database config
func PostgresDSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	if cfg.Schema != "" {
		q.Set("search_path", cfg.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Open connects to the SQL backend selected by the storage driver
func Open(storage config.StorageConfig, db config.DatabaseConfig) (*sql.DB, Dialect, error) {
	switch storage.Driver {
	case "postgres":
		conn, err := sql.Open("pgx", PostgresDSN(db))
		if err != nil {
			return nil, "", fmt.Errorf("failed to open postgres: %w", err)
		}
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxIdleTime(5 * time.Minute)
		return conn, DialectPostgres, nil
	case "sqlite":
		conn, err := sql.Open("sqlite", "file:"+storage.SQLitePath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
		if err != nil {
			return nil, "", fmt.Errorf("failed to open sqlite: %w", err)
		}
		// a single writer keeps sqlite from returning SQLITE_BUSY
		conn.SetMaxOpenConns(1)
		return conn, DialectSQLite, nil
	default:
		return nil, "", fmt.Errorf("storage driver %q is not a SQL backend", storage.Driver)
	}
}

// Health reports connectivity and pool statistics
func Health(ctx context.Context, db *sql.DB) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)
	return stats
}
