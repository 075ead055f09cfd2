package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Drivers accepted by Connect.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens a database with the given driver and waits for it to accept
// connections, retrying for about a minute.
func Connect(ctx context.Context, driver, databaseURL string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < 30; i++ {
		db, err = open(driver, databaseURL)
		if err != nil {
			return nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			slog.Info("connected to database", slog.String("driver", driver))
			return db, nil
		}
		db.Close()

		slog.Warn("failed to ping database, retrying in 2s", slog.String("driver", driver), slog.Any("error", err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return nil, fmt.Errorf("could not connect to database after 30 attempts: %w", err)
}

func open(driver, databaseURL string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
		return sql.Open(DriverPostgres, databaseURL)
	case DriverSQLite:
		db, err := sql.Open(DriverSQLite, databaseURL)
		if err != nil {
			return nil, err
		}
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY under
		// concurrent deliveries.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys=1; PRAGMA busy_timeout=5000;"); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
