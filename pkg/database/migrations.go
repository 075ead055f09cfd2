package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// RunMigrations creates the tables owned by service.
func RunMigrations(ctx context.Context, db *sql.DB, service string) error {
	migrations, ok := serviceMigrations[service]
	if !ok {
		return fmt.Errorf("no migrations for service %q", service)
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	slog.Info("migrations completed", slog.String("migrated", service))
	return nil
}

// The statements stay within the subset shared by postgres and sqlite.
var serviceMigrations = map[string][]string{
	"auth": {
		`CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(36) PRIMARY KEY,
			user_name VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			date_of_birth TIMESTAMP NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	"students": {
		`CREATE TABLE IF NOT EXISTS students (
			id VARCHAR(36) PRIMARY KEY,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) NOT NULL,
			user_name VARCHAR(255) NOT NULL UNIQUE,
			date_of_birth TIMESTAMP NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS idempotency_keys (
			event_id VARCHAR(36) PRIMARY KEY,
			processed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS revoked_students (
			id VARCHAR(36) PRIMARY KEY,
			revoked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	"courses": {
		`CREATE TABLE IF NOT EXISTS courses (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			id VARCHAR(36) PRIMARY KEY,
			student_id VARCHAR(36) NOT NULL,
			course_id VARCHAR(36) NOT NULL REFERENCES courses(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(student_id, course_id)
		)`,
	},
	"payments": {
		`CREATE TABLE IF NOT EXISTS payments (
			id VARCHAR(36) PRIMARY KEY,
			course_id VARCHAR(36) NOT NULL,
			student_id VARCHAR(36) NOT NULL,
			total BIGINT NOT NULL,
			card_name VARCHAR(255) NOT NULL,
			card_last_four VARCHAR(4) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}
