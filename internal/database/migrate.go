// internal/database/migrate.go
package database

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	"github.com/jmoiron/sqlx"
)

// schema lists the DDL per dialect. Statements are idempotent so Migrate
// can run on every start.
var schema = map[string][]string{
	dialect.Postgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(50) NOT NULL,
			password_hash TEXT NOT NULL,
			admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name VARCHAR(50) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color VARCHAR(7) NOT NULL DEFAULT '#007bff',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT categories_user_id_name_key UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name VARCHAR(30) NOT NULL,
			color VARCHAR(7) NOT NULL DEFAULT '#6c757d',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT tags_user_id_name_key UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			category_id UUID REFERENCES categories (id) ON DELETE SET NULL,
			title VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			priority INTEGER NOT NULL DEFAULT 0,
			due_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS task_tags (
			task_id UUID NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
			tag_id UUID NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (task_id, tag_id)
		)`,
	},
	dialect.SQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '#007bff',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#6c757d',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (user_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			category_id TEXT REFERENCES categories (id) ON DELETE SET NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			priority INTEGER NOT NULL DEFAULT 0,
			due_date DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS task_tags (
			task_id TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
			tag_id TEXT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (task_id, tag_id)
		)`,
	},
}

// indexes are shared by both dialects.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_category_id_idx ON tasks (category_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_status_idx ON tasks (status)`,
	`CREATE INDEX IF NOT EXISTS tasks_due_date_idx ON tasks (due_date)`,
	`CREATE INDEX IF NOT EXISTS task_tags_tag_id_idx ON task_tags (tag_id)`,
}

// Migrate creates the schema in a single transaction.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	for _, stmt := range append(append([]string{}, stmts...), indexes...) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %q: %w", firstLine(stmt), err)
		}
	}
	return tx.Commit()
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(stmt, "\n")
	return strings.TrimSuffix(strings.TrimSpace(line), "(")
}
