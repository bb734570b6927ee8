package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the workspace tables if they don't exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				owner_id TEXT NOT NULL,
				title VARCHAR(255) NOT NULL,
				slug TEXT NOT NULL UNIQUE,
				collaborators TEXT[] NOT NULL DEFAULT '{}',
				content TEXT NOT NULL DEFAULT '',
				published BOOLEAN NOT NULL DEFAULT FALSE,
				genres TEXT[] NOT NULL DEFAULT '{}',
				description TEXT NOT NULL DEFAULT '',
				word_count INTEGER NOT NULL DEFAULT 0,
				content_revision BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				last_opened_at TIMESTAMPTZ,
				published_at TIMESTAMPTZ
			)`, tables.Projects),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_owner_idx ON %[1]s (owner_id)`, tables.Projects),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_collaborators_idx ON %[1]s USING GIN (collaborators)`, tables.Projects),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				project_id UUID NOT NULL REFERENCES %[2]s(id) ON DELETE CASCADE,
				label VARCHAR(255) NOT NULL,
				owner_id TEXT,
				shared_base BOOLEAN NOT NULL DEFAULT FALSE,
				is_master BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Folders, tables.Projects),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_master_idx ON %[1]s (project_id) WHERE is_master`, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				folder_id UUID NOT NULL REFERENCES %[2]s(id) ON DELETE CASCADE,
				project_id UUID NOT NULL REFERENCES %[3]s(id) ON DELETE CASCADE,
				owner_id TEXT NOT NULL,
				label VARCHAR(255) NOT NULL,
				slug TEXT NOT NULL UNIQUE,
				content TEXT NOT NULL DEFAULT '',
				word_count INTEGER NOT NULL DEFAULT 0,
				content_revision BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Files, tables.Folders, tables.Projects),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_project_idx ON %[1]s (project_id, created_at)`, tables.Files),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				project_id UUID NOT NULL REFERENCES %[2]s(id) ON DELETE CASCADE,
				sender_id TEXT NOT NULL,
				sender_name TEXT NOT NULL DEFAULT '',
				text TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Messages, tables.Projects),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_project_idx ON %[1]s (project_id, created_at DESC)`, tables.Messages),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DropAll drops every workspace table. Used by the seed command's --drop-tables.
func DropAll(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmt := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s, %s, %s CASCADE`,
		tables.Messages, tables.Files, tables.Folders, tables.Projects)
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}
