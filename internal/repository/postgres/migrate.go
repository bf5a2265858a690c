package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema for the document registry if it does not
// exist yet. Table names carry the environment prefix, so dev/test/prod
// schemas coexist in one database.
//
// The root folder is a sentinel ('root') and is never stored as a row;
// parent_id and primary_folder_id simply reference it by value, which is
// why those columns carry no foreign key to the folders table.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				parent_id   TEXT NOT NULL DEFAULT 'root',
				color       TEXT,
				description TEXT,
				created_at  TIMESTAMPTZ NOT NULL,
				created_by  TEXT NOT NULL,
				updated_at  TIMESTAMPTZ NOT NULL,
				updated_by  TEXT NOT NULL
			)`, tables.Folders),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_parent_idx ON %s (parent_id)`,
			tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id                TEXT PRIMARY KEY,
				original_name     TEXT NOT NULL,
				series_key        TEXT NOT NULL,
				storage_path      TEXT NOT NULL,
				size              BIGINT NOT NULL,
				mime_type         TEXT NOT NULL,
				primary_folder_id TEXT NOT NULL DEFAULT 'root',
				current_version   INT NOT NULL DEFAULT 1,
				uploaded_at       TIMESTAMPTZ NOT NULL,
				owner_email       TEXT NOT NULL,
				created_by        TEXT NOT NULL,
				updated_at        TIMESTAMPTZ NOT NULL,
				updated_by        TEXT NOT NULL
			)`, tables.Documents),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_series_idx ON %s (series_key)`,
			tables.Documents, tables.Documents),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_primary_folder_idx ON %s (primary_folder_id)`,
			tables.Documents, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            TEXT PRIMARY KEY,
				document_id   TEXT NOT NULL,
				version       INT NOT NULL,
				original_name TEXT NOT NULL,
				storage_path  TEXT NOT NULL,
				archived_at   TIMESTAMPTZ NOT NULL,
				archived_by   TEXT NOT NULL,
				UNIQUE (document_id, version)
			)`, tables.Versions),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				document_id TEXT NOT NULL,
				folder_id   TEXT NOT NULL,
				PRIMARY KEY (document_id, folder_id)
			)`, tables.DocumentFolders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id                   TEXT PRIMARY KEY,
				target_folder_id     TEXT NOT NULL,
				replaces_document_id TEXT,
				original_name        TEXT NOT NULL,
				storage_path         TEXT NOT NULL,
				uploaded_by          TEXT NOT NULL,
				uploaded_at          TIMESTAMPTZ NOT NULL,
				status               TEXT NOT NULL DEFAULT 'pending',
				change_notes         TEXT NOT NULL,
				review_notes         TEXT,
				reviewed_by          TEXT,
				reviewed_at          TIMESTAMPTZ
			)`, tables.Submissions),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_status_idx ON %s (status)`,
			tables.Submissions, tables.Submissions),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id             TEXT PRIMARY KEY,
				document_id    TEXT NOT NULL,
				requested_by   TEXT NOT NULL,
				owner_email    TEXT NOT NULL,
				requested_at   TIMESTAMPTZ NOT NULL,
				status         TEXT NOT NULL DEFAULT 'pending',
				decision_notes TEXT,
				decided_at     TIMESTAMPTZ
			)`, tables.DeletionRequests),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
