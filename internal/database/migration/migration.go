// Package migration creates the docvault schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.document_permissions"

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY,
  username      TEXT        NOT NULL UNIQUE,
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  role          TEXT        NOT NULL DEFAULT 'user',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id              UUID        PRIMARY KEY,
  title           TEXT        NOT NULL,
  description     TEXT        NOT NULL DEFAULT '',
  tags            TEXT[]      NOT NULL DEFAULT '{}',
  category        TEXT        NOT NULL DEFAULT 'Uncategorized',
  owner_id        UUID        NOT NULL REFERENCES users (id),
  is_public       BOOLEAN     NOT NULL DEFAULT false,
  file_name       TEXT        NOT NULL,
  file_path       TEXT        NOT NULL,
  file_size       BIGINT      NOT NULL CHECK (file_size >= 0),
  mime_type       TEXT        NOT NULL,
  current_version INTEGER     NOT NULL CHECK (current_version >= 1),
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_owner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_id ON documents (owner_id);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_documents_tags",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_tags ON documents USING GIN (tags);`,
	},
	{
		Name: "create_index_documents_category",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_category ON documents (category);`,
	},
	{
		Name: "create_table_document_versions",
		SQL: `CREATE TABLE IF NOT EXISTS document_versions (
  document_id    UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  version_number INTEGER     NOT NULL CHECK (version_number >= 1),
  file_name      TEXT        NOT NULL,
  file_path      TEXT        NOT NULL,
  file_size      BIGINT      NOT NULL CHECK (file_size >= 0),
  mime_type      TEXT        NOT NULL,
  uploaded_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  uploaded_by    UUID        NOT NULL,
  PRIMARY KEY (document_id, version_number)
);`,
	},
	{
		Name: "create_table_document_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS document_permissions (
  document_id UUID NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  user_id     UUID NOT NULL,
  access_type TEXT NOT NULL CHECK (access_type IN ('view', 'edit')),
  PRIMARY KEY (document_id, user_id)
);`,
	},
	{
		Name: "create_index_document_permissions_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_permissions_user_id ON document_permissions (user_id);`,
	},
}

// EnsureMigrated checks if the schema exists and runs migrations if it doesn't.
// Every step is idempotent, so a run interrupted halfway is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.SugaredLogger, dbHost string) error {
	start := time.Now()
	logger = logger.Named("database").With("db_host", dbHost)

	logger.Infow("checking schema", "event", "db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		logger.Errorw("failed to check sentinel table",
			"event", "db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Infow("schema already exists, skipping migration",
			"event", "db_migration_skip",
			"status", "success",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	logger.Infow("migrating schema", "event", "db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Errorw("migration step failed",
				"event", "db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Infow("migration step applied",
			"event", "db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	logger.Infow("schema migrated",
		"event", "db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
