package store

import (
	"context"

	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id             TEXT NOT NULL,
		category       TEXT NOT NULL,
		latitude       DOUBLE PRECISION NOT NULL,
		longitude      DOUBLE PRECISION NOT NULL,
		address        TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		urgency        TEXT NOT NULL DEFAULT '',
		contact        TEXT NOT NULL DEFAULT '',
		image_url      TEXT NOT NULL DEFAULT '',
		classification TEXT NOT NULL DEFAULT '',
		size_bucket    TEXT NOT NULL DEFAULT 'medium',
		priority_score INTEGER NOT NULL CHECK (priority_score BETWEEN 8 AND 100),
		status         TEXT NOT NULL DEFAULT 'pending',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (category, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_category_created ON reports (category, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status)`,
}

// Migrate creates the reports table and its indexes. Safe to call on every start.
func Migrate(ctx context.Context, db Database) error {
	for _, stmt := range schema {
		if err := db.Exec(ctx, stmt); err != nil {
			return apperrors.DatabaseError{Operation: "apply schema", Err: err}
		}
	}
	return nil
}
