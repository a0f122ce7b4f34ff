package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/rajasatyajit/CivicTriage/internal/errors"
	"github.com/rajasatyajit/CivicTriage/internal/models"
)

const uniqueViolation = "23505"

const reportColumns = `
	id, category, latitude, longitude, address, description, urgency, contact,
	image_url, classification, size_bucket, priority_score, status, created_at, updated_at`

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// InsertReport inserts a new report row
func (s *PostgresStore) InsertReport(ctx context.Context, r models.Report) error {
	query := `
		INSERT INTO reports (` + reportColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	err := s.db.Exec(ctx, query,
		r.ID, r.Category, r.Latitude, r.Longitude, r.Address, r.Description,
		r.ManualUrgency, r.Contact, r.ImageURL, r.Classification, string(r.SizeBucket),
		r.PriorityScore, r.EffectiveStatus(), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert report %s/%s: %w", r.Category, r.ID, apperrors.ErrConflict)
		}
		return apperrors.DatabaseError{Operation: fmt.Sprintf("insert report %s/%s", r.Category, r.ID), Err: err}
	}
	return nil
}

// QueryReports retrieves reports matching the query in insertion order
func (s *PostgresStore) QueryReports(ctx context.Context, q models.ReportQuery) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE 1=1`

	var args []interface{}
	argIndex := 1

	if len(q.Categories) > 0 {
		query += fmt.Sprintf(" AND category = ANY($%d)", argIndex)
		args = append(args, q.Categories)
		argIndex++
	}

	if len(q.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, q.Statuses)
	}

	query += " ORDER BY created_at ASC, id ASC"

	rowsInterface, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.DatabaseError{Operation: "query reports", Err: err}
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError{Operation: "query reports", Err: err}
	}

	return reports, nil
}

// GetReport retrieves a single report; nil when absent
func (s *PostgresStore) GetReport(ctx context.Context, category, id string) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE category = $1 AND id = $2`

	rowInterface := s.db.QueryRow(ctx, query, category, id)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return nil, fmt.Errorf("invalid row type")
	}

	r, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// UpdateStatus changes the workflow status of a report
func (s *PostgresStore) UpdateStatus(ctx context.Context, category, id, status string) error {
	n, err := s.db.ExecAffected(ctx,
		`UPDATE reports SET status = $1, updated_at = NOW() WHERE category = $2 AND id = $3`,
		status, category, id,
	)
	if err != nil {
		return apperrors.DatabaseError{Operation: fmt.Sprintf("update report status %s/%s", category, id), Err: err}
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteReport removes a report
func (s *PostgresStore) DeleteReport(ctx context.Context, category, id string) error {
	n, err := s.db.ExecAffected(ctx, `DELETE FROM reports WHERE category = $1 AND id = $2`, category, id)
	if err != nil {
		return apperrors.DatabaseError{Operation: fmt.Sprintf("delete report %s/%s", category, id), Err: err}
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListPoints returns the coordinates of every report in category
func (s *PostgresStore) ListPoints(ctx context.Context, category string) ([]models.Point, error) {
	rowsInterface, err := s.db.Query(ctx,
		`SELECT id, latitude, longitude FROM reports WHERE category = $1`, category)
	if err != nil {
		return nil, apperrors.DatabaseError{Operation: "list points", Err: err}
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var points []models.Point
	for rows.Next() {
		var p models.Point
		if err := rows.Scan(&p.ID, &p.Latitude, &p.Longitude); err != nil {
			return nil, apperrors.DatabaseError{Operation: "scan point", Err: err}
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError{Operation: "list points", Err: err}
	}
	return points, nil
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func scanReport(row pgx.Row) (models.Report, error) {
	var r models.Report
	var size string
	err := row.Scan(
		&r.ID, &r.Category, &r.Latitude, &r.Longitude, &r.Address, &r.Description,
		&r.ManualUrgency, &r.Contact, &r.ImageURL, &r.Classification, &size,
		&r.PriorityScore, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r, err
		}
		return r, apperrors.DatabaseError{Operation: "scan report", Err: err}
	}
	r.SizeBucket = models.SizeBucket(size)
	return r, nil
}
