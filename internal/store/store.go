package store

import (
	"context"

	"github.com/rajasatyajit/CivicTriage/internal/models"
)

// Store defines the interface for report storage
type Store interface {
	InsertReport(ctx context.Context, report models.Report) error
	QueryReports(ctx context.Context, q models.ReportQuery) ([]models.Report, error)
	GetReport(ctx context.Context, category, id string) (*models.Report, error)
	UpdateStatus(ctx context.Context, category, id, status string) error
	DeleteReport(ctx context.Context, category, id string) error
	// ListPoints returns the locations of every stored report in category
	ListPoints(ctx context.Context, category string) ([]models.Point, error)
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	ExecAffected(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db != nil && db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
