// Package store persists operators and camera sites. Two backends: Postgres
// for shared deployments, SQLite for local runs. All writes are idempotent
// upserts keyed by record ID, so re-running an import converges instead of
// duplicating.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/camatlas/camatlas/internal/model"
)

// Store is the persistence interface for the reconciliation pipeline.
type Store interface {
	// Operators
	UpsertOperator(ctx context.Context, op model.Operator) error
	GetOperator(ctx context.Context, id string) (*model.Operator, error)
	ListOperators(ctx context.Context) ([]model.Operator, error)

	// Cameras. UpsertCameras writes one bounded batch and returns the rows
	// written.
	UpsertCameras(ctx context.Context, cams []model.Camera) (int64, error)
	CountCameras(ctx context.Context, operatorID string) (int64, error)

	// Import audit log
	StartImport(ctx context.Context, source string) (string, error)
	CompleteImport(ctx context.Context, importID string, scanned, kept int) error
	FailImport(ctx context.Context, importID, message string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn)
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
