package storage

import (
	"context"
	"database/sql"

	"github.com/queryline/queryline/queryline/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle

	Connect(ctx context.Context) (*sql.DB, error)
	EnsureSchema(ctx context.Context, db *sql.DB) error
	Close() error
}
