package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/queryline/queryline/queryline/storage"
	"github.com/queryline/queryline/queryline/storage/sqlbuilder"
)

type Adapter struct {
	DSN    string
	Schema string // used as dedicated schema via search_path
}

func New(dsn, schema string) *Adapter {
	return &Adapter{DSN: dsn, Schema: schema}
}

func (a *Adapter) Backend() storage.Backend { return storage.BackendPostgres }

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle { return sqlbuilder.PlaceholderDollar }

func (a *Adapter) Close() error { return nil }

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteIdent(ident string) string {
	// ident is validated to contain no quotes; safe to wrap
	return `"` + ident + `"`
}

func (a *Adapter) createSchema(ctx context.Context, db *sql.DB) error {
	if a.Schema == "" || !schemaNameRe.MatchString(a.Schema) {
		return fmt.Errorf("invalid postgres schema name %q (must match %s)", a.Schema, schemaNameRe.String())
	}
	_, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdent(a.Schema))
	return err
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	// 1) Connect without search_path to ensure schema exists
	cfg0, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	db0 := stdlib.OpenDB(*cfg0)
	if err := db0.PingContext(ctx); err != nil {
		_ = db0.Close()
		return nil, err
	}
	if err := a.createSchema(ctx, db0); err != nil {
		_ = db0.Close()
		return nil, err
	}
	_ = db0.Close()

	// 2) Connect with search_path pinned to the schema
	cfg, err := pgx.ParseConfig(a.DSN)
	if err != nil {
		return nil, err
	}
	// Include public as a fallback for built-ins; schema is first.
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	cfg.RuntimeParams["search_path"] = fmt.Sprintf("%s,public", quoteIdent(a.Schema))

	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, ddlBase)
	return err
}
