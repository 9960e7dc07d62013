// Package storage owns the shared PostgreSQL handle: it opens the pool,
// applies migrations, and hands out the repositories bound to it. The handle
// is constructed explicitly and injected into consumers; there are no
// package-level globals.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/messagely/core/config"
	"github.com/messagely/core/logging"
	"github.com/messagely/core/migrations"
	"github.com/messagely/core/repositories/messages"
	"github.com/messagely/core/repositories/users"
)

// Postgres bundles the connection pool with the repositories built on it.
type Postgres struct {
	db       *sql.DB
	logger   logging.Logger
	users    users.Repository
	messages messages.Repository
}

// Open connects to PostgreSQL with the configured pool sizing, verifies the
// connection, and applies pending migrations.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Postgres, error) {

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	p := &Postgres{
		db:       db,
		logger:   logger.With("component", "storage"),
		users:    users.NewPostgresRepository(db),
		messages: messages.NewPostgresRepository(db),
	}

	if err := p.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	p.logger.Info(ctx, "store ready",
		"max_open_conns", cfg.MaxOpenConns, "max_idle_conns", cfg.MaxIdleConns)

	return p, nil
}

func (p *Postgres) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, p.db, ".")
}

// Conn exposes the underlying pool, e.g. for dbx.WithTx.
func (p *Postgres) Conn() *sql.DB {
	return p.db
}

// Users returns the user store bound to this handle.
func (p *Postgres) Users() users.Repository {
	return p.users
}

// Messages returns the message repository bound to this handle.
func (p *Postgres) Messages() messages.Repository {
	return p.messages
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
