package db

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// conn is the part of *pgxpool.Pool the store uses.
type conn interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Close()
}

var _ conn = (*pgxpool.Pool)(nil)

type DB struct {
	conn conn
}

func NewDB(connString string) *DB {
	conn, err := pgxpool.Connect(context.Background(), connString)
	if err != nil {
		panic(err)
	}
	return &DB{conn: conn}
}

const schema = `
	CREATE TABLE IF NOT EXISTS profiles (
		name        TEXT PRIMARY KEY,
		rules       TEXT NOT NULL,
		not_image   TEXT NOT NULL DEFAULT '',
		wrong_ratio TEXT NOT NULL DEFAULT ''
	)
`

// Migrate creates the tables the store needs if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.conn.Exec(ctx, schema)
	return errors.Wrap(err, "migrate")
}

// Close closes the pool.
func (d *DB) Close() {
	d.conn.Close()
}
