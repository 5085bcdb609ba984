package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type PgxPoolIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres keeps named snapshots in the employee_snapshot table.
type Postgres struct {
	pool PgxPoolIface
	name string
}

func NewPostgres(pool PgxPoolIface, name string) *Postgres {
	return &Postgres{pool: pool, name: name}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	query := `
create table if not exists employee_snapshot (
  name     text primary key,
  payload  bytea not null,
  saved_at timestamptz not null default now()
);
`
	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	query := `select payload from employee_snapshot where name = $1`

	var payload []byte
	if err := p.pool.QueryRow(ctx, query, p.name).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}

		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return payload, nil
}

func (p *Postgres) Save(ctx context.Context, payload []byte) error {
	query := `
insert into employee_snapshot (name, payload, saved_at)
values (@name, @payload, now())
on conflict (name) do update set
  payload  = excluded.payload,
  saved_at = now();
`
	args := pgx.NamedArgs{
		"name":    p.name,
		"payload": payload,
	}

	if _, err := p.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}
