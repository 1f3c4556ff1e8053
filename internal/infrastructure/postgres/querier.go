// Package postgres implementa los puertos de persistencia sobre PostgreSQL
// con pgx/v5. Todos los repos aceptan un Querier, de modo que el mismo
// adaptador funciona contra el pool (lecturas sueltas) o contra una
// transacción (mutaciones del motor).
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier es el subconjunto común de *pgxpool.Pool y pgx.Tx que usan los
// repositorios.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
