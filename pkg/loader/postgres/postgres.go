package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/graphlift/pkg/loader"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const undefinedTable = "42P01"

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgxmock pools.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresTableReader reads GraphRAG tables that were loaded into Postgres,
// one table per kind inside a schema.
type PostgresTableReader struct {
	conn   Querier
	schema string
}

// NewPostgresTableReader creates a reader for tables in schema.
func NewPostgresTableReader(conn Querier, schema string) *PostgresTableReader {
	if schema == "" {
		schema = "public"
	}
	return &PostgresTableReader{conn: conn, schema: schema}
}

func (r *PostgresTableReader) Read(ctx context.Context, kind loader.Kind) ([]loader.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", loader.ErrUnknownKind, kind)
	}
	table := pgx.Identifier{r.schema, string(kind)}.Sanitize()

	rows, err := r.conn.Query(ctx, "SELECT * FROM "+table)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
			return nil, fmt.Errorf("%w: %s", loader.ErrTableNotFound, table)
		}
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []loader.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		rec := make(loader.Record, len(fields))
		for i, f := range fields {
			if i < len(values) && values[i] != nil {
				rec[f.Name] = values[i]
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return out, nil
}
