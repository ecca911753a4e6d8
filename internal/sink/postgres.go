package sink

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mapleads-cli/internal/model"
)

// Execer is the subset of pgxpool.Pool the Postgres sink uses. pgxmock
// satisfies it in tests.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink inserts records over a direct Postgres connection, bypassing
// the PostgREST layer. Useful with the Supabase connection-pooler DSN.
type PostgresSink struct {
	pool    Execer
	insert  string
	closeFn func()
}

// NewPostgres connects to connString and prepares a sink for the table.
func NewPostgres(ctx context.Context, connString, table string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres sink: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres sink: ping")
	}
	return NewPostgresWithPool(pool, table, pool.Close), nil
}

// NewPostgresWithPool wraps an existing pool. closeFn may be nil.
func NewPostgresWithPool(pool Execer, table string, closeFn func()) *PostgresSink {
	return &PostgresSink{
		pool:    pool,
		insert:  insertStatement(table),
		closeFn: closeFn,
	}
}

func insertStatement(table string) string {
	cols := []string{"Name", "Address", "Phone", "Website", "Email", "Rating", "Reviews", "Types"}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return `INSERT INTO ` + pgx.Identifier{table}.Sanitize() +
		` (` + strings.Join(quoted, ", ") + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
}

// Insert implements RecordSink.
func (s *PostgresSink) Insert(ctx context.Context, record model.PlaceRecord) error {
	var email *string
	if record.Email != "" {
		email = &record.Email
	}

	_, err := s.pool.Exec(ctx, s.insert,
		record.Name,
		record.Address,
		record.Phone,
		record.Website,
		email,
		record.Rating,
		record.Reviews,
		strings.Join(record.Types, ", "),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres sink: insert %q", record.Name)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresSink) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}
