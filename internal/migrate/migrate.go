package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/cafe-reservations/internal/db"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// Target is a database that migrations can be applied to.
type Target interface {
	Dialect() Dialect
	Exec(ctx context.Context, query string, args ...any) error
	QueryRow(ctx context.Context, query string, args ...any) db.Row
}

type pgTarget struct{ d *db.DB }

func ForPostgres(d *db.DB) Target { return pgTarget{d: d} }

func (t pgTarget) Dialect() Dialect { return Postgres }
func (t pgTarget) Exec(ctx context.Context, q string, args ...any) error {
	return t.d.Exec(ctx, q, args...)
}
func (t pgTarget) QueryRow(ctx context.Context, q string, args ...any) db.Row {
	return t.d.QueryRow(ctx, q, args...)
}

type mysqlTarget struct{ d *sqlx.DB }

func ForMySQL(d *sqlx.DB) Target { return mysqlTarget{d: d} }

func (t mysqlTarget) Dialect() Dialect { return MySQL }
func (t mysqlTarget) Exec(ctx context.Context, q string, args ...any) error {
	_, err := t.d.ExecContext(ctx, q, args...)
	return err
}
func (t mysqlTarget) QueryRow(ctx context.Context, q string, args ...any) db.Row {
	return t.d.QueryRowContext(ctx, q, args...)
}

type ledger struct {
	create string
	exists string
	insert string
}

var ledgers = map[Dialect]ledger{
	Postgres: {
		create: `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`,
		exists: `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`,
		insert: `INSERT INTO schema_migrations(version) VALUES ($1)`,
	},
	MySQL: {
		create: `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) PRIMARY KEY)`,
		exists: `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=?)`,
		insert: `INSERT INTO schema_migrations(version) VALUES (?)`,
	},
}

// Up applies every embedded migration for the target's dialect that is not
// yet recorded in schema_migrations, in file name order.
func Up(ctx context.Context, t Target) error {
	sub, err := fs.Sub(files, string(t.Dialect()))
	if err != nil {
		return err
	}
	return up(ctx, t, sub)
}

func up(ctx context.Context, t Target, fsys fs.FS) error {
	l, ok := ledgers[t.Dialect()]
	if !ok {
		return fmt.Errorf("migrate: unsupported dialect %q", t.Dialect())
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if err := t.Exec(ctx, l.create); err != nil {
		return err
	}

	for _, f := range names {
		var applied bool
		if err := t.QueryRow(ctx, l.exists, f).Scan(&applied); err != nil {
			return err
		}
		if applied {
			continue
		}

		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return err
		}
		// MySQL rejects multi-statement Exec without multiStatements=true.
		for _, stmt := range statements(string(b)) {
			if err := t.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
		}
		if err := t.Exec(ctx, l.insert, f); err != nil {
			return err
		}
	}
	return nil
}

// statements splits a migration file on semicolons. Migrations must not
// contain semicolons inside literals.
func statements(src string) []string {
	var out []string
	for _, s := range strings.Split(src, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
