package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ekip-platform/ekip-api/internal/logging"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Load returns the embedded migrations ordered by version. File names must
// look like 0001_description.sql.
func Load() ([]Migration, error) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	out := make([]Migration, 0, len(files))
	seen := make(map[int]string, len(files))
	for _, f := range files {
		base := path.Base(f)
		ver, err := parseVersion(base)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		if prev, dup := seen[ver]; dup {
			return nil, fmt.Errorf("migrations %q and %q share version %d", prev, base, ver)
		}
		seen[ver] = base

		b, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: ver, Name: base, SQL: string(b)})
	}
	return out, nil
}

// Run applies pending migrations. Each file runs in its own transaction
// together with its schema_migrations row. It returns the number applied.
func Run(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	log := logging.Op(ctx, "migrate.run")

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    BIGINT PRIMARY KEY,
    name       TEXT        NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	migrations, err := Load()
	if err != nil {
		return 0, err
	}
	applied, err := loadApplied(ctx, pool)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range migrations {
		fields := logrus.Fields{"version": m.Version, "file": m.Name}
		if applied[m.Version] {
			log.WithFields(fields).Debug("migration already applied")
			continue
		}
		log.WithFields(fields).Info("applying migration")

		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return n, fmt.Errorf("applying %s: %w", m.Name, err)
		}
		n++
	}
	return n, nil
}

func loadApplied(ctx context.Context, pool *pgxpool.Pool) (map[int]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	out := make(map[int]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}

func parseVersion(name string) (int, error) {
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return 0, fmt.Errorf("missing version prefix")
	}
	return strconv.Atoi(name[:i])
}
