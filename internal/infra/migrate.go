// README: Embedded SQL schema migrations applied in filename order.
package infra

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationLockID = 55510001

// Migrate applies every migration not yet recorded in schema_migrations and
// returns the names it ran. All work happens in one transaction holding an
// advisory lock, so overlapping deploys serialize.
func Migrate(ctx context.Context, db DB) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, eris.Wrap(err, "infra: read migrations")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var ran []string
	err = WithTx(ctx, db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
			return eris.Wrap(err, "infra: acquire migration lock")
		}
		if _, err := tx.Exec(ctx, `
            CREATE TABLE IF NOT EXISTS schema_migrations (
                filename   TEXT PRIMARY KEY,
                applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
            )`); err != nil {
			return eris.Wrap(err, "infra: ensure schema_migrations")
		}

		applied, err := appliedMigrations(ctx, tx)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			name := entry.Name()
			if applied[name] {
				continue
			}
			data, err := migrationFS.ReadFile("migrations/" + name)
			if err != nil {
				return eris.Wrapf(err, "infra: read migration %s", name)
			}
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return eris.Wrapf(err, "infra: apply migration %s", name)
			}
			if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", name); err != nil {
				return eris.Wrapf(err, "infra: record migration %s", name)
			}
			ran = append(ran, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, name := range ran {
		zap.L().Info("migration applied", zap.String("file", name))
	}
	return ran, nil
}

func appliedMigrations(ctx context.Context, tx pgx.Tx) (map[string]bool, error) {
	rows, err := tx.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, eris.Wrap(err, "infra: query applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "infra: scan migration row")
		}
		applied[name] = true
	}
	return applied, eris.Wrap(rows.Err(), "infra: iterate migrations")
}
