package migrate

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/hotel-booking/internal/db"
)

//go:embed *.sql
var fs embed.FS

func files() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".sql") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Pending lists migrations that have not been applied yet.
func Pending(ctx context.Context, d *db.DB) ([]string, error) {
	names, err := files()
	if err != nil {
		return nil, err
	}
	if err := ensureTable(ctx, d); err != nil {
		return nil, err
	}
	var out []string
	for _, f := range names {
		var applied bool
		if err := d.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, f).Scan(&applied); err != nil {
			return nil, err
		}
		if !applied {
			out = append(out, f)
		}
	}
	return out, nil
}

func ensureTable(ctx context.Context, d *db.DB) error {
	return d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY);`)
}

// Up applies pending migrations in name order, each in its own transaction.
func Up(ctx context.Context, d *db.DB) error {
	pending, err := Pending(ctx, d)
	if err != nil {
		return err
	}

	for _, f := range pending {
		b, err := fs.ReadFile(f)
		if err != nil {
			return err
		}
		sql := string(b)

		err = d.InTx(ctx, func(tx *db.Tx) error {
			if err := tx.Exec(ctx, sql); err != nil {
				return err
			}
			return tx.Exec(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, f)
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", f, err)
		}
		slog.Info("migration applied", "version", f)
	}

	return nil
}
