package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// LatestVersion is the schema version a freshly opened store ends up at
const LatestVersion int64 = 2

// newProvider builds the ordered migration list: the embedded SQL files
// followed by the Go steps that need to inspect the live schema.
func newProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, err
	}

	return goose.NewProvider(goose.DialectSQLite3, db, fsys,
		goose.WithGoMigrations(
			goose.NewGoMigration(2,
				&goose.GoFunc{RunTx: addCategoryIndex},
				&goose.GoFunc{RunTx: dropCategoryIndex},
			),
		),
	)
}

// migrate applies pending migrations up to target (LatestVersion when target <= 0)
func migrate(ctx context.Context, db *sql.DB, target int64, log logging.Logger) error {
	provider, err := newProvider(db)
	if err != nil {
		return fmt.Errorf("failed to build migration provider: %w", err)
	}

	if target <= 0 {
		target = LatestVersion
	}

	results, err := provider.UpTo(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Info(ctx, "applied migration",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return nil
}

// addCategoryIndex adds the category column and its lookup index.
// Both halves are guarded so running it against a database that already
// has either is harmless. Existing rows keep a NULL category.
func addCategoryIndex(ctx context.Context, tx *sql.Tx) error {
	exists, err := hasColumn(ctx, tx, "hidden_files", "category")
	if err != nil {
		return err
	}

	if !exists {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE hidden_files ADD COLUMN category TEXT`); err != nil {
			return fmt.Errorf("failed to add category column: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_hidden_files_category ON hidden_files (category)`)
	if err != nil {
		return fmt.Errorf("failed to create category index: %w", err)
	}
	return nil
}

func dropCategoryIndex(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_hidden_files_category`); err != nil {
		return err
	}

	exists, err := hasColumn(ctx, tx, "hidden_files", "category")
	if err != nil || !exists {
		return err
	}

	_, err = tx.ExecContext(ctx, `ALTER TABLE hidden_files DROP COLUMN category`)
	return err
}

func hasColumn(ctx context.Context, db DBTX, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func hasIndex(ctx context.Context, db DBTX, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
