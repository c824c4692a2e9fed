// Package sqlite implements the storage gateway on an on-disk SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
	"github.com/kamal-hamza/cloak-cli/internal/logging"
)

var (
	_ ports.Gateway     = (*Store)(nil)
	_ ports.Maintenance = (*Store)(nil)
)

// Store owns a single database handle. It is safe for concurrent use;
// the pool holds one connection so operations run one at a time.
type Store struct {
	db       *sql.DB
	path     string
	maxBytes int64
	log      logging.Logger
}

type options struct {
	maxBytes      int64
	log           logging.Logger
	targetVersion int64
}

// Option configures Open
type Option func(*options)

// WithMaxBytes caps the total payload size the store accepts (0 disables the cap)
func WithMaxBytes(n int64) Option {
	return func(o *options) { o.maxBytes = n }
}

// WithLogger sets the logger used for migrations and write failures
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// withTargetVersion stops migrations early; used to build legacy databases in tests
func withTargetVersion(v int64) Option {
	return func(o *options) { o.targetVersion = v }
}

// Open opens (creating if absent) the stash database at path and brings its
// schema up to date. Any failure is reported as domain.ErrStorageUnavailable.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.With("component", "stash")

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, unavailable("create stash directory", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, unavailable("open database", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("open database", err)
	}

	if err := migrate(ctx, db, o.targetVersion, log); err != nil {
		_ = db.Close()
		return nil, unavailable("migrate database", err)
	}

	log.Debug(ctx, "stash opened", "path", path)

	return &Store{
		db:       db,
		path:     path,
		maxBytes: o.maxBytes,
		log:      log,
	}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.path
}

// Add classifies and inserts a file in its own transaction
func (s *Store) Add(ctx context.Context, file domain.NewFile) (int64, error) {
	category := domain.Classify(file.MimeType)
	size := file.SizeBytes()

	payload := file.Payload
	if payload == nil {
		payload = []byte{}
	}

	var id int64
	err := withTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if s.maxBytes > 0 {
			used, err := usage(ctx, tx)
			if err != nil {
				return err
			}
			if used+size > s.maxBytes {
				return fmt.Errorf("%w: %d of %d bytes used", domain.ErrQuotaExceeded, used, s.maxBytes)
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO hidden_files (name, mime_type, size_bytes, last_modified_ms, payload, category)
			VALUES (?, ?, ?, ?, ?, ?)`,
			file.Name, file.MimeType, size, file.LastModifiedEpochMs, payload, string(category))
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		s.log.Warn(ctx, "add rejected", "name", file.Name, "size", size, "error", err)
		return 0, writeError("add file", err)
	}

	return id, nil
}

// List returns the metadata of every record; the payload column is never read
func (s *Store) List(ctx context.Context) ([]domain.FileMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, mime_type, size_bytes, last_modified_ms, category
		FROM hidden_files`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hidden files: %w", err)
	}
	defer rows.Close()

	var result []domain.FileMeta
	for rows.Next() {
		var (
			m        domain.FileMeta
			category sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.MimeType, &m.SizeBytes, &m.LastModifiedEpochMs, &category); err != nil {
			return nil, fmt.Errorf("failed to scan hidden file: %w", err)
		}
		m.Category = domain.Category(category.String)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list hidden files: %w", err)
	}
	return result, nil
}

// Get returns the full record, or nil when no record has the id
func (s *Store) Get(ctx context.Context, id int64) (*domain.StoredFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, mime_type, size_bytes, last_modified_ms, category, payload
		FROM hidden_files WHERE id = ?`, id)

	var (
		f        domain.StoredFile
		category sql.NullString
	)
	err := row.Scan(&f.ID, &f.Name, &f.MimeType, &f.SizeBytes, &f.LastModifiedEpochMs, &category, &f.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hidden file %d: %w", id, err)
	}

	f.Category = domain.Category(category.String)
	return &f, nil
}

// Delete removes a record. Deleting an id that does not exist is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hidden_files WHERE id = ?`, id); err != nil {
		s.log.Warn(ctx, "delete rejected", "id", id, "error", err)
		return writeError("delete file", err)
	}
	return nil
}

// Backfill derives the category for rows written before the category
// column existed. Rows that already have one are left alone.
func (s *Store) Backfill(ctx context.Context) (int, error) {
	type pending struct {
		id       int64
		mimeType string
	}

	var touched int
	err := withTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, mime_type FROM hidden_files
			WHERE category IS NULL OR category = ''`)
		if err != nil {
			return err
		}

		var todo []pending
		for rows.Next() {
			var p pending
			if err := rows.Scan(&p.id, &p.mimeType); err != nil {
				rows.Close()
				return err
			}
			todo = append(todo, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, p := range todo {
			_, err := tx.ExecContext(ctx, `UPDATE hidden_files SET category = ? WHERE id = ?`,
				string(domain.Classify(p.mimeType)), p.id)
			if err != nil {
				return err
			}
			touched++
		}
		return nil
	})
	if err != nil {
		return 0, writeError("backfill categories", err)
	}

	if touched > 0 {
		s.log.Info(ctx, "backfilled categories", "rows", touched)
	}
	return touched, nil
}

// SchemaVersion reports the applied migration version
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := newProvider(s.db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// UsageBytes sums the size of every stored payload
func (s *Store) UsageBytes(ctx context.Context) (int64, error) {
	return usage(ctx, s.db)
}

func usage(ctx context.Context, db DBTX) (int64, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size_bytes), 0) FROM hidden_files`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum stash usage: %w", err)
	}
	return total, nil
}
