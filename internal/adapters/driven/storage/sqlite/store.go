package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/mediamind/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// open opens the database at path and runs the given migrations.
func open(path string, fsys fs.FS, queryOnly bool) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if queryOnly {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=query_only(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if fsys != nil {
		if err := migrate(db, fsys); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	return db, nil
}

// migration is one numbered *.up.sql file.
type migration struct {
	version int
	file    string
}

// pendingMigrations lists the up migrations in fsys newer than applied,
// oldest first. Files without a numeric prefix are ignored.
func pendingMigrations(fsys fs.FS, applied int) ([]migration, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	var out []migration
	for _, f := range files {
		prefix, _, ok := strings.Cut(f, "_")
		if !ok {
			continue
		}
		v, err := strconv.Atoi(prefix)
		if err != nil || v <= applied {
			continue
		}
		out = append(out, migration{version: v, file: f})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.version - b.version })
	return out, nil
}

// migrate applies pending migrations, each in its own transaction together
// with its schema_migrations row.
func migrate(db *sql.DB, fsys fs.FS) error {
	const ledger = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(ledger); err != nil {
		return fmt.Errorf("schema_migrations: %w", err)
	}

	var applied int
	if err := db.QueryRow(`SELECT IFNULL(MAX(version), 0) FROM schema_migrations`).Scan(&applied); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(fsys, applied)
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	for _, m := range pending {
		if err := applyMigration(db, fsys, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.file, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, fsys fs.FS, m migration) error {
	stmts, err := fs.ReadFile(fsys, m.file)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	if _, err := tx.Exec(string(stmts)); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Ingest Store ====================

// IngestStore implements driven.IngestStore over the ingest table.
type IngestStore struct {
	db   *sql.DB
	path string
}

var _ driven.IngestStore = (*IngestStore)(nil)

// NewIngestStore opens (creating if needed) the dedup database at path.
func NewIngestStore(path string) (*IngestStore, error) {
	db, err := open(path, migrations.Ingest(), false)
	if err != nil {
		return nil, err
	}
	return &IngestStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *IngestStore) Path() string {
	return s.path
}

// Has reports whether a record exists for the exact path string.
func (s *IngestStore) Has(ctx context.Context, localPath string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM ingest WHERE path = ?`, localPath).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying ingest: %w", err)
	}
	return true, nil
}

// Record inserts a record; an existing path yields domain.ErrAlreadyExists.
func (s *IngestStore) Record(ctx context.Context, rec domain.IngestRecord) error {
	uploadedAt := rec.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest (path, storage_key, uploaded_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO NOTHING
	`, rec.LocalPath, rec.StorageKey, uploadedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving ingest record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving ingest record: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// List returns all records ordered by path.
func (s *IngestStore) List(ctx context.Context) ([]domain.IngestRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, storage_key, uploaded_at FROM ingest ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("listing ingest records: %w", err)
	}
	defer rows.Close()

	var records []domain.IngestRecord
	for rows.Next() {
		var rec domain.IngestRecord
		var uploadedAt sql.NullTime
		if err := rows.Scan(&rec.LocalPath, &rec.StorageKey, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scanning ingest record: %w", err)
		}
		if uploadedAt.Valid {
			rec.UploadedAt = uploadedAt.Time
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *IngestStore) Close() error {
	return s.db.Close()
}

// ==================== Meta Store ====================

// MetaStore implements driven.MetadataStore for one snapshot.
type MetaStore struct {
	db *sql.DB
}

var _ driven.MetadataStore = (*MetaStore)(nil)

// WriteMetaDB creates a new metadata database at path holding metas.
// The file must not exist yet.
func WriteMetaDB(ctx context.Context, path string, metas []domain.MetaRecord) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("metadata database %s: %w", path, domain.ErrAlreadyExists)
	}

	db, err := open(path, migrations.Meta(), false)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO meta (id, chunk_id, source, doc_path, loc, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range metas {
		locJSON, err := json.Marshal(m.Loc)
		if err != nil {
			return fmt.Errorf("marshalling location: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.ChunkID, string(m.Source), m.DocPath,
			string(locJSON), m.Text); err != nil {
			return fmt.Errorf("saving metadata %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	// Fold the WAL back so the snapshot directory is a single self-contained file.
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpointing: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=DELETE"); err != nil {
		return fmt.Errorf("leaving WAL mode: %w", err)
	}
	return db.Close()
}

// OpenMetaStore opens a published metadata database for reading.
func OpenMetaStore(path string) (*MetaStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("metadata database: %w", err)
	}
	db, err := open(path, nil, true)
	if err != nil {
		return nil, err
	}
	return &MetaStore{db: db}, nil
}

// Get returns the row for id, or domain.ErrNotFound.
func (s *MetaStore) Get(ctx context.Context, id int64) (*domain.MetaRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, chunk_id, source, doc_path, loc, text FROM meta WHERE id = ?
	`, id)

	var m domain.MetaRecord
	var source, locJSON string
	if err := row.Scan(&m.ID, &m.ChunkID, &source, &m.DocPath, &locJSON, &m.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning metadata: %w", err)
	}
	m.Source = domain.SourceKind(source)
	if err := json.Unmarshal([]byte(locJSON), &m.Loc); err != nil {
		return nil, fmt.Errorf("unmarshalling location: %w", err)
	}
	return &m, nil
}

// IDs returns every id in ascending order.
func (s *MetaStore) IDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM meta ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing metadata ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of rows.
func (s *MetaStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meta`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting metadata: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *MetaStore) Close() error {
	return s.db.Close()
}
