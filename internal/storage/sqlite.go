package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/canoeh/nocs/internal/builder"
	"github.com/canoeh/nocs/internal/models"
)

// SQLiteStore keeps the snapshot in a SQLite database: one metadata row and one row per occupation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot_metadata (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version TEXT NOT NULL,
		source TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		total_entries INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS occupations (
		code TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		reference_link TEXT NOT NULL,
		tier_level INTEGER NOT NULL,
		tier_label TEXT NOT NULL,
		broad_code TEXT NOT NULL,
		broad_title TEXT NOT NULL,
		major_code TEXT NOT NULL,
		major_title TEXT NOT NULL,
		minor_code TEXT NOT NULL,
		minor_title TEXT NOT NULL,
		search_index TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Save replaces the stored snapshot in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM occupations`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_metadata`); err != nil {
		return err
	}

	md := snap.Metadata
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_metadata (id, version, source, generated_at, total_entries)
		 VALUES (1, ?, ?, ?, ?)`,
		md.Version, md.Source, md.GeneratedAt.UTC().Format(time.RFC3339Nano), md.TotalEntries,
	); err != nil {
		return fmt.Errorf("failed to insert metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO occupations (code, title, description, reference_link, tier_level, tier_label,
			broad_code, broad_title, major_code, major_title, minor_code, minor_title, search_index)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range snap.Records {
		h := o.Hierarchy
		if _, err := stmt.ExecContext(ctx,
			o.Code, o.Title, o.Description, o.ReferenceLink, o.Tier.Level, o.Tier.Label,
			h.Broad.Code, h.Broad.Title, h.Major.Code, h.Major.Title, h.Minor.Code, h.Minor.Title,
			o.SearchIndex,
		); err != nil {
			return fmt.Errorf("failed to insert occupation %s: %w", o.Code, err)
		}
	}
	return tx.Commit()
}

// Load reads the stored snapshot with records ordered by code.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Snapshot, error) {
	var md models.Metadata
	var generatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT version, source, generated_at, total_entries FROM snapshot_metadata WHERE id = 1`,
	).Scan(&md.Version, &md.Source, &generatedAt, &md.TotalEntries)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w in database", ErrNoSnapshot)
	}
	if err != nil {
		return nil, err
	}
	md.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, title, description, reference_link, tier_level, tier_label,
			broad_code, broad_title, major_code, major_title, minor_code, minor_title, search_index
		 FROM occupations ORDER BY code`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.Occupation, 0, md.TotalEntries)
	for rows.Next() {
		var o models.Occupation
		h := &o.Hierarchy
		if err := rows.Scan(&o.Code, &o.Title, &o.Description, &o.ReferenceLink, &o.Tier.Level, &o.Tier.Label,
			&h.Broad.Code, &h.Broad.Title, &h.Major.Code, &h.Major.Title, &h.Minor.Code, &h.Minor.Title,
			&o.SearchIndex); err != nil {
			return nil, err
		}
		if o.SearchIndex == "" {
			o.SearchIndex = builder.SearchIndex(&o)
		}
		records = append(records, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &models.Snapshot{Records: records, Metadata: md}, nil
}

// Count returns the number of stored occupations.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM occupations`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
