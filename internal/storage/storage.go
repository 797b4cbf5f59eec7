// Package storage persists occupation snapshots as a JSON file or a SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/canoeh/nocs/internal/models"
)

// ErrNoSnapshot is returned by Load when the store holds no snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Store saves and loads a whole snapshot. A snapshot is replaced as a unit, never patched.
type Store interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
	Close() error
}

// Kind identifies a snapshot store implementation.
type Kind string

const (
	// KindJSON stores the snapshot as a single indented JSON document.
	KindJSON Kind = "json"
	// KindSQLite stores the snapshot in a SQLite database.
	KindSQLite Kind = "sqlite"
)

// KindFor picks the store kind from the file extension of path.
// Supported: .json, .db, .sqlite, .sqlite3.
func KindFor(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return KindJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("unsupported snapshot extension %q (supported: .json, .db, .sqlite, .sqlite3)", filepath.Ext(path))
	}
}

// NewStore opens the store for path, choosing the implementation by extension.
func NewStore(path string) (Store, error) {
	kind, err := KindFor(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSQLite:
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(path), nil
	}
}
