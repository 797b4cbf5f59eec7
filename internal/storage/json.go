package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/canoeh/nocs/internal/builder"
	"github.com/canoeh/nocs/internal/models"
)

// JSONStore keeps the snapshot in one JSON file.
type JSONStore struct {
	path string
}

// storedOccupation adds the search index, which the wire model leaves out.
type storedOccupation struct {
	models.Occupation
	SearchIndex string `json:"searchIndex"`
}

type storedSnapshot struct {
	Records  []*storedOccupation `json:"records"`
	Metadata models.Metadata     `json:"metadata"`
}

// NewJSONStore returns a store for the file at path. The file is not touched until Save or Load.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the snapshot file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Save writes the snapshot to a temporary file in the same directory and renames it into place.
func (s *JSONStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := storedSnapshot{
		Records:  make([]*storedOccupation, 0, len(snap.Records)),
		Metadata: snap.Metadata,
	}
	for _, o := range snap.Records {
		stored.Records = append(stored.Records, &storedOccupation{Occupation: *o, SearchIndex: o.SearchIndex})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file. Records missing a stored search index get it recomputed.
func (s *JSONStore) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNoSnapshot, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var stored storedSnapshot
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.path, err)
	}
	snap := &models.Snapshot{
		Records:  make([]*models.Occupation, 0, len(stored.Records)),
		Metadata: stored.Metadata,
	}
	for i, r := range stored.Records {
		if r == nil || r.Code == "" {
			return nil, fmt.Errorf("snapshot %s: record %d has no code", s.path, i)
		}
		o := r.Occupation
		o.SearchIndex = r.SearchIndex
		if o.SearchIndex == "" {
			o.SearchIndex = builder.SearchIndex(&o)
		}
		snap.Records = append(snap.Records, &o)
	}
	return snap, nil
}

// Close is a no-op; the file is only open during Save and Load.
func (s *JSONStore) Close() error {
	return nil
}
