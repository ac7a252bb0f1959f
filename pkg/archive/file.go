package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps snapshots as JSON files, one per snapshot, named by ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based snapshot store.
// If baseDir is empty, defaults to ~/.local/share/topolab/snapshots.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "topolab", "snapshots")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the snapshot directory.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) snapshotPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.snapshotPath(snap.ID), data, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		snap.Raw = nil
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		if !snaps[i].FetchedAt.Equal(snaps[j].FetchedAt) {
			return snaps[i].FetchedAt.After(snaps[j].FetchedAt)
		}
		return snaps[i].ID < snaps[j].ID
	})
	return snaps, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.snapshotPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", id, err)
	}
	return &snap, nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
