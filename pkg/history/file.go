package history

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per run in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns ~/.config/modelviz/history.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "modelviz", "history"), nil
}

// NewFileStore creates a file store rooted at baseDir, or [DefaultDir] when
// baseDir is empty.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) runPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

func (s *FileStore) Save(ctx context.Context, r *Run) error {
	if !validID(r.ID) {
		return fmt.Errorf("invalid run id %q", r.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := os.WriteFile(s.runPath(r.ID), data, 0o600); err != nil {
		return fmt.Errorf("write run file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Run, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readRun(s.runPath(id))
}

func readRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read run file: %w", err)
	}
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", filepath.Base(path), err)
	}
	return &r, nil
}

// List skips files that cannot be parsed.
func (s *FileStore) List(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		r, err := readRun(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, r)
	}
	slices.SortFunc(runs, func(a, b *Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.runPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove run file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for run files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
