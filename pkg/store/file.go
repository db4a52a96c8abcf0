package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/gitnetwork/pkg/graph"
)

// FileStore keeps each layout as a JSON file named after its run id.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to <user config dir>/gitnetwork/layouts.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns the default layout directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(base, "gitnetwork", "layouts"), nil
}

// Dir returns the directory layouts are written to.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) layoutPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, l *graph.Layout) (string, error) {
	Prepare(l)
	if err := ValidateID(l.RunID); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := graph.WriteLayoutFile(*l, s.layoutPath(l.RunID)); err != nil {
		return "", fmt.Errorf("write layout file: %w", err)
	}
	return l.RunID, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*graph.Layout, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, err := graph.ReadLayoutFile(s.layoutPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound(id)
		}
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return &l, nil
}

func (s *FileStore) List(ctx context.Context, limit int) ([]graph.Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}

	var metas []graph.Meta
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if ValidateID(strings.TrimSuffix(name, ".json")) != nil {
			continue
		}
		l, err := graph.ReadLayoutFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		metas = append(metas, l.Meta)
	}
	return newestFirst(metas, limit), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.layoutPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
