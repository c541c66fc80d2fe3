package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

type fsStore struct {
	root string
	log  *logger.Logger
}

// NewFSStore returns a Store rooted at dir, creating it if needed.
func NewFSStore(dir string, baseLog *logger.Logger) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact store root must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact store root %q: %w", dir, err)
	}
	return &fsStore{root: dir, log: baseLog.With("store", "FSArtifactStore")}, nil
}

func (s *fsStore) Put(ctx context.Context, key string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	// Write-then-rename so a crashed write never leaves a readable partial
	// artifact behind.
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %q: %w", key, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize artifact %q: %w", key, err)
	}
	s.log.Debug("artifact written", "key", key, "bytes", len(data))
	return nil
}

func (s *fsStore) Get(ctx context.Context, key string) ([]byte, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %q: %w", key, err)
	}
	return data, nil
}

func (s *fsStore) Delete(ctx context.Context, key string) error {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete artifact %q: %w", key, err)
	}
	return nil
}
