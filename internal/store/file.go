package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/memory"
)

// FileStore persists one JSON snapshot file per node under a base
// directory.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates a file-backed snapshot store rooted at dir.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: directory cannot be empty", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Load reads the node's snapshot. A missing file returns (nil, nil).
func (s *FileStore) Load(ctx context.Context, nodeID string) (*memory.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(nodeID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	s.logger.Debug("loaded snapshot",
		zap.String("node_id", nodeID),
		zap.Int("concepts", len(snap.Concepts)))
	return &snap, nil
}

// Save writes the snapshot atomically: encode to a temp file, then rename
// over the previous snapshot.
func (s *FileStore) Save(ctx context.Context, snap *memory.Snapshot) error {
	if snap == nil {
		return ErrEmptySnapshot
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	target := s.path(snap.NodeID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	s.logger.Debug("saved snapshot",
		zap.String("node_id", snap.NodeID),
		zap.Int("concepts", len(snap.Concepts)))
	return nil
}

func (s *FileStore) path(nodeID string) string {
	return filepath.Join(s.dir, nodeID+".json")
}
