package store

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/emergent/internal/memory"
)

// Sentinel errors for store operations.
var (
	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid store configuration")

	// ErrEmptySnapshot is returned when saving a nil snapshot.
	ErrEmptySnapshot = errors.New("snapshot cannot be nil")
)

// Store persists memory snapshots per node. A missing snapshot loads as
// nil without error: a node starting cold is a normal condition.
type Store interface {
	// Load returns the last saved snapshot for the node, or nil when none
	// exists.
	Load(ctx context.Context, nodeID string) (*memory.Snapshot, error)

	// Save persists the snapshot, replacing any previous one for the
	// same node.
	Save(ctx context.Context, snap *memory.Snapshot) error
}
