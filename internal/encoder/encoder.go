package encoder

import (
	"context"
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// Sentinel errors for encoder operations.
var (
	// ErrEmptyText is returned when there is nothing to encode.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrNonFiniteVector is returned when a provider emits NaN or Inf
	// components. Degenerate values are rejected at this boundary rather
	// than propagated into the memory graph.
	ErrNonFiniteVector = errors.New("encoder produced non-finite vector")

	// ErrInvalidConfig indicates invalid encoder configuration.
	ErrInvalidConfig = errors.New("invalid encoder configuration")
)

// Encoder turns text into a fixed-dimension unit vector.
type Encoder interface {
	// Embed returns the semantic vector for text.
	Embed(ctx context.Context, text string) (vsa.Vector, error)

	// Dimension returns the vector dimension this encoder produces.
	Dimension() int

	// Close releases resources held by the encoder.
	Close() error
}

// Config holds configuration for creating an encoder.
type Config struct {
	// Provider is the encoder type: "hash" (default) or "fastembed".
	Provider string
	// Dimension is the vector dimension for the hash encoder.
	Dimension int
	// Model is the embedding model name (fastembed only).
	Model string
	// CacheDir is the model cache directory (fastembed only).
	CacheDir string
}

// New creates an encoder based on the configuration.
func New(cfg Config) (Encoder, error) {
	switch cfg.Provider {
	case "hash", "":
		return NewHashEncoder(cfg.Dimension), nil
	case "fastembed":
		return NewFastEmbedEncoder(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// checkFinite validates a provider-produced vector before it crosses into
// the memory core.
func checkFinite(v vsa.Vector) (vsa.Vector, error) {
	if !v.Valid() {
		return nil, ErrNonFiniteVector
	}
	return v, nil
}
