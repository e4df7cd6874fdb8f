//go:build cgo

package encoder

import (
	"context"
	"fmt"
	"sync"

	fastembed "github.com/anush008/fastembed-go"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// fastEmbedModels maps friendly model names to fastembed model constants.
var fastEmbedModels = map[string]fastembed.EmbeddingModel{
	"BAAI/bge-small-en-v1.5":                 fastembed.BGESmallENV15,
	"BAAI/bge-base-en-v1.5":                  fastembed.BGEBaseENV15,
	"sentence-transformers/all-MiniLM-L6-v2": fastembed.AllMiniLML6V2,
}

// fastEmbedDimensions maps fastembed models to their output dimensions.
var fastEmbedDimensions = map[fastembed.EmbeddingModel]int{
	fastembed.BGESmallENV15: 384,
	fastembed.BGEBaseENV15:  768,
	fastembed.AllMiniLML6V2: 384,
}

// FastEmbedEncoder produces real semantic embeddings from local ONNX
// models via fastembed.
type FastEmbedEncoder struct {
	mu        sync.Mutex
	model     *fastembed.FlagEmbedding
	dimension int
}

// NewFastEmbedEncoder creates a FastEmbed-backed encoder. The model is
// downloaded to cfg.CacheDir on first use.
func NewFastEmbedEncoder(cfg Config) (*FastEmbedEncoder, error) {
	name := cfg.Model
	if name == "" {
		name = "BAAI/bge-small-en-v1.5"
	}
	model, ok := fastEmbedModels[name]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported fastembed model %q", ErrInvalidConfig, name)
	}

	opts := &fastembed.InitOptions{Model: model}
	if cfg.CacheDir != "" {
		opts.CacheDir = cfg.CacheDir
	}
	fe, err := fastembed.NewFlagEmbedding(opts)
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed: %w", err)
	}

	return &FastEmbedEncoder{
		model:     fe,
		dimension: fastEmbedDimensions[model],
	}, nil
}

// Embed returns the normalized embedding for text.
func (e *FastEmbedEncoder) Embed(ctx context.Context, text string) (vsa.Vector, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// fastembed's session is not safe for concurrent use.
	e.mu.Lock()
	raw, err := e.model.QueryEmbed(text)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}

	out := make(vsa.Vector, len(raw))
	for i, x := range raw {
		out[i] = float64(x)
	}
	return checkFinite(out.Normalized())
}

// Dimension returns the model's embedding dimension.
func (e *FastEmbedEncoder) Dimension() int { return e.dimension }

// Close releases the ONNX session.
func (e *FastEmbedEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Destroy()
	e.model = nil
	return err
}
