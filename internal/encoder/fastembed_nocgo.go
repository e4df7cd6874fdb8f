//go:build !cgo

package encoder

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// ErrFastEmbedNotAvailable is returned when FastEmbed is not available
// (requires CGO for the ONNX runtime).
var ErrFastEmbedNotAvailable = errors.New("fastembed: not available (binary built without CGO support, use the hash encoder instead)")

// FastEmbedEncoder is a stub for non-CGO builds.
type FastEmbedEncoder struct{}

// NewFastEmbedEncoder returns an error when CGO is not available.
func NewFastEmbedEncoder(_ Config) (*FastEmbedEncoder, error) {
	return nil, ErrFastEmbedNotAvailable
}

// Embed returns an error when CGO is not available.
func (e *FastEmbedEncoder) Embed(_ context.Context, _ string) (vsa.Vector, error) {
	return nil, ErrFastEmbedNotAvailable
}

// Dimension returns 0 when CGO is not available.
func (e *FastEmbedEncoder) Dimension() int { return 0 }

// Close is a no-op for the stub.
func (e *FastEmbedEncoder) Close() error { return nil }
