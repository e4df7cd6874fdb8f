package encoder

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// DefaultDimension is the vector dimension used when none is configured.
// Matches the bge-small embedding dimension so hash and fastembed encoders
// are interchangeable.
const DefaultDimension = 384

// HashEncoder derives a deterministic pseudo-embedding from the text
// itself: each whitespace token seeds a random unit vector, and the token
// vectors are superposed. Identical text always yields the identical
// vector, which makes it the encoder of choice for tests and for
// deployments that only need stable, distinct vectors rather than real
// semantics.
type HashEncoder struct {
	dimension int
}

// NewHashEncoder creates a deterministic hash encoder. A non-positive
// dimension falls back to DefaultDimension.
func NewHashEncoder(dimension int) *HashEncoder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashEncoder{dimension: dimension}
}

// Embed returns the deterministic vector for text.
func (e *HashEncoder) Embed(ctx context.Context, text string) (vsa.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return nil, ErrEmptyText
	}

	out := make(vsa.Vector, e.dimension)
	for _, tok := range tokens {
		tv := e.tokenVector(tok)
		for i := range out {
			out[i] += tv[i]
		}
	}
	return checkFinite(out.Normalized())
}

// Dimension returns the configured vector dimension.
func (e *HashEncoder) Dimension() int { return e.dimension }

// Close is a no-op for the hash encoder.
func (e *HashEncoder) Close() error { return nil }

// tokenVector seeds a generator from the FNV-64a hash of the token so every
// process derives the same vector for the same token.
func (e *HashEncoder) tokenVector(token string) vsa.Vector {
	h := fnv.New64a()
	h.Write([]byte(token))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return vsa.NewRandom(rng, e.dimension)
}
