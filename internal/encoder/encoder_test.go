package encoder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

func TestHashEncoder_Deterministic(t *testing.T) {
	enc := NewHashEncoder(128)
	ctx := context.Background()

	a, err := enc.Embed(ctx, "gray wolf")
	require.NoError(t, err)
	b, err := enc.Embed(ctx, "gray wolf")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 128)
	assert.InDelta(t, 1.0, a.Norm(), 1e-9)
}

func TestHashEncoder_TokenOverlapRaisesSimilarity(t *testing.T) {
	enc := NewHashEncoder(256)
	ctx := context.Background()

	wolf, err := enc.Embed(ctx, "gray wolf")
	require.NoError(t, err)
	fox, err := enc.Embed(ctx, "gray fox")
	require.NoError(t, err)
	stone, err := enc.Embed(ctx, "basalt stone")
	require.NoError(t, err)

	assert.Greater(t, vsa.Cosine(wolf, fox), vsa.Cosine(wolf, stone),
		"texts sharing a token should be closer than unrelated texts")
}

func TestHashEncoder_EmptyText(t *testing.T) {
	enc := NewHashEncoder(0)
	assert.Equal(t, DefaultDimension, enc.Dimension())

	_, err := enc.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestHashEncoder_CancelledContext(t *testing.T) {
	enc := NewHashEncoder(64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enc.Embed(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckFinite(t *testing.T) {
	v := vsa.Vector{0.5, 0.5}
	got, err := checkFinite(v)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = checkFinite(vsa.Vector{math.NaN(), 1})
	assert.ErrorIs(t, err, ErrNonFiniteVector)

	_, err = checkFinite(vsa.Vector{math.Inf(1), 1})
	assert.ErrorIs(t, err, ErrNonFiniteVector)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "tei"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_DefaultsToHash(t *testing.T) {
	enc, err := New(Config{Dimension: 32})
	require.NoError(t, err)
	defer enc.Close()

	assert.Equal(t, 32, enc.Dimension())
}
