package memory

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

func TestCompose_RequiresTwoConstituents(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")

	_, err := m.Compose(context.Background(), []string{a}, vsa.OpMerge)
	assert.ErrorIs(t, err, ErrMalformedComposition)

	_, err = m.Compose(context.Background(), nil, vsa.OpBind)
	assert.ErrorIs(t, err, ErrMalformedComposition)
}

func TestCompose_UnknownConstituent(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")

	_, err := m.Compose(context.Background(), []string{a, "missing"}, vsa.OpMerge)
	assert.ErrorIs(t, err, ErrConceptNotFound)
}

func TestCompose_BindVersusMerge(t *testing.T) {
	m, _ := newTestInstance(t, 7)
	a := adopt(t, m, "roles")
	b := adopt(t, m, "fillers")
	ctx := context.Background()

	bound, err := m.Compose(ctx, []string{a, b}, vsa.OpBind)
	require.NoError(t, err)
	merged, err := m.Compose(ctx, []string{a, b}, vsa.OpMerge)
	require.NoError(t, err)

	// Binding destroys similarity to the inputs; merging preserves it.
	assert.Less(t, math.Abs(m.SemanticSimilarity(bound, a)), 0.3)
	assert.Greater(t, m.SemanticSimilarity(merged, a), m.SemanticSimilarity(bound, a))
	assert.Greater(t, m.SemanticSimilarity(merged, b), m.SemanticSimilarity(bound, b))
}

func TestCompose_WiresConstituentAssociations(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	b := adopt(t, m, "b")

	id, err := m.Compose(context.Background(), []string{a, b}, vsa.OpMerge)
	require.NoError(t, err)

	c, ok := m.Concept(id)
	require.True(t, ok)
	assert.Equal(t, []string{a, b}, c.Constituents)
	assert.InDelta(t, 0.3, c.Activation, 1e-9)
	assert.Equal(t, "a+b", c.Content)

	down, ok := m.AssociationBetween(id, a)
	require.True(t, ok)
	assert.InDelta(t, 0.8, down.Weight, 1e-9)
	assert.InDelta(t, 0.9, down.ForwardStrength, 1e-9)

	up, ok := m.AssociationBetween(b, id)
	require.True(t, ok)
	assert.InDelta(t, 0.6, up.Weight, 1e-9)
	assert.InDelta(t, 0.7, up.ForwardStrength, 1e-9)
}

func TestCompose_IdempotentForSameInputs(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	b := adopt(t, m, "b")
	ctx := context.Background()

	first, err := m.Compose(ctx, []string{a, b}, vsa.OpMerge)
	require.NoError(t, err)
	second, err := m.Compose(ctx, []string{a, b}, vsa.OpMerge)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompose_DeterministicAcrossInstances(t *testing.T) {
	ctx := context.Background()
	build := func() (vsa.Vector, *Instance) {
		m, _ := newTestInstance(t, 99)
		a := adopt(t, m, "a")
		b := adopt(t, m, "b")
		id, err := m.Compose(ctx, []string{a, b}, vsa.OpBind)
		require.NoError(t, err)
		c, _ := m.Concept(id)
		return c.Vector, m
	}

	v1, _ := build()
	v2, _ := build()
	assert.Equal(t, v1, v2, "same seed and inputs must produce the same vector")
}

func TestCompose_RejectsCircularConstituents(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	b := adopt(t, m, "b")
	ctx := context.Background()

	// Direct cycle: a concept adopted as a composition of itself.
	_, err := m.Adopt(ctx, a, "loop", []string{a, b})
	assert.ErrorIs(t, err, ErrCircularConstituents)

	// Transitive cycle through an existing composition.
	comp, err := m.Compose(ctx, []string{a, b}, vsa.OpMerge)
	require.NoError(t, err)
	err = m.checkCycleLocked(a, []string{comp})
	assert.ErrorIs(t, err, ErrCircularConstituents)
}

func TestSemanticSimilarity_Degenerate(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")

	assert.Zero(t, m.SemanticSimilarity(a, "missing"))

	b := adopt(t, m, "b")
	// Neither concept has a vector yet; similarity is defined as 0.
	assert.Zero(t, m.SemanticSimilarity(a, b))
}

func TestAnalogyFallback(t *testing.T) {
	m, _ := newTestInstance(t, 5)
	a := adopt(t, m, "a")
	b := adopt(t, m, "b")

	// Two operands fall back to the first vector.
	id, err := m.Compose(context.Background(), []string{a, b}, vsa.OpAnalogy)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.SemanticSimilarity(id, a), 1e-9)
}
