package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictions_MaxCombinesSources(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	b := adopt(t, m, "b")
	target := adopt(t, m, "target")

	require.Greater(t, m.Activate(a, 1.0), 0.0)
	require.Greater(t, m.Activate(b, 1.0), 0.0)
	m.wireAssocLocked(a, target, 0.9, 0.9)
	m.wireAssocLocked(b, target, 0.4, 0.5)

	preds := m.Predictions()
	ca, _ := m.Concept(a)

	// The strongest contributor wins; contributions are not summed.
	assert.InDelta(t, ca.Activation*0.9*0.9, preds[target], 1e-9)
}

func TestPredictionError_ExactMatchIsZero(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	target := adopt(t, m, "target")

	require.Greater(t, m.Activate(a, 1.0), 0.0)
	m.wireAssocLocked(a, target, 0.9, 0.9)

	preds := m.Predictions()
	require.Greater(t, preds[target], 0.3, "prediction must clear the confidence floor")

	errVal := m.PredictionError([]string{target})
	assert.Zero(t, errVal)

	assoc, ok := m.AssociationBetween(a, target)
	require.True(t, ok)
	assert.Greater(t, assoc.PredictionAccuracy, 0.5, "a hit raises accuracy")
	assert.Len(t, assoc.Surprise, 1)
}

func TestPredictionError_Bounds(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	target := adopt(t, m, "target")
	other := adopt(t, m, "other")

	// Both sets empty: error defined as 0.
	assert.Zero(t, m.PredictionError(nil))

	require.Greater(t, m.Activate(a, 1.0), 0.0)
	m.wireAssocLocked(a, target, 0.9, 0.9)
	m.Predictions()

	// Complete miss: error 1, still within [0,1].
	errVal := m.PredictionError([]string{other})
	assert.InDelta(t, 1.0, errVal, 1e-9)

	assoc, _ := m.AssociationBetween(a, target)
	assert.Less(t, assoc.PredictionAccuracy, 0.5, "a miss lowers accuracy")
}

func TestPredictionError_SurpriseRingIsBounded(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	target := adopt(t, m, "target")

	require.Greater(t, m.Activate(a, 1.0), 0.0)
	m.wireAssocLocked(a, target, 0.9, 0.9)

	for i := 0; i < 3*m.params.SurpriseCapacity; i++ {
		m.Predictions()
		m.PredictionError([]string{target})
	}

	assoc, _ := m.AssociationBetween(a, target)
	assert.Len(t, assoc.Surprise, m.params.SurpriseCapacity)
}

func TestQueryPredictions_UnknownIDsAreSkipped(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	target := adopt(t, m, "target")
	m.wireAssocLocked(a, target, 0.9, 0.9)

	preds := m.QueryPredictions([]string{a, "missing-id"})
	assert.Contains(t, preds, target)

	empty := m.QueryPredictions([]string{"missing-id"})
	assert.Empty(t, empty)
}

func TestPredictions_FloorFiltersConfidentSet(t *testing.T) {
	m, _ := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	weak := adopt(t, m, "weak")
	strong := adopt(t, m, "strong")

	require.Greater(t, m.Activate(a, 1.0), 0.0)
	m.wireAssocLocked(a, weak, 0.2, 0.3)
	m.wireAssocLocked(a, strong, 0.9, 0.9)

	preds := m.Predictions()
	assert.Contains(t, preds, weak, "full map includes weak predictions")

	assert.Contains(t, m.lastPredicted, strong)
	assert.NotContains(t, m.lastPredicted, weak, "confident set excludes sub-floor predictions")
}
