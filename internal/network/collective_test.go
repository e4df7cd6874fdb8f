package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wirePrediction gives a node the query concept and a strong outgoing
// association so activating the query predicts the target.
func wirePrediction(t *testing.T, node *NodeState, query, target string) {
	t.Helper()
	mem := node.Memory()
	if !mem.HasConcept(query) {
		adoptAs(t, node, query, "content of "+query)
	}
	if !mem.HasConcept(target) {
		adoptAs(t, node, target, "content of "+target)
	}
	require.NoError(t, mem.WireAssociation(query, target, 0.8, 0.9))
}

func TestCollectivePredict_NormalizedEnsemble(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	for _, n := range nodes {
		wirePrediction(t, n, "q", "t")
	}

	p := NewCollectivePredictor(nodes, nil, nil)
	got, err := p.Predict(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got["t"], 1e-9)
}

func TestCollectivePredict_AgreementBeatsLocalStrength(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	// Every node predicts t1; only the first also predicts t2, with the
	// same local strength.
	for _, n := range nodes {
		wirePrediction(t, n, "q", "t1")
	}
	wirePrediction(t, nodes[0], "q", "t2")

	// Locally on the first node the two targets are indistinguishable.
	local := nodes[0].Memory().QueryPredictions([]string{"q"})
	assert.InDelta(t, local["t1"], local["t2"], 1e-9)

	p := NewCollectivePredictor(nodes, nil, nil)
	got, err := p.Predict(context.Background(), "q")
	require.NoError(t, err)

	var total float64
	for _, v := range got {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, got["t1"], got["t2"])
	assert.Greater(t, got["t1"], 0.75, "three-node agreement dominates the ensemble")
}

func TestCollectivePredict_SkipsNodesWithoutConcept(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	wirePrediction(t, nodes[0], "q", "t")
	// The other two nodes never learn q and contribute nothing.

	p := NewCollectivePredictor(nodes, nil, nil)
	got, err := p.Predict(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got["t"], 1e-9)
	assert.Empty(t, nodes[1].Memory().ActivePattern())
}

func TestCollectivePredict_UnknownConceptEverywhere(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 2)

	p := NewCollectivePredictor(nodes, nil, nil)
	got, err := p.Predict(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectivePredict_SynchronyScalesUniformly(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 2)
	for _, n := range nodes {
		wirePrediction(t, n, "q", "t")
	}
	sync := NewPhaseSynchronizer(nodes, 0, nil)

	p := NewCollectivePredictor(nodes, sync, nil)
	got, err := p.Predict(context.Background(), "q")
	require.NoError(t, err)

	// Synchrony scales every contribution alike, so the normalized map
	// still sums to 1.
	var total float64
	for _, v := range got {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestCollectivePredict_Cancelled(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewCollectivePredictor(nodes, nil, nil)
	_, err := p.Predict(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTop_OrdersByStrengthThenID(t *testing.T) {
	preds := map[string]float64{"b": 0.2, "a": 0.5, "c": 0.2, "d": 0.1}
	assert.Equal(t, []string{"a", "b", "c"}, Top(preds, 3))
	assert.Equal(t, []string{"a", "b", "c", "d"}, Top(preds, 0))
}
