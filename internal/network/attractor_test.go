package network

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPattern(t *testing.T, node *NodeState, ids ...string) {
	t.Helper()
	for _, id := range ids {
		adoptAs(t, node, id, "content of "+id)
	}
}

func TestDistribute_RoundRobinAcrossNodes(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	seedPattern(t, nodes[0], "p-1", "p-2", "p-3", "p-4")

	d := NewAttractorDistributor(nodes, clk, nil, nil, nil)
	result, err := d.Distribute(context.Background(), nodes[0].ID(), []string{"p-1", "p-2", "p-3", "p-4"})
	require.NoError(t, err)

	assert.True(t, result.Distributed)
	assert.Equal(t, map[string]string{
		"p-1": nodes[0].ID(),
		"p-2": nodes[1].ID(),
		"p-3": nodes[2].ID(),
		"p-4": nodes[0].ID(),
	}, result.Assignments)

	// Every assigned concept fired on its node.
	assert.Contains(t, nodes[1].Memory().ActivePattern(), "p-2")
	assert.Contains(t, nodes[2].Memory().ActivePattern(), "p-3")

	// Ordered node pairs: (n1,n2)=2, (n1,n3)=2, (n2,n1)=2, (n2,n3)=1,
	// (n3,n1)=2, (n3,n2)=1.
	assert.Equal(t, 10, result.CrossAssociations)

	assert.Equal(t, []string{"p-1", "p-2", "p-3", "p-4"}, d.GlobalPattern())
}

func TestDistribute_WiresBothEndpointNodes(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 2)
	seedPattern(t, nodes[0], "p-1", "p-2")

	d := NewAttractorDistributor(nodes, clk, nil, nil, nil)
	_, err := d.Distribute(context.Background(), nodes[0].ID(), []string{"p-1", "p-2"})
	require.NoError(t, err)

	for _, n := range nodes {
		mem := n.Memory()
		require.True(t, mem.HasConcept("p-1"), "node %s", n.ID())
		require.True(t, mem.HasConcept("p-2"), "node %s", n.ID())

		forward, ok := mem.AssociationBetween("p-1", "p-2")
		require.True(t, ok)
		assert.GreaterOrEqual(t, forward.Weight, crossAssocWeight)
		assert.GreaterOrEqual(t, forward.ForwardStrength, crossAssocStrength)

		backward, ok := mem.AssociationBetween("p-2", "p-1")
		require.True(t, ok)
		assert.GreaterOrEqual(t, backward.Weight, crossAssocWeight)
	}
}

func TestDistribute_SingleNodeIsNotDistributed(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 1)
	seedPattern(t, nodes[0], "p-1", "p-2")

	d := NewAttractorDistributor(nodes, clk, nil, nil, nil)
	result, err := d.Distribute(context.Background(), nodes[0].ID(), []string{"p-1", "p-2"})
	require.NoError(t, err)

	assert.False(t, result.Distributed)
	assert.Zero(t, result.CrossAssociations)
}

func TestDistribute_DuplicateIdsCollapse(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 2)
	seedPattern(t, nodes[0], "p-1")

	d := NewAttractorDistributor(nodes, clk, nil, nil, nil)
	result, err := d.Distribute(context.Background(), nodes[0].ID(), []string{"p-1", "p-1", "p-1"})
	require.NoError(t, err)

	assert.Len(t, result.Assignments, 1)
	assert.False(t, result.Distributed)
}

func TestDistribute_UnknownConceptRejected(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 2)

	d := NewAttractorDistributor(nodes, clk, nil, nil, nil)
	_, err := d.Distribute(context.Background(), nodes[0].ID(), []string{"ghost"})
	assert.ErrorIs(t, err, ErrUnknownPatternConcept)
}

func TestDistribute_RecordsEmergenceEvent(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	seedPattern(t, nodes[0], "p-1", "p-2", "p-3")

	events := newEventLog()
	d := NewAttractorDistributor(nodes, clk, nil, events, nil)
	_, err := d.Distribute(context.Background(), nodes[0].ID(), []string{"p-1", "p-2", "p-3"})
	require.NoError(t, err)

	recorded := events.since(time.Time{})
	require.Len(t, recorded, 1)
	assert.Equal(t, EventDistributedAttractor, recorded[0].Type)
	assert.Equal(t, 3, recorded[0].Payload["pattern_size"])
	assert.Equal(t, 3, recorded[0].Payload["node_count"])
}

func TestDistribute_GlobalPatternGrowsByUnion(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 2)
	seedPattern(t, nodes[0], "p-1", "p-2", "p-3")

	d := NewAttractorDistributor(nodes, clk, nil, nil, nil)
	_, err := d.Distribute(context.Background(), nodes[0].ID(), []string{"p-1", "p-2"})
	require.NoError(t, err)
	_, err = d.Distribute(context.Background(), nodes[0].ID(), []string{"p-2", "p-3"})
	require.NoError(t, err)

	assert.Equal(t, []string{"p-1", "p-2", "p-3"}, d.GlobalPattern())
}
