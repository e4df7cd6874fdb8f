package network

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/emergent/internal/memory"
)

func newTestNetwork(t *testing.T, clk *memory.ManualClock, n int) []*NodeState {
	t.Helper()
	nodes := make([]*NodeState, n)
	for i := range nodes {
		nodes[i] = newTestNode(t, string(rune('a'+i))+"-node", int64(i+1), clk, 0)
	}
	return nodes
}

func seedConstituents(t *testing.T, nodes []*NodeState) {
	t.Helper()
	for _, n := range nodes {
		adoptAs(t, n, "c-a", "alpha")
		adoptAs(t, n, "c-b", "beta")
	}
}

func TestPropose_ComposedCommitsOnUnanimousYes(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	seedConstituents(t, nodes)
	seedCoherence(t, nodes[1], clk, "c-a", "c-b")
	seedCoherence(t, nodes[2], clk, "c-a", "c-b")

	coord := NewConsensusCoordinator(nodes, nil, 0, clk, nil, nil, nil)
	result, err := coord.Propose(context.Background(), nodes[0].ID(), "", []string{"c-a", "c-b"})
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, result.State)
	assert.Equal(t, 3, result.YesCount)
	assert.InDelta(t, 1.0, result.Ratio, 1e-9)

	// Composition generated the canonical content on the proposer.
	assert.Equal(t, "alpha+beta", result.Proposal.Content)

	for _, n := range nodes {
		concept, ok := n.Memory().Concept(result.Proposal.ConceptID)
		require.True(t, ok, "node %s missing committed concept", n.ID())
		assert.Equal(t, "alpha+beta", concept.Content)
		assert.Equal(t, []string{"c-a", "c-b"}, concept.Constituents)
		assert.True(t, n.HasShared(result.Proposal.ConceptID))
	}

	// Tallies are transient per-round state.
	assert.Zero(t, nodes[0].PendingVotes(result.Proposal.ID))
}

func TestPropose_RejectedStaysLocalToProposer(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	seedConstituents(t, nodes)
	// No coherence seeding: both validators vote no.

	events := newEventLog()
	coord := NewConsensusCoordinator(nodes, nil, 0, clk, nil, events, nil)
	result, err := coord.Propose(context.Background(), nodes[0].ID(), "", []string{"c-a", "c-b"})
	require.NoError(t, err)

	assert.Equal(t, StateRejected, result.State)
	assert.Equal(t, 1, result.YesCount)
	assert.False(t, result.Committed())

	assert.True(t, nodes[0].Memory().HasConcept(result.Proposal.ConceptID))
	assert.False(t, nodes[0].HasShared(result.Proposal.ConceptID))
	for _, n := range nodes[1:] {
		assert.False(t, n.Memory().HasConcept(result.Proposal.ConceptID))
	}
	assert.Empty(t, events.since(time.Time{}))

	for _, v := range result.Votes {
		if v.NodeID == nodes[0].ID() {
			continue
		}
		assert.False(t, v.Yes)
		assert.Contains(t, v.Reason, "coherence")
	}
}

func TestPropose_CommitsAtExactQuorum(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	seedConstituents(t, nodes)
	// Only one validator is coherent; with the proposer that is exactly
	// 2 of 3.
	seedCoherence(t, nodes[1], clk, "c-a", "c-b")

	events := newEventLog()
	coord := NewConsensusCoordinator(nodes, nil, 0, clk, nil, events, nil)
	result, err := coord.Propose(context.Background(), nodes[0].ID(), "", []string{"c-a", "c-b"})
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, result.State)
	assert.Equal(t, 2, result.YesCount)

	// The no-voting node neither adopts nor shares the concept.
	assert.False(t, nodes[2].Memory().HasConcept(result.Proposal.ConceptID))
	assert.False(t, nodes[2].HasShared(result.Proposal.ConceptID))
	assert.True(t, nodes[1].HasShared(result.Proposal.ConceptID))

	// A commit produces exactly one emergence event.
	logged := events.since(time.Time{})
	require.Len(t, logged, 1)
	assert.Equal(t, EventConsensusConcept, logged[0].Type)
}

func TestPropose_AtomicConceptNeedsNoConstituents(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)

	coord := NewConsensusCoordinator(nodes, nil, 0, clk, nil, nil, nil)
	result, err := coord.Propose(context.Background(), nodes[0].ID(), "gamma", nil)
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, result.State)
	for _, n := range nodes {
		concept, ok := n.Memory().Concept(result.Proposal.ConceptID)
		require.True(t, ok)
		assert.Equal(t, "gamma", concept.Content)
	}
}

func TestPropose_DuplicateContentVotesNo(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)
	adoptAs(t, nodes[1], "other-id", "gamma")
	adoptAs(t, nodes[2], "another-id", "gamma")

	coord := NewConsensusCoordinator(nodes, nil, 0, clk, nil, nil, nil)
	result, err := coord.Propose(context.Background(), nodes[0].ID(), "gamma", nil)
	require.NoError(t, err)

	assert.Equal(t, StateRejected, result.State)
	assert.Equal(t, 1, result.YesCount)
}

// stallPolicy never answers, forcing every validator into its timeout.
type stallPolicy struct{}

func (stallPolicy) Validate(ctx context.Context, _ *NodeState, _ Proposal) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPropose_TimeoutCountsAsNo(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 3)

	coord := NewConsensusCoordinator(nodes, stallPolicy{}, 20*time.Millisecond, clk, nil, nil, nil)
	result, err := coord.Propose(context.Background(), nodes[0].ID(), "gamma", nil)
	require.NoError(t, err)

	assert.Equal(t, StateRejected, result.State)
	assert.Equal(t, 1, result.YesCount, "only the proposer's implicit yes survives")
	assert.InDelta(t, 1.0/3.0, result.Ratio, 1e-9, "timed-out nodes stay in the denominator")
}

func TestPropose_UnknownProposer(t *testing.T) {
	clk := newTestClock()
	nodes := newTestNetwork(t, clk, 2)

	coord := NewConsensusCoordinator(nodes, nil, 0, clk, nil, nil, nil)
	_, err := coord.Propose(context.Background(), "ghost", "gamma", nil)
	assert.ErrorIs(t, err, ErrNoSuchNode)
}

func TestPropose_EmptyNetwork(t *testing.T) {
	coord := NewConsensusCoordinator(nil, nil, 0, newTestClock(), nil, nil, nil)
	_, err := coord.Propose(context.Background(), "n1", "gamma", nil)
	assert.ErrorIs(t, err, ErrEmptyNetwork)
}

func TestDefaultPolicy_Validation(t *testing.T) {
	clk := newTestClock()
	node := newTestNode(t, "n1", 1, clk, 0)
	adoptAs(t, node, "c-a", "alpha")
	adoptAs(t, node, "c-b", "beta")

	policy := NewDefaultPolicy()
	ctx := context.Background()

	err := policy.Validate(ctx, node, Proposal{Content: "x", Constituents: []string{"c-a", "missing"}})
	assert.ErrorIs(t, err, ErrUnknownConstituent)

	err = policy.Validate(ctx, node, Proposal{Content: "x", Constituents: []string{"c-a", "c-b"}})
	assert.ErrorIs(t, err, ErrIncoherent)

	err = policy.Validate(ctx, node, Proposal{Content: "alpha"})
	assert.ErrorIs(t, err, ErrDuplicateContent)

	assert.NoError(t, policy.Validate(ctx, node, Proposal{Content: "fresh"}))
}
