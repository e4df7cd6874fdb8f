package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fireSequence drives the given concepts through repeated co-activation so
// the history holds enough records for replay windows.
func fireSequence(t *testing.T, m *Instance, clk *ManualClock, ids []string, rounds int) {
	t.Helper()
	for i := 0; i < rounds; i++ {
		for _, id := range ids {
			require.Greater(t, m.Activate(id, 1.0), 0.0)
			clk.Advance(150 * time.Millisecond)
		}
	}
}

func TestDream_ReplaysHistoricalPatterns(t *testing.T) {
	m, clk := newTestInstance(t, 1)
	ids := []string{adopt(t, m, "a"), adopt(t, m, "b"), adopt(t, m, "c")}
	fireSequence(t, m, clk, ids, 4)
	clk.Advance(time.Second)

	res, err := m.Dream(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Replays, 1)
	assert.GreaterOrEqual(t, res.AttractorStrength, 0.0)
	assert.LessOrEqual(t, res.AttractorStrength, 1.0)

	replayed := 0
	for _, id := range ids {
		c, _ := m.Concept(id)
		replayed += c.ReplayCount
	}
	assert.Greater(t, replayed, 0, "replay must touch historical concepts")
}

func TestDream_ConsolidatesCoActivePairs(t *testing.T) {
	m, clk := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	b := adopt(t, m, "b")
	fireSequence(t, m, clk, []string{a, b}, 3)
	clk.Advance(time.Second)

	before := maxAssocWeight(m, a, b)
	_, err := m.Dream(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)

	after := maxAssocWeight(m, a, b)
	assert.GreaterOrEqual(t, after, before, "consolidation never weakens associations")
}

func TestDream_EmptyHistoryIsHarmless(t *testing.T) {
	m, _ := newTestInstance(t, 1)

	res, err := m.Dream(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, res.Replays)
	assert.Zero(t, res.NovelPatterns)
}

func TestDream_HonorsCancellation(t *testing.T) {
	m, clk := newTestInstance(t, 1)
	ids := []string{adopt(t, m, "a"), adopt(t, m, "b")}
	fireSequence(t, m, clk, ids, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := m.Dream(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Replays, "cancellation before the first tick does no work")
}

func TestDream_DecaysFasterThanWaking(t *testing.T) {
	m, clk := newTestInstance(t, 1)
	a := adopt(t, m, "a")
	b := adopt(t, m, "b")
	fireSequence(t, m, clk, []string{a, b}, 2)
	clk.Advance(time.Second)

	// A long dream with sparse history decays everything back down to
	// baseline between replays.
	_, err := m.Dream(context.Background(), 200*time.Millisecond)
	require.NoError(t, err)

	ca, _ := m.Concept(a)
	assert.LessOrEqual(t, ca.Activation, 1.0)
	assert.GreaterOrEqual(t, ca.Activation, ca.Baseline)
}

func TestDream_PatternCompletionCanGrow(t *testing.T) {
	m, clk := newTestInstance(t, 2)

	// A tight clique: half the pattern strongly predicts the rest.
	ids := make([]string, 4)
	for i, name := range []string{"w", "x", "y", "z"} {
		ids[i] = adopt(t, m, name)
	}
	for _, src := range ids {
		for _, dst := range ids {
			if src != dst {
				m.wireAssocLocked(src, dst, 0.9, 0.9)
			}
		}
	}
	fireSequence(t, m, clk, ids, 3)
	clk.Advance(time.Second)

	res, err := m.Dream(context.Background(), 60*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.NovelPatterns, 0)
	assert.GreaterOrEqual(t, res.Replays, 1)
}
