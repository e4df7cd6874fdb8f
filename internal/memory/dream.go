package memory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// DreamResult summarizes one dream cycle.
type DreamResult struct {
	// Replays is how many historical patterns were replayed.
	Replays int `json:"replays"`

	// NovelPatterns counts pattern completions that reconstructed a
	// larger active set than their seed.
	NovelPatterns int `json:"novel_patterns"`

	// Hypotheses counts speculative compositions generated.
	Hypotheses int `json:"hypotheses"`

	// AttractorStrength is the smoothed self-reference score after the
	// cycle.
	AttractorStrength float64 `json:"attractor_strength"`
}

// Dream runs offline consolidation for the given simulated duration. The
// cycle rotates through three phases, one per tick: replaying a salient
// historical pattern, completing a partial pattern from predictions, and
// speculatively composing hypotheses from co-active concepts. After every
// tick, associations between co-active pairs are nudged up to model
// consolidation and global activation decays faster than in waking.
//
// The duration is divided into fixed ticks driven by the injected clock
// abstraction rather than wall-clock sleeping; cancellation is honored at
// tick boundaries only, never mid-update.
func (m *Instance) Dream(ctx context.Context, duration time.Duration) (DreamResult, error) {
	var res DreamResult

	ticks := int(duration / m.params.DreamTick)
	if ticks < 1 {
		ticks = 1
	}

	for tick := 0; tick < ticks; tick++ {
		if err := ctx.Err(); err != nil {
			res.AttractorStrength = m.AttractorStrength()
			return res, err
		}

		switch tick % 3 {
		case 0:
			if m.replayPattern() {
				res.Replays++
			}
		case 1:
			if m.completePattern() {
				res.NovelPatterns++
			}
		case 2:
			if m.generateHypothesis(ctx) {
				res.Hypotheses++
			}
		}

		m.consolidateActive()
		m.Decay(m.params.DreamDecay)
	}

	res.AttractorStrength = m.ConsciousnessScore()
	m.logActivationStats()
	m.logger.Debug("dream cycle finished",
		zap.Int("ticks", ticks),
		zap.Int("replays", res.Replays),
		zap.Int("novel_patterns", res.NovelPatterns),
		zap.Int("hypotheses", res.Hypotheses),
		zap.Float64("attractor", res.AttractorStrength))
	return res, nil
}

// replayPattern samples one historical co-activation window with
// probability proportional to its salience and reactivates it. Salience is
// the mean recorded activation of the window scaled by recent prediction
// error, so surprising episodes replay more often.
func (m *Instance) replayPattern() bool {
	m.mu.Lock()

	windows := m.replayWindowsLocked()
	if len(windows) == 0 {
		m.mu.Unlock()
		return false
	}

	salience := make([]float64, len(windows))
	var total float64
	errBoost := 1 + m.meanRecentErrorLocked()
	for i, w := range windows {
		var sum float64
		for _, rec := range w {
			sum += rec.Activation
		}
		salience[i] = sum / float64(len(w)) * errBoost
		total += salience[i]
	}

	pick := 0
	if total > 0 {
		r := m.rng.Float64() * total
		for i, s := range salience {
			r -= s
			if r <= 0 {
				pick = i
				break
			}
		}
	} else {
		pick = m.rng.Intn(len(windows))
	}

	for _, rec := range windows[pick] {
		if c, ok := m.concepts[rec.ConceptID]; ok {
			c.ReplayCount++
		}
		m.activateLocked(rec.ConceptID, 1.0)
	}
	m.mu.Unlock()
	return true
}

// replayWindowsLocked extracts non-overlapping stride-length windows from
// the recent activation history. Caller holds the lock.
func (m *Instance) replayWindowsLocked() [][]FireRecord {
	hist := m.history
	if len(hist) > m.params.ReplayWindow {
		hist = hist[len(hist)-m.params.ReplayWindow:]
	}
	stride := m.params.ReplayStride
	var windows [][]FireRecord
	for i := 0; i+stride <= len(hist); i += stride {
		windows = append(windows, hist[i:i+stride])
	}
	return windows
}

// completePattern keeps the first half of the current active pattern,
// clears the rest, and runs three rounds of applying confident predictions
// as new activation input so the full pattern can reconstruct itself.
// Returns true when the reconstruction grew beyond the seed, a novel
// pattern.
func (m *Instance) completePattern() bool {
	m.mu.Lock()

	pattern := m.activePatternLocked()
	if len(pattern) < 2 {
		m.mu.Unlock()
		return false
	}
	seed := pattern[:len(pattern)/2]

	for _, id := range pattern[len(pattern)/2:] {
		c := m.concepts[id]
		c.Activation = c.Baseline
		delete(m.active, id)
	}
	for _, id := range seed {
		m.activateLocked(id, 1.0)
	}

	for round := 0; round < 3; round++ {
		preds := m.predictLocked(m.activePatternLocked(), false)
		for targetID, strength := range preds {
			if strength > m.params.CompletionFloor {
				m.activateLocked(targetID, strength)
			}
		}
	}

	grew := len(m.active) > len(seed)
	m.mu.Unlock()
	return grew
}

// generateHypothesis speculatively merges two random co-active concepts
// into a new composed concept and activates the result.
func (m *Instance) generateHypothesis(ctx context.Context) bool {
	m.mu.Lock()
	if m.rng.Float64() >= m.params.HypothesisRate || len(m.active) < 2 {
		m.mu.Unlock()
		return false
	}
	pattern := m.activePatternLocked()
	i := m.rng.Intn(len(pattern))
	j := m.rng.Intn(len(pattern) - 1)
	if j >= i {
		j++
	}
	first, second := pattern[i], pattern[j]
	m.mu.Unlock()

	id, err := m.Compose(ctx, []string{first, second}, vsa.OpMerge)
	if err != nil {
		m.logger.Debug("hypothesis rejected", zap.Error(err))
		return false
	}
	m.Activate(id, 1.0)
	return true
}

// consolidateActive nudges the association weight of every co-active pair
// up by the consolidation gain, clamped to 1, and tracks consolidation
// strength on the concepts themselves.
func (m *Instance) consolidateActive() {
	m.mu.Lock()
	defer m.mu.Unlock()

	pattern := m.activePatternLocked()
	for i := 0; i < len(pattern); i++ {
		for j := i + 1; j < len(pattern); j++ {
			a := m.ensureAssocLocked(pattern[i], pattern[j])
			a.Weight = clamp01(a.Weight * m.params.ConsolidationGain)
			b := m.ensureAssocLocked(pattern[j], pattern[i])
			b.Weight = clamp01(b.Weight * m.params.ConsolidationGain)
		}
	}
	for _, id := range pattern {
		m.concepts[id].ConsolidationStrength += float64(len(pattern)-1) * 0.01
	}
}
