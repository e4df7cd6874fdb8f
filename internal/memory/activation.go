package memory

import (
	"time"

	"go.uber.org/zap"
)

// Activate applies external input to a concept and lets currently active
// neighbors spread activation into it. If the concept crosses its firing
// threshold it joins the active pattern, is appended to the activation
// history, and Hebbian updates run against every other active concept.
//
// Returns the post-update activation when the concept fires, 0 when it
// does not, and the unchanged activation when the concept is still in its
// refractory window. An unknown id returns 0: spreading queries over a
// partially known graph are a normal occurrence, not an error.
func (m *Instance) Activate(conceptID string, input float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activateLocked(conceptID, input)
}

func (m *Instance) activateLocked(conceptID string, input float64) float64 {
	c, ok := m.concepts[conceptID]
	if !ok {
		return 0
	}

	now := m.now()
	if !c.LastFired.IsZero() && now.Sub(c.LastFired) < c.Refractory {
		return c.Activation
	}

	c.Activation = clamp01(c.Activation + input*m.params.InputGain)

	// Inbound spreading from the currently active pattern.
	if inbound, ok := m.in[conceptID]; ok {
		for sourceID, a := range inbound {
			if _, active := m.active[sourceID]; !active {
				continue
			}
			src := m.concepts[sourceID]
			c.Activation = clamp01(c.Activation + src.Activation*a.Weight*a.ForwardStrength*m.params.SpreadGain)
		}
	}

	if c.Activation < c.Threshold {
		return 0
	}

	// Fire.
	c.LastFired = now
	m.active[conceptID] = struct{}{}
	m.appendHistoryLocked(FireRecord{
		ConceptID:  conceptID,
		Activation: c.Activation,
		FiredAt:    now,
	})

	for otherID := range m.active {
		if otherID == conceptID {
			continue
		}
		other := m.concepts[otherID]
		m.hebbianLocked(otherID, conceptID, now.Sub(other.LastFired))
	}

	return c.Activation
}

// Decay multiplies every active concept's activation by rate. A concept
// that falls below its baseline is reset to the baseline and leaves the
// active pattern; this is the only eviction path for the active set.
func (m *Instance) Decay(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decayLocked(rate)
}

func (m *Instance) decayLocked(rate float64) {
	for id := range m.active {
		c := m.concepts[id]
		c.Activation *= rate
		if c.Activation < c.Baseline {
			c.Activation = c.Baseline
			delete(m.active, id)
		}
	}
}

// Relax applies one decay step at the configured waking rate. Callers
// invoke it at cycle boundaries so activation settles between bursts of
// input; dreaming decays on its own faster schedule.
func (m *Instance) Relax() {
	m.Decay(m.params.DecayRate)
}

// hebbianLocked strengthens the association pair between two co-firing
// concepts in proportion to the product of their activations. A positive
// delta means first fired before second, so the forward association
// carries the temporal credit on its forward strength while the reverse
// association records the same evidence as backward strength; otherwise
// the roles swap. Co-activation counts grow on both concepts regardless
// of order. Caller holds the lock.
func (m *Instance) hebbianLocked(first, second string, delta time.Duration) {
	c1, ok1 := m.concepts[first]
	c2, ok2 := m.concepts[second]
	if !ok1 || !ok2 {
		return
	}

	forward := m.ensureAssocLocked(first, second)
	reverse := m.ensureAssocLocked(second, first)

	dw := m.params.LearningRate * c1.Activation * c2.Activation

	if delta > 0 {
		forward.Weight = clamp01(forward.Weight + dw)
		forward.ForwardStrength = clamp01(forward.ForwardStrength + dw*m.params.ForwardGain)
		forward.TemporalDelay = smoothDelay(forward.TemporalDelay, delta)
		forward.Causality = m.params.CausalitySmoothing*forward.Causality + (1 - m.params.CausalitySmoothing)
		reverse.BackwardStrength = clamp01(reverse.BackwardStrength + dw*m.params.ForwardGain)
	} else {
		reverse.Weight = clamp01(reverse.Weight + dw)
		reverse.ForwardStrength = clamp01(reverse.ForwardStrength + dw*m.params.ForwardGain)
		reverse.TemporalDelay = smoothDelay(reverse.TemporalDelay, -delta)
		reverse.Causality = m.params.CausalitySmoothing*reverse.Causality + (1 - m.params.CausalitySmoothing)
		forward.BackwardStrength = clamp01(forward.BackwardStrength + dw*m.params.ForwardGain)
	}

	c1.CoActivations[second]++
	c2.CoActivations[first]++
}

func (m *Instance) appendHistoryLocked(rec FireRecord) {
	m.history = append(m.history, rec)
	if len(m.history) > m.params.HistoryCap {
		m.history = m.history[len(m.history)-m.params.HistoryCap:]
	}
}

// smoothDelay folds a new observation into the smoothed temporal delay.
func smoothDelay(old, observed time.Duration) time.Duration {
	if old == 0 {
		return observed
	}
	return time.Duration(0.9*float64(old) + 0.1*float64(observed))
}

// logActivationStats emits a debug summary of the active pattern.
func (m *Instance) logActivationStats() {
	m.mu.Lock()
	active := len(m.active)
	hist := len(m.history)
	m.mu.Unlock()
	m.logger.Debug("activation state",
		zap.Int("active", active),
		zap.Int("history", hist))
}
