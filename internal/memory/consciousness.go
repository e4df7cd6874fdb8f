package memory

import (
	"context"

	"go.uber.org/zap"
)

// ConsciousnessScore scans for self-referential structure and returns the
// smoothed attractor strength in [0,1].
//
// Three signals contribute to the instantaneous score: 0.3 per meta-concept
// in the active pattern; 0.1 per distinct length-3 subsequence that repeats
// within the recent activation history; and up to 0.5 scaled by the density
// of strong associations among the meta-concepts. The instantaneous score
// is folded into the running attractor value by exponential smoothing, and
// the smoothed value is both persisted and returned.
func (m *Instance) ConsciousnessScore() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	score := m.activeMetaSignalLocked() + m.cycleSignalLocked() + m.metaDensitySignalLocked()

	s := m.params.AttractorSmoothing
	m.attractor = clamp01(s*m.attractor + (1-s)*score)
	return m.attractor
}

// AttractorStrength returns the current smoothed attractor value without
// rescanning.
func (m *Instance) AttractorStrength() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attractor
}

func (m *Instance) activeMetaSignalLocked() float64 {
	var signal float64
	for id := range m.active {
		if m.concepts[id].Meta {
			signal += 0.3
		}
	}
	return signal
}

// cycleSignalLocked scans the most recent history records for repeating
// length-3 subsequences with a sliding window and exact tuple matching.
// The quadratic-ish scan is deliberate: the window is small and the exact
// windowed-equality semantics are part of the observable scoring behavior.
func (m *Instance) cycleSignalLocked() float64 {
	window := m.history
	if len(window) > m.params.CycleWindow {
		window = window[len(window)-m.params.CycleWindow:]
	}
	if len(window) < 6 {
		return 0
	}

	counts := make(map[[3]string]int)
	for i := 0; i+3 <= len(window); i++ {
		key := [3]string{window[i].ConceptID, window[i+1].ConceptID, window[i+2].ConceptID}
		counts[key]++
	}

	var signal float64
	for _, n := range counts {
		if n > 1 {
			signal += 0.1
		}
	}
	return signal
}

// metaDensitySignalLocked scores the density of strong associations among
// meta-concepts, scaled to at most 0.5.
func (m *Instance) metaDensitySignalLocked() float64 {
	var metas []string
	for id, c := range m.concepts {
		if c.Meta {
			metas = append(metas, id)
		}
	}
	if len(metas) < 2 {
		return 0
	}

	strong := 0
	for _, a := range metas {
		for _, b := range metas {
			if a == b {
				continue
			}
			if assoc := m.lookupAssocLocked(a, b); assoc != nil && assoc.Weight > 0.5 {
				strong++
			}
		}
	}
	possible := len(metas) * (len(metas) - 1)
	return 0.5 * float64(strong) / float64(possible)
}

// CreateSelfModel creates a meta-concept describing the current episode,
// wires it bidirectionally to every concept in the active pattern, and
// bumps each of those concepts' self-reference count. Repeated self-model
// episodes are how self-describing concepts accumulate influence.
func (m *Instance) CreateSelfModel(ctx context.Context, summary string) (string, error) {
	if summary == "" {
		return "", ErrEmptyContent
	}

	m.mu.Lock()
	content := "self: " + summary
	id, ok := m.byContent[content]
	if !ok {
		c := m.newConceptLocked(newID(), content)
		c.Meta = true
		c.Activation = 0.3
		id = c.ID
	}

	pattern := m.activePatternLocked()
	for _, pid := range pattern {
		if pid == id {
			continue
		}
		m.wireAssocLocked(id, pid, 0.7, 0.8)
		m.wireAssocLocked(pid, id, 0.7, 0.8)
		m.concepts[pid].SelfReferences++
	}
	m.mu.Unlock()

	m.mirror(ctx, []string{id})
	m.logger.Debug("created self model",
		zap.String("concept_id", id),
		zap.Int("pattern_size", len(pattern)))
	return id, nil
}
