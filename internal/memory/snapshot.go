package memory

import (
	"time"
)

// Snapshot is a point-in-time copy of an instance's graph, suitable for
// handing to a persistence store. The engine never assumes durability
// between Save and Load; a snapshot is advisory state, not a write-ahead
// log.
type Snapshot struct {
	NodeID       string        `json:"node_id"`
	SavedAt      time.Time     `json:"saved_at"`
	Attractor    float64       `json:"attractor"`
	Concepts     []Concept     `json:"concepts"`
	Associations []Association `json:"associations"`
	ActiveIDs    []string      `json:"active_ids"`
	History      []FireRecord  `json:"history"`
}

// Snapshot returns a deep copy of the instance state.
func (m *Instance) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &Snapshot{
		NodeID:    m.id,
		SavedAt:   m.clock.Now(),
		Attractor: m.attractor,
		ActiveIDs: m.activePatternLocked(),
		History:   append([]FireRecord(nil), m.history...),
	}
	for _, c := range m.concepts {
		snap.Concepts = append(snap.Concepts, copyConcept(c))
	}
	for _, targets := range m.out {
		for _, a := range targets {
			cp := *a
			cp.Surprise = append([]float64(nil), a.Surprise...)
			snap.Associations = append(snap.Associations, cp)
		}
	}
	return snap
}

// Restore replaces the instance state with the snapshot contents.
// Associations referencing unknown concepts are dropped rather than
// rejected, so a partially persisted snapshot still restores to a valid,
// queryable graph.
func (m *Instance) Restore(snap *Snapshot) error {
	if snap == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.concepts = make(map[string]*Concept, len(snap.Concepts))
	m.byContent = make(map[string]string, len(snap.Concepts))
	m.out = make(map[string]map[string]*Association)
	m.in = make(map[string]map[string]*Association)
	m.active = make(map[string]struct{})
	m.history = append([]FireRecord(nil), snap.History...)
	m.attractor = snap.Attractor
	m.lastPredicted = nil
	m.predictedBy = nil

	for i := range snap.Concepts {
		c := copyConcept(&snap.Concepts[i])
		if c.CoActivations == nil {
			c.CoActivations = make(map[string]int)
		}
		m.concepts[c.ID] = &c
		m.byContent[c.Content] = c.ID
	}
	for i := range snap.Associations {
		a := snap.Associations[i]
		if _, ok := m.concepts[a.Source]; !ok {
			continue
		}
		if _, ok := m.concepts[a.Target]; !ok {
			continue
		}
		cp := a
		cp.Surprise = append([]float64(nil), a.Surprise...)
		if m.out[cp.Source] == nil {
			m.out[cp.Source] = make(map[string]*Association)
		}
		m.out[cp.Source][cp.Target] = &cp
		if m.in[cp.Target] == nil {
			m.in[cp.Target] = make(map[string]*Association)
		}
		m.in[cp.Target][cp.Source] = &cp
	}
	for _, id := range snap.ActiveIDs {
		if _, ok := m.concepts[id]; ok {
			m.active[id] = struct{}{}
		}
	}
	return nil
}
