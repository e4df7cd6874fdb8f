package memory

// Predictions generates the expectation map from the current active
// pattern. Each active concept projects strength along its outgoing
// associations as activation × weight × forward strength; a target's
// predicted strength is the maximum over contributing sources, not the
// sum. Predictions above the confidence floor are retained for later
// error scoring.
func (m *Instance) Predictions() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictLocked(m.activePatternLocked(), true)
}

// QueryPredictions generates the expectation map as if the given ids were
// the active pattern, using each concept's current activation. Unknown ids
// are skipped. The confident subset is retained for error scoring.
func (m *Instance) QueryPredictions(activeIDs []string) map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictLocked(activeIDs, true)
}

// predictLocked computes the prediction map for sources. When retain is
// set, predictions above the floor become the confident set scored by the
// next PredictionError call. Caller holds the lock.
func (m *Instance) predictLocked(sources []string, retain bool) map[string]float64 {
	preds := make(map[string]float64)
	contributors := make(map[string][]string)

	for _, sourceID := range sources {
		src, ok := m.concepts[sourceID]
		if !ok {
			continue
		}
		for targetID, a := range m.out[sourceID] {
			strength := src.Activation * a.Weight * a.ForwardStrength
			if strength > preds[targetID] {
				preds[targetID] = strength
			}
			contributors[targetID] = append(contributors[targetID], sourceID)
		}
	}

	if retain {
		confident := make(map[string]float64)
		by := make(map[string][]string)
		for targetID, strength := range preds {
			if strength > m.params.PredictionFloor {
				confident[targetID] = strength
				by[targetID] = contributors[targetID]
			}
		}
		m.lastPredicted = confident
		m.predictedBy = by
	}

	return preds
}

// PredictionError scores the retained confident predictions against what
// actually activated, as the Jaccard distance between the two sets (0 when
// both are empty). As a side effect every contributing association's
// prediction accuracy is folded toward the 0/1 hit outcome and the error
// value is appended to its bounded surprise history.
func (m *Instance) PredictionError(actual []string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	actualSet := make(map[string]struct{}, len(actual))
	for _, id := range actual {
		actualSet[id] = struct{}{}
	}

	if len(m.lastPredicted) == 0 && len(actualSet) == 0 {
		return 0
	}

	intersection := 0
	for id := range m.lastPredicted {
		if _, ok := actualSet[id]; ok {
			intersection++
		}
	}
	union := len(actualSet) + len(m.lastPredicted) - intersection
	errVal := 1 - float64(intersection)/float64(union)

	s := m.params.AccuracySmoothing
	for targetID := range m.lastPredicted {
		hit := 0.0
		if _, ok := actualSet[targetID]; ok {
			hit = 1.0
		}
		for _, sourceID := range m.predictedBy[targetID] {
			a := m.lookupAssocLocked(sourceID, targetID)
			if a == nil {
				continue
			}
			a.PredictionAccuracy = s*a.PredictionAccuracy + (1-s)*hit
			a.recordSurprise(errVal, m.params.SurpriseCapacity)
		}
	}

	m.recordErrorLocked(errVal)
	return errVal
}
