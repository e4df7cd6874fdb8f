package network

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// CollectivePredictor merges per-node prediction maps into one ensemble
// prediction. Synchrony scales every contribution and cross-node
// agreement amplifies individual targets, so a prediction shared by
// independently reasoning nodes beats any single node's confidence.
type CollectivePredictor struct {
	nodes  map[string]*NodeState
	order  []string
	sync   *PhaseSynchronizer
	logger *zap.Logger
}

// NewCollectivePredictor creates a predictor over the node set. The
// synchronizer supplies the synchrony score; nil means no synchrony boost.
func NewCollectivePredictor(nodes []*NodeState, sync *PhaseSynchronizer, logger *zap.Logger) *CollectivePredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &CollectivePredictor{
		nodes:  make(map[string]*NodeState, len(nodes)),
		sync:   sync,
		logger: logger,
	}
	for _, n := range nodes {
		p.nodes[n.ID()] = n
		p.order = append(p.order, n.ID())
	}
	return p
}

// Predict activates the query concept on every node that knows it,
// gathers each node's local predictions, and merges them. Each node's
// contribution is scaled by 1 + 0.5×synchrony; each target is amplified
// by 1 + 2×(fraction of responding nodes that predicted it); the merged
// map is renormalized to sum to 1. An unknown concept yields an empty
// map.
func (p *CollectivePredictor) Predict(ctx context.Context, conceptID string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var synchrony float64
	if p.sync != nil {
		synchrony = p.sync.OrderParameter()
	}
	scale := 1 + 0.5*synchrony

	merged := make(map[string]float64)
	votes := make(map[string]int)
	responding := 0

	for _, id := range p.order {
		node := p.nodes[id]
		mem := node.Memory()
		if !mem.HasConcept(conceptID) {
			continue
		}
		responding++
		mem.Activate(conceptID, 1.0)
		for target, strength := range mem.QueryPredictions([]string{conceptID}) {
			merged[target] += strength * scale
			votes[target]++
		}
	}
	if responding == 0 || len(merged) == 0 {
		return map[string]float64{}, nil
	}

	var total float64
	for target := range merged {
		agreement := float64(votes[target]) / float64(responding)
		merged[target] *= 1 + 2*agreement
		total += merged[target]
	}
	for target := range merged {
		merged[target] /= total
	}

	p.logger.Debug("collective prediction",
		zap.String("concept_id", conceptID),
		zap.Int("responding_nodes", responding),
		zap.Int("targets", len(merged)),
		zap.Float64("synchrony", synchrony))
	return merged, nil
}

// Top returns the n strongest entries of a prediction map, strongest
// first with ties broken by id.
func Top(predictions map[string]float64, n int) []string {
	ids := make([]string, 0, len(predictions))
	for id := range predictions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if predictions[ids[i]] != predictions[ids[j]] {
			return predictions[ids[i]] > predictions[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n > 0 && n < len(ids) {
		ids = ids[:n]
	}
	return ids
}
