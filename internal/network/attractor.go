package network

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/emergent/internal/memory"
)

// Cross-node association wiring parameters. Explicit wiring starts
// stronger than the co-activation default so distributed patterns survive
// decay between replays.
const (
	crossAssocWeight   = 0.6
	crossAssocStrength = 0.7

	// attractorInput is the activation injected on each assigned node.
	attractorInput = 1.0
)

// ErrUnknownPatternConcept means a pattern names a concept the source node
// does not hold.
var ErrUnknownPatternConcept = errors.New("pattern concept not on source node")

// AttractorResult reports one distribution round.
type AttractorResult struct {
	// Assignments maps concept id to its assigned node id.
	Assignments map[string]string `json:"assignments"`

	// CrossAssociations counts the cross-node association wirings
	// created, one per ordered node pair per concept pair.
	CrossAssociations int `json:"cross_associations"`

	// Distributed reports whether the pattern touched more than one
	// node.
	Distributed bool `json:"distributed"`
}

// AttractorDistributor spreads multi-concept patterns across the node set
// so that no single node holds the whole pattern, then wires the
// cross-node associations that let activation flow between the fragments.
type AttractorDistributor struct {
	nodes  map[string]*NodeState
	order  []string
	clock  memory.Clock
	global *globalPattern
	events *eventLog
	logger *zap.Logger
}

// NewAttractorDistributor creates a distributor over the node set.
func NewAttractorDistributor(nodes []*NodeState, clock memory.Clock, global *globalPattern, events *eventLog, logger *zap.Logger) *AttractorDistributor {
	if clock == nil {
		clock = memory.SystemClock{}
	}
	if global == nil {
		global = newGlobalPattern()
	}
	if events == nil {
		events = newEventLog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AttractorDistributor{
		nodes:  make(map[string]*NodeState, len(nodes)),
		clock:  clock,
		global: global,
		events: events,
		logger: logger,
	}
	for _, n := range nodes {
		d.nodes[n.ID()] = n
		d.order = append(d.order, n.ID())
	}
	return d
}

// Distribute assigns the pattern's concepts round-robin across nodes,
// activates each concept on its assigned node, and wires bidirectional
// associations between every pair of concepts on distinct nodes. The
// source node must hold every pattern concept; other nodes adopt missing
// concepts before wiring. The global pattern grows by union.
func (d *AttractorDistributor) Distribute(ctx context.Context, sourceID string, pattern []string) (AttractorResult, error) {
	if len(d.nodes) == 0 {
		return AttractorResult{}, ErrEmptyNetwork
	}
	source, ok := d.nodes[sourceID]
	if !ok {
		return AttractorResult{}, fmt.Errorf("%w: %s", ErrNoSuchNode, sourceID)
	}

	// Sorted ids plus a fixed node order make the assignment a pure
	// function of the inputs.
	ids := dedupeSorted(pattern)
	contents := make(map[string]string, len(ids))
	for _, id := range ids {
		concept, ok := source.Memory().Concept(id)
		if !ok {
			return AttractorResult{}, fmt.Errorf("%w: %s", ErrUnknownPatternConcept, id)
		}
		contents[id] = concept.Content
	}

	assignments := make(map[string]string, len(ids))
	perNode := make(map[string][]string, len(d.order))
	for i, id := range ids {
		nodeID := d.order[i%len(d.order)]
		assignments[id] = nodeID
		perNode[nodeID] = append(perNode[nodeID], id)
	}

	if err := d.activateAssigned(ctx, perNode, contents); err != nil {
		return AttractorResult{}, err
	}

	// Wiring serializes per node through each memory's own lock; only
	// the activation fan-out above runs concurrently.
	cross := d.wireAcrossNodes(ctx, perNode, contents)

	d.global.union(ids)

	touched := 0
	for _, assigned := range perNode {
		if len(assigned) > 0 {
			touched++
		}
	}
	result := AttractorResult{
		Assignments:       assignments,
		CrossAssociations: cross,
		Distributed:       touched > 1,
	}

	d.events.append(EventDistributedAttractor, d.clock.Now(), map[string]any{
		"pattern_size":       len(ids),
		"node_count":         touched,
		"cross_associations": cross,
		"source":             sourceID,
		"distributed":        result.Distributed,
	})
	d.logger.Info("distributed attractor",
		zap.Int("pattern_size", len(ids)),
		zap.Int("nodes", touched),
		zap.Int("cross_associations", cross))
	return result, nil
}

// GlobalPattern returns the accumulated network-wide pattern, sorted.
func (d *AttractorDistributor) GlobalPattern() []string {
	return d.global.snapshot()
}

// activateAssigned materializes and fires each concept on its assigned
// node. Nodes are disjoint, so the per-node work runs concurrently.
func (d *AttractorDistributor) activateAssigned(ctx context.Context, perNode map[string][]string, contents map[string]string) error {
	g, gctx := errgroup.WithContext(ctx)
	for nodeID, assigned := range perNode {
		node := d.nodes[nodeID]
		assigned := assigned
		g.Go(func() error {
			for _, id := range assigned {
				if err := d.ensureConcept(gctx, node, id, contents[id]); err != nil {
					return fmt.Errorf("node %s adopt %s: %w", node.ID(), id, err)
				}
				node.Memory().Activate(id, attractorInput)
			}
			return nil
		})
	}
	return g.Wait()
}

// wireAcrossNodes creates bidirectional associations between every
// concept pair split across distinct nodes, on both endpoints' nodes. A
// node wiring a foreign concept adopts it first so the association has
// two real endpoints locally.
func (d *AttractorDistributor) wireAcrossNodes(ctx context.Context, perNode map[string][]string, contents map[string]string) int {
	cross := 0
	for _, aID := range d.order {
		for _, bID := range d.order {
			if aID == bID {
				continue
			}
			a := d.nodes[aID]
			for _, ca := range perNode[aID] {
				for _, cb := range perNode[bID] {
					if err := d.ensureConcept(ctx, a, cb, contents[cb]); err != nil {
						d.logger.Warn("cross-wiring adoption failed",
							zap.String("node_id", aID),
							zap.String("concept_id", cb),
							zap.Error(err))
						continue
					}
					mem := a.Memory()
					if err := mem.WireAssociation(ca, cb, crossAssocWeight, crossAssocStrength); err != nil {
						continue
					}
					if err := mem.WireAssociation(cb, ca, crossAssocWeight, crossAssocStrength); err != nil {
						continue
					}
					cross++
				}
			}
		}
	}
	return cross
}

// ensureConcept adopts a concept onto a node when missing.
func (d *AttractorDistributor) ensureConcept(ctx context.Context, node *NodeState, id, content string) error {
	mem := node.Memory()
	if mem.HasConcept(id) {
		return nil
	}
	_, err := mem.Adopt(ctx, id, content, nil)
	if errors.Is(err, memory.ErrConceptExists) {
		return nil
	}
	return err
}

// dedupeSorted returns the unique ids in sorted order.
func dedupeSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
