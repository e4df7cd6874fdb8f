package network

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/memory"
)

// Config configures a network over a set of pre-built nodes.
type Config struct {
	// Nodes are the participants. At least one is required for any
	// operation to succeed.
	Nodes []*NodeState

	// Policy is the admission policy for proposals. Nil selects
	// DefaultPolicy.
	Policy AdmissionPolicy

	// VoteTimeout bounds each validator during a proposal round.
	VoteTimeout time.Duration

	// SyncStep is the Kuramoto integration step.
	SyncStep time.Duration

	// Clock stamps emergence events. Nil selects the system clock.
	Clock memory.Clock

	// Logger receives structured network logs. Nil disables logging.
	Logger *zap.Logger
}

// Network is the facade over the multi-node layer. It owns the shared
// event log and global pattern and wires the four network components to
// the same node set.
type Network struct {
	nodes  []*NodeState
	byID   map[string]*NodeState
	events *eventLog
	global *globalPattern

	synchronizer *PhaseSynchronizer
	coordinator  *ConsensusCoordinator
	distributor  *AttractorDistributor
	predictor    *CollectivePredictor
}

// New assembles a network from the config.
func New(cfg Config) *Network {
	if cfg.Clock == nil {
		cfg.Clock = memory.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	events := newEventLog()
	global := newGlobalPattern()
	sync := NewPhaseSynchronizer(cfg.Nodes, cfg.SyncStep, cfg.Logger)

	n := &Network{
		nodes:        cfg.Nodes,
		byID:         make(map[string]*NodeState, len(cfg.Nodes)),
		events:       events,
		global:       global,
		synchronizer: sync,
		coordinator:  NewConsensusCoordinator(cfg.Nodes, cfg.Policy, cfg.VoteTimeout, cfg.Clock, global, events, cfg.Logger),
		distributor:  NewAttractorDistributor(cfg.Nodes, cfg.Clock, global, events, cfg.Logger),
		predictor:    NewCollectivePredictor(cfg.Nodes, sync, cfg.Logger),
	}
	for _, node := range cfg.Nodes {
		n.byID[node.ID()] = node
	}
	return n
}

// Nodes returns the participant list in construction order.
func (n *Network) Nodes() []*NodeState { return n.nodes }

// Node returns the node with the given id.
func (n *Network) Node(id string) (*NodeState, bool) {
	node, ok := n.byID[id]
	return node, ok
}

// Propose runs a consensus round for a concept originating on the named
// node.
func (n *Network) Propose(ctx context.Context, proposerID, content string, constituents []string) (ConsensusResult, error) {
	return n.coordinator.Propose(ctx, proposerID, content, constituents)
}

// Synchronize runs the coupled oscillators for the simulated duration and
// returns the synchrony score.
func (n *Network) Synchronize(ctx context.Context, duration time.Duration) (float64, error) {
	return n.synchronizer.Synchronize(ctx, duration)
}

// OrderParameter returns the current synchrony score without advancing
// the oscillators.
func (n *Network) OrderParameter() float64 {
	return n.synchronizer.OrderParameter()
}

// DistributeAttractor spreads a pattern held by the source node across
// the network.
func (n *Network) DistributeAttractor(ctx context.Context, sourceID string, pattern []string) (AttractorResult, error) {
	return n.distributor.Distribute(ctx, sourceID, pattern)
}

// CollectivePredict merges per-node predictions for the query concept.
func (n *Network) CollectivePredict(ctx context.Context, conceptID string) (map[string]float64, error) {
	return n.predictor.Predict(ctx, conceptID)
}

// GlobalPattern returns the accumulated network-wide pattern.
func (n *Network) GlobalPattern() []string {
	return n.global.snapshot()
}

// Events returns all emergence events at or after since.
func (n *Network) Events(since time.Time) []EmergenceEvent {
	return n.events.since(since)
}
