package network

import (
	"math"
	"sort"
	"sync"

	"github.com/fyrsmithlabs/emergent/internal/memory"
)

// NodeConfig configures one network participant.
type NodeConfig struct {
	// ID identifies the node. Defaults to the memory instance's id.
	ID string

	// Memory is the node's exclusively owned memory instance. Required.
	Memory *memory.Instance

	// Phase is the oscillator's starting phase in [0, 2π).
	Phase float64

	// Frequency is the oscillator's natural frequency in rad/s.
	Frequency float64

	// Coupling is the oscillator's coupling strength toward its
	// neighbors.
	Coupling float64
}

// NodeState wraps one memory instance with the oscillator and consensus
// bookkeeping that make it a network participant. The oscillator state is
// guarded separately from the memory: phase updates never contend with
// activation traffic.
type NodeState struct {
	id  string
	mem *memory.Instance

	mu        sync.Mutex
	phase     float64
	frequency float64
	coupling  float64
	shared    map[string]struct{}
	pending   map[string]int
}

// NewNode creates a node around an existing memory instance.
func NewNode(cfg NodeConfig) *NodeState {
	if cfg.ID == "" && cfg.Memory != nil {
		cfg.ID = cfg.Memory.ID()
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = 1.0
	}
	if cfg.Coupling == 0 {
		cfg.Coupling = 0.5
	}
	return &NodeState{
		id:        cfg.ID,
		mem:       cfg.Memory,
		phase:     wrapPhase(cfg.Phase),
		frequency: cfg.Frequency,
		coupling:  cfg.Coupling,
		shared:    make(map[string]struct{}),
		pending:   make(map[string]int),
	}
}

// ID returns the node id.
func (n *NodeState) ID() string { return n.id }

// Memory returns the node's memory instance.
func (n *NodeState) Memory() *memory.Instance { return n.mem }

// Phase returns the oscillator phase in [0, 2π).
func (n *NodeState) Phase() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.phase
}

func (n *NodeState) setPhase(p float64) {
	n.mu.Lock()
	n.phase = wrapPhase(p)
	n.mu.Unlock()
}

// Frequency returns the oscillator's natural frequency.
func (n *NodeState) Frequency() float64 { return n.frequency }

// Coupling returns the oscillator's coupling strength.
func (n *NodeState) Coupling() float64 { return n.coupling }

// SharedConcepts returns the ids admitted by consensus on this node,
// sorted for determinism.
func (n *NodeState) SharedConcepts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.shared))
	for id := range n.shared {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasShared reports whether the concept id was admitted by consensus on
// this node.
func (n *NodeState) HasShared(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.shared[id]
	return ok
}

func (n *NodeState) markShared(id string) {
	n.mu.Lock()
	n.shared[id] = struct{}{}
	n.mu.Unlock()
}

// PendingVotes returns the current vote tally for a proposal id, 0 when
// unknown.
func (n *NodeState) PendingVotes(proposalID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending[proposalID]
}

func (n *NodeState) recordTally(proposalID string, votes int) {
	n.mu.Lock()
	n.pending[proposalID] = votes
	n.mu.Unlock()
}

func (n *NodeState) clearTally(proposalID string) {
	n.mu.Lock()
	delete(n.pending, proposalID)
	n.mu.Unlock()
}

// wrapPhase folds p into [0, 2π).
func wrapPhase(p float64) float64 {
	p = math.Mod(p, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	return p
}
