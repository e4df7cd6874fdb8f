package network

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/emergent/internal/memory"
	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// ProposalState is the lifecycle stage of a proposal.
type ProposalState string

const (
	StateProposed   ProposalState = "proposed"
	StateValidating ProposalState = "validating"
	StateCommitted  ProposalState = "committed"
	StateRejected   ProposalState = "rejected"
)

// defaultVoteTimeout bounds how long the coordinator waits on any single
// validator before counting its vote as no.
const defaultVoteTimeout = 2 * time.Second

// quorumFraction is the fraction of ALL nodes that must vote yes. The
// denominator always includes unreachable and timed-out nodes, so a
// partitioned network cannot commit with a minority.
const quorumFraction = 2.0 / 3.0

var (
	// ErrNoSuchNode means the named proposer is not part of the network.
	ErrNoSuchNode = errors.New("node not found")

	// ErrEmptyNetwork means the coordinator has no nodes.
	ErrEmptyNetwork = errors.New("network has no nodes")
)

// Vote records one node's decision on a proposal.
type Vote struct {
	NodeID string `json:"node_id"`
	Yes    bool   `json:"yes"`

	// Reason carries the rejection cause for a no vote.
	Reason string `json:"reason,omitempty"`
}

// ConsensusResult is the outcome of a full proposal round.
type ConsensusResult struct {
	Proposal Proposal      `json:"proposal"`
	State    ProposalState `json:"state"`
	Votes    []Vote        `json:"votes"`
	YesCount int           `json:"yes_count"`

	// Ratio is YesCount over the total node count.
	Ratio float64 `json:"ratio"`
}

// Committed reports whether the proposal reached quorum.
func (r ConsensusResult) Committed() bool { return r.State == StateCommitted }

// ConsensusCoordinator runs proposal rounds over the node set. A round is
// synchronous from the caller's view: the proposer creates the concept
// locally, every other node validates in parallel, and a 2/3 quorum of
// yes votes commits the concept onto each accepting node under the
// proposer's concept id.
type ConsensusCoordinator struct {
	nodes   map[string]*NodeState
	order   []string
	policy  AdmissionPolicy
	timeout time.Duration
	clock   memory.Clock
	global  *globalPattern
	events  *eventLog
	logger  *zap.Logger
}

// NewConsensusCoordinator creates a coordinator. A nil policy selects
// DefaultPolicy and a nil clock selects the system clock.
func NewConsensusCoordinator(nodes []*NodeState, policy AdmissionPolicy, timeout time.Duration, clock memory.Clock, global *globalPattern, events *eventLog, logger *zap.Logger) *ConsensusCoordinator {
	if policy == nil {
		policy = NewDefaultPolicy()
	}
	if timeout <= 0 {
		timeout = defaultVoteTimeout
	}
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
	c := &ConsensusCoordinator{
		nodes:   make(map[string]*NodeState, len(nodes)),
		policy:  policy,
		timeout: timeout,
		clock:   clock,
		global:  global,
		events:  events,
		logger:  logger,
	}
	for _, n := range nodes {
		c.nodes[n.ID()] = n
		c.order = append(c.order, n.ID())
	}
	return c
}

// Propose runs a full consensus round for a new concept originating on the
// proposer node. Composed proposals name constituent concept ids; atomic
// proposals leave constituents empty. Rejection is a normal terminal
// state, not an error: the concept stays local to the proposer.
func (c *ConsensusCoordinator) Propose(ctx context.Context, proposerID, content string, constituents []string) (ConsensusResult, error) {
	if len(c.nodes) == 0 {
		return ConsensusResult{}, ErrEmptyNetwork
	}
	proposer, ok := c.nodes[proposerID]
	if !ok {
		return ConsensusResult{}, fmt.Errorf("%w: %s", ErrNoSuchNode, proposerID)
	}

	// Composition needs at least two parts; a single constituent degrades
	// to an atomic proposal.
	if len(constituents) < 2 {
		constituents = nil
	}
	prop := Proposal{
		ID:           uuid.New().String(),
		ProposerID:   proposerID,
		Content:      content,
		Constituents: append([]string(nil), constituents...),
	}

	// The proposer materializes the concept before asking anyone else.
	// The resulting id is what every committing node will adopt, so the
	// concept is addressable by the same id network-wide.
	conceptID, err := c.createOnProposer(ctx, proposer, prop)
	if err != nil {
		return ConsensusResult{Proposal: prop, State: StateProposed}, fmt.Errorf("create proposal concept: %w", err)
	}
	prop.ConceptID = conceptID
	// Composition generates its own label, so validators and replicas see
	// exactly what the proposer holds.
	if concept, ok := proposer.Memory().Concept(conceptID); ok {
		prop.Content = concept.Content
	}

	votes := c.collectVotes(ctx, proposer, prop)

	yes := 0
	for _, v := range votes {
		if v.Yes {
			yes++
		}
	}
	ratio := float64(yes) / float64(len(c.nodes))

	result := ConsensusResult{
		Proposal: prop,
		Votes:    votes,
		YesCount: yes,
		Ratio:    ratio,
	}

	if ratio < quorumFraction {
		result.State = StateRejected
		proposer.clearTally(prop.ID)
		c.logger.Debug("proposal rejected",
			zap.String("proposal_id", prop.ID),
			zap.String("content", content),
			zap.Int("yes", yes),
			zap.Int("nodes", len(c.nodes)))
		return result, nil
	}

	result.State = StateCommitted
	c.commit(ctx, prop, votes)
	c.global.union([]string{prop.ConceptID})
	proposer.clearTally(prop.ID)

	c.events.append(EventConsensusConcept, c.clock.Now(), map[string]any{
		"proposal_id": prop.ID,
		"concept_id":  prop.ConceptID,
		"content":     content,
		"proposer":    proposerID,
		"yes_votes":   yes,
		"node_count":  len(c.nodes),
	})
	c.logger.Info("proposal committed",
		zap.String("proposal_id", prop.ID),
		zap.String("concept_id", prop.ConceptID),
		zap.Int("yes", yes),
		zap.Int("nodes", len(c.nodes)))
	return result, nil
}

// createOnProposer builds the concept on the proposing node and returns
// its id. Composed proposals go through vector composition so the concept
// carries a bound representation of its parts.
func (c *ConsensusCoordinator) createOnProposer(ctx context.Context, proposer *NodeState, prop Proposal) (string, error) {
	mem := proposer.Memory()
	if len(prop.Constituents) >= 2 {
		return mem.Compose(ctx, prop.Constituents, vsa.OpMerge)
	}
	return mem.Adopt(ctx, "", prop.Content, nil)
}

// collectVotes fans validation out to every non-proposer node. Each
// validator gets an independent timeout; a timeout or validation failure
// is a no vote. The proposer votes yes by construction.
func (c *ConsensusCoordinator) collectVotes(ctx context.Context, proposer *NodeState, prop Proposal) []Vote {
	votes := make([]Vote, len(c.order))
	g, gctx := errgroup.WithContext(ctx)

	for i, id := range c.order {
		if id == proposer.ID() {
			votes[i] = Vote{NodeID: id, Yes: true}
			continue
		}
		node := c.nodes[id]
		i := i
		g.Go(func() error {
			vctx, cancel := context.WithTimeout(gctx, c.timeout)
			defer cancel()
			if err := c.policy.Validate(vctx, node, prop); err != nil {
				votes[i] = Vote{NodeID: node.ID(), Reason: err.Error()}
				return nil
			}
			votes[i] = Vote{NodeID: node.ID(), Yes: true}
			return nil
		})
	}
	// Validators never return errors, only no votes.
	_ = g.Wait()

	tally := 0
	for _, v := range votes {
		if v.Yes {
			tally++
		}
	}
	proposer.recordTally(prop.ID, tally)
	return votes
}

// commit adopts the concept on every yes-voting node and marks it shared
// there. The proposer already holds the concept, so it only gets the
// shared mark. Adoption failures downgrade the node to non-committing but
// do not unwind the round.
func (c *ConsensusCoordinator) commit(ctx context.Context, prop Proposal, votes []Vote) {
	for _, v := range votes {
		if !v.Yes {
			continue
		}
		node := c.nodes[v.NodeID]
		if v.NodeID != prop.ProposerID {
			if _, err := node.Memory().Adopt(ctx, prop.ConceptID, prop.Content, prop.Constituents); err != nil {
				c.logger.Warn("commit adoption failed",
					zap.String("node_id", v.NodeID),
					zap.String("concept_id", prop.ConceptID),
					zap.Error(err))
				continue
			}
		}
		node.markShared(prop.ConceptID)
	}
}
