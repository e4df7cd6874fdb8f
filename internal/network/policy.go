package network

import (
	"context"
	"errors"
	"fmt"
)

// Validation errors returned by admission policies. A validation error is
// a "no" vote, not a fault.
var (
	// ErrUnknownConstituent means a composed proposal references a
	// constituent the validating node does not know.
	ErrUnknownConstituent = errors.New("constituent not known locally")

	// ErrIncoherent means the proposal's constituents are too weakly
	// associated on the validating node to accept.
	ErrIncoherent = errors.New("constituents below coherence floor")

	// ErrDuplicateContent means the validating node already holds a
	// concept with identical content.
	ErrDuplicateContent = errors.New("duplicate concept content")
)

// Proposal is a request to admit one concept network-wide.
type Proposal struct {
	// ID identifies the proposal itself.
	ID string `json:"id"`

	// ProposerID is the proposing node.
	ProposerID string `json:"proposer_id"`

	// ConceptID is the id the concept will carry on every committing
	// node.
	ConceptID string `json:"concept_id"`

	// Content is the concept's textual payload.
	Content string `json:"content"`

	// Constituents is non-empty for composed proposals.
	Constituents []string `json:"constituents,omitempty"`
}

// AdmissionPolicy decides whether a validating node accepts a proposal.
// The default rules are deliberately simple, inspectable heuristics;
// alternative policies can be substituted without touching the
// coordinator.
type AdmissionPolicy interface {
	// Validate returns nil to vote yes, or an error explaining the no
	// vote.
	Validate(ctx context.Context, node *NodeState, prop Proposal) error
}

// DefaultPolicy implements the reference admission rules: constituents
// must exist locally, composed proposals must clear a coherence floor,
// and content must not duplicate an existing local concept.
//
// The coherence floor trades novelty for groundedness: a composition
// whose parts share no local associations is rejected as too unrelated to
// be locally coherent.
type DefaultPolicy struct {
	// CoherenceFloor is the minimum summed pairwise association weight
	// among constituents. Default 0.1.
	CoherenceFloor float64
}

// NewDefaultPolicy returns the reference policy.
func NewDefaultPolicy() *DefaultPolicy {
	return &DefaultPolicy{CoherenceFloor: 0.1}
}

// Validate applies the three reference rules in order.
func (p *DefaultPolicy) Validate(ctx context.Context, node *NodeState, prop Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mem := node.Memory()
	for _, cid := range prop.Constituents {
		if !mem.HasConcept(cid) {
			return fmt.Errorf("%w: %s", ErrUnknownConstituent, cid)
		}
	}

	if len(prop.Constituents) >= 2 {
		coherence := mem.PairwiseCoherence(prop.Constituents)
		if coherence < p.CoherenceFloor {
			return fmt.Errorf("%w: %.3f < %.3f", ErrIncoherent, coherence, p.CoherenceFloor)
		}
	}

	if mem.HasContent(prop.Content) {
		return ErrDuplicateContent
	}
	return nil
}
