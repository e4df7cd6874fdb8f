package memory

import (
	"time"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// Concept is one unit of associative memory. Activation stays within
// [baseline, 1]; baseline is the resting floor the concept decays back to.
type Concept struct {
	// ID is the unique concept identifier (UUID, or a caller-supplied id
	// for concepts admitted by consensus).
	ID string `json:"id"`

	// Content is the textual payload.
	Content string `json:"content"`

	// Activation is the current excitation level in [0,1].
	Activation float64 `json:"activation"`

	// Baseline is the resting activation floor.
	Baseline float64 `json:"baseline"`

	// Threshold is the activation level at which the concept fires.
	Threshold float64 `json:"threshold"`

	// Refractory is the minimum interval between firings.
	Refractory time.Duration `json:"refractory"`

	// LastFired is when the concept last fired.
	LastFired time.Time `json:"last_fired"`

	// CoActivations counts co-firings with other concepts, keyed by
	// concept id.
	CoActivations map[string]int `json:"co_activations,omitempty"`

	// Constituents is non-empty only for composed concepts.
	Constituents []string `json:"constituents,omitempty"`

	// CompositionWeight records how strongly a composed concept binds to
	// its constituents.
	CompositionWeight float64 `json:"composition_weight,omitempty"`

	// SelfReferences counts how often this concept participated in a
	// self-model episode.
	SelfReferences int `json:"self_references"`

	// Meta marks self-modeling concepts.
	Meta bool `json:"meta"`

	// CreatedAt is the creation time.
	CreatedAt time.Time `json:"created_at"`

	// ConsolidationStrength accumulates dream-replay consolidation.
	ConsolidationStrength float64 `json:"consolidation_strength"`

	// ReplayCount counts dream replays involving this concept.
	ReplayCount int `json:"replay_count"`

	// Metadata carries caller-supplied annotations from learning input.
	Metadata map[string]string `json:"metadata,omitempty"`

	// Vector is the concept's semantic vector, lazily initialized when
	// composition or similarity first needs it.
	Vector vsa.Vector `json:"vector,omitempty"`
}

// Association is a directed edge from Source to Target. A bidirectional
// relation is two Associations. Weight only grows, through co-activation
// or dream consolidation, and is clamped to 1.
type Association struct {
	// Source and Target are concept ids; direction matters.
	Source string `json:"source"`
	Target string `json:"target"`

	// Weight is the Hebbian strength in [0,1].
	Weight float64 `json:"weight"`

	// ForwardStrength and BackwardStrength capture temporal asymmetry.
	ForwardStrength  float64 `json:"forward_strength"`
	BackwardStrength float64 `json:"backward_strength"`

	// PredictionAccuracy is an exponential moving average of hit rate.
	PredictionAccuracy float64 `json:"prediction_accuracy"`

	// Surprise is a bounded ring of recent prediction-error values.
	Surprise []float64 `json:"surprise,omitempty"`

	// surpriseHead is the ring write position.
	surpriseHead int

	// TemporalDelay is the smoothed firing delay from source to target.
	TemporalDelay time.Duration `json:"temporal_delay"`

	// Causality estimates how reliably source precedes target, in [0,1].
	Causality float64 `json:"causality"`
}

// recordSurprise appends an error value to the bounded surprise ring.
func (a *Association) recordSurprise(v float64, capacity int) {
	if capacity <= 0 {
		return
	}
	if len(a.Surprise) < capacity {
		a.Surprise = append(a.Surprise, v)
		return
	}
	a.Surprise[a.surpriseHead] = v
	a.surpriseHead = (a.surpriseHead + 1) % capacity
}

// FireRecord is one activation-history entry.
type FireRecord struct {
	ConceptID  string    `json:"concept_id"`
	Activation float64   `json:"activation"`
	FiredAt    time.Time `json:"fired_at"`
}

// clamp01 bounds v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
