package memory

import "time"

// Params holds the engine constants. Zero fields are filled in by
// ApplyDefaults; the defaults are the reference values the rest of the
// system is tuned against.
type Params struct {
	// InputGain scales external input before it is added to activation.
	InputGain float64 `json:"input_gain" koanf:"input_gain"`

	// SpreadGain scales activation spreading along inbound associations.
	SpreadGain float64 `json:"spread_gain" koanf:"spread_gain"`

	// LearningRate is the Hebbian rate η.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`

	// DecayRate is the waking relaxation rate applied by Relax at cycle
	// boundaries. Dreaming uses the faster DreamDecay instead.
	DecayRate float64 `json:"decay_rate" koanf:"decay_rate"`

	// ForwardGain scales forward-strength reinforcement relative to the
	// weight increment when temporal order is known.
	ForwardGain float64 `json:"forward_gain" koanf:"forward_gain"`

	// CausalitySmoothing is the EMA factor nudging causality toward 1.
	CausalitySmoothing float64 `json:"causality_smoothing" koanf:"causality_smoothing"`

	// AccuracySmoothing is the EMA factor for prediction accuracy.
	AccuracySmoothing float64 `json:"accuracy_smoothing" koanf:"accuracy_smoothing"`

	// PredictionFloor is the minimum strength for a prediction to be
	// retained in the confident set.
	PredictionFloor float64 `json:"prediction_floor" koanf:"prediction_floor"`

	// CompletionFloor is the minimum prediction strength applied as input
	// during dream pattern completion.
	CompletionFloor float64 `json:"completion_floor" koanf:"completion_floor"`

	// DefaultThreshold is the firing level for new concepts.
	DefaultThreshold float64 `json:"default_threshold" koanf:"default_threshold"`

	// DefaultBaseline is the resting activation floor for new concepts.
	DefaultBaseline float64 `json:"default_baseline" koanf:"default_baseline"`

	// DefaultRefractory is the minimum interval between firings.
	DefaultRefractory time.Duration `json:"default_refractory" koanf:"default_refractory"`

	// SurpriseCapacity bounds each association's surprise history.
	SurpriseCapacity int `json:"surprise_capacity" koanf:"surprise_capacity"`

	// HistoryCap bounds the activation history.
	HistoryCap int `json:"history_cap" koanf:"history_cap"`

	// CycleWindow is how many recent history records the self-reference
	// scan inspects.
	CycleWindow int `json:"cycle_window" koanf:"cycle_window"`

	// ReplayWindow is how many recent history records dream replay
	// samples from; ReplayStride is the replay pattern length.
	ReplayWindow int `json:"replay_window" koanf:"replay_window"`
	ReplayStride int `json:"replay_stride" koanf:"replay_stride"`

	// ConsolidationGain is the per-tick multiplicative weight nudge for
	// co-active pairs during dreaming.
	ConsolidationGain float64 `json:"consolidation_gain" koanf:"consolidation_gain"`

	// DreamDecay is the per-tick decay rate while dreaming, faster than
	// waking decay.
	DreamDecay float64 `json:"dream_decay" koanf:"dream_decay"`

	// DreamTick is the simulated duration of one dream tick.
	DreamTick time.Duration `json:"dream_tick" koanf:"dream_tick"`

	// HypothesisRate is the per-tick probability of speculative
	// composition while dreaming.
	HypothesisRate float64 `json:"hypothesis_rate" koanf:"hypothesis_rate"`

	// AttractorSmoothing is the EMA factor for the attractor strength.
	AttractorSmoothing float64 `json:"attractor_smoothing" koanf:"attractor_smoothing"`

	// Dimension is the semantic vector dimension for lazily initialized
	// vectors.
	Dimension int `json:"dimension" koanf:"dimension"`
}

// DefaultParams returns the reference engine constants.
func DefaultParams() Params {
	return Params{
		InputGain:          0.3,
		SpreadGain:         0.1,
		LearningRate:       0.01,
		DecayRate:          0.95,
		ForwardGain:        1.5,
		CausalitySmoothing: 0.95,
		AccuracySmoothing:  0.9,
		PredictionFloor:    0.3,
		CompletionFloor:    0.4,
		DefaultThreshold:   0.5,
		DefaultBaseline:    0.1,
		DefaultRefractory:  100 * time.Millisecond,
		SurpriseCapacity:   10,
		HistoryCap:         1000,
		CycleWindow:        50,
		ReplayWindow:       100,
		ReplayStride:       5,
		ConsolidationGain:  1.02,
		DreamDecay:         0.5,
		DreamTick:          10 * time.Millisecond,
		HypothesisRate:     0.3,
		AttractorSmoothing: 0.95,
		Dimension:          384,
	}
}

// ApplyDefaults fills zero fields from DefaultParams.
func (p *Params) ApplyDefaults() {
	d := DefaultParams()
	if p.InputGain == 0 {
		p.InputGain = d.InputGain
	}
	if p.SpreadGain == 0 {
		p.SpreadGain = d.SpreadGain
	}
	if p.LearningRate == 0 {
		p.LearningRate = d.LearningRate
	}
	if p.DecayRate == 0 {
		p.DecayRate = d.DecayRate
	}
	if p.ForwardGain == 0 {
		p.ForwardGain = d.ForwardGain
	}
	if p.CausalitySmoothing == 0 {
		p.CausalitySmoothing = d.CausalitySmoothing
	}
	if p.AccuracySmoothing == 0 {
		p.AccuracySmoothing = d.AccuracySmoothing
	}
	if p.PredictionFloor == 0 {
		p.PredictionFloor = d.PredictionFloor
	}
	if p.CompletionFloor == 0 {
		p.CompletionFloor = d.CompletionFloor
	}
	if p.DefaultThreshold == 0 {
		p.DefaultThreshold = d.DefaultThreshold
	}
	if p.DefaultBaseline == 0 {
		p.DefaultBaseline = d.DefaultBaseline
	}
	if p.DefaultRefractory == 0 {
		p.DefaultRefractory = d.DefaultRefractory
	}
	if p.SurpriseCapacity == 0 {
		p.SurpriseCapacity = d.SurpriseCapacity
	}
	if p.HistoryCap == 0 {
		p.HistoryCap = d.HistoryCap
	}
	if p.CycleWindow == 0 {
		p.CycleWindow = d.CycleWindow
	}
	if p.ReplayWindow == 0 {
		p.ReplayWindow = d.ReplayWindow
	}
	if p.ReplayStride == 0 {
		p.ReplayStride = d.ReplayStride
	}
	if p.ConsolidationGain == 0 {
		p.ConsolidationGain = d.ConsolidationGain
	}
	if p.DreamDecay == 0 {
		p.DreamDecay = d.DreamDecay
	}
	if p.DreamTick == 0 {
		p.DreamTick = d.DreamTick
	}
	if p.HypothesisRate == 0 {
		p.HypothesisRate = d.HypothesisRate
	}
	if p.AttractorSmoothing == 0 {
		p.AttractorSmoothing = d.AttractorSmoothing
	}
	if p.Dimension == 0 {
		p.Dimension = d.Dimension
	}
}
