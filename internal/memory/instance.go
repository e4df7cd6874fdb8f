package memory

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// Embedder seeds semantic vectors for newly learned concepts. It is the
// package's view of the encoder boundary; nil is valid and falls back to
// lazy random vectors.
type Embedder interface {
	// Embed returns the semantic vector for text.
	Embed(ctx context.Context, text string) (vsa.Vector, error)

	// Dimension returns the vector dimension this embedder produces.
	Dimension() int
}

// Index mirrors concepts into an external similarity index. nil disables
// mirroring; the engine never depends on the index for correctness.
type Index interface {
	// Add inserts or replaces a concept's vector in the index.
	Add(ctx context.Context, id, content string, vec vsa.Vector) error

	// Query returns the k nearest concepts to vec.
	Query(ctx context.Context, vec vsa.Vector, k int) ([]IndexMatch, error)
}

// IndexMatch is one similarity-query result.
type IndexMatch struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// InstanceConfig configures a memory instance.
type InstanceConfig struct {
	// ID identifies the owning node.
	ID string

	// Params are the engine constants; zero fields get defaults.
	Params Params

	// Clock is the time source. Defaults to SystemClock.
	Clock Clock

	// Seed seeds the instance's random generator. Zero seeds from the
	// clock.
	Seed int64

	// Embedder seeds semantic vectors for learned concepts. Optional.
	Embedder Embedder

	// Index mirrors concepts for similarity queries. Optional.
	Index Index

	// Logger receives structured engine logs. Nil disables logging.
	Logger *zap.Logger
}

// Instance is one node's complete associative memory. All mutation goes
// through the instance mutex: Hebbian updates read-then-write several
// concepts and must see a consistent graph.
type Instance struct {
	mu     sync.Mutex
	id     string
	params Params
	clock  Clock
	rng    *rand.Rand
	emb    Embedder
	index  Index
	logger *zap.Logger

	concepts  map[string]*Concept
	byContent map[string]string
	out       map[string]map[string]*Association
	in        map[string]map[string]*Association

	active        map[string]struct{}
	history       []FireRecord
	lastPredicted map[string]float64
	predictedBy   map[string][]string
	recentErrors  []float64
	attractor     float64
}

// NewInstance creates a memory instance.
func NewInstance(cfg InstanceConfig) *Instance {
	cfg.Params.ApplyDefaults()
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Seed == 0 {
		cfg.Seed = cfg.Clock.Now().UnixNano()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Instance{
		id:        cfg.ID,
		params:    cfg.Params,
		clock:     cfg.Clock,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		emb:       cfg.Embedder,
		index:     cfg.Index,
		logger:    cfg.Logger.With(zap.String("node_id", cfg.ID)),
		concepts:  make(map[string]*Concept),
		byContent: make(map[string]string),
		out:       make(map[string]map[string]*Association),
		in:        make(map[string]map[string]*Association),
		active:    make(map[string]struct{}),
	}
}

// ID returns the owning node id.
func (m *Instance) ID() string { return m.id }

// Learn ingests text as one concept per distinct token, seeds semantic
// vectors through the embedder when one is configured, and activates each
// token concept in order. It returns the ids of the touched concepts.
func (m *Instance) Learn(ctx context.Context, text string, metadata map[string]string) ([]string, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, ErrEmptyContent
	}

	// Embed outside the lock; the encoder may be slow.
	vectors := make(map[string]vsa.Vector, len(tokens))
	if m.emb != nil {
		for _, tok := range tokens {
			vec, err := m.emb.Embed(ctx, tok)
			if err != nil {
				return nil, err
			}
			vectors[tok] = vec
		}
	}

	m.mu.Lock()
	ids := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		c := m.ensureConceptLocked(tok, metadata)
		if c.Vector == nil && vectors[tok] != nil {
			c.Vector = vectors[tok]
		}
		ids = append(ids, c.ID)
	}
	for _, id := range ids {
		m.activateLocked(id, 1.0)
	}
	m.mu.Unlock()

	m.mirror(ctx, ids)

	m.logger.Debug("learned input",
		zap.Int("tokens", len(tokens)),
		zap.Int("concepts", len(ids)))
	return ids, nil
}

// Adopt materializes a concept under a caller-chosen id, used when a
// consensus commit or a test fixture needs the same id on several nodes.
// An empty id generates one. Composed adoptions recreate the composition
// from this node's local constituents.
func (m *Instance) Adopt(ctx context.Context, id, content string, constituents []string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	if len(constituents) > 0 {
		return m.composeAs(ctx, id, constituents, vsa.OpMerge, content)
	}

	m.mu.Lock()
	if id == "" {
		id = uuid.New().String()
	}
	if _, ok := m.concepts[id]; ok {
		m.mu.Unlock()
		return "", ErrConceptExists
	}
	c := m.newConceptLocked(id, content)
	c.Activation = 0.3
	m.mu.Unlock()

	m.mirror(ctx, []string{id})
	return id, nil
}

// HasConcept reports whether the concept id exists locally.
func (m *Instance) HasConcept(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.concepts[id]
	return ok
}

// HasContent reports whether a local concept already carries this exact
// content.
func (m *Instance) HasContent(content string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byContent[content]
	return ok
}

// ConceptIDByContent returns the id of the concept with the given content.
func (m *Instance) ConceptIDByContent(content string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byContent[content]
	return id, ok
}

// Concept returns a copy of the concept, or false if the id is unknown.
func (m *Instance) Concept(id string) (Concept, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.concepts[id]
	if !ok {
		return Concept{}, false
	}
	return copyConcept(c), true
}

// AssociationBetween returns a copy of the directed association, or false
// if none exists.
func (m *Instance) AssociationBetween(source, target string) (Association, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.lookupAssocLocked(source, target)
	if a == nil {
		return Association{}, false
	}
	cp := *a
	cp.Surprise = append([]float64(nil), a.Surprise...)
	return cp, true
}

// ActivePattern returns the ids currently in the active pattern, sorted
// for determinism.
func (m *Instance) ActivePattern() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activePatternLocked()
}

// PairwiseCoherence sums the weights of existing associations among the
// given concept ids, in both directions. Unknown ids contribute nothing.
func (m *Instance) PairwiseCoherence(ids []string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if a := m.lookupAssocLocked(ids[i], ids[j]); a != nil {
				sum += a.Weight
			}
			if a := m.lookupAssocLocked(ids[j], ids[i]); a != nil {
				sum += a.Weight
			}
		}
	}
	return sum
}

// WireAssociation creates or strengthens the directed association between
// two existing concepts to at least the given weight and forward strength.
// Used by cross-node pattern binding, which must wire associations
// explicitly rather than waiting for co-activation.
func (m *Instance) WireAssociation(source, target string, weight, strength float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.concepts[source]; !ok {
		return ErrConceptNotFound
	}
	if _, ok := m.concepts[target]; !ok {
		return ErrConceptNotFound
	}
	m.wireAssocLocked(source, target, weight, strength)
	return nil
}

// Similar returns the k concepts nearest to text in semantic-vector space.
// It requires both an embedder and an index; without them it returns an
// empty result.
func (m *Instance) Similar(ctx context.Context, text string, k int) ([]IndexMatch, error) {
	if m.emb == nil || m.index == nil {
		return nil, nil
	}
	vec, err := m.emb.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return m.index.Query(ctx, vec, k)
}

// ensureConceptLocked returns the concept for content, creating it if
// absent. Caller holds the lock.
func (m *Instance) ensureConceptLocked(content string, metadata map[string]string) *Concept {
	if id, ok := m.byContent[content]; ok {
		c := m.concepts[id]
		for k, v := range metadata {
			if c.Metadata == nil {
				c.Metadata = make(map[string]string)
			}
			c.Metadata[k] = v
		}
		return c
	}
	c := m.newConceptLocked(uuid.New().String(), content)
	if len(metadata) > 0 {
		c.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// newConceptLocked creates and registers a concept with default dynamics.
// Caller holds the lock.
func (m *Instance) newConceptLocked(id, content string) *Concept {
	c := &Concept{
		ID:            id,
		Content:       content,
		Activation:    m.params.DefaultBaseline,
		Baseline:      m.params.DefaultBaseline,
		Threshold:     m.params.DefaultThreshold,
		Refractory:    m.params.DefaultRefractory,
		CoActivations: make(map[string]int),
		CreatedAt:     m.clock.Now(),
	}
	m.concepts[id] = c
	m.byContent[content] = id
	return c
}

// ensureAssocLocked returns the directed association, creating it with the
// default initial weight if absent. Caller holds the lock.
func (m *Instance) ensureAssocLocked(source, target string) *Association {
	if a := m.lookupAssocLocked(source, target); a != nil {
		return a
	}
	a := &Association{
		Source:             source,
		Target:             target,
		Weight:             0.1,
		ForwardStrength:    0.5,
		BackwardStrength:   0.5,
		PredictionAccuracy: 0.5,
		Causality:          0.5,
	}
	if m.out[source] == nil {
		m.out[source] = make(map[string]*Association)
	}
	m.out[source][target] = a
	if m.in[target] == nil {
		m.in[target] = make(map[string]*Association)
	}
	m.in[target][source] = a
	return a
}

// wireAssocLocked creates or strengthens a directed association to at
// least the given weight and forward strength. Caller holds the lock.
func (m *Instance) wireAssocLocked(source, target string, weight, strength float64) *Association {
	a := m.ensureAssocLocked(source, target)
	if weight > a.Weight {
		a.Weight = clamp01(weight)
	}
	if strength > a.ForwardStrength {
		a.ForwardStrength = clamp01(strength)
	}
	return a
}

func (m *Instance) lookupAssocLocked(source, target string) *Association {
	if targets, ok := m.out[source]; ok {
		return targets[target]
	}
	return nil
}

func (m *Instance) activePatternLocked() []string {
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mirror pushes concepts into the similarity index, outside the lock.
// Index failures are logged, never fatal: the index is advisory.
func (m *Instance) mirror(ctx context.Context, ids []string) {
	if m.index == nil {
		return
	}
	for _, id := range ids {
		c, ok := m.Concept(id)
		if !ok || c.Vector == nil {
			continue
		}
		if err := m.index.Add(ctx, c.ID, c.Content, c.Vector); err != nil {
			m.logger.Warn("index add failed",
				zap.String("concept_id", c.ID),
				zap.Error(err))
		}
	}
}

// ensureVectorLocked lazily initializes a concept's semantic vector from
// the instance generator. Caller holds the lock.
func (m *Instance) ensureVectorLocked(c *Concept) vsa.Vector {
	if c.Vector == nil {
		c.Vector = vsa.NewRandom(m.rng, m.params.Dimension)
	}
	return c.Vector
}

func copyConcept(c *Concept) Concept {
	cp := *c
	cp.CoActivations = make(map[string]int, len(c.CoActivations))
	for k, v := range c.CoActivations {
		cp.CoActivations[k] = v
	}
	cp.Constituents = append([]string(nil), c.Constituents...)
	if c.Metadata != nil {
		cp.Metadata = make(map[string]string, len(c.Metadata))
		for k, v := range c.Metadata {
			cp.Metadata[k] = v
		}
	}
	cp.Vector = append(vsa.Vector(nil), c.Vector...)
	if len(cp.Vector) == 0 {
		cp.Vector = nil
	}
	return cp
}

// tokenize lowercases text and splits it into distinct word tokens,
// preserving first-seen order.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '-' || r == '_')
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// recordErrorLocked keeps a bounded history of prediction errors for dream
// salience weighting. Caller holds the lock.
func (m *Instance) recordErrorLocked(e float64) {
	m.recentErrors = append(m.recentErrors, e)
	if len(m.recentErrors) > m.params.SurpriseCapacity {
		m.recentErrors = m.recentErrors[1:]
	}
}

func (m *Instance) meanRecentErrorLocked() float64 {
	if len(m.recentErrors) == 0 {
		return 0
	}
	var sum float64
	for _, e := range m.recentErrors {
		sum += e
	}
	return sum / float64(len(m.recentErrors))
}

// now is a convenience for the injected clock.
func (m *Instance) now() time.Time { return m.clock.Now() }

// newID mints a fresh concept id.
func newID() string { return uuid.New().String() }
