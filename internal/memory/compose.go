package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

// Compose creates a new concept from two or more constituents by combining
// their semantic vectors with the given operation. Constituent vectors are
// lazily initialized from the instance's seeded generator when missing, so
// composition is deterministic given identical inputs.
//
// The composed concept starts at activation 0.3 and is wired to every
// constituent with an asymmetric bidirectional association pair: composed
// to constituent at weight 0.8 / strength 0.9, constituent to composed at
// weight 0.6 / strength 0.7. Composing the same constituents with the same
// operation again returns the existing concept.
func (m *Instance) Compose(ctx context.Context, constituents []string, op vsa.Operation) (string, error) {
	return m.composeAs(ctx, "", constituents, op, "")
}

// composeAs is Compose with an optional fixed id and content, used when a
// consensus commit must materialize the same concept id on several nodes.
func (m *Instance) composeAs(ctx context.Context, id string, constituents []string, op vsa.Operation, content string) (string, error) {
	if len(constituents) < 2 {
		return "", ErrMalformedComposition
	}

	m.mu.Lock()
	labels := make([]string, 0, len(constituents))
	for _, cid := range constituents {
		c, ok := m.concepts[cid]
		if !ok {
			m.mu.Unlock()
			return "", ErrConceptNotFound
		}
		labels = append(labels, c.Content)
	}

	if id == "" {
		id = uuid.New().String()
	}
	if err := m.checkCycleLocked(id, constituents); err != nil {
		m.mu.Unlock()
		return "", err
	}
	if content == "" {
		content = strings.Join(labels, operationMarker(op))
	}
	if existing, ok := m.byContent[content]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	if _, ok := m.concepts[id]; ok {
		m.mu.Unlock()
		return "", ErrConceptExists
	}

	vectors := make([]vsa.Vector, 0, len(constituents))
	for _, cid := range constituents {
		vectors = append(vectors, m.ensureVectorLocked(m.concepts[cid]))
	}
	vec, err := vsa.Apply(op, vectors...)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}

	// All validation passed; mutate in one step so a failure above leaves
	// the graph untouched.
	c := m.newConceptLocked(id, content)
	c.Activation = 0.3
	c.Constituents = append([]string(nil), constituents...)
	c.CompositionWeight = 0.8
	c.Vector = vec

	for _, cid := range constituents {
		m.wireAssocLocked(id, cid, 0.8, 0.9)
		m.wireAssocLocked(cid, id, 0.6, 0.7)
	}
	m.mu.Unlock()

	m.mirror(ctx, []string{id})
	m.logger.Debug("composed concept",
		zap.String("concept_id", id),
		zap.String("operation", op.String()),
		zap.Int("constituents", len(constituents)))
	return id, nil
}

// SemanticSimilarity returns the cosine similarity between two concepts'
// semantic vectors, or 0 when either concept or vector is undefined.
func (m *Instance) SemanticSimilarity(id1, id2 string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c1, ok1 := m.concepts[id1]
	c2, ok2 := m.concepts[id2]
	if !ok1 || !ok2 {
		return 0
	}
	return vsa.Cosine(c1.Vector, c2.Vector)
}

// checkCycleLocked rejects a composition that would make id its own
// direct or transitive constituent. Caller holds the lock.
func (m *Instance) checkCycleLocked(id string, constituents []string) error {
	seen := make(map[string]struct{})
	stack := append([]string(nil), constituents...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == id {
			return ErrCircularConstituents
		}
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		if c, ok := m.concepts[cur]; ok {
			stack = append(stack, c.Constituents...)
		}
	}
	return nil
}

// operationMarker is the content joiner for each composition operation.
func operationMarker(op vsa.Operation) string {
	switch op {
	case vsa.OpBind:
		return "*"
	case vsa.OpAnalogy:
		return "~"
	default:
		return "+"
	}
}
