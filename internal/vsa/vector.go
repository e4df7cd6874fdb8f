package vsa

import (
	"errors"
	"math"
	"math/rand"
)

// Sentinel errors for vector operations.
var (
	// ErrUnknownOperation is returned for an unrecognized operation name.
	ErrUnknownOperation = errors.New("unknown composition operation")

	// ErrDimensionMismatch is returned when operand dimensions differ.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrTooFewOperands is returned when an operation receives fewer
	// vectors than it requires.
	ErrTooFewOperands = errors.New("too few operands")

	// ErrDegenerateVector is returned for zero-norm or non-finite input.
	ErrDegenerateVector = errors.New("degenerate vector")
)

// Vector is a fixed-dimension semantic vector. Vectors are unit-normalized
// on creation; operations return freshly allocated results.
type Vector []float64

// NewRandom returns a unit-normalized random vector of the given dimension.
// Roughly half the components are zeroed so that bound vectors stay
// distinguishable from superpositions. The caller supplies the generator so
// initialization is reproducible under test.
func NewRandom(rng *rand.Rand, dim int) Vector {
	v := make(Vector, dim)
	for i := range v {
		if rng.Float64() < 0.5 {
			continue
		}
		v[i] = rng.NormFloat64()
	}
	if v.Norm() == 0 && dim > 0 {
		v[rng.Intn(dim)] = 1
	}
	return v.Normalized()
}

// Valid reports whether every component is finite.
func (v Vector) Valid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalized returns a unit-length copy. A zero vector is returned
// unchanged rather than dividing by zero.
func (v Vector) Normalized() Vector {
	out := make(Vector, len(v))
	n := v.Norm()
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// is zero-norm or the dimensions differ.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Bind combines the operands left to right with circular convolution and
// returns the normalized result. Circular convolution is the binding
// operation of holographic reduced representations: the output carries the
// structure of both inputs while being dissimilar to each.
func Bind(vs ...Vector) (Vector, error) {
	if len(vs) < 2 {
		return nil, ErrTooFewOperands
	}
	out, err := checkOperand(vs[0])
	if err != nil {
		return nil, err
	}
	for _, v := range vs[1:] {
		v, err = checkOperand(v)
		if err != nil {
			return nil, err
		}
		if len(v) != len(out) {
			return nil, ErrDimensionMismatch
		}
		out = circularConvolve(out, v)
	}
	return out.Normalized(), nil
}

// Merge superposes the operands by element-wise sum and returns the
// normalized blend.
func Merge(vs ...Vector) (Vector, error) {
	if len(vs) < 2 {
		return nil, ErrTooFewOperands
	}
	first, err := checkOperand(vs[0])
	if err != nil {
		return nil, err
	}
	out := make(Vector, len(first))
	copy(out, first)
	for _, v := range vs[1:] {
		v, err = checkOperand(v)
		if err != nil {
			return nil, err
		}
		if len(v) != len(out) {
			return nil, ErrDimensionMismatch
		}
		for i := range out {
			out[i] += v[i]
		}
	}
	return out.Normalized(), nil
}

// Analogy completes A:B :: C:D as D = C + (B - A), normalized. With fewer
// than three operands it falls back to the first vector unchanged.
func Analogy(vs ...Vector) (Vector, error) {
	if len(vs) == 0 {
		return nil, ErrTooFewOperands
	}
	if len(vs) < 3 {
		v, err := checkOperand(vs[0])
		if err != nil {
			return nil, err
		}
		out := make(Vector, len(v))
		copy(out, v)
		return out, nil
	}
	a, err := checkOperand(vs[0])
	if err != nil {
		return nil, err
	}
	b, err := checkOperand(vs[1])
	if err != nil {
		return nil, err
	}
	c, err := checkOperand(vs[2])
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) || len(b) != len(c) {
		return nil, ErrDimensionMismatch
	}
	out := make(Vector, len(c))
	for i := range out {
		out[i] = c[i] + (b[i] - a[i])
	}
	return out.Normalized(), nil
}

// Apply dispatches to the handler for op.
func Apply(op Operation, vs ...Vector) (Vector, error) {
	switch op {
	case OpBind:
		return Bind(vs...)
	case OpMerge:
		return Merge(vs...)
	case OpAnalogy:
		return Analogy(vs...)
	default:
		return nil, ErrUnknownOperation
	}
}

// circularConvolve computes c[k] = sum_i a[i]*b[(k-i) mod n]. Equivalent to
// a frequency-domain pointwise product; dimensions here are small enough
// that the direct form is not a bottleneck.
func circularConvolve(a, b Vector) Vector {
	n := len(a)
	out := make(Vector, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			j := k - i
			if j < 0 {
				j += n
			}
			sum += a[i] * b[j]
		}
		out[k] = sum
	}
	return out
}

func checkOperand(v Vector) (Vector, error) {
	if len(v) == 0 || v.Norm() == 0 {
		return nil, ErrDegenerateVector
	}
	if !v.Valid() {
		return nil, ErrDegenerateVector
	}
	return v, nil
}
