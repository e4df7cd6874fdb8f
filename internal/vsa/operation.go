package vsa

import "fmt"

// Operation identifies a composition operation over semantic vectors.
type Operation int

const (
	// OpBind combines vectors with circular convolution. The result is
	// dissimilar to either input.
	OpBind Operation = iota

	// OpMerge superposes vectors by element-wise sum and renormalization.
	// The result stays similar to all inputs.
	OpMerge

	// OpAnalogy completes a linear analogy A:B :: C:D, D = C + (B - A).
	OpAnalogy
)

// String returns the canonical name of the operation.
func (op Operation) String() string {
	switch op {
	case OpBind:
		return "bind"
	case OpMerge:
		return "merge"
	case OpAnalogy:
		return "analogy"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// ParseOperation maps a textual operation name to its Operation value.
func ParseOperation(name string) (Operation, error) {
	switch name {
	case "bind":
		return OpBind, nil
	case "merge":
		return OpMerge, nil
	case "analogy":
		return OpAnalogy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}
