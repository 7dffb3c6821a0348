package htable

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

// Policy selects how a table resolves collisions.
type Policy int

const (
	LinearProbing Policy = iota
	DoubleHashing
)

func (p Policy) String() string {
	switch p {
	case LinearProbing:
		return "Linear Probing"
	case DoubleHashing:
		return "Double Hashing"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts the names used in config files: "linear" and "double".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear", "linear-probing", "linear_probing":
		return LinearProbing, nil
	case "double", "double-hashing", "double_hashing":
		return DoubleHashing, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidPolicy, s)
	}
}

// stepper yields the probe stride for a key. It is chosen once per table.
type stepper interface {
	step(hash uint32) int
}

type linearStepper struct{}

func (linearStepper) step(uint32) int { return 1 }

type doubleStepper struct {
	divisor uint32 // capacity - 1, never zero
}

func (d doubleStepper) step(hash uint32) int {
	return 1 + int(hash%d.divisor)
}

func newStepper(policy Policy, capacity int) (stepper, error) {
	switch policy {
	case LinearProbing:
		return linearStepper{}, nil
	case DoubleHashing:
		if capacity <= 1 {
			return nil, fmt.Errorf("%w: double hashing needs capacity > 1, got %d",
				apperrors.ErrInvalidCapacity, capacity)
		}
		return doubleStepper{divisor: uint32(capacity - 1)}, nil
	default:
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPolicy, policy)
	}
}
