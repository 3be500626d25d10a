package qtypes

import (
	"fmt"

	"github.com/pkg/errors"
)

// PurityKind says how much is known at compile time about a value's measured outcome.
type PurityKind int

const (
	PurityDeterministic PurityKind = iota // outcome fixed and known
	PurityWeighted                        // independent, fixed probability of reading 1
	PurityUnknown                         // entangled or otherwise correlated
)

/*
Purity is advisory metadata carried by every value. It is updated conservatively: anything
that couples a non-deterministic value to another one demotes it to PurityUnknown. Nothing in
the compiler relies on it for correctness.
*/
type Purity struct {
	Kind        PurityKind
	Value       bool
	Probability Probability
}

// Deterministic is a value known to be v.
func Deterministic(v bool) Purity {
	return Purity{Kind: PurityDeterministic, Value: v}
}

// Weighted is a value that reads 1 with probability p.
func Weighted(p Probability) Purity {
	return Purity{Kind: PurityWeighted, Probability: p}
}

// Unknown is a value whose distribution is not tracked.
func Unknown() Purity {
	return Purity{Kind: PurityUnknown}
}

// Pure reports whether the value is known exactly.
func (p Purity) Pure() bool {
	return p.Kind == PurityDeterministic
}

func (p Purity) String() string {
	switch p.Kind {
	case PurityDeterministic:
		return fmt.Sprintf("deterministic(%t)", p.Value)
	case PurityWeighted:
		return fmt.Sprintf("weighted(%g)", float64(p.Probability))
	}
	return "unknown"
}

/*
handle is the lifecycle shared by Bool and Int: the circuit a value was compiled into and
whether it has been freed. Every public operation goes through check first.
*/
type handle struct {
	circuit *Circuit
	freed   bool
}

func (h *handle) check(op string) error {
	if h == nil || h.circuit == nil {
		return &Error{Kind: StateError, Op: op, Err: errors.New("value has no circuit")}
	}

	if h.freed {
		return &Error{Kind: StateError, Op: op, Err: errors.New("value used after free")}
	}

	return nil
}

// sameCircuit makes sure two values share one pool and one program.
func (h *handle) sameCircuit(op string, other *handle) error {
	if err := other.check(op); err != nil {
		return err
	}

	if h.circuit != other.circuit {
		return &Error{Kind: DomainError, Op: op, Err: errors.New("values belong to different circuits")}
	}

	return nil
}
