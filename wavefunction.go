package qtypes

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

/*
WaveFunction is the distribution a superposed register is synthesized to: the distinct values
of a target multiset, each weighted by its multiplicity. A value requested k times is k times
as likely as one requested once.
*/
type WaveFunction struct {
	States []State
	total  int
}

// NewWaveFunction collapses targets into distinct states in ascending value order.
func NewWaveFunction(targets []uint64) (*WaveFunction, error) {
	if len(targets) == 0 {
		return nil, &Error{Kind: DomainError, Op: "wave function", Err: errors.New("no target values")}
	}

	weights := make(map[uint64]int, len(targets))
	for _, t := range targets {
		weights[t]++
	}

	states := make([]State, 0, len(weights))
	for v, w := range weights {
		states = append(states, State{Value: v, Weight: w})
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].Value < states[j].Value
	})

	errnie.Info("wave function over %d distinct states from %d targets", len(states), len(targets))

	return &WaveFunction{
		States: states,
		total:  len(targets),
	}, nil
}

// Total is the summed weight of every state.
func (wf *WaveFunction) Total() int {
	return wf.total
}

// Max is the largest value the register must be able to hold.
func (wf *WaveFunction) Max() uint64 {
	return wf.States[len(wf.States)-1].Value
}

// Probability of collapsing to v.
func (wf *WaveFunction) Probability(v uint64) Probability {
	for _, s := range wf.States {
		if s.Value == v {
			return Probability(float64(s.Weight) / float64(wf.total))
		}
	}
	return 0
}

// Pure reports whether only one value is possible.
func (wf *WaveFunction) Pure() bool {
	return len(wf.States) == 1
}
