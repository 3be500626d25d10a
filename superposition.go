package qtypes

import (
	"sort"

	"github.com/pkg/errors"
)

/*
SuperPosition compiles a register whose measurement is distributed over targets, each distinct
value weighted by its multiplicity. Only bit-local gates are used: bits are fixed from the most
significant down, each one rotated by its probability of being 1 given the bits already fixed
above it.

Without WithWidth the smallest canonical width holding max(targets) is used. The register's
distinguished bit is position 0; read it with MeasureSup.
*/
func SuperPosition(c *Circuit, targets []uint64, opts ...IntOption) (*Int, error) {
	wf, err := NewWaveFunction(targets)
	if err != nil {
		return nil, err
	}

	o := resolveIntOptions(HintMinimal, opts)

	width, err := c.registerWidth("super position", wf.Max(), o)
	if err != nil {
		return nil, err
	}

	x, err := newInt(c, width)
	if err != nil {
		return nil, err
	}

	s := &synthesizer{circuit: c, qubits: x.qubits, scratch: -1}

	err = c.borrow(1, func(scratch []int) error {
		if len(scratch) > 0 {
			s.scratch = scratch[0]
		}

		err := s.level(wf.States, width-1)
		if err != nil && s.scratch >= 0 {
			c.emit(Unary(GateReset, s.scratch))
		}
		return err
	})
	if err != nil {
		for _, q := range x.qubits {
			c.emit(Unary(GateReset, q))
		}
		c.release(x.qubits)
		return nil, err
	}

	x.distinguished = 0

	if wf.Pure() {
		x.initial = wf.States[0].Value
		x.value = wf.States[0].Value
		x.known = true
	}

	return x, nil
}

// synthesizer carries what every level of the recursion shares.
type synthesizer struct {
	circuit *Circuit
	qubits  []int
	scratch int
}

// prefixGroup is the weight of the states sharing one prefix above the current bit.
type prefixGroup struct {
	prefix uint64
	ones   int
	total  int
}

func (g prefixGroup) mixed() bool {
	return g.ones > 0 && g.ones < g.total
}

// partition groups states by the bits above bit, in ascending prefix order.
func partition(states []State, bit int) []prefixGroup {
	index := make(map[uint64]int)
	groups := make([]prefixGroup, 0)

	for _, st := range states {
		prefix := st.Value >> uint(bit+1)

		i, ok := index[prefix]
		if !ok {
			i = len(groups)
			index[prefix] = i
			groups = append(groups, prefixGroup{prefix: prefix})
		}

		groups[i].total += st.Weight
		if bitSet(st.Value, bit) {
			groups[i].ones += st.Weight
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].prefix < groups[j].prefix
	})

	return groups
}

/*
level fixes bit and recurses on the one below it. When any branch is mixed the bits below are
spread before the branches and unspread after them; the branches never touch those bits, so the
pair cancels and each level leaves the lower register exactly as it found it.
*/
func (s *synthesizer) level(states []State, bit int) error {
	if bit < 0 {
		return nil
	}

	groups := partition(states, bit)

	mixed := false
	for _, g := range groups {
		if g.mixed() {
			mixed = true
			break
		}
	}

	if mixed {
		s.spread(bit)
	}

	for _, g := range groups {
		if err := s.branch(g, bit, len(groups) == 1); err != nil {
			return err
		}
	}

	if mixed {
		s.spread(bit)
	}

	return s.level(states, bit-1)
}

func (s *synthesizer) spread(bit int) {
	for _, q := range s.qubits[:bit] {
		s.circuit.emit(Unary(GateH, q))
	}
}

/*
branch sets bit for the states under one prefix. A sole prefix carries all the amplitude, so it
needs no control. Otherwise the prefix is matched into the scratch bit (zeros flipped to ones,
one multi-controlled flip), the scratch bit drives a flip or a rotation, and the match is undone.
*/
func (s *synthesizer) branch(g prefixGroup, bit int, sole bool) error {
	if g.ones == 0 {
		return nil
	}

	c := s.circuit
	target := s.qubits[bit]
	p := Probability(float64(g.ones) / float64(g.total))

	if sole {
		if g.ones == g.total {
			c.emit(Unary(GateX, target))
		} else {
			c.emit(Rotation(GateRY, p.Angle(), target))
		}
		return nil
	}

	if s.scratch < 0 {
		return &Error{Kind: CapacityError, Op: "super position", Err: errors.New("no scratch bit available")}
	}

	prefix := s.qubits[bit+1:]

	zeros := make([]int, 0, len(prefix))
	for i, q := range prefix {
		if !bitSet(g.prefix, i) {
			zeros = append(zeros, q)
		}
	}

	return c.borrow(ancillaNeeded(len(prefix)), func(ancilla []int) error {
		for _, q := range zeros {
			c.emit(Unary(GateX, q))
		}

		c.flip("super position", prefix, s.scratch, ancilla)

		if g.ones == g.total {
			c.emit(CX(s.scratch, target))
		} else {
			c.emit(CRotation(s.scratch, target, p))
		}

		c.flip("super position", prefix, s.scratch, ancilla)

		for _, q := range zeros {
			c.emit(Unary(GateX, q))
		}

		return nil
	})
}
