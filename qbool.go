package qtypes

import (
	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

/*
Bool is a boolean compiled onto a single qubit. Connectives allocate a fresh result and leave
their operands untouched; the inverse forms (IAnd, IOr, ...) write into an existing value by
running the connective's gates backwards, which uncomputes a result without measuring it.
*/
type Bool struct {
	handle
	qubit  int
	purity Purity
	clbit  int
}

func newBool(c *Circuit) (*Bool, error) {
	bits, err := c.allocate(1)
	if err != nil {
		return nil, err
	}

	return &Bool{
		handle: handle{circuit: c},
		qubit:  bits[0],
		purity: Deterministic(false),
		clbit:  -1,
	}, nil
}

// NewBool compiles a deterministic boolean.
func NewBool(c *Circuit, value bool) (*Bool, error) {
	b, err := newBool(c)
	if err != nil {
		return nil, err
	}

	if value {
		c.emit(Unary(GateX, b.qubit))
	}

	b.purity = Deterministic(value)

	return b, nil
}

// NewBlankBool compiles a boolean that reads false.
func NewBlankBool(c *Circuit) (*Bool, error) {
	return NewBool(c, false)
}

// NewWeightedBool compiles a boolean that reads true with probability p.
func NewWeightedBool(c *Circuit, p Probability) (*Bool, error) {
	if !p.Valid() {
		return nil, newError(DomainError, "weighted bool", "probability %v outside [0, 1]", float64(p))
	}

	b, err := newBool(c)
	if err != nil {
		return nil, err
	}

	c.emit(Rotation(GateRY, p.Angle(), b.qubit))

	switch p {
	case 0:
		b.purity = Deterministic(false)
	case 1:
		b.purity = Deterministic(true)
	default:
		b.purity = Weighted(p)
	}

	errnie.Info("weighted bool on q[%d], p=%v", b.qubit, float64(p))

	return b, nil
}

// Qubit is the data bit holding b.
func (b *Bool) Qubit() int {
	return b.qubit
}

// Purity is what is known about b at compile time.
func (b *Bool) Purity() Purity {
	return b.purity
}

// Measured reports whether b has a result bit yet.
func (b *Bool) Measured() bool {
	return b.clbit >= 0
}

/*
Entangle returns a fresh boolean copied from b with a controlled flip, so both always measure
the same. This is the only way to get a second value provably correlated with an existing one.
*/
func (b *Bool) Entangle() (*Bool, error) {
	if err := b.check("entangle"); err != nil {
		return nil, err
	}

	fresh, err := newBool(b.circuit)
	if err != nil {
		return nil, err
	}

	b.circuit.emit(CX(b.qubit, fresh.qubit))

	if b.purity.Pure() {
		fresh.purity = b.purity
	} else {
		b.purity = Unknown()
		fresh.purity = Unknown()
	}

	b.circuit.entangle(b, fresh)

	return fresh, nil
}

// EntangledWith lists the live values sharing an entanglement with b.
func (b *Bool) EntangledWith() []*Bool {
	group := b.circuit.entanglementOf(b)
	if group == nil {
		return nil
	}

	out := make([]*Bool, 0)
	for _, m := range group.Members() {
		if m != b {
			out = append(out, m)
		}
	}
	return out
}

/*
And, Or, Nand, Xor, Iff and Implies each compile the connective of b and other into a fresh
boolean, leaving both inputs as they were. Implies is true unless b is true and other false.
*/
func (b *Bool) And(other *Bool) (*Bool, error)     { return b.binary(opAnd, other) }
func (b *Bool) Or(other *Bool) (*Bool, error)      { return b.binary(opOr, other) }
func (b *Bool) Nand(other *Bool) (*Bool, error)    { return b.binary(opNand, other) }
func (b *Bool) Xor(other *Bool) (*Bool, error)     { return b.binary(opXor, other) }
func (b *Bool) Iff(other *Bool) (*Bool, error)     { return b.binary(opIff, other) }
func (b *Bool) Implies(other *Bool) (*Bool, error) { return b.binary(opImplies, other) }

// IAnd undoes b = x.And(y).
func (b *Bool) IAnd(x, y *Bool) error { return b.inverse(opAnd, x, y) }

// IOr undoes b = x.Or(y).
func (b *Bool) IOr(x, y *Bool) error { return b.inverse(opOr, x, y) }

// INand undoes b = x.Nand(y).
func (b *Bool) INand(x, y *Bool) error { return b.inverse(opNand, x, y) }

// IXor undoes b = x.Xor(y).
func (b *Bool) IXor(x, y *Bool) error { return b.inverse(opXor, x, y) }

// IIff undoes b = x.Iff(y).
func (b *Bool) IIff(x, y *Bool) error { return b.inverse(opIff, x, y) }

// IImplies undoes b = x.Implies(y).
func (b *Bool) IImplies(x, y *Bool) error { return b.inverse(opImplies, x, y) }

// Not negates b in place. It is its own inverse.
func (b *Bool) Not() error {
	if err := b.check("not"); err != nil {
		return err
	}

	b.circuit.emit(Unary(GateX, b.qubit))

	switch b.purity.Kind {
	case PurityDeterministic:
		b.purity.Value = !b.purity.Value
	case PurityWeighted:
		b.purity.Probability = 1 - b.purity.Probability
	}

	return nil
}

func (b *Bool) binary(op connective, other *Bool) (*Bool, error) {
	if err := b.operands(op.String(), other); err != nil {
		return nil, err
	}

	result, err := newBool(b.circuit)
	if err != nil {
		return nil, err
	}

	b.circuit.emit(op.gates(b.qubit, other.qubit, result.qubit)...)
	result.purity = op.purity(result.purity, b.purity, other.purity)

	b.couple()
	other.couple()

	return result, nil
}

func (b *Bool) inverse(op connective, x, y *Bool) error {
	name := "i" + op.String()

	if err := b.check(name); err != nil {
		return err
	}

	if err := x.operands(name, y); err != nil {
		return err
	}

	if err := b.sameCircuit(name, &x.handle); err != nil {
		return err
	}

	if b.qubit == x.qubit || b.qubit == y.qubit {
		return &Error{Kind: DomainError, Op: name, Err: errors.New("target is also an operand")}
	}

	forward := op.gates(x.qubit, y.qubit, b.qubit)
	for i := len(forward) - 1; i >= 0; i-- {
		inv, _ := forward[i].Inverse()
		b.circuit.emit(inv)
	}

	b.purity = op.purity(b.purity, x.purity, y.purity)

	x.couple()
	y.couple()

	return nil
}

// operands validates a two-value operation on b and other.
func (b *Bool) operands(op string, other *Bool) error {
	if err := b.check(op); err != nil {
		return err
	}

	if other == nil {
		return &Error{Kind: DomainError, Op: op, Err: errors.New("nil operand")}
	}

	if err := b.sameCircuit(op, &other.handle); err != nil {
		return err
	}

	if b.qubit == other.qubit {
		return &Error{Kind: DomainError, Op: op, Err: errors.New("operands must be distinct values")}
	}

	return nil
}

// couple demotes a weighted operand once it has been tied to another value.
func (b *Bool) couple() {
	if b.purity.Kind == PurityWeighted {
		b.purity = Unknown()
	}
}

/*
AndAll returns a fresh value that is true when b and every other value are true, using one
multi-controlled flip instead of a chain of binary ands.
*/
func (b *Bool) AndAll(others ...*Bool) (*Bool, error) {
	return b.nary("and all", false, others)
}

// OrAll returns a fresh value that is true when any of b and others is true.
func (b *Bool) OrAll(others ...*Bool) (*Bool, error) {
	return b.nary("or all", true, others)
}

func (b *Bool) nary(op string, or bool, others []*Bool) (*Bool, error) {
	if err := b.check(op); err != nil {
		return nil, err
	}

	members := append([]*Bool{b}, others...)
	controls := make([]int, 0, len(members))
	seen := make(map[int]bool, len(members))
	pure, value := true, !or

	for _, m := range members {
		if m == nil {
			return nil, &Error{Kind: DomainError, Op: op, Err: errors.New("nil operand")}
		}

		if err := b.sameCircuit(op, &m.handle); err != nil {
			return nil, err
		}

		if seen[m.qubit] {
			return nil, &Error{Kind: DomainError, Op: op, Err: errors.New("operands must be distinct values")}
		}

		seen[m.qubit] = true
		controls = append(controls, m.qubit)

		if !m.purity.Pure() {
			pure = false
		} else if or {
			value = value || m.purity.Value
		} else {
			value = value && m.purity.Value
		}
	}

	result, err := newBool(b.circuit)
	if err != nil {
		return nil, err
	}

	c := b.circuit

	err = c.borrow(ancillaNeeded(len(controls)), func(ancilla []int) error {
		// De Morgan: or = not(and of negations).
		if or {
			for _, q := range controls {
				c.emit(Unary(GateX, q))
			}
		}

		c.flip(op, controls, result.qubit, ancilla)

		if or {
			for _, q := range controls {
				c.emit(Unary(GateX, q))
			}
			c.emit(Unary(GateX, result.qubit))
		}

		return nil
	})
	if err != nil {
		c.release([]int{result.qubit})
		return nil, err
	}

	if pure {
		result.purity = Deterministic(value)
	} else {
		result.purity = Unknown()
	}

	for _, m := range members {
		m.couple()
	}

	return result, nil
}

// Measure copies b into a fresh result bit and marks the pool as collapsed.
func (b *Bool) Measure() error {
	if err := b.check("measure"); err != nil {
		return err
	}

	clbits, err := b.circuit.pool.AllocateResult(1)
	if err != nil {
		return err
	}

	b.circuit.emit(Measure(b.qubit, clbits[0]))
	b.clbit = clbits[0]
	b.circuit.pool.observeCollapse()

	return nil
}

// Extract decodes b from one backend outcome.
func (b *Bool) Extract(o Outcome) (bool, error) {
	if err := b.check("extract"); err != nil {
		return false, err
	}

	if b.clbit < 0 {
		return false, &Error{Kind: StateError, Op: "extract", Err: errors.New("value was never measured")}
	}

	return o.Bit(b.clbit)
}

// ExtractCounts sums the histogram by decoded value.
func (b *Bool) ExtractCounts(h Histogram) (map[bool]int, error) {
	counts := make(map[bool]int, 2)

	for o, n := range h {
		v, err := b.Extract(o)
		if err != nil {
			return nil, err
		}
		counts[v] += n
	}

	return counts, nil
}

/*
Free returns b's qubit to the pool. A value known to be true is flipped back, one known to be
false needs nothing, and anything else is reset. b is unusable afterwards.
*/
func (b *Bool) Free() error {
	if err := b.check("free"); err != nil {
		return err
	}

	switch {
	case b.purity.Pure() && b.purity.Value:
		b.circuit.emit(Unary(GateX, b.qubit))
	case !b.purity.Pure():
		b.circuit.emit(Unary(GateReset, b.qubit))
	}

	b.circuit.release([]int{b.qubit})
	b.freed = true

	return nil
}

// connective is a two-input boolean function with a reversible gate sequence.
type connective int

const (
	opAnd connective = iota
	opOr
	opNand
	opXor
	opIff
	opImplies
)

var connectiveName = map[connective]string{
	opAnd:     "and",
	opOr:      "or",
	opNand:    "nand",
	opXor:     "xor",
	opIff:     "iff",
	opImplies: "implies",
}

func (op connective) String() string {
	return connectiveName[op]
}

func (op connective) eval(a, b bool) bool {
	switch op {
	case opAnd:
		return a && b
	case opOr:
		return a || b
	case opNand:
		return !(a && b)
	case opXor:
		return a != b
	case opIff:
		return a == b
	case opImplies:
		return !a || b
	}
	return false
}

/*
gates returns the sequence that XORs op(a, b) into t. Operands end where they started: every
polarity flip on an input is undone inside the sequence.
*/
func (op connective) gates(a, b, t int) []Instruction {
	switch op {
	case opAnd:
		return []Instruction{CCX(a, b, t)}
	case opOr:
		return []Instruction{
			Unary(GateX, a), Unary(GateX, b),
			CCX(a, b, t),
			Unary(GateX, a), Unary(GateX, b),
			Unary(GateX, t),
		}
	case opNand:
		return []Instruction{CCX(a, b, t), Unary(GateX, t)}
	case opXor:
		return []Instruction{CX(a, t), CX(b, t)}
	case opIff:
		return []Instruction{CX(a, t), CX(b, t), Unary(GateX, t)}
	case opImplies:
		// a → b is not(a and not b).
		return []Instruction{
			Unary(GateX, b),
			CCX(a, b, t),
			Unary(GateX, b),
			Unary(GateX, t),
		}
	}
	return nil
}

// purity of a target after op(a, b) has been XORed into it.
func (op connective) purity(target, a, b Purity) Purity {
	if target.Pure() && a.Pure() && b.Pure() {
		return Deterministic(target.Value != op.eval(a.Value, b.Value))
	}
	return Unknown()
}
