package qtypes

import (
	"github.com/pkg/errors"
)

// maxRegisterWidth is the widest register that still decodes into a uint64.
const maxRegisterWidth = 64

// WidthHint steers automatic register width selection.
type WidthHint int

const (
	HintDefault WidthHint = iota // medium canonical width, then big
	HintSmall                    // small canonical width only
	HintBig                      // big canonical width
	HintMinimal                  // smallest canonical width that fits
)

type intOptions struct {
	width    int
	widthSet bool
	hint     WidthHint
}

// IntOption configures NewInt and SuperPosition.
type IntOption func(*intOptions)

// WithWidth skips width selection and allocates exactly n bits.
func WithWidth(n int) IntOption {
	return func(o *intOptions) {
		o.width = n
		o.widthSet = true
	}
}

// Small restricts width selection to the small canonical width, with no fallback.
func Small() IntOption {
	return func(o *intOptions) { o.hint = HintSmall }
}

// Big selects the big canonical width.
func Big() IntOption {
	return func(o *intOptions) { o.hint = HintBig }
}

// Minimal selects the smallest canonical width that holds the value.
func Minimal() IntOption {
	return func(o *intOptions) { o.hint = HintMinimal }
}

func resolveIntOptions(hint WidthHint, opts []IntOption) intOptions {
	o := intOptions{hint: hint}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

/*
Int is an unsigned integer compiled onto a register of qubits, position 0 being the least
significant bit. It is mutated in place and never reallocates its own bits.

A register built by SuperPosition has a distinguished bit, which MeasureSup measures before the
others so the joint distribution is read in the order it was synthesized.
*/
type Int struct {
	handle
	qubits        []int
	initial       uint64
	distinguished int
	clbits        []int

	// value is the register's contents while they are known at compile time.
	value uint64
	known bool
}

/*
NewInt compiles value into a fresh register. Without WithWidth the width is chosen from the
canonical widths; see chooseWidth.
*/
func NewInt(c *Circuit, value uint64, opts ...IntOption) (*Int, error) {
	o := resolveIntOptions(HintDefault, opts)

	width, err := c.registerWidth("new int", value, o)
	if err != nil {
		return nil, err
	}

	x, err := newInt(c, width)
	if err != nil {
		return nil, err
	}

	for i, q := range x.qubits {
		if bitSet(value, i) {
			c.emit(Unary(GateX, q))
		}
	}

	x.initial = value
	x.value = value
	x.known = true

	return x, nil
}

func newInt(c *Circuit, width int) (*Int, error) {
	bits, err := c.allocate(width)
	if err != nil {
		return nil, err
	}

	return &Int{
		handle:        handle{circuit: c},
		qubits:        bits,
		distinguished: -1,
	}, nil
}

func (c *Circuit) registerWidth(op string, value uint64, o intOptions) (int, error) {
	if !o.widthSet {
		return c.chooseWidth(op, value, o.hint)
	}

	if o.width < 1 || o.width > maxRegisterWidth {
		return 0, newError(DomainError, op, "width %d outside [1, %d]", o.width, maxRegisterWidth)
	}

	if !covers(o.width, value) {
		return 0, newError(CapacityError, op, "%d does not fit in %d bits", value, o.width)
	}

	return o.width, nil
}

/*
chooseWidth picks a register width for value. A canonical width qualifies when it holds value
and fits in what is left of the pool:

  - HintDefault tries the medium width, then the big one
  - HintBig tries the big width
  - HintMinimal tries all three, smallest first
  - HintSmall tries the small width and nothing else

Every hint but HintSmall then falls back to the rest of the pool (at most 64 bits) when that is
enough to hold value.
*/
func (c *Circuit) chooseWidth(op string, value uint64, hint WidthHint) (int, error) {
	cfg := c.config
	remaining := c.pool.Remaining()

	var candidates []int

	switch hint {
	case HintSmall:
		candidates = []int{cfg.SmallWidth}
	case HintBig:
		candidates = []int{cfg.BigWidth}
	case HintMinimal:
		candidates = cfg.canonicalWidths()
	default:
		candidates = []int{cfg.MediumWidth, cfg.BigWidth}
	}

	for _, w := range candidates {
		if covers(w, value) && w <= remaining {
			return w, nil
		}
	}

	if hint != HintSmall {
		rest := min(remaining, maxRegisterWidth)
		if rest > 0 && covers(rest, value) {
			c.logger.Debug("no canonical width fits, using the rest of the pool", "op", op, "width", rest)
			return rest, nil
		}
	}

	return 0, newError(CapacityError, op, "no width holds %d with %d bits remaining", value, remaining)
}

// Width is the number of bits the register owns.
func (x *Int) Width() int {
	return len(x.qubits)
}

// Qubits lists the register's bits, least significant first.
func (x *Int) Qubits() []int {
	return append([]int(nil), x.qubits...)
}

// Initial is the value the register was constructed with.
func (x *Int) Initial() uint64 {
	return x.initial
}

// Value returns the register's contents when they are known at compile time.
func (x *Int) Value() (uint64, bool) {
	return x.value, x.known
}

// DistinguishedBit returns the qubit MeasureSup measures first, if there is one.
func (x *Int) DistinguishedBit() (int, bool) {
	if x.distinguished < 0 {
		return 0, false
	}
	return x.qubits[x.distinguished], true
}

// AllValues spreads every bit, giving an even distribution over all 2^width integers.
func (x *Int) AllValues() error {
	if err := x.check("all values"); err != nil {
		return err
	}

	for _, q := range x.qubits {
		x.circuit.emit(Unary(GateH, q))
	}

	x.known = false
	x.distinguished = -1

	return nil
}

/*
Increment adds one modulo 2^width. Bits are flipped from the most significant down, bit k
under the control of every bit below it, so each flip still sees the old lower bits. The widest
flip has width-1 controls; its ancilla are borrowed once for the whole chain and returned before
Increment does. When fewer remain, the flips they cannot cover lower onto the bits above them in
the register, or onto no ancilla at all for the top flip of a full pool.
*/
func (x *Int) Increment() error {
	if err := x.check("increment"); err != nil {
		return err
	}

	w := len(x.qubits)
	if w == 0 {
		return &Error{Kind: DomainError, Op: "increment", Err: errors.New("register owns no bits")}
	}

	c := x.circuit

	err := c.borrow(ancillaNeeded(w-1), func(ancilla []int) error {
		for k := w - 1; k >= 0; k-- {
			c.flip("increment", x.qubits[:k], x.qubits[k], ancilla)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if x.known {
		x.value = (x.value + 1) & widthMask(w)
	}

	return nil
}

func widthMask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(w) - 1
}

// Measure measures every bit, in register order, into fresh result bits.
func (x *Int) Measure() error {
	if err := x.check("measure"); err != nil {
		return err
	}

	order := make([]int, len(x.qubits))
	for i := range order {
		order[i] = i
	}

	return x.measure(order)
}

/*
MeasureSafe measures register position first before any other bit. It warns, without failing,
when another value on the pool has already been measured, since that may have skewed the joint
probabilities this register was synthesized with.
*/
func (x *Int) MeasureSafe(first int) error {
	if err := x.check("measure safe"); err != nil {
		return err
	}

	if first < 0 || first >= len(x.qubits) {
		return newError(DomainError, "measure safe", "position %d outside register of %d bits", first, len(x.qubits))
	}

	if !x.known {
		x.circuit.warnCollapsed("measure safe")
	}

	order := make([]int, 0, len(x.qubits))
	order = append(order, first)

	for i := range x.qubits {
		if i != first {
			order = append(order, i)
		}
	}

	return x.measure(order)
}

// MeasureSup measures a superposed register distinguished bit first.
func (x *Int) MeasureSup() error {
	if x.distinguished < 0 {
		return x.Measure()
	}
	return x.MeasureSafe(x.distinguished)
}

// measure allocates one result bit per position (in register order) and emits in the given order.
func (x *Int) measure(order []int) error {
	c := x.circuit

	clbits, err := c.pool.AllocateResult(len(x.qubits))
	if err != nil {
		return err
	}

	for _, pos := range order {
		c.emit(Measure(x.qubits[pos], clbits[pos]))
	}

	x.clbits = clbits
	c.pool.observeCollapse()

	return nil
}

// Extract decodes the register from one backend outcome, least significant bit first.
func (x *Int) Extract(o Outcome) (uint64, error) {
	if err := x.check("extract"); err != nil {
		return 0, err
	}

	if x.clbits == nil {
		return 0, &Error{Kind: StateError, Op: "extract", Err: errors.New("register was never measured")}
	}

	var v uint64

	for pos, cl := range x.clbits {
		set, err := o.Bit(cl)
		if err != nil {
			return 0, err
		}
		if set {
			v |= uint64(1) << uint(pos)
		}
	}

	return v, nil
}

// ExtractCounts sums the histogram by decoded integer.
func (x *Int) ExtractCounts(h Histogram) (map[uint64]int, error) {
	counts := make(map[uint64]int)

	for o, n := range h {
		v, err := x.Extract(o)
		if err != nil {
			return nil, err
		}
		counts[v] += n
	}

	return counts, nil
}

// Free zeroes the register and returns its bits to the pool.
func (x *Int) Free() error {
	if err := x.check("free"); err != nil {
		return err
	}

	for i, q := range x.qubits {
		switch {
		case !x.known:
			x.circuit.emit(Unary(GateReset, q))
		case bitSet(x.value, i):
			x.circuit.emit(Unary(GateX, q))
		}
	}

	x.circuit.release(x.qubits)
	x.freed = true

	return nil
}
