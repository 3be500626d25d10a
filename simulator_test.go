package qtypes

import (
	"context"
	"io"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// amplitudeEpsilon drops basis states whose amplitude has cancelled out.
const amplitudeEpsilon = 1e-12

/*
stateVector is a sparse simulation of up to 64 qubits, keyed by basis state. Only the states with
a non-zero amplitude are stored, which keeps the registers used in tests cheap to simulate.
*/
type stateVector map[uint64]complex128

func newStateVector() stateVector {
	return stateVector{0: 1}
}

/*
apply1 applies the single-qubit matrix m to qubit t on every basis state where cond holds and
leaves the others as they are.
*/
func (sv stateVector) apply1(t int, m [2][2]complex128, cond func(uint64) bool) stateVector {
	bit := uint64(1) << uint(t)
	out := make(stateVector, len(sv))

	for k, a := range sv {
		if cond != nil && !cond(k) {
			out[k] += a
			continue
		}

		k0, k1 := k&^bit, k|bit
		col := 0
		if k&bit != 0 {
			col = 1
		}

		out[k0] += m[0][col] * a
		out[k1] += m[1][col] * a
	}

	for k, a := range out {
		if cmplx.Abs(a) < amplitudeEpsilon {
			delete(out, k)
		}
	}

	return out
}

func (sv stateVector) permute(fn func(uint64) uint64) stateVector {
	out := make(stateVector, len(sv))
	for k, a := range sv {
		out[fn(k)] += a
	}
	return out
}

func ry(theta float64) [2][2]complex128 {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return [2][2]complex128{{c, -s}, {s, c}}
}

var hadamard = [2][2]complex128{
	{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
	{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
}

func controlledOn(bits ...int) func(uint64) bool {
	return func(k uint64) bool {
		for _, b := range bits {
			if !bitSet(k, b) {
				return false
			}
		}
		return true
	}
}

// gate applies one lowered unitary record.
func (sv stateVector) gate(ins Instruction) (stateVector, error) {
	switch ins.Kind {
	case KindUnary:
		t := ins.Target
		switch ins.Gate {
		case GateX:
			return sv.permute(func(k uint64) uint64 { return k ^ uint64(1)<<uint(t) }), nil
		case GateH:
			return sv.apply1(t, hadamard, nil), nil
		case GateRY:
			return sv.apply1(t, ry(ins.Angle), nil), nil
		case GateU1:
			phase := cmplx.Exp(complex(0, ins.Angle))
			return sv.apply1(t, [2][2]complex128{{1, 0}, {0, phase}}, nil), nil
		}
	case KindControlled, KindDoublyControlled:
		t := ins.Target
		cond := controlledOn(ins.Controls...)
		return sv.permute(func(k uint64) uint64 {
			if cond(k) {
				return k ^ uint64(1)<<uint(t)
			}
			return k
		}), nil
	case KindControlledRotation:
		return sv.apply1(ins.Target, ry(ins.Angle), controlledOn(ins.Controls[0])), nil
	}

	return nil, errors.Errorf("simulator cannot apply %s", ins)
}

// probabilityOne is the chance qubit t measures 1.
func (sv stateVector) probabilityOne(t int) float64 {
	p := 0.0
	for k, a := range sv {
		if bitSet(k, t) {
			p += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	return p
}

// collapse projects qubit t onto value and renormalizes.
func (sv stateVector) collapse(t int, value bool, p float64) stateVector {
	norm := complex(math.Sqrt(p), 0)
	out := make(stateVector, len(sv))
	for k, a := range sv {
		if bitSet(k, t) == value {
			out[k] = a / norm
		}
	}
	return out
}

/*
simBackend runs programs on stateVector. In exact mode each outcome gets round(p·shots) counts,
which makes statistical assertions deterministic; otherwise shots are drawn from a seeded PCG.
Programs whose measurements all come last are simulated once; anything with a reset or a
mid-circuit measurement is simulated shot by shot.
*/
type simBackend struct {
	data   int
	result int
	shots  int
	exact  bool
	rng    *rand.Rand

	capacityErr error
	runErr      error
	runs        int
}

func newSimBackend(data, result int) *simBackend {
	return &simBackend{
		data:   data,
		result: result,
		shots:  4096,
		exact:  true,
		rng:    rand.New(rand.NewPCG(7, 11)),
	}
}

func (b *simBackend) Capacity(ctx context.Context) (int, int, error) {
	if b.capacityErr != nil {
		return 0, 0, b.capacityErr
	}
	return b.data, b.result, nil
}

func (b *simBackend) Run(ctx context.Context, program *Program) (Histogram, error) {
	b.runs++

	if b.runErr != nil {
		return nil, b.runErr
	}

	decl, ok := program.Declaration()
	if !ok {
		return nil, errors.New("program has no declaration")
	}

	ops := make([]Instruction, 0)
	for _, ins := range program.Lowered() {
		if ins.Kind != KindDeclare {
			ops = append(ops, ins)
		}
	}

	split := len(ops)
	for i, ins := range ops {
		if ins.Kind == KindMeasure {
			split = i
			break
		}
	}

	for _, ins := range ops[:split] {
		if ins.Kind == KindUnary && ins.Gate == GateReset {
			return b.runShots(ops, decl.ResultWidth)
		}
	}

	for _, ins := range ops[split:] {
		if ins.Kind != KindMeasure {
			return b.runShots(ops, decl.ResultWidth)
		}
	}

	sv := newStateVector()
	for _, ins := range ops[:split] {
		next, err := sv.gate(ins)
		if err != nil {
			return nil, err
		}
		sv = next
	}

	dist := make(map[Outcome]float64)
	for k, a := range sv {
		out := []byte(zeroOutcome(decl.ResultWidth))
		for _, m := range ops[split:] {
			if bitSet(k, m.Target) {
				out[m.Clbit] = '1'
			} else {
				out[m.Clbit] = '0'
			}
		}
		dist[Outcome(out)] += real(a)*real(a) + imag(a)*imag(a)
	}

	return b.histogram(dist), nil
}

func (b *simBackend) histogram(dist map[Outcome]float64) Histogram {
	hist := make(Histogram)

	if b.exact {
		for o, p := range dist {
			if n := int(math.Round(p * float64(b.shots))); n > 0 {
				hist[o] = n
			}
		}
		return hist
	}

	outcomes := make([]Outcome, 0, len(dist))
	for o := range dist {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })

	for i := 0; i < b.shots; i++ {
		r := b.rng.Float64()
		cumulative := 0.0
		picked := outcomes[len(outcomes)-1]
		for _, o := range outcomes {
			cumulative += dist[o]
			if r <= cumulative {
				picked = o
				break
			}
		}
		hist[picked]++
	}

	return hist
}

// runShots simulates every shot from scratch, collapsing at each reset and measurement.
func (b *simBackend) runShots(ops []Instruction, resultWidth int) (Histogram, error) {
	hist := make(Histogram)

	for shot := 0; shot < b.shots; shot++ {
		sv := newStateVector()
		out := []byte(zeroOutcome(resultWidth))

		for _, ins := range ops {
			switch {
			case ins.Kind == KindMeasure, ins.Kind == KindUnary && ins.Gate == GateReset:
				p1 := sv.probabilityOne(ins.Target)
				one := b.rng.Float64() < p1

				if one {
					sv = sv.collapse(ins.Target, true, p1)
				} else {
					sv = sv.collapse(ins.Target, false, 1-p1)
				}

				if ins.Kind == KindMeasure {
					if one {
						out[ins.Clbit] = '1'
					}
					continue
				}

				if one {
					t := ins.Target
					sv = sv.permute(func(k uint64) uint64 { return k ^ uint64(1)<<uint(t) })
				}
			default:
				next, err := sv.gate(ins)
				if err != nil {
					return nil, err
				}
				sv = next
			}
		}

		hist[Outcome(out)]++
	}

	return hist, nil
}

func zeroOutcome(width int) string {
	out := make([]byte, width)
	for i := range out {
		out[i] = '0'
	}
	return string(out)
}

// simulate runs only the unitary records of a program and returns the final state.
func simulate(program *Program) (stateVector, error) {
	sv := newStateVector()
	for _, ins := range program.Lowered() {
		if !ins.Reversible() {
			continue
		}
		next, err := sv.gate(ins)
		if err != nil {
			return nil, err
		}
		sv = next
	}
	return sv, nil
}

// quietLogger keeps degraded-path warnings out of test output.
func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// newTestCircuit starts a circuit on a fresh exact simulator.
func newTestCircuit(data, result int) (*Circuit, *simBackend) {
	b := newSimBackend(data, result)
	c := NewCircuit(b, NewConfig(), WithLogger(quietLogger()))

	if err := c.Start(context.Background()); err != nil {
		panic(err)
	}

	return c, b
}
