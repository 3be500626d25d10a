package qtypes

import "math"

// maxPhaseParityControls bounds the phase-parity construction, whose gate count doubles per control.
const maxPhaseParityControls = 5

/*
Lower expands a record into primitives the target format understands. Multi-controlled flips
become x/cx/ccx for up to two controls and a Toffoli V-chain when controls-2 ancilla were
supplied. With fewer, whatever ancilla the record carries are used as dirty ones, and with none
at all the flip is built from h, u1 and cx alone. All other records pass through.
*/
func Lower(ins Instruction) []Instruction {
	return lowerWithin(ins, 0)
}

/*
lowerWithin lowers ins inside a register of width data bits. A multi-controlled flip short of
clean ancilla may borrow any other bit of the register as a dirty ancilla: the constructions
using them restore whatever state they held, so a bit owned by another value is as good as a
free one.
*/
func lowerWithin(ins Instruction, width int) []Instruction {
	if ins.Kind != KindMultiControlled {
		return []Instruction{ins}
	}

	var dirty []int
	if short := ancillaNeeded(len(ins.Controls)) - len(ins.Ancilla); short > 0 {
		dirty = idleBits(width, ins, short)
	}

	return lowerMCX(ins.Controls, ins.Target, ins.Ancilla, dirty)
}

// idleBits picks up to n bits of the register that ins does not touch.
func idleBits(width int, ins Instruction, n int) []int {
	busy := make(map[int]bool, len(ins.Controls)+len(ins.Ancilla)+1)
	for _, q := range ins.Qubits() {
		busy[q] = true
	}

	out := make([]int, 0, n)
	for q := 0; q < width && len(out) < n; q++ {
		if !busy[q] {
			out = append(out, q)
		}
	}

	return out
}

// ancillaNeeded is how many ancilla the V-chain uses for n controls.
func ancillaNeeded(n int) int {
	if n < 3 {
		return 0
	}
	return n - 2
}

func lowerMCX(controls []int, target int, ancilla, dirty []int) []Instruction {
	n := len(controls)
	if n < 3 {
		return []Instruction{basicFlip(controls, target)}
	}

	if len(ancilla) >= ancillaNeeded(n) {
		return vChain(controls, target, ancilla[:ancillaNeeded(n)])
	}

	spare := append(append([]int(nil), ancilla...), dirty...)
	if len(spare) > 0 {
		return dirtyFlip(controls, target, spare)
	}

	if n <= maxPhaseParityControls {
		return phaseParity(controls, target)
	}

	return rotationFlip(controls, target)
}

func basicFlip(controls []int, target int) Instruction {
	switch len(controls) {
	case 0:
		return Unary(GateX, target)
	case 1:
		return CX(controls[0], target)
	}
	return CCX(controls[0], controls[1], target)
}

/*
vChain ANDs the controls pairwise into the ancilla, flips the target off the last partial
product, then uncomputes the ancilla back to zero in reverse order.
*/
func vChain(controls []int, target int, ancilla []int) []Instruction {
	n := len(controls)

	compute := []Instruction{CCX(controls[0], controls[1], ancilla[0])}
	for i := 2; i <= n-2; i++ {
		compute = append(compute, CCX(controls[i], ancilla[i-2], ancilla[i-1]))
	}

	out := make([]Instruction, 0, 2*len(compute)+1)
	out = append(out, compute...)
	out = append(out, CCX(controls[n-1], ancilla[n-3], target))

	for i := len(compute) - 1; i >= 0; i-- {
		out = append(out, compute[i])
	}

	return out
}

/*
dirtyFlip builds the flip on spare bits in an unknown state. With controls-2 of them it is the
dirty V-chain. With fewer, the controls are split in two halves around one spare bit, each half
then having the other half (and the target, or the spare) to borrow from.
*/
func dirtyFlip(controls []int, target int, spare []int) []Instruction {
	n := len(controls)
	if n < 3 {
		return []Instruction{basicFlip(controls, target)}
	}

	if len(spare) >= n-2 {
		return dirtyChain(controls, target, spare[:n-2])
	}

	a := spare[0]
	m := (n + 1) / 2

	low := append([]int(nil), controls[:m]...)
	high := append([]int(nil), controls[m:]...)

	collect := dirtyFlip(low, a, append(append([]int(nil), high...), target))
	apply := dirtyFlip(append(high, a), target, low)

	out := make([]Instruction, 0, 2*(len(collect)+len(apply)))
	out = append(out, collect...)
	out = append(out, apply...)
	out = append(out, collect...)

	return append(out, apply...)
}

/*
dirtyChain is the V-chain run twice with its uncompute folded in, so every ancilla ends in the
state it started in whatever that was. The target sees the product once with the old ancilla
contents and once with the new, and the old contents cancel.
*/
func dirtyChain(controls []int, target int, ancilla []int) []Instruction {
	n := len(controls)

	down := make([]Instruction, 0, n-3)
	for i := n - 2; i >= 2; i-- {
		down = append(down, CCX(controls[i], ancilla[i-2], ancilla[i-1]))
	}

	half := make([]Instruction, 0, 2*len(down)+2)
	half = append(half, CCX(controls[n-1], ancilla[n-3], target))
	half = append(half, down...)
	half = append(half, CCX(controls[0], controls[1], ancilla[0]))

	for i := len(down) - 1; i >= 0; i-- {
		half = append(half, down[i])
	}

	return append(half, half...)
}

/*
phaseParity builds the multi-controlled flip without ancilla. Conjugating the target with h turns
it into a phase of π on the all-ones state of controls+target, and that phase splits into one u1
per non-empty subset S of the m qubits:

	π·AND(x) = Σ_S (-1)^(|S|-1) · π/2^(m-1) · parity_S(x)

Each parity is gathered onto the subset's last qubit with cx, phased, and scattered back.
*/
func phaseParity(controls []int, target int) []Instruction {
	qubits := append(append([]int(nil), controls...), target)
	m := len(qubits)
	unit := math.Pi / float64(uint64(1)<<uint(m-1))

	out := []Instruction{Unary(GateH, target)}

	for mask := uint64(1); mask < uint64(1)<<uint(m); mask++ {
		members := make([]int, 0, m)
		for i := 0; i < m; i++ {
			if mask&(uint64(1)<<uint(i)) != 0 {
				members = append(members, qubits[i])
			}
		}

		acc := members[len(members)-1]
		rest := members[:len(members)-1]

		angle := unit
		if len(members)%2 == 0 {
			angle = -unit
		}

		for _, q := range rest {
			out = append(out, CX(q, acc))
		}

		out = append(out, Rotation(GateU1, angle, acc))

		for i := len(rest) - 1; i >= 0; i-- {
			out = append(out, CX(rest[i], acc))
		}
	}

	return append(out, Unary(GateH, target))
}

/*
rotationFlip is the ancilla-free flip for any number of controls, quadratic in gate count. Under
h on the target the flip is a phase of π on the all-ones state of controls+target, which
allOnesPhase peels one qubit at a time.
*/
func rotationFlip(controls []int, target int) []Instruction {
	qubits := append(append([]int(nil), controls...), target)

	out := []Instruction{Unary(GateH, target)}
	out = append(out, allOnesPhase(qubits, math.Pi)...)

	return append(out, Unary(GateH, target))
}

/*
allOnesPhase applies e^(iφ) to the state where every qubit is 1. On the last qubit that is a
u1(φ) controlled by the rest, and u1(φ) is e^(iφ/2)·rz(φ): the global factor becomes a phase of
φ/2 on the rest, the rz a controlled rz.
*/
func allOnesPhase(qubits []int, phi float64) []Instruction {
	n := len(qubits)
	if n == 1 {
		return []Instruction{Rotation(GateU1, phi, qubits[0])}
	}

	out := allOnesPhase(qubits[:n-1], phi/2)

	return append(out, controlledRZ(qubits[:n-1], qubits[n-1], phi)...)
}

/*
controlledRZ applies rz(φ) to target when every control is 1. The last control drives rz(-φ/2)
between two flips from the others and rz(φ/2) after them, so the halves add up only when the
flips fired. Those flips borrow the last control as their one dirty ancilla.
*/
func controlledRZ(controls []int, target int, phi float64) []Instruction {
	m := len(controls)
	last := controls[m-1]

	if m == 1 {
		return singleRZ(last, target, phi)
	}

	flip := dirtyFlip(controls[:m-1], target, []int{last})

	out := make([]Instruction, 0, 2*len(flip)+8)
	out = append(out, flip...)
	out = append(out, singleRZ(last, target, -phi/2)...)
	out = append(out, flip...)

	return append(out, singleRZ(last, target, phi/2)...)
}

// singleRZ is rz(φ) on target controlled by one qubit, from u1 and cx.
func singleRZ(control, target int, phi float64) []Instruction {
	return []Instruction{
		Rotation(GateU1, phi/2, target),
		CX(control, target),
		Rotation(GateU1, -phi/2, target),
		CX(control, target),
	}
}
