package qtypes

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies an instruction record.
type Kind int

const (
	KindDeclare Kind = iota
	KindUnary
	KindControlled
	KindDoublyControlled
	KindMultiControlled
	KindControlledRotation
	KindMeasure
)

var kindLabel = map[Kind]string{
	KindDeclare:            "declare",
	KindUnary:              "unary",
	KindControlled:         "controlled_flip",
	KindDoublyControlled:   "doubly_controlled_flip",
	KindMultiControlled:    "multi_controlled_flip",
	KindControlledRotation: "controlled_rotation",
	KindMeasure:            "measure",
}

func (k Kind) String() string {
	return kindLabel[k]
}

// Unary gate names understood by the target format.
const (
	GateX     = "x"
	GateH     = "h"
	GateRY    = "ry"
	GateU1    = "u1"
	GateReset = "reset"
)

/*
Instruction is one record of the append-only program log.
Which fields matter depends on Kind:

  - Declare: DataWidth, ResultWidth
  - Unary: Gate, Target, Angle (ry, u1)
  - Controlled / DoublyControlled / MultiControlled: Controls, Target, Ancilla (multi only)
  - ControlledRotation: Controls[0], Target, Probability, Angle
  - Measure: Target, Clbit
*/
type Instruction struct {
	Kind        Kind
	Gate        string
	Target      int
	Controls    []int
	Ancilla     []int
	Angle       float64
	Probability Probability
	Clbit       int
	DataWidth   int
	ResultWidth int
}

// Declare sizes the data and result registers. It is the first record of every program.
func Declare(data, result int) Instruction {
	return Instruction{Kind: KindDeclare, DataWidth: data, ResultWidth: result}
}

// Unary applies a single-qubit gate without a parameter, or resets target.
func Unary(gate string, target int) Instruction {
	return Instruction{Kind: KindUnary, Gate: gate, Target: target}
}

// Rotation applies a parameterised single-qubit gate (ry, u1).
func Rotation(gate string, angle float64, target int) Instruction {
	return Instruction{Kind: KindUnary, Gate: gate, Target: target, Angle: angle}
}

// CX flips target when control is 1.
func CX(control, target int) Instruction {
	return Instruction{Kind: KindControlled, Controls: []int{control}, Target: target}
}

// CCX flips target when both a and b are 1.
func CCX(a, b, target int) Instruction {
	return Instruction{Kind: KindDoublyControlled, Controls: []int{a, b}, Target: target}
}

/*
MCX flips target when every control is 1. Ancilla are clean bits lent for the flip and
returned at zero; a record may carry fewer than the V-chain needs, or none.
*/
func MCX(controls []int, target int, ancilla []int) Instruction {
	return Instruction{
		Kind:     KindMultiControlled,
		Controls: append([]int(nil), controls...),
		Target:   target,
		Ancilla:  append([]int(nil), ancilla...),
	}
}

// CRotation rotates target so it reads 1 with probability p whenever control is 1.
func CRotation(control, target int, p Probability) Instruction {
	return Instruction{
		Kind:        KindControlledRotation,
		Controls:    []int{control},
		Target:      target,
		Probability: p,
		Angle:       p.Angle(),
	}
}

// Measure reads target into result bit clbit.
func Measure(target, clbit int) Instruction {
	return Instruction{Kind: KindMeasure, Target: target, Clbit: clbit}
}

// Reversible reports whether the record is a unitary gate.
func (ins Instruction) Reversible() bool {
	switch ins.Kind {
	case KindDeclare, KindMeasure:
		return false
	case KindUnary:
		return ins.Gate != GateReset
	}
	return true
}

/*
Inverse returns the exact inverse of a gate record. Flips and the equal-weight spread are their
own inverses; rotations invert by negating the angle. Declarations, measurements and resets have
no inverse and report false.
*/
func (ins Instruction) Inverse() (Instruction, bool) {
	if !ins.Reversible() {
		return ins, false
	}

	inv := ins
	inv.Controls = append([]int(nil), ins.Controls...)
	inv.Ancilla = append([]int(nil), ins.Ancilla...)

	switch {
	case ins.Kind == KindControlledRotation:
		inv.Angle = -ins.Angle
	case ins.Kind == KindUnary && (ins.Gate == GateRY || ins.Gate == GateU1):
		inv.Angle = -ins.Angle
	}

	return inv, true
}

// Qubits lists every data bit the record touches.
func (ins Instruction) Qubits() []int {
	switch ins.Kind {
	case KindDeclare:
		return nil
	case KindUnary, KindMeasure:
		return []int{ins.Target}
	}

	out := make([]int, 0, len(ins.Controls)+len(ins.Ancilla)+1)
	out = append(out, ins.Controls...)
	out = append(out, ins.Ancilla...)

	return append(out, ins.Target)
}

func (ins Instruction) String() string {
	switch ins.Kind {
	case KindDeclare:
		return fmt.Sprintf("declare q[%d] c[%d]", ins.DataWidth, ins.ResultWidth)
	case KindUnary:
		if ins.Gate == GateRY || ins.Gate == GateU1 {
			return fmt.Sprintf("%s(%s) q[%d]", ins.Gate, formatAngle(ins.Angle), ins.Target)
		}
		return fmt.Sprintf("%s q[%d]", ins.Gate, ins.Target)
	case KindMeasure:
		return fmt.Sprintf("measure q[%d] -> c[%d]", ins.Target, ins.Clbit)
	case KindControlledRotation:
		return fmt.Sprintf("crot(%s) q[%d],q[%d]", formatAngle(ins.Angle), ins.Controls[0], ins.Target)
	}

	var sb strings.Builder
	sb.WriteString(ins.Kind.String())
	sb.WriteString(" ")
	sb.WriteString(joinQubits(ins.Controls))
	fmt.Fprintf(&sb, " -> q[%d]", ins.Target)

	if len(ins.Ancilla) > 0 {
		sb.WriteString(" anc ")
		sb.WriteString(joinQubits(ins.Ancilla))
	}

	return sb.String()
}

func joinQubits(bits []int) string {
	parts := make([]string, len(bits))
	for i, b := range bits {
		parts[i] = fmt.Sprintf("q[%d]", b)
	}
	return strings.Join(parts, ",")
}

// formatAngle writes a real literal OpenQASM accepts (no exponent form).
func formatAngle(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}
