package qtypes

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

/*
EncodeQASM writes the program as OpenQASM 2.0 against qelib1.inc. Records are lowered first, so
multi-controlled flips arrive as x/cx/ccx/h/u1 sequences and controlled rotations as cu3(θ,0,0).
The program must start with its declare record.
*/
func EncodeQASM(w io.Writer, p *Program) error {
	decl, ok := p.Declaration()
	if !ok {
		return &Error{Kind: StateError, Op: "encode qasm", Err: errors.New("program has no declare record")}
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "OPENQASM 2.0;")
	fmt.Fprintln(bw, `include "qelib1.inc";`)
	fmt.Fprintf(bw, "qreg q[%d];\n", decl.DataWidth)
	fmt.Fprintf(bw, "creg c[%d];\n", decl.ResultWidth)

	for _, ins := range p.Lowered() {
		line, err := qasmLine(ins)
		if err != nil {
			return err
		}
		if line != "" {
			fmt.Fprintln(bw, line)
		}
	}

	return errors.Wrap(bw.Flush(), "flush qasm")
}

// QASM renders the whole program as a string.
func (p *Program) QASM() (string, error) {
	var sb strings.Builder
	if err := EncodeQASM(&sb, p); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func qasmLine(ins Instruction) (string, error) {
	switch ins.Kind {
	case KindDeclare:
		return "", nil
	case KindUnary:
		switch ins.Gate {
		case GateRY, GateU1:
			return fmt.Sprintf("%s(%s) q[%d];", ins.Gate, formatAngle(ins.Angle), ins.Target), nil
		case GateX, GateH, GateReset:
			return fmt.Sprintf("%s q[%d];", ins.Gate, ins.Target), nil
		}
		return "", newError(DomainError, "encode qasm", "unknown gate %q", ins.Gate)
	case KindControlled:
		return fmt.Sprintf("cx q[%d],q[%d];", ins.Controls[0], ins.Target), nil
	case KindDoublyControlled:
		return fmt.Sprintf("ccx q[%d],q[%d],q[%d];", ins.Controls[0], ins.Controls[1], ins.Target), nil
	case KindControlledRotation:
		return fmt.Sprintf("cu3(%s,0,0) q[%d],q[%d];", formatAngle(ins.Angle), ins.Controls[0], ins.Target), nil
	case KindMeasure:
		return fmt.Sprintf("measure q[%d] -> c[%d];", ins.Target, ins.Clbit), nil
	}

	return "", newError(DomainError, "encode qasm", "record %s was not lowered", ins.Kind)
}
