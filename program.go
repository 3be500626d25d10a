package qtypes

import (
	"github.com/google/uuid"
)

/*
Program is the append-only instruction log of one compiled circuit. It is the only thing the
backend ever sees. Records are never edited or removed once appended.
*/
type Program struct {
	id           string
	instructions []Instruction
}

// NewProgram starts an empty log under a fresh id.
func NewProgram() *Program {
	return &Program{
		id:           "prog_" + uuid.New().String(),
		instructions: make([]Instruction, 0, 64),
	}
}

// ID identifies the program, e.g. for naming whatever the backend stages it as.
func (p *Program) ID() string {
	return p.id
}

// Append adds records to the end of the log.
func (p *Program) Append(ins ...Instruction) {
	p.instructions = append(p.instructions, ins...)
}

// Len is the number of records appended so far, usable as a mark for Since.
func (p *Program) Len() int {
	return len(p.instructions)
}

// Instructions returns a copy of the log.
func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.instructions))
	copy(out, p.instructions)
	return out
}

// Since returns the records appended at or after position mark.
func (p *Program) Since(mark int) []Instruction {
	mark = max(mark, 0)
	if mark >= len(p.instructions) {
		return nil
	}
	out := make([]Instruction, len(p.instructions)-mark)
	copy(out, p.instructions[mark:])
	return out
}

// Declaration returns the program's declare record, if it has one.
func (p *Program) Declaration() (Instruction, bool) {
	for _, ins := range p.instructions {
		if ins.Kind == KindDeclare {
			return ins, true
		}
	}
	return Instruction{}, false
}

/*
Lowered expands every record into target-format primitives. Multi-controlled flips short of
ancilla may borrow any declared data bit they do not touch.
*/
func (p *Program) Lowered() []Instruction {
	decl, _ := p.Declaration()

	out := make([]Instruction, 0, len(p.instructions))
	for _, ins := range p.instructions {
		out = append(out, lowerWithin(ins, decl.DataWidth)...)
	}
	return out
}
