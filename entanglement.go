package qtypes

import (
	"strconv"
	"time"
)

/*
Entanglement records the group of booleans tied together by Entangle. Measuring any member
always gives the same outcome as measuring any other, so the group is a logical correlation,
never shared ownership of a bit: each member still owns and frees its own qubit.

Links are kept in the order they were made, each with a monotonically increasing sequence
number, so the history of how the group grew can be replayed.
*/
type Entanglement struct {
	ID        string
	CreatedAt time.Time
	members   []*Bool
	ledger    []Link
}

/*
Link is an immutable record of one Entangle call: the qubit that was copied from and the fresh
qubit it was copied into.
*/
type Link struct {
	Sequence uint64
	Source   int
	Target   int
	LinkedAt time.Time
}

func newEntanglement(id string, root *Bool) *Entanglement {
	return &Entanglement{
		ID:        id,
		CreatedAt: time.Now(),
		members:   []*Bool{root},
		ledger:    make([]Link, 0),
	}
}

func (e *Entanglement) contains(b *Bool) bool {
	for _, m := range e.members {
		if m == b {
			return true
		}
	}
	return false
}

func (e *Entanglement) add(source, target *Bool) {
	e.members = append(e.members, target)
	e.ledger = append(e.ledger, Link{
		Sequence: uint64(len(e.ledger) + 1),
		Source:   source.qubit,
		Target:   target.qubit,
		LinkedAt: time.Now(),
	})
}

// Members returns the values in the group that have not been freed.
func (e *Entanglement) Members() []*Bool {
	out := make([]*Bool, 0, len(e.members))
	for _, m := range e.members {
		if !m.freed {
			out = append(out, m)
		}
	}
	return out
}

// Ledger returns the links in the order they were made.
func (e *Entanglement) Ledger() []Link {
	out := make([]Link, len(e.ledger))
	copy(out, e.ledger)
	return out
}

// entangle records that target was copied from source.
func (c *Circuit) entangle(source, target *Bool) *Entanglement {
	group := c.entanglementOf(source)
	if group == nil {
		group = newEntanglement(c.program.ID()+"_ent_"+strconv.Itoa(len(c.entanglements)), source)
		c.entanglements = append(c.entanglements, group)
	}

	group.add(source, target)

	return group
}

func (c *Circuit) entanglementOf(b *Bool) *Entanglement {
	for _, group := range c.entanglements {
		if group.contains(b) {
			return group
		}
	}
	return nil
}

// Entanglements lists every group created on this circuit.
func (c *Circuit) Entanglements() []*Entanglement {
	out := make([]*Entanglement, len(c.entanglements))
	copy(out, c.entanglements)
	return out
}
