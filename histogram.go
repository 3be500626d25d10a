package qtypes

import (
	"math/rand/v2"
	"sort"
)

// Outcome is one complete result-bit assignment; character i holds result bit i.
type Outcome string

// Bit reads result bit i.
func (o Outcome) Bit(i int) (bool, error) {
	if i < 0 || i >= len(o) {
		return false, newError(DomainError, "outcome bit", "result bit %d outside outcome of %d bits", i, len(o))
	}

	switch o[i] {
	case '0':
		return false, nil
	case '1':
		return true, nil
	}

	return false, newError(DomainError, "outcome bit", "result bit %d holds %q", i, o[i])
}

// Reverse flips the bit order, for services reporting big-endian keys.
func (o Outcome) Reverse() Outcome {
	b := []byte(o)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return Outcome(b)
}

// Histogram maps each observed outcome to the number of runs that produced it.
type Histogram map[Outcome]int

// Total is the number of shots the histogram was built from.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Outcomes lists the observed outcomes in lexical order.
func (h Histogram) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(h))
	for o := range h {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MostFrequent returns the outcome seen most often, breaking ties at random.
func (h Histogram) MostFrequent() (Outcome, error) {
	if len(h) == 0 {
		return "", newError(StateError, "most frequent", "empty histogram")
	}

	best := -1
	var choices []Outcome

	for _, o := range h.Outcomes() {
		switch n := h[o]; {
		case n > best:
			best = n
			choices = []Outcome{o}
		case n == best:
			choices = append(choices, o)
		}
	}

	return choices[rand.IntN(len(choices))], nil
}

// Sample draws one outcome with probability proportional to its count.
func (h Histogram) Sample() (Outcome, error) {
	total := h.Total()
	if total <= 0 {
		return "", newError(StateError, "sample", "empty histogram")
	}

	r := rand.IntN(total)
	cumulative := 0

	outcomes := h.Outcomes()
	for _, o := range outcomes {
		cumulative += h[o]
		if r < cumulative {
			return o, nil
		}
	}

	return outcomes[len(outcomes)-1], nil
}
