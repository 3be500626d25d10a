package qtypes

import "math"

// Probability of observing a 1 when a qubit is measured.
type Probability float64

// Valid reports whether p lies in [0, 1].
func (p Probability) Valid() bool {
	return !math.IsNaN(float64(p)) && p >= 0 && p <= 1
}

/*
Angle returns the rotation θ = 2·asin(√p) that takes |0⟩ to a state measuring 1 with
probability p, i.e. amplitudes cos(θ/2)|0⟩ + sin(θ/2)|1⟩.
*/
func (p Probability) Angle() float64 {
	return 2 * math.Asin(math.Sqrt(float64(p)))
}

// angleProbability inverts Angle.
func angleProbability(theta float64) Probability {
	s := math.Sin(theta / 2)
	return Probability(s * s)
}

// bitSet reports whether bit i of v is 1.
func bitSet(v uint64, i int) bool {
	return i < 64 && v&(1<<uint(i)) != 0
}

// bitsFor is the number of bits needed to write v in binary (at least 1).
func bitsFor(v uint64) int {
	n := 1
	for v>>uint(n) != 0 && n < 64 {
		n++
	}
	return n
}

// covers reports whether a register of width w can hold v.
func covers(w int, v uint64) bool {
	return w >= bitsFor(v)
}
