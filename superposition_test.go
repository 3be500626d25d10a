package qtypes

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// superpose synthesizes targets, measures and returns the observed frequency of every value.
func superpose(c *Circuit, targets []uint64, opts ...IntOption) (*Int, map[uint64]float64) {
	x, err := SuperPosition(c, targets, opts...)
	So(err, ShouldBeNil)
	So(x.MeasureSup(), ShouldBeNil)

	hist, err := c.Run(context.Background())
	So(err, ShouldBeNil)

	counts, err := x.ExtractCounts(hist)
	So(err, ShouldBeNil)

	freq := make(map[uint64]float64, len(counts))
	for v, n := range counts {
		freq[v] = float64(n) / float64(hist.Total())
	}

	return x, freq
}

// expected is the multiplicity-weighted distribution of targets.
func expected(targets []uint64) map[uint64]float64 {
	out := make(map[uint64]float64)
	for _, t := range targets {
		out[t] += 1 / float64(len(targets))
	}
	return out
}

func TestSuperPositionDistribution(t *testing.T) {
	cases := [][]uint64{
		{0, 1, 2, 3},
		{3, 3, 5},
		{1, 2},
		{0, 3},
		{1, 4},
		{0, 5, 5, 9, 12, 12, 12, 15},
		{2, 7, 11, 13, 13},
		{6, 9},
	}

	Convey("Every multiset should be reproduced with multiplicity weights", t, func() {
		for _, targets := range cases {
			c, _ := newTestCircuit(20, 8)
			_, freq := superpose(c, targets, WithWidth(4))
			want := expected(targets)

			So(freq, ShouldHaveLength, len(want))
			for v, p := range want {
				So(freq[v], ShouldAlmostEqual, p, 0.01)
			}

			So(c.Pool().Live(), ShouldEqual, 4)
		}
	})

	Convey("Given a distribution sampled shot by shot", t, func() {
		c, backend := newTestCircuit(20, 8)
		backend.exact = false
		backend.shots = 8000

		targets := []uint64{1, 6, 6, 6}
		_, freq := superpose(c, targets, WithWidth(3))

		Convey("The frequencies should be close to the weights", func() {
			So(freq[1], ShouldAlmostEqual, 0.25, 0.03)
			So(freq[6], ShouldAlmostEqual, 0.75, 0.03)
		})
	})
}

func TestSuperPositionReferenceCases(t *testing.T) {
	Convey("Given a single target of 7", t, func() {
		c, _ := newTestCircuit(20, 8)
		_, freq := superpose(c, []uint64{7})
		So(freq, ShouldResemble, map[uint64]float64{7: 1})
	})

	Convey("Given the targets 7 and 8", t, func() {
		c, _ := newTestCircuit(20, 8)
		_, freq := superpose(c, []uint64{7, 8})

		So(freq, ShouldHaveLength, 2)
		So(freq[7], ShouldAlmostEqual, 0.5, 0.05)
		So(freq[8], ShouldAlmostEqual, 0.5, 0.05)
	})

	Convey("Given the eight values 24 to 31", t, func() {
		c, _ := newTestCircuit(20, 8)
		targets := []uint64{24, 25, 26, 27, 28, 29, 30, 31}
		_, freq := superpose(c, targets)

		So(freq, ShouldHaveLength, 8)
		for _, v := range targets {
			So(freq[v], ShouldAlmostEqual, 0.125, 0.05)
		}
	})
}

func TestSuperPositionWidth(t *testing.T) {
	Convey("Given targets and no explicit width", t, func() {
		c, _ := newTestCircuit(40, 40)

		Convey("The smallest canonical width that holds the maximum should be used", func() {
			x, err := SuperPosition(c, []uint64{1, 2, 31})
			So(err, ShouldBeNil)
			So(x.Width(), ShouldEqual, 5)

			y, err := SuperPosition(c, []uint64{1, 40})
			So(err, ShouldBeNil)
			So(y.Width(), ShouldEqual, 14)
		})

		Convey("An explicit width too narrow for a target should be a capacity error", func() {
			_, err := SuperPosition(c, []uint64{1, 9}, WithWidth(3))
			So(errors.Is(err, ErrCapacity), ShouldBeTrue)
			So(c.Pool().Live(), ShouldEqual, 0)
		})

		Convey("No targets should be a domain error", func() {
			_, err := SuperPosition(c, nil)
			So(errors.Is(err, ErrDomain), ShouldBeTrue)
		})
	})
}

func TestSuperPositionDistinguishedBit(t *testing.T) {
	Convey("Given a superposed register", t, func() {
		c, _ := newTestCircuit(12, 8)
		x, err := SuperPosition(c, []uint64{2, 3, 5}, WithWidth(3))
		So(err, ShouldBeNil)

		Convey("Its distinguished bit should be position 0", func() {
			q, ok := x.DistinguishedBit()
			So(ok, ShouldBeTrue)
			So(q, ShouldEqual, x.Qubits()[0])

			_, known := x.Value()
			So(known, ShouldBeFalse)
		})

		Convey("MeasureSup should measure it first", func() {
			mark := c.Program().Len()
			So(x.MeasureSup(), ShouldBeNil)
			So(c.Program().Since(mark)[0].Target, ShouldEqual, x.Qubits()[0])
		})
	})

	Convey("Given a single target", t, func() {
		c, _ := newTestCircuit(3, 3)
		x, freq := superpose(c, []uint64{6, 6}, WithWidth(3))

		Convey("The register should hold it deterministically without a scratch bit", func() {
			So(freq[6], ShouldEqual, 1.0)
			So(x.Initial(), ShouldEqual, 6)
		})
	})
}

func TestSuperPositionResources(t *testing.T) {
	Convey("Given no room for a scratch bit", t, func() {
		c, _ := newTestCircuit(2, 2)

		_, err := SuperPosition(c, []uint64{1, 2}, WithWidth(2))

		Convey("Synthesis should fail with a capacity error and give the register back", func() {
			So(errors.Is(err, ErrCapacity), ShouldBeTrue)
			So(c.Pool().Remaining(), ShouldEqual, 2)
		})
	})

	Convey("Given room for the scratch bit but no ancilla", t, func() {
		c, _ := newTestCircuit(5, 4)
		targets := []uint64{1, 14, 14}
		_, freq := superpose(c, targets, WithWidth(4))

		Convey("The ancilla-free flips should still give the right distribution", func() {
			So(freq[1], ShouldAlmostEqual, 1.0/3, 0.01)
			So(freq[14], ShouldAlmostEqual, 2.0/3, 0.01)
			So(c.Metrics().DegradedFlips, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given a wide register with one bit to spare after the scratch bit", t, func() {
		c, _ := newTestCircuit(20, 20)
		targets := []uint64{1<<17 | 5, 1<<17 | 6, 1<<17 | 9}
		_, freq := superpose(c, targets, WithWidth(18))

		Convey("The wide prefix flips should still give the right distribution", func() {
			So(freq, ShouldHaveLength, 3)
			for _, v := range targets {
				So(freq[v], ShouldAlmostEqual, 1.0/3, 0.01)
			}
			So(c.Pool().Live(), ShouldEqual, 18)
		})
	})

	Convey("Given a weighted branch", t, func() {
		c, _ := newTestCircuit(12, 4)
		_, err := SuperPosition(c, []uint64{0, 2, 3}, WithWidth(2))
		So(err, ShouldBeNil)

		Convey("The program should use a controlled rotation", func() {
			So(c.Metrics().GateCounts[KindControlledRotation], ShouldBeGreaterThan, 0)

			src, err := c.QASM()
			So(err, ShouldBeNil)
			So(strings.Contains(src, "cu3("), ShouldBeTrue)
		})
	})
}

func TestWaveFunction(t *testing.T) {
	Convey("Given a multiset with repeats", t, func() {
		wf, err := NewWaveFunction([]uint64{5, 1, 5, 3})
		So(err, ShouldBeNil)

		Convey("It should collapse to distinct ascending states", func() {
			So(wf.States, ShouldResemble, []State{{1, 1}, {3, 1}, {5, 2}})
			So(wf.Total(), ShouldEqual, 4)
			So(wf.Max(), ShouldEqual, 5)
			So(wf.Pure(), ShouldBeFalse)
			So(float64(wf.Probability(5)), ShouldAlmostEqual, 0.5)
			So(float64(wf.Probability(4)), ShouldEqual, 0)
		})
	})

	Convey("Given prefix groups for the lowest bit", t, func() {
		wf, _ := NewWaveFunction([]uint64{0, 1, 1, 2})
		groups := partition(wf.States, 0)

		Convey("States should be grouped by the bits above it", func() {
			So(groups, ShouldResemble, []prefixGroup{
				{prefix: 0, ones: 2, total: 3},
				{prefix: 1, ones: 0, total: 1},
			})
			So(groups[0].mixed(), ShouldBeTrue)
			So(groups[1].mixed(), ShouldBeFalse)
		})
	})

	Convey("Given no targets", t, func() {
		_, err := NewWaveFunction(nil)
		So(errors.Is(err, ErrDomain), ShouldBeTrue)
	})
}
