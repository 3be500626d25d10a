package qtypes

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOutcome(t *testing.T) {
	Convey("Given an outcome string", t, func() {
		o := Outcome("100")

		Convey("Character i should be result bit i", func() {
			v, err := o.Bit(0)
			So(err, ShouldBeNil)
			So(v, ShouldBeTrue)

			v, err = o.Bit(2)
			So(err, ShouldBeNil)
			So(v, ShouldBeFalse)
		})

		Convey("Reading outside it should be a domain error", func() {
			_, err := o.Bit(3)
			So(errors.Is(err, ErrDomain), ShouldBeTrue)

			_, err = Outcome("1x").Bit(1)
			So(errors.Is(err, ErrDomain), ShouldBeTrue)
		})

		Convey("Reverse should flip the order for big-endian keys", func() {
			So(o.Reverse(), ShouldEqual, Outcome("001"))
		})
	})
}

func TestHistogram(t *testing.T) {
	Convey("Given a histogram", t, func() {
		h := Histogram{"00": 10, "01": 30, "11": 60}

		So(h.Total(), ShouldEqual, 100)
		So(h.Outcomes(), ShouldResemble, []Outcome{"00", "01", "11"})

		Convey("MostFrequent should return the outcome seen most", func() {
			o, err := h.MostFrequent()
			So(err, ShouldBeNil)
			So(o, ShouldEqual, Outcome("11"))
		})

		Convey("Ties should be broken among the leaders only", func() {
			tied := Histogram{"0": 5, "1": 5, "x": 1}
			for i := 0; i < 20; i++ {
				o, _ := tied.MostFrequent()
				So(o, ShouldBeIn, []Outcome{"0", "1"})
			}
		})

		Convey("Sample should only return observed outcomes", func() {
			seen := map[Outcome]int{}
			for i := 0; i < 2000; i++ {
				o, err := h.Sample()
				So(err, ShouldBeNil)
				seen[o]++
			}
			So(seen, ShouldHaveLength, 3)
			So(seen["11"], ShouldBeGreaterThan, seen["00"])
		})
	})

	Convey("Given an empty histogram", t, func() {
		h := Histogram{}

		_, err := h.MostFrequent()
		So(errors.Is(err, ErrState), ShouldBeTrue)

		_, err = h.Sample()
		So(errors.Is(err, ErrState), ShouldBeTrue)
	})
}
