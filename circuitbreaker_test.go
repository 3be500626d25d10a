package qtypes

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuitBreakerInitialState(t *testing.T) {
	Convey("Given a newly created circuit breaker", t, func() {
		breaker := NewCircuitBreaker(2)

		Convey("It should start in closed state", func() {
			So(breaker.Allow(), ShouldBeTrue)
			So(breaker.State(), ShouldEqual, CircuitClosed)
			So(breaker.LastError(), ShouldBeNil)
		})
	})

	Convey("Given a non-positive failure limit", t, func() {
		breaker := NewCircuitBreaker(0)

		Convey("It should open on the first failure", func() {
			breaker.RecordFailure(errors.New("fault"))
			So(breaker.Allow(), ShouldBeFalse)
		})
	})
}

func TestCircuitBreakerFailureThreshold(t *testing.T) {
	Convey("Given a circuit breaker with failure threshold", t, func() {
		breaker := NewCircuitBreaker(2)
		first := errors.New("first")
		second := errors.New("second")

		Convey("It should open after max failures and remember the last one", func() {
			breaker.RecordFailure(first)
			So(breaker.Allow(), ShouldBeTrue)

			breaker.RecordFailure(second)
			So(breaker.Allow(), ShouldBeFalse)
			So(breaker.State(), ShouldEqual, CircuitOpen)
			So(breaker.LastError(), ShouldEqual, second)
		})

		Convey("A success while closed should reset the count", func() {
			breaker.RecordFailure(first)
			breaker.RecordSuccess()
			breaker.RecordFailure(second)
			So(breaker.Allow(), ShouldBeTrue)
		})

		Convey("Once open it should stay open", func() {
			breaker.RecordFailure(first)
			breaker.RecordFailure(second)
			breaker.RecordSuccess()
			So(breaker.State(), ShouldEqual, CircuitOpen)
		})
	})
}
