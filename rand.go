package qtypes

import (
	"context"

	"github.com/pkg/errors"
)

// maxRandCandidates bounds how many grid points RandInt will superpose.
const maxRandCandidates = 1 << 16

/*
RandInt draws one integer from {lo, lo+step, ...} below hi, uniformly, by superposing every
candidate on a fresh circuit and sampling one outcome of the run. The register width is settled
against the pool before any candidate is listed, so a range too wide for the backend, or with
more than maxRandCandidates points, is a CapacityError.
*/
func RandInt(ctx context.Context, backend Backend, cfg *Config, lo, hi, step uint64) (uint64, error) {
	if step == 0 {
		return 0, &Error{Kind: DomainError, Op: "rand int", Err: errors.New("step must be positive")}
	}

	if hi <= lo {
		return 0, newError(DomainError, "rand int", "empty range [%d, %d)", lo, hi)
	}

	count := (hi-lo-1)/step + 1
	if count > maxRandCandidates {
		return 0, newError(CapacityError, "rand int", "%d candidates exceed the limit of %d", count, maxRandCandidates)
	}

	last := lo + (count-1)*step

	c := NewCircuit(backend, cfg)
	if err := c.Start(ctx); err != nil {
		return 0, err
	}

	width, err := c.chooseWidth("rand int", last, HintMinimal)
	if err != nil {
		return 0, err
	}

	targets := make([]uint64, count)
	for i := range targets {
		targets[i] = lo + uint64(i)*step
	}

	x, err := SuperPosition(c, targets, WithWidth(width))
	if err != nil {
		return 0, err
	}

	if err := x.MeasureSup(); err != nil {
		return 0, err
	}

	hist, err := c.Run(ctx)
	if err != nil {
		return 0, err
	}

	outcome, err := hist.Sample()
	if err != nil {
		return 0, err
	}

	return x.Extract(outcome)
}
