package qtypes

import "context"

/*
Backend is the execution service a compiled program is handed to. The compiler only ever asks
it for its capacity and submits finished programs; simulation, device selection, credentials and
staging of the instruction text all live on the other side of this interface.

Run must key the histogram by Outcome, character i being result bit i. Services that report
big-endian register strings reverse them before returning.
*/
type Backend interface {
	Capacity(ctx context.Context) (data, result int, err error)
	Run(ctx context.Context, program *Program) (Histogram, error)
}
