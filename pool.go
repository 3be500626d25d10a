package qtypes

import (
	"github.com/pkg/errors"
)

/*
register is one of the pool's two index spaces. Indices below issued have been handed out at
least once; free holds the ones that came back. An index is live when it is below issued and
not on the free list.
*/
type register struct {
	capacity int
	issued   int
	free     []int
}

func (r *register) remaining() int {
	return r.capacity - r.issued + len(r.free)
}

func (r *register) take(n int) []int {
	out := make([]int, 0, n)

	// Never-issued indices first, in ascending order, then returned ones.
	for len(out) < n && r.issued < r.capacity {
		out = append(out, r.issued)
		r.issued++
	}

	for len(out) < n {
		out = append(out, r.free[0])
		r.free = r.free[1:]
	}

	return out
}

/*
Pool hands out qubit (data) and classical (result) bit indices for a single compiled program.
It is sized exactly once, after which its capacity cannot grow. Freed data bits are assumed to
have been reset to zero by the caller; the pool does not check.

The pool also carries the collapsed flag: set the first time any value on it is measured, and
consulted by later measurements that depend on joint probabilities.
*/
type Pool struct {
	data      register
	result    register
	sized     bool
	collapsed bool
}

/*
NewPool returns an unsized pool. Nothing can be allocated until Size has fixed both
registers.
*/
func NewPool() *Pool {
	return &Pool{}
}

/*
Size fixes both capacities. maxData and maxResult are the limits reported by the backend.
Calling Size twice, or asking for more than the backend offers, is a ConfigError.
*/
func (p *Pool) Size(dataCap, resultCap, maxData, maxResult int) error {
	if p.sized {
		return newError(ConfigError, "size", "pool already sized to %d/%d", p.data.capacity, p.result.capacity)
	}

	if dataCap < 0 || resultCap < 0 {
		return newError(ConfigError, "size", "negative capacity %d/%d", dataCap, resultCap)
	}

	if dataCap > maxData {
		return newError(ConfigError, "size", "%d data bits requested, backend offers %d", dataCap, maxData)
	}

	if resultCap > maxResult {
		return newError(ConfigError, "size", "%d result bits requested, backend offers %d", resultCap, maxResult)
	}

	p.data = register{capacity: dataCap}
	p.result = register{capacity: resultCap}
	p.sized = true

	return nil
}

// Allocate returns n fresh data bit indices.
func (p *Pool) Allocate(n int) ([]int, error) {
	return p.allocate(&p.data, "allocate", n)
}

// AllocateResult returns n fresh result bit indices. Only measurement uses these.
func (p *Pool) AllocateResult(n int) ([]int, error) {
	return p.allocate(&p.result, "allocate result", n)
}

func (p *Pool) allocate(r *register, op string, n int) ([]int, error) {
	if !p.sized {
		return nil, &Error{Kind: ConfigError, Op: op, Err: errors.New("pool not sized")}
	}

	if n <= 0 {
		return nil, newError(DomainError, op, "bit count must be positive, got %d", n)
	}

	if n > r.remaining() {
		return nil, newError(CapacityError, op, "%d bits requested, %d remaining", n, r.remaining())
	}

	return r.take(n), nil
}

/*
TryAllocate is the non-failing form of Allocate for callers that have a fallback.
It returns nil when n bits are not available and an empty slice when n <= 0.
*/
func (p *Pool) TryAllocate(n int) []int {
	if n <= 0 {
		return []int{}
	}

	if !p.sized || n > p.data.remaining() {
		return nil
	}

	return p.data.take(n)
}

// Release hands data bits back. They must already be zero.
func (p *Pool) Release(bits []int) {
	p.data.free = append(p.data.free, bits...)
}

/*
Borrow lends n ancilla bits to fn and takes them back on every exit path.
When the bits are not available fn receives an empty slice, leaving the fallback to the caller.
*/
func (p *Pool) Borrow(n int, fn func(ancilla []int) error) error {
	ancilla := p.TryAllocate(n)
	if ancilla == nil {
		return fn([]int{})
	}

	defer p.Release(ancilla)

	return fn(ancilla)
}

// Remaining counts the data bits that could still be allocated.
func (p *Pool) Remaining() int {
	return p.data.remaining()
}

// RemainingResult counts the result bits that could still be allocated.
func (p *Pool) RemainingResult() int {
	return p.result.remaining()
}

// Live counts the data bits currently handed out.
func (p *Pool) Live() int {
	return p.data.capacity - p.data.remaining()
}

// Capacity is the size of both registers as fixed by Size.
func (p *Pool) Capacity() (data, result int) {
	return p.data.capacity, p.result.capacity
}

// Sized reports whether Size has been called.
func (p *Pool) Sized() bool {
	return p.sized
}

// Collapsed reports whether any value on this pool has been measured.
func (p *Pool) Collapsed() bool {
	return p.collapsed
}

func (p *Pool) observeCollapse() {
	p.collapsed = true
}
