package qtypes

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/theapemachine/errnie"
)

/*
Circuit is the compile context every value lives in: one pool, one append-only program and the
backend the program will eventually be submitted to. Values borrow bits from the pool and append
records to the program; nothing reaches the backend until Run.

A Circuit compiles exactly one program and is not safe for concurrent use.
*/
type Circuit struct {
	pool          *Pool
	program       *Program
	backend       Backend
	config        *Config
	logger        *log.Logger
	breaker       *CircuitBreaker
	metrics       *Metrics
	entanglements []*Entanglement
}

// CircuitOption configures a Circuit.
type CircuitOption func(*Circuit)

// WithLogger replaces the default stderr logger.
func WithLogger(logger *log.Logger) CircuitOption {
	return func(c *Circuit) {
		c.logger = logger
	}
}

/*
NewCircuit prepares a compile context against backend. A nil cfg takes NewConfig's defaults.
Nothing is allocated until Start has sized the pool.
*/
func NewCircuit(backend Backend, cfg *Config, opts ...CircuitOption) *Circuit {
	if cfg == nil {
		cfg = NewConfig()
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}

	c := &Circuit{
		pool:    NewPool(),
		program: NewProgram(),
		backend: backend,
		config:  cfg,
		breaker: NewCircuitBreaker(cfg.MaxBackendFailures),
		metrics: NewMetrics(),
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "qtypes",
			Level:  level,
		}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

/*
Start asks the backend for its capacity, sizes the pool and emits the declare record.
Widths left at zero in the Config take the backend's full capacity. A failing capacity query is
returned unchanged.
*/
func (c *Circuit) Start(ctx context.Context) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	maxData, maxResult, err := c.backend.Capacity(ctx)
	if err != nil {
		return err
	}

	data, result := c.config.DataWidth, c.config.ResultWidth
	if data == 0 {
		data = maxData
	}
	if result == 0 {
		result = maxResult
	}

	if err := c.pool.Size(data, result, maxData, maxResult); err != nil {
		return err
	}

	c.emit(Declare(data, result))

	errnie.Info("circuit %s started, %d data bits, %d result bits", c.program.ID(), data, result)

	return nil
}

/*
Run submits the program and returns the backend's histogram. There is no retry: a backend
failure is returned as is and latches the breaker, after which Run fails fast with a StateError.
*/
func (c *Circuit) Run(ctx context.Context) (Histogram, error) {
	if !c.pool.Sized() {
		return nil, &Error{Kind: ConfigError, Op: "run", Err: errors.New("circuit not started")}
	}

	if !c.breaker.Allow() {
		return nil, wrapError(StateError, "run", c.breaker.LastError(), "backend already failed this program")
	}

	startTime := time.Now()
	hist, err := c.backend.Run(ctx, c.program)
	c.metrics.recordRun(startTime, err)

	if err != nil {
		c.breaker.RecordFailure(err)
		c.logger.Error("backend run failed", "program", c.program.ID(), "err", err)
		return nil, err
	}

	c.breaker.RecordSuccess()
	c.logger.Debug("backend run", "program", c.program.ID(), "outcomes", len(hist), "shots", hist.Total())

	return hist, nil
}

// Result runs the program and returns the outcome seen most often.
func (c *Circuit) Result(ctx context.Context) (Outcome, error) {
	hist, err := c.Run(ctx)
	if err != nil {
		return "", err
	}
	return hist.MostFrequent()
}

// Pool is the bit allocator values draw from.
func (c *Circuit) Pool() *Pool {
	return c.pool
}

// Program is the log compiled so far.
func (c *Circuit) Program() *Program {
	return c.program
}

// Metrics are the compile and run counters for this circuit.
func (c *Circuit) Metrics() *Metrics {
	return c.metrics
}

// Breaker latches once the backend has failed this program.
func (c *Circuit) Breaker() *CircuitBreaker {
	return c.breaker
}

// QASM renders the program compiled so far.
func (c *Circuit) QASM() (string, error) {
	return c.program.QASM()
}

// Dump is a debugging view of every record in the program.
func (c *Circuit) Dump() string {
	return spew.Sdump(c.program.Instructions())
}

func (c *Circuit) emit(ins ...Instruction) {
	for _, in := range ins {
		c.program.Append(in)
		c.metrics.recordInstruction(in)
	}
}

func (c *Circuit) allocate(n int) ([]int, error) {
	bits, err := c.pool.Allocate(n)
	if err != nil {
		return nil, err
	}

	c.metrics.observeLive(c.pool.Live())

	return bits, nil
}

func (c *Circuit) release(bits []int) {
	c.pool.Release(bits)
}

/*
borrow lends up to n ancilla through the pool, as many as remain when that is fewer, and records
what was actually handed out.
*/
func (c *Circuit) borrow(n int, fn func(ancilla []int) error) error {
	return c.pool.Borrow(min(n, c.pool.Remaining()), func(ancilla []int) error {
		if len(ancilla) > 0 {
			c.metrics.recordBorrow(len(ancilla))
			c.metrics.observeLive(c.pool.Live())
		}
		return fn(ancilla)
	})
}

/*
flip emits a flip of target controlled on every bit in controls: a plain x, cx or ccx for up to
two controls, a multi-controlled record otherwise. A record short of ancilla is still emitted,
carrying whatever ancilla there are; lowering completes it from idle bits or builds it without
any. That path is logged as degraded.
*/
func (c *Circuit) flip(op string, controls []int, target int, ancilla []int) {
	if len(controls) < 3 {
		c.emit(basicFlip(controls, target))
		return
	}

	need := ancillaNeeded(len(controls))
	if len(ancilla) >= need {
		c.emit(MCX(controls, target, ancilla[:need]))
		return
	}

	c.metrics.recordDegraded()
	c.logger.Warn("ancilla short, using ancilla-free flip", "op", op, "controls", len(controls), "needed", need, "have", len(ancilla))
	c.emit(MCX(controls, target, ancilla))
}

// warnCollapsed flags a measurement whose joint probabilities may already be skewed.
func (c *Circuit) warnCollapsed(op string) {
	if !c.pool.Collapsed() {
		return
	}

	c.metrics.recordWarning()
	c.logger.Warn("measuring a weighted superposition after another value collapsed", "op", op)
}
