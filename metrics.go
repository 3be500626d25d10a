package qtypes

import (
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/markkurossi/tabulate"
)

// Metrics tallies what a Circuit emitted and how its resources were used.
type Metrics struct {
	mu sync.RWMutex

	GateCounts       map[Kind]int
	Instructions     int
	Measurements     int
	PeakLiveBits     int
	AncillaBorrows   int
	AncillaBits      int
	DegradedFlips    int
	CollapseWarnings int

	BackendRuns     int
	BackendFailures int
	LastRunLatency  time.Duration
}

// NewMetrics starts every counter at zero.
func NewMetrics() *Metrics {
	return &Metrics{
		GateCounts: make(map[Kind]int),
	}
}

func (m *Metrics) recordInstruction(ins Instruction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Instructions++
	m.GateCounts[ins.Kind]++

	if ins.Kind == KindMeasure {
		m.Measurements++
	}
}

func (m *Metrics) observeLive(live int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if live > m.PeakLiveBits {
		m.PeakLiveBits = live
	}
}

func (m *Metrics) recordBorrow(bits int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AncillaBorrows++
	m.AncillaBits += bits
}

func (m *Metrics) recordDegraded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DegradedFlips++
}

func (m *Metrics) recordWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CollapseWarnings++
}

func (m *Metrics) recordRun(startTime time.Time, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BackendRuns++
	m.LastRunLatency = time.Since(startTime)

	if err != nil {
		m.BackendFailures++
	}
}

// ExportMetrics flattens the counters into a map, e.g. for a metrics sink.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := map[string]interface{}{
		"instructions":      m.Instructions,
		"measurements":      m.Measurements,
		"peak_live_bits":    m.PeakLiveBits,
		"ancilla_borrows":   m.AncillaBorrows,
		"ancilla_bits":      m.AncillaBits,
		"degraded_flips":    m.DegradedFlips,
		"collapse_warnings": m.CollapseWarnings,
		"backend_runs":      m.BackendRuns,
		"backend_failures":  m.BackendFailures,
		"last_run_latency":  m.LastRunLatency.Milliseconds(),
	}

	for kind, n := range m.GateCounts {
		out["gates_"+kind.String()] = n
	}

	return out
}

// Report writes the exported metrics as a table.
func (m *Metrics) Report(w io.Writer) {
	export := m.ExportMetrics()

	keys := make([]string, 0, len(export))
	for k := range export {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tab := tabulate.New(tabulate.Unicode)
	tab.Header("Metric").SetAlign(tabulate.ML)
	tab.Header("Value").SetAlign(tabulate.MR)

	for _, k := range keys {
		row := tab.Row()
		row.Column(k)
		row.Column(formatMetric(export[k]))
	}

	tab.Print(w)
}

func formatMetric(v interface{}) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	}
	return ""
}
