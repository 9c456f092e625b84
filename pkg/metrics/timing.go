// Package metrics keeps in-process timing statistics for trackr: chart
// assembly, dataset loads, image rendering and HTTP requests.
//
// Samples are recorded lock-free. Set TRACKR_METRICS=0 to turn recording
// off.
//
//	defer metrics.Timer(metrics.Assemble)()
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("TRACKR_METRICS") != "0")
}

// Enabled reports whether samples are recorded.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns recording on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// bucketBounds are the upper edges of the latency histogram. The last
// bucket is open ended.
var bucketBounds = [...]time.Duration{
	100 * time.Microsecond,
	time.Millisecond,
	5 * time.Millisecond,
	25 * time.Millisecond,
	100 * time.Millisecond,
	500 * time.Millisecond,
	2 * time.Second,
}

// TimingMetric accumulates durations of one named operation.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	minNs   atomic.Int64 // 0 until the first sample
	buckets [len(bucketBounds) + 1]atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if m == nil || !enabled.Load() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.totalNs.Add(ns)
	for old := m.maxNs.Load(); ns > old && !m.maxNs.CompareAndSwap(old, ns); old = m.maxNs.Load() {
	}
	for old := m.minNs.Load(); (old == 0 || ns < old) && !m.minNs.CompareAndSwap(old, ns); old = m.minNs.Load() {
	}
	m.buckets[bucketOf(d)].Add(1)
}

func bucketOf(d time.Duration) int {
	for i, b := range bucketBounds {
		if d <= b {
			return i
		}
	}
	return len(bucketBounds)
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats snapshots the metric. Fields are read one at a time, so a
// concurrent Record may be half reflected.
func (m *TimingMetric) Stats() TimingStats {
	s := TimingStats{
		Name:    m.name,
		Count:   m.count.Load(),
		TotalMs: nsToMs(m.totalNs.Load()),
		MaxMs:   nsToMs(m.maxNs.Load()),
		MinMs:   nsToMs(m.minNs.Load()),
	}
	if s.Count > 0 {
		s.AvgMs = s.TotalMs / float64(s.Count)
	}
	s.P95Ms = m.quantileMs(0.95, s.Count, s.MaxMs)
	return s
}

// quantileMs returns the upper edge of the bucket holding the q-th sample,
// capped at the observed maximum.
func (m *TimingMetric) quantileMs(q float64, count int64, maxMs float64) float64 {
	if count == 0 {
		return 0
	}
	rank := int64(q*float64(count-1)) + 1
	var seen int64
	for i := range bucketBounds {
		seen += m.buckets[i].Load()
		if seen >= rank {
			return min(nsToMs(bucketBounds[i].Nanoseconds()), maxMs)
		}
	}
	return maxMs
}

// Reset drops all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
	m.minNs.Store(0)
	for i := range m.buckets {
		m.buckets[i].Store(0)
	}
}

func nsToMs(ns int64) float64 { return float64(ns) / 1e6 }

// TimingStats is a point-in-time view of a TimingMetric, as served by
// GET /api/metrics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	P95Ms   float64 `json:"p95_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts timing m and returns the function that records the sample.
// A nil metric or disabled recording yields a no-op.
func Timer(m *TimingMetric) func() {
	if m == nil || !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Operation metrics.
var (
	Assemble    = newTimingMetric("assemble")
	DatasetLoad = newTimingMetric("dataset_load")
	CSVParse    = newTimingMetric("csv_parse")
	SQLiteRead  = newTimingMetric("sqlite_read")
	RenderSVG   = newTimingMetric("render_svg")
	RenderPNG   = newTimingMetric("render_png")
	HTTPRequest = newTimingMetric("http_request")
)

var registry = []*TimingMetric{
	Assemble, DatasetLoad, CSVParse, SQLiteRead, RenderSVG, RenderPNG, HTTPRequest,
}

// ResetAll clears every operation metric.
func ResetAll() {
	for _, m := range registry {
		m.Reset()
	}
}

// AllTimingStats returns the stats of the operation metrics that have
// samples, in registration order.
func AllTimingStats() []TimingStats {
	stats := make([]TimingStats, 0, len(registry))
	for _, m := range registry {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
