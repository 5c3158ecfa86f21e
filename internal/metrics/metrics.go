// Package metrics collects correction counters and latency for oops.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// LatencyBuckets are the upper bounds, in microseconds, of the correction
// latency histogram.
var LatencyBuckets = []int64{50, 100, 250, 500, 1000, 5000, 25000}

// Metrics holds engine counters. The zero value is not usable; call New.
type Metrics struct {
	Corrections   atomic.Int64
	Confirmations atomic.Int64
	Observations  atomic.Int64
	Refreshes     atomic.Int64

	StartTime time.Time

	mu      sync.RWMutex
	stages  map[string]*atomic.Int64
	latency *histogram
}

type histogram struct {
	buckets []int64
	counts  []atomic.Int64
	sum     atomic.Int64
	count   atomic.Int64
}

func newHistogram(buckets []int64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]atomic.Int64, len(buckets)+1),
	}
}

func (h *histogram) observe(value int64) {
	h.sum.Add(value)
	h.count.Add(1)
	for i, bucket := range h.buckets {
		if value <= bucket {
			h.counts[i].Add(1)
			return
		}
	}
	h.counts[len(h.buckets)].Add(1)
}

// New returns an empty Metrics.
func New() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
		stages:    make(map[string]*atomic.Int64),
		latency:   newHistogram(LatencyBuckets),
	}
}

// RecordCorrection counts one correction request decided by stage.
func (m *Metrics) RecordCorrection(stage string, d time.Duration) {
	m.Corrections.Add(1)
	m.counter(stage).Add(1)
	m.latency.observe(d.Microseconds())
}

// RecordConfirmation counts a confirmed correction.
func (m *Metrics) RecordConfirmation() {
	m.Confirmations.Add(1)
}

// RecordObservation counts an observed command line.
func (m *Metrics) RecordObservation() {
	m.Observations.Add(1)
}

// RecordRefresh counts a corpus refresh that changed the corpus.
func (m *Metrics) RecordRefresh() {
	m.Refreshes.Add(1)
}

func (m *Metrics) counter(name string) *atomic.Int64 {
	m.mu.RLock()
	c, ok := m.stages[name]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.stages[name]; !ok {
		c = &atomic.Int64{}
		m.stages[name] = c
	}
	return c
}

// Bucket is one histogram bucket. UpperMicros is -1 for the overflow bucket.
type Bucket struct {
	UpperMicros int64 `json:"le_us"`
	Count       int64 `json:"count"`
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Corrections    int64            `json:"corrections"`
	Confirmations  int64            `json:"confirmations"`
	Observations   int64            `json:"observations"`
	Refreshes      int64            `json:"refreshes"`
	Stages         map[string]int64 `json:"stages"`
	AvgLatencyUS   float64          `json:"avg_latency_us"`
	LatencyCount   int64            `json:"latency_count"`
	LatencySumUS   int64            `json:"latency_sum_us"`
	LatencyBuckets []Bucket         `json:"latency_buckets"`
	Uptime         string           `json:"uptime"`
}

// StageNames returns the recorded stage names in sorted order.
func (s Snapshot) StageNames() []string {
	names := make([]string, 0, len(s.Stages))
	for name := range s.Stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	stages := make(map[string]int64, len(m.stages))
	for name, c := range m.stages {
		stages[name] = c.Load()
	}
	m.mu.RUnlock()

	buckets := make([]Bucket, len(m.latency.counts))
	for i := range m.latency.counts {
		upper := int64(-1)
		if i < len(m.latency.buckets) {
			upper = m.latency.buckets[i]
		}
		buckets[i] = Bucket{UpperMicros: upper, Count: m.latency.counts[i].Load()}
	}

	var avg float64
	if n := m.latency.count.Load(); n > 0 {
		avg = float64(m.latency.sum.Load()) / float64(n)
	}

	return Snapshot{
		Corrections:    m.Corrections.Load(),
		Confirmations:  m.Confirmations.Load(),
		Observations:   m.Observations.Load(),
		Refreshes:      m.Refreshes.Load(),
		Stages:         stages,
		AvgLatencyUS:   avg,
		LatencyCount:   m.latency.count.Load(),
		LatencySumUS:   m.latency.sum.Load(),
		LatencyBuckets: buckets,
		Uptime:         time.Since(m.StartTime).Round(time.Millisecond).String(),
	}
}

// Merge adds the counters of a snapshot taken earlier, typically by a
// previous process.
func (m *Metrics) Merge(s Snapshot) {
	m.Corrections.Add(s.Corrections)
	m.Confirmations.Add(s.Confirmations)
	m.Observations.Add(s.Observations)
	m.Refreshes.Add(s.Refreshes)
	for name, n := range s.Stages {
		m.counter(name).Add(n)
	}
	for i, b := range s.LatencyBuckets {
		if i < len(m.latency.counts) {
			m.latency.counts[i].Add(b.Count)
		}
	}
	m.latency.count.Add(s.LatencyCount)
	m.latency.sum.Add(s.LatencySumUS)
}

// JSON returns the snapshot as indented JSON.
func (m *Metrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}
