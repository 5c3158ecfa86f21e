// Package history keeps a bounded log of confirmed corrections and
// running frequency counters over it.
package history

import (
	"math"
	"sort"
	"sync"
	"time"

	"oops/internal/ring"
)

// MaxHistorySize is the default number of entries kept before the oldest
// are evicted.
const MaxHistorySize = 100_000

// Entry is one confirmed correction.
type Entry struct {
	Typo       string    `json:"typo" yaml:"typo"`
	Correction string    `json:"correction" yaml:"correction"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// Frequency is a string with its count.
type Frequency struct {
	Value string `json:"value" yaml:"value"`
	Count uint64 `json:"count" yaml:"count"`
}

// Tracker records corrections. Counters are never decremented when
// entries fall out of the ring; only Clear resets them.
type Tracker struct {
	mu          sync.RWMutex
	entries     *ring.Ring[Entry]
	typos       map[string]uint64
	corrections map[string]uint64
	enabled     bool
	now         func() time.Time
}

// New creates an enabled tracker holding at most capacity entries. A
// non-positive capacity means MaxHistorySize.
func New(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = MaxHistorySize
	}
	return &Tracker{
		entries:     ring.New[Entry](capacity),
		typos:       make(map[string]uint64),
		corrections: make(map[string]uint64),
		enabled:     true,
		now:         time.Now,
	}
}

// SetEnabled turns recording on or off.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

// Enabled reports whether Record stores anything.
func (t *Tracker) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Record appends a correction and bumps both counters.
func (t *Tracker) Record(typo, correction string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}

	t.entries.Push(Entry{Typo: typo, Correction: correction, Timestamp: t.now()})
	t.typos[typo] = saturatingInc(t.typos[typo])
	t.corrections[correction] = saturatingInc(t.corrections[correction])
}

func saturatingInc(n uint64) uint64 {
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}

// FrequentTypos returns the limit most frequent typos.
func (t *Tracker) FrequentTypos(limit int) []Frequency {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return top(t.typos, limit)
}

// FrequentCorrections returns the limit most frequent corrections.
func (t *Tracker) FrequentCorrections(limit int) []Frequency {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return top(t.corrections, limit)
}

// top sorts by descending count, then ascending value.
func top(counts map[string]uint64, limit int) []Frequency {
	out := make([]Frequency, 0, len(counts))
	for v, c := range counts {
		out = append(out, Frequency{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CorrectionCount returns how often s was confirmed as a correction.
func (t *Tracker) CorrectionCount(s string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.corrections[s]
}

// Entries returns the log, oldest first.
func (t *Tracker) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries.Items()
}

// Len returns the number of logged entries.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries.Len()
}

// Clear empties the log and both counters in one step.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.entries.Reset()
	t.typos = make(map[string]uint64)
	t.corrections = make(map[string]uint64)
	t.mu.Unlock()
}

// Snapshot is a point-in-time copy of the tracker.
type Snapshot struct {
	Enabled             bool              `json:"enabled" yaml:"enabled"`
	Entries             []Entry           `json:"entries" yaml:"entries"`
	TypoFrequency       map[string]uint64 `json:"typo_frequency" yaml:"typo_frequency"`
	CorrectionFrequency map[string]uint64 `json:"correction_frequency" yaml:"correction_frequency"`
}

// Snapshot copies the tracker.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		Enabled:             t.enabled,
		Entries:             t.entries.Items(),
		TypoFrequency:       copyCounts(t.typos),
		CorrectionFrequency: copyCounts(t.corrections),
	}
}

// Restore replaces the tracker state with snap. Counters are taken as
// stored rather than recomputed, since they outlive evicted entries.
// Entries beyond capacity keep only the newest.
func (t *Tracker) Restore(snap Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = snap.Enabled
	t.entries.Reset()
	for _, e := range snap.Entries {
		t.entries.Push(e)
	}
	t.typos = copyCounts(snap.TypoFrequency)
	t.corrections = copyCounts(snap.CorrectionFrequency)
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
