package history

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndFrequencies(t *testing.T) {
	tr := New(0)
	for i := 0; i < 5; i++ {
		tr.Record("gti", "git")
	}
	tr.Record("doker", "docker")
	tr.Record("doker", "docker")

	assert.Equal(t, []Frequency{{Value: "gti", Count: 5}}, tr.FrequentTypos(1))
	assert.Equal(t, []Frequency{
		{Value: "git", Count: 5},
		{Value: "docker", Count: 2},
	}, tr.FrequentCorrections(10))
	assert.Equal(t, 7, tr.Len())
	assert.Equal(t, uint64(5), tr.CorrectionCount("git"))
	assert.Equal(t, uint64(2), tr.Snapshot().TypoFrequency["doker"])
}

func TestFrequentTiesAreOrderedByValue(t *testing.T) {
	tr := New(0)
	tr.Record("b", "x")
	tr.Record("a", "x")
	tr.Record("c", "y")

	assert.Equal(t, []Frequency{
		{Value: "a", Count: 1},
		{Value: "b", Count: 1},
		{Value: "c", Count: 1},
	}, tr.FrequentTypos(5))
	assert.Empty(t, tr.FrequentTypos(0))
}

func TestHistoryBound(t *testing.T) {
	tr := New(MaxHistorySize)
	for i := 0; i < MaxHistorySize; i++ {
		tr.Record(fmt.Sprintf("old%d", i), "x")
	}
	for i := 0; i < 10; i++ {
		tr.Record(fmt.Sprintf("new%d", i), "y")
	}

	require.Equal(t, MaxHistorySize, tr.Len())
	entries := tr.Entries()
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("old%d", i+10), entries[i].Typo, "oldest ten evicted")
		assert.Equal(t, fmt.Sprintf("new%d", i), entries[len(entries)-10+i].Typo)
	}

	// counters survive eviction
	assert.Equal(t, uint64(MaxHistorySize), tr.CorrectionCount("x"))
	assert.Equal(t, uint64(1), tr.Snapshot().TypoFrequency["old0"])
}

func TestDisabledTrackerIgnoresRecords(t *testing.T) {
	tr := New(10)
	tr.SetEnabled(false)
	tr.Record("gti", "git")

	assert.False(t, tr.Enabled())
	assert.Zero(t, tr.Len())
	assert.Empty(t, tr.FrequentTypos(5))
}

func TestClear(t *testing.T) {
	tr := New(10)
	tr.Record("gti", "git")
	tr.Clear()

	assert.Zero(t, tr.Len())
	assert.Empty(t, tr.FrequentTypos(5))
	assert.Empty(t, tr.FrequentCorrections(5))
	assert.True(t, tr.Enabled())
}

func TestSaturatingIncrement(t *testing.T) {
	assert.Equal(t, uint64(math.MaxUint64), saturatingInc(math.MaxUint64))
	assert.Equal(t, uint64(1), saturatingInc(0))
}

func TestSnapshotRestore(t *testing.T) {
	tr := New(3)
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	tr.now = func() time.Time { return fixed }
	for i := 0; i < 4; i++ {
		tr.Record(fmt.Sprintf("t%d", i), "c")
	}

	snap := tr.Snapshot()
	assert.Len(t, snap.Entries, 3)
	assert.Equal(t, uint64(4), snap.CorrectionFrequency["c"])

	restored := New(3)
	restored.Restore(snap)
	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, fixed, restored.Entries()[0].Timestamp)
}
