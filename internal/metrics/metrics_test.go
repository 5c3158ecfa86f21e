package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCorrection(t *testing.T) {
	m := New()
	m.RecordCorrection("structural", 80*time.Microsecond)
	m.RecordCorrection("structural", 10*time.Millisecond)
	m.RecordCorrection("none", time.Second)

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Corrections)
	assert.Equal(t, int64(2), snap.Stages["structural"])
	assert.Equal(t, int64(1), snap.Stages["none"])
	assert.Equal(t, []string{"none", "structural"}, snap.StageNames())

	require.Len(t, snap.LatencyBuckets, len(LatencyBuckets)+1)
	assert.Equal(t, int64(1), snap.LatencyBuckets[1].Count)
	assert.Equal(t, int64(1), snap.LatencyBuckets[6].Count)
	overflow := snap.LatencyBuckets[len(LatencyBuckets)]
	assert.Equal(t, int64(-1), overflow.UpperMicros)
	assert.Equal(t, int64(1), overflow.Count)
}

func TestConcurrentCounters(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordCorrection("learned-line", time.Microsecond)
				m.RecordConfirmation()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(800), snap.Stages["learned-line"])
	assert.Equal(t, int64(800), snap.Confirmations)
}

func TestJSON(t *testing.T) {
	m := New()
	m.RecordObservation()

	data, err := m.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(1), decoded["observations"])
}

func TestMerge(t *testing.T) {
	prev := New()
	prev.RecordCorrection("exact", 20*time.Microsecond)
	prev.RecordCorrection("structural", 300*time.Microsecond)
	prev.RecordConfirmation()

	m := New()
	m.RecordCorrection("exact", 20*time.Microsecond)
	m.Merge(prev.Snapshot())

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.Corrections)
	assert.Equal(t, int64(2), snap.Stages["exact"])
	assert.Equal(t, int64(1), snap.Stages["structural"])
	assert.Equal(t, int64(1), snap.Confirmations)
	assert.Equal(t, int64(3), snap.LatencyCount)
	assert.Equal(t, int64(340), snap.LatencySumUS)
	assert.Equal(t, int64(2), snap.LatencyBuckets[0].Count)
}
