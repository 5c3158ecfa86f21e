package corpus

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScenarioCorpus(opts ...Option) *Corpus {
	c := New(opts...)
	c.Add("git", "cargo", "docker")
	return c
}

func TestContainsCommandsAndAliases(t *testing.T) {
	c := newScenarioCorpus()
	c.SetAliases(map[string]string{"g": "git", "k": "kubectl"})

	assert.True(t, c.Contains("git"))
	assert.True(t, c.Contains("k"))
	assert.False(t, c.Contains("Git"), "membership is case-sensitive")
	assert.False(t, c.Contains("kubectl"))

	exp, ok := c.Alias("g")
	require.True(t, ok)
	assert.Equal(t, "git", exp)
}

func TestAddDeduplicates(t *testing.T) {
	c := New()
	assert.Equal(t, 2, c.Add("git", "go", "git", ""))
	assert.Equal(t, 0, c.Add("go"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"git", "go"}, c.Names())
}

func TestClosestScenario(t *testing.T) {
	c := newScenarioCorpus()

	got, ok := c.Closest("gti", 0.6)
	require.True(t, ok)
	assert.Equal(t, "git", got)

	got, ok = c.Closest("carg", 0.6)
	require.True(t, ok)
	assert.Equal(t, "cargo", got)

	_, ok = c.Closest("xyzabc", 0.6)
	assert.False(t, ok)

	_, ok = c.Closest("", 0)
	assert.False(t, ok)
}

func TestClosestThresholdBoundary(t *testing.T) {
	c := New()
	c.Add("git", "cargo", "docker", "make")

	_, ok := c.Closest("abc", 0.9)
	assert.False(t, ok)

	// "dockr" scores 1 - 1/6 against docker
	got, ok := c.Closest("dockr", 0.83)
	require.True(t, ok)
	assert.Equal(t, "docker", got)

	_, ok = c.Closest("dockr", 0.84)
	assert.False(t, ok)
}

func TestClosestMatchesAliases(t *testing.T) {
	c := New()
	c.SetAliases(map[string]string{"gst": "git status"})

	got, ok := c.Closest("gts", 0.6)
	require.True(t, ok)
	assert.Equal(t, "gst", got)
}

func TestClosestTieBreaker(t *testing.T) {
	c := New()
	c.Add("ab", "ba")

	// without weights the lexically smallest name wins
	got, ok := c.Closest("abx", 0.1)
	require.True(t, ok)
	assert.Equal(t, "ab", got)

	c = New(WithTieBreaker(func(name string) uint64 {
		if name == "ba" {
			return 3
		}
		return 0
	}))
	c.Add("ab", "ba")
	got, ok = c.Closest("abx", 0.1)
	require.True(t, ok)
	assert.Equal(t, "ba", got)
}

func TestClosestParallelAgreesWithSequential(t *testing.T) {
	names := make([]string, 0, 6001)
	for i := 0; i < 6000; i++ {
		names = append(names, fmt.Sprintf("tool%05d", i))
	}
	names = append(names, "kubectl")

	seq := New(WithParallelThreshold(1_000_000))
	seq.Add(names...)
	par := New(WithParallelThreshold(100), WithWorkers(4))
	par.Add(names...)
	defer par.Close()

	for _, q := range []string{"kubctl", "tool0421", "tool05999", "zzzzzz"} {
		s, sok := seq.Closest(q, 0.6)
		p, pok := par.Closest(q, 0.6)
		assert.Equal(t, sok, pok, q)
		assert.Equal(t, s, p, q)
	}

	got, ok := par.Closest("kubctl", 0.6)
	require.True(t, ok)
	assert.Equal(t, "kubectl", got)
}

func TestReplaceKeepsAliases(t *testing.T) {
	c := newScenarioCorpus()
	c.SetAliases(map[string]string{"g": "git"})
	c.Replace(map[string]struct{}{"npm": {}})

	assert.False(t, c.Contains("git"))
	assert.True(t, c.Contains("npm"))
	assert.True(t, c.Contains("g"))
}

func TestSearch(t *testing.T) {
	c := New()
	c.Add("docker", "docker-compose", "git", "dig")

	got := c.Search("dkr", 10)
	assert.Contains(t, got, "docker")
	assert.NotContains(t, got, "git")

	assert.Len(t, c.Search("d", 1), 1)
	assert.Nil(t, c.Search("", 5))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(map[string]struct{}{"git": {}, "go": {}}, map[string]string{"g": "git"})
	b := Fingerprint(map[string]struct{}{"go": {}, "git": {}}, map[string]string{"g": "git"})
	assert.Equal(t, a, b)

	c := Fingerprint(map[string]struct{}{"go": {}, "git": {}}, map[string]string{"g": "go"})
	assert.NotEqual(t, a, c)

	corp := New()
	corp.Add("git", "go")
	corp.SetAliases(map[string]string{"g": "git"})
	assert.Equal(t, a, corp.Fingerprint())
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := newScenarioCorpus()
	c.SetAliases(map[string]string{"g": "git"})

	snap := c.Snapshot()
	assert.Equal(t, []string{"cargo", "docker", "git"}, snap.Commands)

	restored := New()
	restored.Restore(snap)
	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, c.Names(), restored.Names())
}

func TestReset(t *testing.T) {
	c := newScenarioCorpus()
	c.Reset()
	assert.Zero(t, c.Len())
	assert.False(t, c.Contains("git"))
}
