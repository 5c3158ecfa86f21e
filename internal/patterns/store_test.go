package patterns

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearnFlagsImmediately(t *testing.T) {
	s := New(DefaultConfig())
	s.Learn("docker run --rm -it --name=web nginx")

	p, ok := s.Pattern("docker")
	require.True(t, ok)
	assert.Equal(t, []string{"--rm", "-it", "--name"}, p.Flags)
	assert.Empty(t, p.Arguments, "arguments wait for the usage threshold")
	assert.Equal(t, uint64(1), p.UsageCount)
}

func TestLearnArgumentsAfterThreshold(t *testing.T) {
	s := New(DefaultConfig())
	s.Learn("git status")
	p, _ := s.Pattern("git")
	assert.Empty(t, p.Arguments)

	s.Learn("git status")
	s.Learn("git commit")
	p, _ = s.Pattern("git")
	assert.Equal(t, []string{"status", "commit"}, p.Arguments)
	assert.Equal(t, uint64(3), p.UsageCount)
}

func TestLearnSkipsPathsShortTokensAndIgnoredCommands(t *testing.T) {
	s := New(DefaultConfig())
	for i := 0; i < 3; i++ {
		s.Learn("go test ./... x main.go --race - -- build")
	}
	p, ok := s.Pattern("go")
	require.True(t, ok)
	assert.Equal(t, []string{"test", "--", "build"}, p.Arguments, "dash tokens that are not flags are arguments")
	assert.Equal(t, []string{"--race"}, p.Flags)

	s.Learn("grep -r needle")
	s.Learn("grep -r needle")
	_, ok = s.Pattern("grep")
	assert.False(t, ok)

	s.Learn("   ")
	assert.Equal(t, 1, s.Len())
}

func TestFlagEvictionBound(t *testing.T) {
	s := New(DefaultConfig())
	flags := make([]string, 0, DefaultMaxFlags+5)
	for i := 0; i < DefaultMaxFlags+5; i++ {
		flags = append(flags, fmt.Sprintf("--f%d", i))
	}
	s.Learn("tool " + strings.Join(flags, " "))

	p, ok := s.Pattern("tool")
	require.True(t, ok)
	require.Len(t, p.Flags, DefaultMaxFlags)
	assert.Equal(t, flags[5:], p.Flags)
	for _, old := range flags[:5] {
		assert.NotContains(t, p.Flags, old)
	}
}

func TestArgumentEvictionIsFIFO(t *testing.T) {
	s := New(Config{MaxArgs: 3, UsageThreshold: 1})
	s.Learn("make alpha beta gamma")
	s.Learn("make alpha")
	s.Learn("make delta")

	p, _ := s.Pattern("make")
	assert.Equal(t, []string{"beta", "gamma", "delta"}, p.Arguments,
		"re-seeing a word does not refresh its position")
}

func TestFindSimilarArgument(t *testing.T) {
	s := New(DefaultConfig())
	s.Learn("git status")
	s.Learn("git status")
	s.Learn("git checkout")

	got, ok := s.FindSimilarArgument("git", "stauts")
	require.True(t, ok)
	assert.Equal(t, "status", got)

	_, ok = s.FindSimilarArgument("git", "zzzzzzzz")
	assert.False(t, ok)

	_, ok = s.FindSimilarArgument("hg", "status")
	assert.False(t, ok)
}

func TestLenientThreshold(t *testing.T) {
	s := New(DefaultConfig())
	for _, c := range []string{"git", "svn"} {
		s.Learn(c + " checkout")
		s.Learn(c + " checkout")
	}

	// "chk" scores 1 - 5/8 = 0.375 against "checkout"
	got, ok := s.FindSimilarArgument("git", "chk")
	require.True(t, ok)
	assert.Equal(t, "checkout", got)

	_, ok = s.FindSimilarArgument("svn", "chk")
	assert.False(t, ok)

	assert.Equal(t, DefaultLenientThreshold, s.ArgumentThreshold("git"))
	assert.Equal(t, DefaultArgumentThreshold, s.ArgumentThreshold("svn"))
}

func TestFindSimilarFlag(t *testing.T) {
	s := New(DefaultConfig())
	s.Learn("git commit --amend --message=x")

	got, ok := s.FindSimilarFlag("git", "--amned", 0.5)
	require.True(t, ok)
	assert.Equal(t, "--amend", got)

	_, ok = s.FindSimilarFlag("git", "--amned", 0.9)
	assert.False(t, ok)
}

func TestFindSimilarFlagComparesNamesWithoutDashes(t *testing.T) {
	s := New(DefaultConfig())
	s.Learn("git checkout -b feature --track --message=x")

	tests := []struct {
		flag string
		want string
		ok   bool
	}{
		{"-b", "-b", true},
		{"-m", "", false},
		{"-B", "", false},
		{"--trakc", "--track", true},
		{"-track", "--track", true},
		{"--mesage=hi", "--message", true},
		{"-", "", false},
		{"--", "", false},
		{"--bb", "", false},
	}
	for _, tt := range tests {
		got, ok := s.FindSimilarFlag("git", tt.flag, 0.5)
		assert.Equal(t, tt.ok, ok, tt.flag)
		assert.Equal(t, tt.want, got, tt.flag)
	}
}

func TestComplete(t *testing.T) {
	s := New(Config{UsageThreshold: 1})
	s.Learn("kubectl get describe delete --namespace --all-namespaces")

	got := s.Complete("kubectl", "de", 0)
	assert.ElementsMatch(t, []string{"describe", "delete"}, got)

	got = s.Complete("kubectl", "--nam", 1)
	assert.Equal(t, []string{"--namespace"}, got)

	assert.Equal(t, []string{"get", "describe"}, s.Complete("kubectl", "", 2))
	assert.Nil(t, s.Complete("helm", "in", 5))
}

func TestSnapshotRestore(t *testing.T) {
	s := New(DefaultConfig())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.Learn("cargo build --release")
	s.Learn("cargo build")

	snap := s.Snapshot()
	restored := New(DefaultConfig())
	restored.Restore(snap)

	assert.Equal(t, snap, restored.Snapshot())
	p, ok := restored.Pattern("cargo")
	require.True(t, ok)
	assert.Equal(t, fixed, p.LastUpdated)
	assert.Equal(t, uint64(2), p.UsageCount)

	restored.Reset()
	assert.Zero(t, restored.Len())
	assert.Empty(t, restored.Commands())
}
