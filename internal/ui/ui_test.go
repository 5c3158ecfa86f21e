package ui

import (
	"os"
	"testing"

	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	assert.Equal(t, "Frequent Typos", Title("frequent typos"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "git status", Truncate("git status", 20))
	got := Truncate("kubectl get pods --all-namespaces", 10)
	assert.LessOrEqual(t, ansi.PrintableRuneWidth(got), 10)
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestTable(t *testing.T) {
	out := Table([]string{"typo", "count"}, [][]string{{"gti", "5"}, {"doker", "2"}}, 0)
	assert.Contains(t, out, "Typo")
	assert.Contains(t, out, "Count")
	assert.Contains(t, out, "gti")
	assert.Contains(t, out, "doker")
}

func TestWidthFallback(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	assert.False(t, IsTerminal(f))
	assert.Equal(t, 80, Width(f, 80))
	assert.Equal(t, 80, Width(nil, 80))
}

func TestPaintKeepsText(t *testing.T) {
	for _, paint := range []func(string) string{Green, Red, Yellow, Cyan, HiBlack} {
		assert.Contains(t, paint("gti"), "gti")
	}
}
