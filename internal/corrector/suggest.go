package corrector

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// maxSuggestionDistance is the largest edit distance at which a past
// correction is offered as a suggestion.
const maxSuggestionDistance = 4

// Suggestions returns up to limit previously confirmed corrections close
// to line, nearest first. It is a fallback for lines Correct leaves
// alone and never influences Correct itself.
func (e *Engine) Suggestions(line string, limit int) []string {
	line = normalize(line)
	if line == "" || limit == 0 {
		return nil
	}

	e.mu.RLock()
	candidates := make(map[string]uint64)
	for _, v := range e.learned.Values() {
		candidates[v] = e.history.CorrectionCount(v)
	}
	for _, f := range e.history.FrequentCorrections(-1) {
		candidates[f.Value] = f.Count
	}
	e.mu.RUnlock()

	type scored struct {
		text  string
		dist  int
		count uint64
	}
	lower := strings.ToLower(line)
	var matches []scored
	for c, count := range candidates {
		if c == line {
			continue
		}
		// Length gap alone already exceeds the distance bound.
		if abs(len(c)-len(line)) > maxSuggestionDistance {
			continue
		}
		d := edlib.OSADamerauLevenshteinDistance(lower, strings.ToLower(c))
		if d > 0 && d <= maxSuggestionDistance {
			matches = append(matches, scored{text: c, dist: d, count: count})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].text < matches[j].text
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.text
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
