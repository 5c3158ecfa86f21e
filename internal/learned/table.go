// Package learned stores explicit typo corrections confirmed by the user.
package learned

import (
	"sort"
	"sync"
)

// Table maps an exact typed string, either a bare token or a full command
// line, to its replacement. Lookups are exact; the last write for a key
// wins and entries never expire.
type Table struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty table.
func New() *Table {
	return &Table{entries: make(map[string]string)}
}

// Get returns the learned replacement for key.
func (t *Table) Get(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

// Insert records key -> value, overwriting any previous value. Empty keys
// or values are ignored.
func (t *Table) Insert(key, value string) {
	if key == "" || value == "" {
		return
	}
	t.mu.Lock()
	t.entries[key] = value
	t.mu.Unlock()
}

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[key]
	delete(t.entries, key)
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Values returns the distinct replacements, sorted.
func (t *Table) Values() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[string]struct{}, len(t.entries))
	out := make([]string, 0, len(t.entries))
	for _, v := range t.entries {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of the table.
func (t *Table) All() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

// Restore replaces the table contents with entries.
func (t *Table) Restore(entries map[string]string) {
	fresh := make(map[string]string, len(entries))
	for k, v := range entries {
		if k != "" && v != "" {
			fresh[k] = v
		}
	}
	t.mu.Lock()
	t.entries = fresh
	t.mu.Unlock()
}

// Reset removes every entry.
func (t *Table) Reset() {
	t.mu.Lock()
	t.entries = make(map[string]string)
	t.mu.Unlock()
}
