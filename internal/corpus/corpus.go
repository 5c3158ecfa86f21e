// Package corpus holds the set of command names known to exist in the
// user's environment, plus shell alias names, and finds the closest
// known name for a mistyped one.
package corpus

import (
	"runtime"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/panjf2000/ants/v2"
	"github.com/sahilm/fuzzy"
)

// DefaultParallelThreshold is the corpus size above which Closest shards
// its scan across a worker pool.
const DefaultParallelThreshold = 5000

// TieBreaker weights a candidate when two names score equally. Higher
// weight wins.
type TieBreaker func(name string) uint64

// Corpus is the set of known commands and alias names.
type Corpus struct {
	mu       sync.RWMutex
	commands map[string]struct{}
	aliases  map[string]string
	names    []string // sorted union of commands and alias names

	tie               TieBreaker
	parallelThreshold int
	workers           int

	poolMu sync.Mutex
	pool   *ants.Pool
}

// Option configures a Corpus.
type Option func(*Corpus)

// WithParallelThreshold sets the size above which scans run in parallel.
func WithParallelThreshold(n int) Option {
	return func(c *Corpus) {
		if n > 0 {
			c.parallelThreshold = n
		}
	}
}

// WithWorkers sets the number of scan workers.
func WithWorkers(n int) Option {
	return func(c *Corpus) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithTieBreaker sets the weight used to order equally scored names.
func WithTieBreaker(tb TieBreaker) Option {
	return func(c *Corpus) {
		c.tie = tb
	}
}

// New creates an empty corpus.
func New(opts ...Option) *Corpus {
	c := &Corpus{
		commands:          make(map[string]struct{}),
		aliases:           make(map[string]string),
		parallelThreshold: DefaultParallelThreshold,
		workers:           runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contains reports whether name is a known command or alias.
func (c *Corpus) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.commands[name]; ok {
		return true
	}
	_, ok := c.aliases[name]
	return ok
}

// Add inserts command names. It reports how many were new.
func (c *Corpus) Add(names ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := c.commands[n]; ok {
			continue
		}
		c.commands[n] = struct{}{}
		added++
	}
	if added > 0 {
		c.rebuild()
	}
	return added
}

// Replace swaps the command set wholesale. Aliases are kept.
func (c *Corpus) Replace(commands map[string]struct{}) {
	fresh := make(map[string]struct{}, len(commands))
	for n := range commands {
		if n != "" {
			fresh[n] = struct{}{}
		}
	}

	c.mu.Lock()
	c.commands = fresh
	c.rebuild()
	c.mu.Unlock()
}

// SetAliases swaps the alias table wholesale.
func (c *Corpus) SetAliases(aliases map[string]string) {
	fresh := make(map[string]string, len(aliases))
	for k, v := range aliases {
		if k != "" {
			fresh[k] = v
		}
	}

	c.mu.Lock()
	c.aliases = fresh
	c.rebuild()
	c.mu.Unlock()
}

// Alias returns the expansion of an alias.
func (c *Corpus) Alias(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.aliases[name]
	return v, ok
}

// Names returns all known names, sorted.
func (c *Corpus) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of distinct known names.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Reset empties commands and aliases.
func (c *Corpus) Reset() {
	c.mu.Lock()
	c.commands = make(map[string]struct{})
	c.aliases = make(map[string]string)
	c.names = nil
	c.mu.Unlock()
}

// rebuild recomputes the sorted name slice. Callers hold the write lock.
// The slice is replaced, never mutated, so scans holding the old one
// keep a consistent view.
func (c *Corpus) rebuild() {
	names := make([]string, 0, len(c.commands)+len(c.aliases))
	for n := range c.commands {
		names = append(names, n)
	}
	for n := range c.aliases {
		if _, dup := c.commands[n]; !dup {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	c.names = names
}

// Closest returns the known name most similar to name, provided its
// score is at least threshold. Equal scores are ordered by the tie
// breaker and then by name.
func (c *Corpus) Closest(name string, threshold float64) (string, bool) {
	if name == "" {
		return "", false
	}

	c.mu.RLock()
	names := c.names
	tie := c.tie
	c.mu.RUnlock()

	if len(names) == 0 {
		return "", false
	}

	var best candidate
	if len(names) > c.parallelThreshold && c.workers > 1 {
		best = c.scanParallel(name, names, tie)
	} else {
		best = scan(name, names, tie)
	}

	if best.name == "" || best.score < threshold {
		return "", false
	}
	return best.name, true
}

// Search returns up to limit names ranked by subsequence match of pattern.
func (c *Corpus) Search(pattern string, limit int) []string {
	if pattern == "" {
		return nil
	}

	c.mu.RLock()
	names := c.names
	c.mu.RUnlock()

	matches := fuzzy.Find(pattern, names)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

// Fingerprint digests the current commands and aliases.
func (c *Corpus) Fingerprint() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Fingerprint(c.commands, c.aliases)
}

// Fingerprint digests a command set and alias table independent of map
// order, so a fresh scan can be compared with the stored corpus before
// replacing it.
func Fingerprint(commands map[string]struct{}, aliases map[string]string) uint64 {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := xxhash.New()
	for _, n := range names {
		_, _ = d.WriteString(n)
		_, _ = d.WriteString("\x00")
	}
	_, _ = d.WriteString("\x01")
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString("=")
		_, _ = d.WriteString(aliases[k])
		_, _ = d.WriteString("\x00")
	}
	return d.Sum64()
}

// Snapshot is a point-in-time copy of the corpus.
type Snapshot struct {
	Commands []string          `json:"commands" yaml:"commands"`
	Aliases  map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Snapshot copies the corpus. Commands are sorted.
func (c *Corpus) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Commands: make([]string, 0, len(c.commands)),
		Aliases:  make(map[string]string, len(c.aliases)),
	}
	for n := range c.commands {
		snap.Commands = append(snap.Commands, n)
	}
	sort.Strings(snap.Commands)
	for k, v := range c.aliases {
		snap.Aliases[k] = v
	}
	return snap
}

// Restore replaces the corpus with snap.
func (c *Corpus) Restore(snap Snapshot) {
	commands := make(map[string]struct{}, len(snap.Commands))
	for _, n := range snap.Commands {
		if n != "" {
			commands[n] = struct{}{}
		}
	}
	aliases := make(map[string]string, len(snap.Aliases))
	for k, v := range snap.Aliases {
		if k != "" {
			aliases[k] = v
		}
	}

	c.mu.Lock()
	c.commands = commands
	c.aliases = aliases
	c.rebuild()
	c.mu.Unlock()
}

// Close releases the scan worker pool, if one was started.
func (c *Corpus) Close() {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	if c.pool != nil {
		c.pool.Release()
		c.pool = nil
	}
}
