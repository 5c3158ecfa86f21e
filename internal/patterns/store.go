// Package patterns learns, per base command, the subcommands/arguments
// and flags a user actually types, and finds the closest learned word for
// a mistyped one.
package patterns

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"oops/internal/ring"
	"oops/internal/similarity"
)

const (
	DefaultMaxArgs           = 50
	DefaultMaxFlags          = 30
	DefaultUsageThreshold    = 2
	DefaultArgumentThreshold = 0.4
	DefaultLenientThreshold  = 0.3

	minTokenLength = 2
)

// DefaultIgnored lists tools whose arguments are almost always file names
// or patterns and therefore never learned.
var DefaultIgnored = []string{"grep", "cat", "less", "head", "tail", "more", "echo", "cd", "ls"}

// DefaultLenient lists commands whose subcommand vocabulary is matched
// with the lower LenientThreshold.
var DefaultLenient = []string{"git"}

// Config holds the store limits and thresholds.
type Config struct {
	MaxArgs           int
	MaxFlags          int
	UsageThreshold    uint64
	ArgumentThreshold float64
	LenientThreshold  float64
	Ignored           []string
	Lenient           []string
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		MaxArgs:           DefaultMaxArgs,
		MaxFlags:          DefaultMaxFlags,
		UsageThreshold:    DefaultUsageThreshold,
		ArgumentThreshold: DefaultArgumentThreshold,
		LenientThreshold:  DefaultLenientThreshold,
		Ignored:           DefaultIgnored,
		Lenient:           DefaultLenient,
	}
}

// Pattern is a copy of what has been learned about one base command.
type Pattern struct {
	Arguments   []string  `json:"arguments" yaml:"arguments"`
	Flags       []string  `json:"flags" yaml:"flags"`
	UsageCount  uint64    `json:"usage_count" yaml:"usage_count"`
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

type pattern struct {
	args        *vocabulary
	flags       *vocabulary
	usage       uint64
	lastUpdated time.Time
}

// Store holds the learned vocabulary of every observed command.
type Store struct {
	mu       sync.RWMutex
	cfg      Config
	patterns map[string]*pattern
	ignored  map[string]struct{}
	lenient  map[string]struct{}
	now      func() time.Time
}

// New creates an empty store. Zero limits fall back to defaults.
func New(cfg Config) *Store {
	def := DefaultConfig()
	if cfg.MaxArgs <= 0 {
		cfg.MaxArgs = def.MaxArgs
	}
	if cfg.MaxFlags <= 0 {
		cfg.MaxFlags = def.MaxFlags
	}
	if cfg.UsageThreshold == 0 {
		cfg.UsageThreshold = def.UsageThreshold
	}
	if cfg.ArgumentThreshold <= 0 {
		cfg.ArgumentThreshold = def.ArgumentThreshold
	}
	if cfg.LenientThreshold <= 0 {
		cfg.LenientThreshold = def.LenientThreshold
	}
	if cfg.Ignored == nil {
		cfg.Ignored = def.Ignored
	}
	if cfg.Lenient == nil {
		cfg.Lenient = def.Lenient
	}

	return &Store{
		cfg:      cfg,
		patterns: make(map[string]*pattern),
		ignored:  toSet(cfg.Ignored),
		lenient:  toSet(cfg.Lenient),
		now:      time.Now,
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

// Learn records the vocabulary of a command line that ran successfully.
// Flags are admitted at once; arguments only after the command has been
// seen UsageThreshold times, so one-off file names stay out.
func (s *Store) Learn(line string) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return
	}
	base := tokens[0]
	if _, skip := s.ignored[base]; skip {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patterns[base]
	if !ok {
		p = &pattern{
			args:  newVocabulary(s.cfg.MaxArgs),
			flags: newVocabulary(s.cfg.MaxFlags),
		}
		s.patterns[base] = p
	}
	if p.usage < math.MaxUint64 {
		p.usage++
	}
	p.lastUpdated = s.now()

	admitArgs := p.usage >= s.cfg.UsageThreshold
	for _, tok := range tokens[1:] {
		if utf8.RuneCountInString(tok) < minTokenLength {
			continue
		}
		switch {
		case IsFlag(tok):
			p.flags.add(FlagName(tok))
		case looksLikePath(tok):
			// not vocabulary
		case admitArgs:
			p.args.add(tok)
		}
	}
}

// ArgumentThreshold returns the similarity an argument must reach to be
// suggested for command.
func (s *Store) ArgumentThreshold(command string) float64 {
	if _, ok := s.lenient[command]; ok {
		return s.cfg.LenientThreshold
	}
	return s.cfg.ArgumentThreshold
}

// FindSimilarArgument returns the learned argument of command closest to
// arg.
func (s *Store) FindSimilarArgument(command, arg string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patterns[command]
	if !ok {
		return "", false
	}
	m, ok := similarity.Best(arg, p.args.items(), s.ArgumentThreshold(command))
	return m.Text, ok
}

// FindSimilarFlag returns the learned flag of command closest to flag with
// a score of at least threshold. Names are compared without their leading
// dashes, and names of three characters or fewer only match exactly, so
// "-m" is never turned into "-b" and "--" is never a flag.
func (s *Store) FindSimilarFlag(command, flag string, threshold float64) (string, bool) {
	if !IsFlag(flag) {
		return "", false
	}
	flag = FlagName(flag)
	name := strings.TrimLeft(flag, "-")

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patterns[command]
	if !ok {
		return "", false
	}

	best := similarity.Match{Score: -1}
	for _, cand := range p.flags.items() {
		if cand == flag {
			return cand, true
		}
		candName := strings.TrimLeft(cand, "-")
		if utf8.RuneCountInString(name) <= similarity.ShortLength ||
			utf8.RuneCountInString(candName) <= similarity.ShortLength {
			continue
		}
		if score := similarity.Score(name, candName); score > best.Score {
			best = similarity.Match{Text: cand, Score: score}
		}
	}
	if best.Text == "" || best.Score < threshold {
		return "", false
	}
	return best.Text, true
}

// Complete ranks the learned vocabulary of command against a partial
// word. Partials starting with "-" complete flags, others arguments. An
// empty partial lists the arguments, oldest first.
func (s *Store) Complete(command, partial string, limit int) []string {
	s.mu.RLock()
	p, ok := s.patterns[command]
	var words []string
	if ok {
		if strings.HasPrefix(partial, "-") {
			words = p.flags.items()
		} else {
			words = p.args.items()
		}
	}
	s.mu.RUnlock()

	if len(words) == 0 {
		return nil
	}
	if partial == "" {
		return clip(words, limit)
	}

	ranks := fuzzy.RankFindNormalizedFold(partial, words)
	sort.Sort(ranks)
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return clip(out, limit)
}

func clip(words []string, limit int) []string {
	if limit > 0 && len(words) > limit {
		return words[:limit]
	}
	return words
}

// Pattern returns a copy of what has been learned for command.
func (s *Store) Pattern(command string) (Pattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[command]
	if !ok {
		return Pattern{}, false
	}
	return p.export(), true
}

// Commands returns every command with a pattern, sorted.
func (s *Store) Commands() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.patterns))
	for c := range s.patterns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of commands with a pattern.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}

// Snapshot copies every pattern.
func (s *Store) Snapshot() map[string]Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Pattern, len(s.patterns))
	for c, p := range s.patterns {
		out[c] = p.export()
	}
	return out
}

// Restore replaces all patterns. Vocabulary beyond the configured limits
// keeps only its newest entries.
func (s *Store) Restore(snap map[string]Pattern) {
	fresh := make(map[string]*pattern, len(snap))
	for c, sp := range snap {
		if c == "" {
			continue
		}
		p := &pattern{
			args:        newVocabulary(s.cfg.MaxArgs),
			flags:       newVocabulary(s.cfg.MaxFlags),
			usage:       sp.UsageCount,
			lastUpdated: sp.LastUpdated,
		}
		for _, a := range sp.Arguments {
			p.args.add(a)
		}
		for _, f := range sp.Flags {
			p.flags.add(f)
		}
		fresh[c] = p
	}

	s.mu.Lock()
	s.patterns = fresh
	s.mu.Unlock()
}

// Reset forgets every pattern.
func (s *Store) Reset() {
	s.mu.Lock()
	s.patterns = make(map[string]*pattern)
	s.mu.Unlock()
}

func (p *pattern) export() Pattern {
	return Pattern{
		Arguments:   p.args.items(),
		Flags:       p.flags.items(),
		UsageCount:  p.usage,
		LastUpdated: p.lastUpdated,
	}
}

// vocabulary is a de-duplicated FIFO word list with a fixed capacity.
type vocabulary struct {
	words *ring.Ring[string]
	index map[string]struct{}
}

func newVocabulary(capacity int) *vocabulary {
	return &vocabulary{
		words: ring.New[string](capacity),
		index: make(map[string]struct{}, capacity),
	}
}

// add appends word unless already present, evicting the oldest word when
// full.
func (v *vocabulary) add(word string) bool {
	if _, ok := v.index[word]; ok {
		return false
	}
	if old, evicted := v.words.Push(word); evicted {
		delete(v.index, old)
	}
	v.index[word] = struct{}{}
	return true
}

func (v *vocabulary) items() []string {
	return v.words.Items()
}
