package corrector

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"oops/internal/corpus"
	"oops/internal/history"
	"oops/internal/learned"
	"oops/internal/logger"
	"oops/internal/metrics"
	"oops/internal/patterns"
)

const (
	// DefaultThreshold is the minimum score for a command to be suggested.
	DefaultThreshold = 0.6
	// DefaultFlagThreshold is the minimum score for a flag to be suggested.
	DefaultFlagThreshold = 0.5
)

// Config holds the engine tunables.
type Config struct {
	Threshold         float64
	FlagThreshold     float64
	ParallelThreshold int
	Workers           int
	HistorySize       int
	HistoryEnabled    bool
	Patterns          patterns.Config
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:         DefaultThreshold,
		FlagThreshold:     DefaultFlagThreshold,
		ParallelThreshold: corpus.DefaultParallelThreshold,
		Workers:           runtime.GOMAXPROCS(0),
		HistorySize:       history.MaxHistorySize,
		HistoryEnabled:    true,
		Patterns:          patterns.DefaultConfig(),
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// Engine owns the four stores and runs the correction pipeline. All
// methods are safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	cfg      Config
	corpus   *corpus.Corpus
	learned  *learned.Table
	patterns *patterns.Store
	history  *history.Tracker
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// New creates an engine with empty stores.
func New(cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.FlagThreshold <= 0 {
		cfg.FlagThreshold = def.FlagThreshold
	}
	if cfg.ParallelThreshold <= 0 {
		cfg.ParallelThreshold = def.ParallelThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	e := &Engine{
		cfg:      cfg,
		learned:  learned.New(),
		patterns: patterns.New(cfg.Patterns),
		history:  history.New(cfg.HistorySize),
		log:      logger.Discard(),
		metrics:  metrics.New(),
	}
	e.history.SetEnabled(cfg.HistoryEnabled)
	e.corpus = corpus.New(
		corpus.WithParallelThreshold(cfg.ParallelThreshold),
		corpus.WithWorkers(cfg.Workers),
		corpus.WithTieBreaker(e.history.CorrectionCount),
	)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases background resources.
func (e *Engine) Close() {
	e.corpus.Close()
}

// Config returns the configuration the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Metrics returns the engine metrics sink.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Correct returns the corrected line, or false when the line should run as
// typed.
func (e *Engine) Correct(line string) (string, bool) {
	c := e.Analyze(line)
	if c == nil {
		return "", false
	}
	return c.Corrected, true
}

// Analyze runs the pipeline and describes the decision. It returns nil
// when there is nothing to correct.
func (e *Engine) Analyze(line string) *Correction {
	start := time.Now()

	e.mu.RLock()
	c, stage := e.decide(line)
	e.mu.RUnlock()

	e.metrics.RecordCorrection(stage.String(), time.Since(start))
	if c != nil {
		e.log.Debug("corrected", "stage", stage, "input", line, "output", c.Corrected)
	} else {
		e.log.Debug("no correction", "stage", stage, "input", line)
	}
	return c
}

// Confirm records that typo should become correction. Empty values are
// ignored.
func (e *Engine) Confirm(typo, correction string) {
	typo, correction = normalize(typo), normalize(correction)
	if typo == "" || correction == "" {
		return
	}

	e.mu.Lock()
	e.learned.Insert(typo, correction)
	e.history.Record(typo, correction)
	e.mu.Unlock()

	e.metrics.RecordConfirmation()
	e.log.Debug("confirmed", "typo", typo, "correction", correction)
}

// Forget drops a confirmed correction. History counters are kept.
func (e *Engine) Forget(typo string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.learned.Delete(normalize(typo))
}

// Observe learns from a command line that ran successfully: its command
// joins the corpus and its flags and arguments the command's vocabulary.
func (e *Engine) Observe(line string) {
	line = normalize(line)
	if line == "" {
		return
	}
	base := firstToken(line)

	e.mu.Lock()
	e.corpus.Add(base)
	e.patterns.Learn(line)
	e.mu.Unlock()

	e.metrics.RecordObservation()
}

// Known reports whether name is a known command or alias.
func (e *Engine) Known(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.corpus.Contains(name)
}

// Corrections returns a copy of the confirmed corrections.
func (e *Engine) Corrections() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.learned.All()
}

// FrequentTypos returns the limit most frequently corrected typos. A
// negative limit returns all of them.
func (e *Engine) FrequentTypos(limit int) []history.Frequency {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.FrequentTypos(limit)
}

// FrequentCorrections returns the limit most frequent correction targets.
func (e *Engine) FrequentCorrections(limit int) []history.Frequency {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.FrequentCorrections(limit)
}

// History returns the confirmed corrections, oldest first.
func (e *Engine) History() []history.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.Entries()
}

// Complete lists known command names matching partial when command is
// empty, and otherwise the learned vocabulary of command.
func (e *Engine) Complete(command, partial string, limit int) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if command == "" {
		return e.corpus.Search(partial, limit)
	}
	return e.patterns.Complete(command, partial, limit)
}

// Pattern returns what has been learned about command.
func (e *Engine) Pattern(command string) (patterns.Pattern, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.patterns.Pattern(command)
}

// ClearCorrections forgets confirmed corrections and their history.
func (e *Engine) ClearCorrections() {
	e.mu.Lock()
	e.learned.Reset()
	e.history.Clear()
	e.mu.Unlock()
	e.log.Info("cleared corrections")
}

// ClearAll resets every store, including the corpus.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	e.learned.Reset()
	e.history.Clear()
	e.patterns.Reset()
	e.corpus.Reset()
	e.mu.Unlock()
	e.log.Info("cleared all learned state")
}

// SetHistoryEnabled turns correction history on or off.
func (e *Engine) SetHistoryEnabled(enabled bool) {
	e.mu.Lock()
	e.history.SetEnabled(enabled)
	e.mu.Unlock()
}

// HistoryEnabled reports whether corrections are recorded in history.
func (e *Engine) HistoryEnabled() bool {
	return e.history.Enabled()
}

// Refresh rebuilds the corpus from the loaders. It reports false, leaving
// the corpus untouched, when nothing changed. A nil loader keeps the
// current value for its part. On error the corpus is left as it was.
func (e *Engine) Refresh(cl CorpusLoader, al AliasLoader) (bool, error) {
	current := e.corpus.Snapshot()

	commands := make(map[string]struct{}, len(current.Commands))
	if cl != nil {
		loaded, err := cl.LoadCorpus()
		if err != nil {
			return false, fmt.Errorf("failed to load commands: %w", err)
		}
		commands = loaded
	} else {
		for _, n := range current.Commands {
			commands[n] = struct{}{}
		}
	}

	aliases := current.Aliases
	if al != nil {
		loaded, err := al.LoadAliases()
		if err != nil {
			return false, fmt.Errorf("failed to load aliases: %w", err)
		}
		aliases = loaded
	}

	if corpus.Fingerprint(commands, aliases) == e.corpus.Fingerprint() {
		e.log.Debug("corpus unchanged", "commands", len(commands), "aliases", len(aliases))
		return false, nil
	}

	e.mu.Lock()
	e.corpus.Replace(commands)
	e.corpus.SetAliases(aliases)
	e.mu.Unlock()

	e.metrics.RecordRefresh()
	e.log.Info("corpus refreshed", "commands", len(commands), "aliases", len(aliases))
	return true, nil
}

// Snapshot copies the whole engine state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &Snapshot{
		Version:     SnapshotVersion,
		SavedAt:     time.Now().UTC(),
		Corpus:      e.corpus.Snapshot(),
		Corrections: e.learned.All(),
		Patterns:    e.patterns.Snapshot(),
		History:     e.history.Snapshot(),
	}
}

// Restore replaces the engine state with snap. A nil snapshot is a no-op.
func (e *Engine) Restore(snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	if snap.Version > SnapshotVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.corpus.Restore(snap.Corpus)
	e.learned.Restore(snap.Corrections)
	e.patterns.Restore(snap.Patterns)
	e.history.Restore(snap.History)
	return nil
}

// Stats describes the size of each store.
type Stats struct {
	Commands       int              `json:"commands"`
	Aliases        int              `json:"aliases"`
	Corrections    int              `json:"corrections"`
	Patterns       int              `json:"patterns"`
	History        int              `json:"history"`
	HistoryEnabled bool             `json:"history_enabled"`
	Fingerprint    string           `json:"fingerprint"`
	Metrics        metrics.Snapshot `json:"metrics"`
}

// Stats returns store sizes and counters.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	snap := e.corpus.Snapshot()
	return Stats{
		Commands:       len(snap.Commands),
		Aliases:        len(snap.Aliases),
		Corrections:    e.learned.Len(),
		Patterns:       e.patterns.Len(),
		History:        e.history.Len(),
		HistoryEnabled: e.history.Enabled(),
		Fingerprint:    fmt.Sprintf("%016x", e.corpus.Fingerprint()),
		Metrics:        e.metrics.Snapshot(),
	}
}
