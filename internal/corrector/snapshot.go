package corrector

import (
	"context"
	"errors"
	"time"

	"oops/internal/corpus"
	"oops/internal/history"
	"oops/internal/patterns"
)

// SnapshotVersion is the snapshot layout written by this package.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when restoring a snapshot written by a
// newer layout.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the complete learned state of an engine.
type Snapshot struct {
	Version     int                         `json:"version" yaml:"version"`
	SavedAt     time.Time                   `json:"saved_at" yaml:"saved_at"`
	Corpus      corpus.Snapshot             `json:"corpus" yaml:"corpus"`
	Corrections map[string]string           `json:"corrections" yaml:"corrections"`
	Patterns    map[string]patterns.Pattern `json:"patterns" yaml:"patterns"`
	History     history.Snapshot            `json:"history" yaml:"history"`
}

// CorpusLoader supplies the executable names available on the system.
type CorpusLoader interface {
	LoadCorpus() (map[string]struct{}, error)
}

// AliasLoader supplies the user's shell aliases.
type AliasLoader interface {
	LoadAliases() (map[string]string, error)
}

// SnapshotStore persists engine snapshots.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}
