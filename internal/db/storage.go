// Package db persists the correction engine state in a bbolt file.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"oops/internal/corrector"
	"oops/internal/history"
	"oops/internal/metrics"
	"oops/internal/patterns"
)

var (
	corpusBucket    = []byte("corpus")
	aliasesBucket   = []byte("aliases")
	learnedBucket   = []byte("learned")
	patternsBucket  = []byte("patterns")
	historyBucket   = []byte("history")
	frequencyBucket = []byte("frequency")
	metaBucket      = []byte("meta")

	typosBucket       = []byte("typos")
	correctionsBucket = []byte("corrections")

	versionKey        = []byte("version")
	savedAtKey        = []byte("saved_at")
	historyEnabledKey = []byte("history_enabled")
	metricsKey        = []byte("metrics")

	allBuckets = [][]byte{
		corpusBucket, aliasesBucket, learnedBucket, patternsBucket,
		historyBucket, frequencyBucket, metaBucket,
	}
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Storage is a bbolt-backed snapshot store.
type Storage struct {
	db     *bbolt.DB
	path   string
	closed bool
}

// NewStorage opens or creates the database at path.
func NewStorage(path string) (*Storage, error) {
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Storage{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Storage) Path() string {
	return s.path
}

// Close closes the database
func (s *Storage) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// SaveSnapshot replaces the stored state with snap in one transaction.
func (s *Storage) SaveSnapshot(ctx context.Context, snap *corrector.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var metricsData []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		if meta := tx.Bucket(metaBucket); meta != nil {
			if data := meta.Get(metricsKey); data != nil {
				metricsData = append([]byte(nil), data...)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}

		corpus := tx.Bucket(corpusBucket)
		for _, name := range snap.Corpus.Commands {
			if err := corpus.Put([]byte(name), []byte("{}")); err != nil {
				return err
			}
		}
		if err := putStrings(tx.Bucket(aliasesBucket), snap.Corpus.Aliases); err != nil {
			return err
		}
		if err := putStrings(tx.Bucket(learnedBucket), snap.Corrections); err != nil {
			return err
		}

		pb := tx.Bucket(patternsBucket)
		for cmd, p := range snap.Patterns {
			if err := putJSON(pb, []byte(cmd), p); err != nil {
				return err
			}
		}

		hb := tx.Bucket(historyBucket)
		for i, e := range snap.History.Entries {
			if err := putJSON(hb, sequenceKey(i), e); err != nil {
				return err
			}
		}

		fb := tx.Bucket(frequencyBucket)
		if err := putCounts(fb, typosBucket, snap.History.TypoFrequency); err != nil {
			return err
		}
		if err := putCounts(fb, correctionsBucket, snap.History.CorrectionFrequency); err != nil {
			return err
		}

		meta := tx.Bucket(metaBucket)
		if metricsData != nil {
			if err := meta.Put(metricsKey, metricsData); err != nil {
				return err
			}
		}
		version := snap.Version
		if version == 0 {
			version = corrector.SnapshotVersion
		}
		if err := putJSON(meta, versionKey, version); err != nil {
			return err
		}
		savedAt := snap.SavedAt
		if savedAt.IsZero() {
			savedAt = time.Now().UTC()
		}
		if err := putJSON(meta, savedAtKey, savedAt); err != nil {
			return err
		}
		return putJSON(meta, historyEnabledKey, snap.History.Enabled)
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the stored state. It returns ErrNoSnapshot when the
// database has never been saved to.
func (s *Storage) LoadSnapshot(ctx context.Context) (*corrector.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &corrector.Snapshot{
		Corrections: make(map[string]string),
		Patterns:    make(map[string]patterns.Pattern),
		History: history.Snapshot{
			TypoFrequency:       make(map[string]uint64),
			CorrectionFrequency: make(map[string]uint64),
		},
	}
	snap.Corpus.Aliases = make(map[string]string)

	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta == nil || meta.Get(versionKey) == nil {
			return ErrNoSnapshot
		}
		if err := getJSON(meta, versionKey, &snap.Version); err != nil {
			return err
		}
		if err := getJSON(meta, savedAtKey, &snap.SavedAt); err != nil {
			return err
		}
		if err := getJSON(meta, historyEnabledKey, &snap.History.Enabled); err != nil {
			return err
		}

		if err := bucketOf(tx, corpusBucket).ForEach(func(k, _ []byte) error {
			snap.Corpus.Commands = append(snap.Corpus.Commands, string(k))
			return nil
		}); err != nil {
			return err
		}
		if err := getStrings(bucketOf(tx, aliasesBucket), snap.Corpus.Aliases); err != nil {
			return err
		}
		if err := getStrings(bucketOf(tx, learnedBucket), snap.Corrections); err != nil {
			return err
		}

		if err := bucketOf(tx, patternsBucket).ForEach(func(k, v []byte) error {
			var p patterns.Pattern
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("pattern %q: %w", k, err)
			}
			snap.Patterns[string(k)] = p
			return nil
		}); err != nil {
			return err
		}

		if err := bucketOf(tx, historyBucket).ForEach(func(k, v []byte) error {
			var e history.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("history entry %s: %w", k, err)
			}
			snap.History.Entries = append(snap.History.Entries, e)
			return nil
		}); err != nil {
			return err
		}

		fb := bucketOf(tx, frequencyBucket)
		if err := getCounts(fb, typosBucket, snap.History.TypoFrequency); err != nil {
			return err
		}
		return getCounts(fb, correctionsBucket, snap.History.CorrectionFrequency)
	})
	if errors.Is(err, ErrNoSnapshot) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// SaveMetrics stores counters accumulated across runs. They live outside
// the snapshot and survive SaveSnapshot.
func (s *Storage) SaveMetrics(ctx context.Context, snap metrics.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		return putJSON(meta, metricsKey, snap)
	})
	if err != nil {
		return fmt.Errorf("failed to save metrics: %w", err)
	}
	return nil
}

// LoadMetrics returns the stored counters, or a zero snapshot.
func (s *Storage) LoadMetrics(ctx context.Context) (metrics.Snapshot, error) {
	var snap metrics.Snapshot
	if err := ctx.Err(); err != nil {
		return snap, err
	}
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta == nil {
			return nil
		}
		return getJSON(meta, metricsKey, &snap)
	})
	if err != nil {
		return snap, fmt.Errorf("failed to load metrics: %w", err)
	}
	return snap, nil
}

// emptyBucket stands in for a bucket that a foreign or older file lacks.
type emptyBucket struct{}

func (emptyBucket) ForEach(func(k, v []byte) error) error { return nil }
func (emptyBucket) Bucket([]byte) *bbolt.Bucket           { return nil }

type readBucket interface {
	ForEach(func(k, v []byte) error) error
	Bucket(name []byte) *bbolt.Bucket
}

func bucketOf(tx *bbolt.Tx, name []byte) readBucket {
	if b := tx.Bucket(name); b != nil {
		return b
	}
	return emptyBucket{}
}

// sequenceKey keeps cursor order equal to insertion order.
func sequenceKey(i int) []byte {
	return []byte(fmt.Sprintf("%020d", i))
}

func putJSON(b *bbolt.Bucket, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return b.Put(key, data)
}

func getJSON(b *bbolt.Bucket, key []byte, out any) error {
	data := b.Get(key)
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func putStrings(b *bbolt.Bucket, m map[string]string) error {
	for k, v := range m {
		if err := putJSON(b, []byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

func getStrings(b readBucket, into map[string]string) error {
	return b.ForEach(func(k, v []byte) error {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("value of %q: %w", k, err)
		}
		into[string(k)] = s
		return nil
	})
}

func putCounts(parent *bbolt.Bucket, name []byte, counts map[string]uint64) error {
	b, err := parent.CreateBucketIfNotExists(name)
	if err != nil {
		return err
	}
	for k, n := range counts {
		if err := putJSON(b, []byte(k), n); err != nil {
			return err
		}
	}
	return nil
}

func getCounts(parent readBucket, name []byte, into map[string]uint64) error {
	b := parent.Bucket(name)
	if b == nil {
		return nil
	}
	return b.ForEach(func(k, v []byte) error {
		var n uint64
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("count of %q: %w", k, err)
		}
		into[string(k)] = n
		return nil
	})
}
