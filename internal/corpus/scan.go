package corpus

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"oops/internal/similarity"
)

type candidate struct {
	name  string
	score float64
}

// better reports whether a should replace b as the current best.
func better(a, b candidate, tie TieBreaker) bool {
	if b.name == "" {
		return a.name != ""
	}
	if a.score != b.score {
		return a.score > b.score
	}
	if tie != nil {
		wa, wb := tie(a.name), tie(b.name)
		if wa != wb {
			return wa > wb
		}
	}
	return a.name < b.name
}

// scan scores every name sequentially.
func scan(query string, names []string, tie TieBreaker) candidate {
	var best candidate
	for _, n := range names {
		cand := candidate{name: n, score: similarity.Score(query, n)}
		if better(cand, best, tie) {
			best = cand
		}
	}
	return best
}

// scanParallel splits names into one shard per worker and reduces the
// shard winners.
func (c *Corpus) scanParallel(query string, names []string, tie TieBreaker) candidate {
	pool, err := c.workerPool()
	if err != nil {
		return scan(query, names, tie)
	}

	shards := c.workers
	size := (len(names) + shards - 1) / shards
	results := make([]candidate, shards)

	var wg sync.WaitGroup
	for i := 0; i < shards; i++ {
		lo := i * size
		if lo >= len(names) {
			break
		}
		hi := min(lo+size, len(names))
		part := names[lo:hi]
		slot := &results[i]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			*slot = scan(query, part, tie)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	var best candidate
	for _, r := range results {
		if better(r, best, tie) {
			best = r
		}
	}
	return best
}

// workerPool lazily starts the shared scan pool.
func (c *Corpus) workerPool() (*ants.Pool, error) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	if c.pool != nil {
		return c.pool, nil
	}
	pool, err := ants.NewPool(c.workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, err
	}
	c.pool = pool
	return pool, nil
}
