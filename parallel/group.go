package parallel

import (
	"golang.org/x/sync/errgroup"
)

// chunksPerWorker oversplits the range so uneven chunks even out.
const chunksPerWorker = 4

// Group fans each call out to fresh goroutines, at most limit at a time.
// It holds no state between calls.
type Group struct {
	limit int
}

// NewGroup creates a one-shot fan-out runner.
func NewGroup(limit int) Group {
	if limit < 1 {
		limit = 1
	}
	return Group{limit: limit}
}

// Run implements Runner.
func (g Group) Run(n int, body func(lo, hi int)) {
	var eg errgroup.Group
	eg.SetLimit(g.limit)
	chunks(n, g.limit*chunksPerWorker, func(lo, hi int) {
		eg.Go(func() error {
			body(lo, hi)
			return nil
		})
	})
	// Bodies cannot fail; Wait is the barrier.
	_ = eg.Wait()
}
