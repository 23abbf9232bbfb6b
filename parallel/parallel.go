// Package parallel splits index ranges across goroutines for per-frame work.
//
// A Runner hands contiguous [lo, hi) chunks of [0, n) to a body function and
// returns only after every chunk has finished. Bodies must write disjoint
// data; runners never reorder or merge results, so any Runner can be swapped
// for another without changing what the body computes.
package parallel

import (
	"fmt"
	"runtime"
)

// Runner executes body over [0, n) in contiguous chunks.
type Runner interface {
	Run(n int, body func(lo, hi int))
}

// Stopper is implemented by runners that own long-lived goroutines.
type Stopper interface {
	Stop()
}

// Serial runs everything as one chunk on the calling goroutine.
type Serial struct{}

// Run implements Runner.
func (Serial) Run(n int, body func(lo, hi int)) {
	if n > 0 {
		body(0, n)
	}
}

// New builds the runner named by kind: "pool", "group" or "serial".
// workers <= 0 means GOMAXPROCS.
func New(kind string, workers, threshold int) (Runner, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	switch kind {
	case "pool":
		return NewPool(workers, threshold), nil
	case "group":
		return NewGroup(workers), nil
	case "serial":
		return Serial{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduler %q", kind)
	}
}

// chunks calls fn for each of at most parts contiguous ranges covering [0, n).
func chunks(n, parts int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if parts < 1 {
		parts = 1
	}
	size := (n + parts - 1) / parts
	for lo := 0; lo < n; lo += size {
		fn(lo, min(lo+size, n))
	}
}
