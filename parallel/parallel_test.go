package parallel

import (
	"sync"
	"testing"
)

func runners(t *testing.T) map[string]Runner {
	t.Helper()
	pool := NewPool(4, 0)
	t.Cleanup(pool.Stop)
	return map[string]Runner{
		"serial": Serial{},
		"pool":   pool,
		"group":  NewGroup(4),
	}
}

// TestRunCoversRangeOnce verifies every index is visited exactly once.
func TestRunCoversRangeOnce(t *testing.T) {
	for name, r := range runners(t) {
		for _, n := range []int{0, 1, 3, 4, 5, 17, 1000} {
			t.Run(name, func(t *testing.T) {
				hits := make([]int, n)
				r.Run(n, func(lo, hi int) {
					if lo >= hi {
						t.Errorf("empty chunk [%d, %d)", lo, hi)
					}
					for i := lo; i < hi; i++ {
						hits[i]++
					}
				})
				for i, h := range hits {
					if h != 1 {
						t.Fatalf("n=%d: index %d visited %d times", n, i, h)
					}
				}
			})
		}
	}
}

// TestRunIsBarrier verifies Run returns only after all chunks finish.
func TestRunIsBarrier(t *testing.T) {
	for name, r := range runners(t) {
		t.Run(name, func(t *testing.T) {
			var mu sync.Mutex
			done := 0
			r.Run(64, func(lo, hi int) {
				mu.Lock()
				done += hi - lo
				mu.Unlock()
			})
			if done != 64 {
				t.Errorf("Run returned with %d/64 items processed", done)
			}
		})
	}
}

func TestPoolBelowThresholdRunsOnCaller(t *testing.T) {
	pool := NewPool(4, 100)
	defer pool.Stop()

	calls := 0
	pool.Run(10, func(lo, hi int) {
		calls++
		if lo != 0 || hi != 10 {
			t.Errorf("chunk = [%d, %d), want [0, 10)", lo, hi)
		}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if pool.running {
		t.Error("workers started for a call below threshold")
	}
}

func TestPoolRestartAfterStop(t *testing.T) {
	pool := NewPool(3, 0)

	sum := func() int {
		var mu sync.Mutex
		total := 0
		pool.Run(30, func(lo, hi int) {
			mu.Lock()
			total += hi - lo
			mu.Unlock()
		})
		return total
	}

	if got := sum(); got != 30 {
		t.Fatalf("first run processed %d, want 30", got)
	}
	pool.Stop()
	pool.Stop() // idempotent
	if got := sum(); got != 30 {
		t.Fatalf("run after stop processed %d, want 30", got)
	}
	pool.Stop()
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"pool", false},
		{"group", false},
		{"serial", false},
		{"rayon", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			r, err := New(tt.kind, 0, 8)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if s, ok := r.(Stopper); ok {
				s.Stop()
			}
		})
	}
}
