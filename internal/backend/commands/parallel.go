package commands

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// parallelForStop runs fn(i) over i in [0, n) using up to GOMAXPROCS workers.
// Once any call returns true, workers stop picking up new indices; calls
// already running finish. Returns whether any call returned true.
func parallelForStop(n int, fn func(i int) bool) bool {
	if n <= 0 {
		return false
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	var stop atomic.Bool
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for !stop.Load() {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				if fn(i) {
					stop.Store(true)
					return
				}
			}
		}()
	}

	wg.Wait()
	return stop.Load()
}
