// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how work is split.
type Config struct {
	Workers  int // Maximum goroutines; <= 1 runs sequentially.
	MinChunk int // Minimum indices per goroutine.
}

// Default splits across every CPU in chunks of at least 4096 indices, so
// small inputs stay on the calling goroutine.
var Default = Config{
	Workers:  runtime.NumCPU(),
	MinChunk: 4096,
}

// For calls f(lo, hi) over disjoint ranges covering [0, n) and returns when
// all calls are done. Ranges are processed concurrently, so f must only
// write to indices inside its own range.
func For(n int, f func(lo, hi int), cfg Config) {
	if n <= 0 {
		return
	}
	if cfg.Workers <= 1 || n < 2*cfg.MinChunk {
		f(0, n)
		return
	}

	chunk := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinChunk)
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(lo, hi)
		}()
	}
	wg.Wait()
}
