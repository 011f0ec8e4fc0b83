package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_CoversRangeOnce(t *testing.T) {
	for _, cfg := range []Config{
		{Workers: 4, MinChunk: 10},
		{Workers: 3, MinChunk: 1},
		{Workers: 1, MinChunk: 1},
		Default,
	} {
		n := 1000
		hits := make([]int32, n)
		For(n, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		}, cfg)
		for i, h := range hits {
			assert.Equal(t, int32(1), h, "index %d with %+v", i, cfg)
		}
	}
}

func TestFor_SmallRunsInline(t *testing.T) {
	var mu sync.Mutex
	var calls [][2]int
	For(15, func(lo, hi int) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, [2]int{lo, hi})
	}, Config{Workers: 8, MinChunk: 8})
	assert.Equal(t, [][2]int{{0, 15}}, calls)

	For(0, func(_, _ int) { t.Fatal("called for empty range") }, Default)
}

func TestFor_Chunks(t *testing.T) {
	var count atomic.Int32
	For(100, func(lo, hi int) {
		count.Add(1)
		assert.LessOrEqual(t, hi-lo, 25)
	}, Config{Workers: 4, MinChunk: 10})
	assert.Equal(t, int32(4), count.Load())
}
