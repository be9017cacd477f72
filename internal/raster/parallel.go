package raster

import (
	"runtime"
	"sync"
)

// span is a half-open range of row indices.
type span struct {
	start, end int
}

// rowSpans partitions [0, height) into at most workers contiguous spans whose
// sizes differ by at most one.
func rowSpans(height, workers int) []span {
	if height <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > height {
		workers = height
	}

	spans := make([]span, 0, workers)
	size, extra := height/workers, height%workers

	start := 0
	for i := 0; i < workers; i++ {
		end := start + size
		if i < extra {
			end++
		}
		spans = append(spans, span{start: start, end: end})
		start = end
	}
	return spans
}

// ParallelRows calls fn once for every row in [0, height), fanning the rows
// out over workers goroutines. A worker count of zero or less uses GOMAXPROCS.
// Each goroutine owns a contiguous span of rows, so fn may write to its row of
// a shared target without synchronisation.
func ParallelRows(height, workers int, fn func(y int)) {
	spans := rowSpans(height, workers)

	if len(spans) == 1 {
		runSpan(spans[0], fn)
		return
	}

	var wg sync.WaitGroup
	for _, s := range spans {
		wg.Add(1)
		go func(s span) {
			defer wg.Done()
			runSpan(s, fn)
		}(s)
	}
	wg.Wait()
}

func runSpan(s span, fn func(y int)) {
	for y := s.start; y < s.end; y++ {
		fn(y)
	}
}
