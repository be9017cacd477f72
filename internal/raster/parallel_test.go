package raster

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSpans_Partition(t *testing.T) {
	for _, height := range []int{1, 2, 7, 100, 1081} {
		for _, workers := range []int{1, 3, 8, 64, 5000} {
			spans := rowSpans(height, workers)

			require.NotEmpty(t, spans)
			assert.Equal(t, 0, spans[0].start)
			assert.Equal(t, height, spans[len(spans)-1].end)

			for i := 1; i < len(spans); i++ {
				assert.Equal(t, spans[i-1].end, spans[i].start, "spans must be contiguous")
			}
			for _, s := range spans {
				assert.Greater(t, s.end, s.start, "span must not be empty")
			}
		}
	}
}

func TestRowSpans_Empty(t *testing.T) {
	assert.Nil(t, rowSpans(0, 4))
}

func TestParallelRows_EachRowOnce(t *testing.T) {
	const height = 997

	for _, workers := range []int{0, 1, 2, 7, 32} {
		counts := make([]int32, height)
		ParallelRows(height, workers, func(y int) {
			atomic.AddInt32(&counts[y], 1)
		})

		for y, c := range counts {
			if c != 1 {
				t.Fatalf("workers=%d: row %d visited %d times", workers, y, c)
			}
		}
	}
}

func TestParallelRows_SchedulingIndependent(t *testing.T) {
	const width, height = 37, 211

	render := func(out []uint32) func(y int) {
		return func(y int) {
			for x := 0; x < width; x++ {
				out[y*width+x] = uint32(x*7919 + y*104729)
			}
		}
	}

	want := make([]uint32, width*height)
	runSpan(span{0, height}, render(want))

	rng := rand.New(rand.NewSource(1))
	for _, workers := range []int{2, 5, 16} {
		spans := rowSpans(height, workers)
		rng.Shuffle(len(spans), func(i, j int) { spans[i], spans[j] = spans[j], spans[i] })

		shuffled := make([]uint32, width*height)
		for _, s := range spans {
			runSpan(s, render(shuffled))
		}
		assert.Equal(t, want, shuffled, "shuffled spans, workers=%d", workers)

		parallel := make([]uint32, width*height)
		ParallelRows(height, workers, render(parallel))
		assert.Equal(t, want, parallel, "parallel, workers=%d", workers)
	}
}
