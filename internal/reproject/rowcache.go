package reproject

import "sync"

// rowCache memoises per-row values. It is safe for concurrent use.
type rowCache[T any] struct {
	rows    sync.Map
	compute func(y int) T
}

func newRowCache[T any](compute func(y int) T) *rowCache[T] {
	return &rowCache[T]{compute: compute}
}

func (c *rowCache[T]) get(y int) T {
	if v, ok := c.rows.Load(y); ok {
		return v.(T)
	}
	v, _ := c.rows.LoadOrStore(y, c.compute(y))
	return v.(T)
}

func (c *rowCache[T]) len() int {
	n := 0
	c.rows.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
