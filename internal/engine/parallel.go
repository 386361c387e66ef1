package engine

import "sync"

// runIndexed executes fn for indices [0,n) concurrently and returns the
// results in index order. Callers bound n themselves (group size or fan-out
// chunk size).
func runIndexed[T any](n int, fn func(int) T) []T {
	out := make([]T, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			out[idx] = fn(idx)
		}(i)
	}
	wg.Wait()
	return out
}
