// Package pipeline fans work out over a fixed number of goroutines.
package pipeline

import "sync"

// Task calls fn for every element of data, split in contiguous chunks across workersCount goroutines.
// It returns once every call has completed.
func Task[T any](workersCount int, data []T, fn func(data T)) {
	workersCount = max(1, workersCount)
	dataSize := len(data)
	if dataSize == 0 {
		return
	}
	chunkSize := (dataSize + workersCount - 1) / workersCount

	var wg sync.WaitGroup
	for workerID := 0; workerID < workersCount; workerID++ {
		start := workerID * chunkSize
		end := min((workerID+1)*chunkSize, dataSize)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, end)
	}
	wg.Wait()
}

// TaskIndexed is Task over the index range [0, n)
func TaskIndexed(workersCount int, n int, fn func(i int)) {
	workersCount = max(1, workersCount)
	if n <= 0 {
		return
	}
	chunkSize := (n + workersCount - 1) / workersCount

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
