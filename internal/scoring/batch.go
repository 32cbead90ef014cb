package scoring

import "fmt"

// DefaultBatchSize is the number of leads sent in one classification call.
const DefaultBatchSize = 5

// Chunk splits items into contiguous groups of at most size elements. Order is
// preserved and only the last group may be shorter. It panics if size < 1.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		panic(fmt.Sprintf("scoring: invalid chunk size %d", size))
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
