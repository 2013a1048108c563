package store

// chunkStrings splits items into groups of at most size, preserving
// order. Used to keep idempotency-key lookups and multi-row inserts
// within a bounded IN(...)/VALUES(...) list length (§4.7: "chunks of
// 100"), the same chunking shape as the corpus's IN(...) lookups in
// db/repository/postgres.go generalized to arbitrary chunk sizes.
func chunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// chunkEvents splits events into groups of at most size, preserving order.
func chunkEvents(items []eventRef, size int) [][]eventRef {
	if size <= 0 {
		size = len(items)
	}
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]eventRef, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
