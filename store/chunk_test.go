package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkStringsSplitsIntoBoundedGroups(t *testing.T) {
	items := make([]string, 250)
	for i := range items {
		items[i] = "k"
	}

	chunks := chunkStrings(items, 100)

	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
}

func TestChunkStringsEmptyInputYieldsNoChunks(t *testing.T) {
	assert.Nil(t, chunkStrings(nil, 100))
	assert.Nil(t, chunkStrings([]string{}, 100))
}

func TestChunkStringsSizeZeroUsesSingleChunk(t *testing.T) {
	items := []string{"a", "b", "c"}
	chunks := chunkStrings(items, 0)
	assert.Len(t, chunks, 1)
	assert.Equal(t, items, chunks[0])
}

func TestChunkEventsPreservesOrder(t *testing.T) {
	items := []eventRef{{idx: 0}, {idx: 1}, {idx: 2}}
	chunks := chunkEvents(items, 2)
	assert.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0][0].idx)
	assert.Equal(t, 2, chunks[1][0].idx)
}
