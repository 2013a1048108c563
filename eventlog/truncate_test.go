package eventlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateVerbatimWhenWithinLimit(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 32))
	assert.Equal(t, "hello", Truncate("hello", 5))
}

func TestTruncateAppendsMarker(t *testing.T) {
	in := strings.Repeat("a", 100)
	out := Truncate(in, 20)
	assert.LessOrEqual(t, len(out), 20)
	assert.True(t, strings.HasSuffix(out, "[TRUNCATED]"))
}

func TestTruncateNeverSplitsMultiByteRune(t *testing.T) {
	in := strings.Repeat("é", 50) // 2 bytes per rune
	out := Truncate(in, 30)
	assert.LessOrEqual(t, len(out), 30)
	assert.True(t, strings.HasSuffix(out, "[TRUNCATED]"))
	// the remaining prefix must be valid UTF-8
	prefix := strings.TrimSuffix(out, "[TRUNCATED]")
	assert.True(t, len(prefix)%2 == 0)
}
