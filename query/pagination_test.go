package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePageAppliesDefaults(t *testing.T) {
	p := NormalizePage(0, 0, defaultPageSize)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, defaultPageSize, p.Size)
}

func TestNormalizePageClampsOversizedPageSize(t *testing.T) {
	p := NormalizePage(1, 100000, defaultPageSize)
	assert.Equal(t, maxPageSize, p.Size)
}

func TestNormalizePageOffset(t *testing.T) {
	p := NormalizePage(3, 20, defaultPageSize)
	assert.Equal(t, 40, p.Offset())
}

func TestNewResultHasMoreWhenMoreRowsExist(t *testing.T) {
	p := NormalizePage(1, 20, defaultPageSize)
	res := NewResult([]string{"a", "b"}, 50, p)
	assert.True(t, res.HasMore)
}

func TestNewResultNoMoreWhenLastPage(t *testing.T) {
	p := NormalizePage(3, 20, defaultPageSize)
	res := NewResult([]string{"a"}, 41, p)
	assert.False(t, res.HasMore)
}
