package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupRejectsEmptyFilter(t *testing.T) {
	e := &Engine{}
	_, err := e.Lookup(context.Background(), LookupFilter{}, Page{Number: 1, Size: 20})
	assert.ErrorIs(t, err, ErrNoLookupFilter)
}
